package game

// MoveNotation renders a move as a square pair, e.g. "e2e4" or "e7e8=Q".
func MoveNotation(from, to Square, promoted bool) string {
	s := from.String() + to.String()
	if promoted {
		s += "=Q"
	}
	return s
}

func SwapNotation(from, to Square) string {
	return "SWAP " + from.String() + "<->" + to.String()
}
