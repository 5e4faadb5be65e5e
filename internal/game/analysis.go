package game

// Count returns how many pieces of each code stand on the board.
func Count(b Board) map[Piece]int {
	out := make(map[Piece]int)
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if p := b[r][c]; !p.IsEmpty() {
				out[p]++
			}
		}
	}
	return out
}

// Material returns the number of pieces each color has left.
func Material(b Board) map[Color]int {
	out := map[Color]int{White: 0, Black: 0}
	for p, n := range Count(b) {
		out[p.Color()] += n
	}
	return out
}
