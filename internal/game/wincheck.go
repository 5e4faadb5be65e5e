package game

// HasKing reports whether a king of color c is still on the board.
func HasKing(b Board, c Color) bool {
	k := NewPiece(c, King)
	for r := 0; r < Size; r++ {
		for col := 0; col < Size; col++ {
			if b[r][col] == k {
				return true
			}
		}
	}
	return false
}

// KingCaptured reports whether res removed the opponent's king from the board.
func KingCaptured(res Result) bool {
	return res.Kind == ActionMove && res.Captured.Kind() == King && res.Captured.Color() != res.Piece.Color()
}
