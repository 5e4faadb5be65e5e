package game

import "errors"

var (
	ErrOutOfBounds = errors.New("square out of bounds")
	ErrEmptySquare = errors.New("square is empty")
	ErrNotOwnPiece = errors.New("piece does not belong to mover")
	ErrSameSquare  = errors.New("source and destination are the same square")
)

// ApplyMove moves the piece on from to to, replacing whatever stands there.
// A pawn landing on row 0 or row 7 becomes a queen of its color. Geometry,
// captures of own pieces and check are not examined.
func ApplyMove(b *Board, from, to Square) (Result, error) {
	if !from.In() || !to.In() {
		return Result{}, ErrOutOfBounds
	}
	if from == to {
		return Result{}, ErrSameSquare
	}
	p := b.At(from)
	if p.IsEmpty() {
		return Result{}, ErrEmptySquare
	}

	res := Result{Kind: ActionMove, From: from, To: to, Piece: p, Captured: b.At(to)}
	if p.Kind() == Pawn && (to.Row == 0 || to.Row == Size-1) {
		res.Piece = NewPiece(p.Color(), Queen)
		res.Promoted = true
	}

	b.Set(to, res.Piece)
	b.Set(from, NoPiece)
	res.Notation = MoveNotation(from, to, res.Promoted)
	return res, nil
}

// ApplySwap exchanges two pieces of color c in place.
func ApplySwap(b *Board, from, to Square, c Color) (Result, error) {
	if !from.In() || !to.In() {
		return Result{}, ErrOutOfBounds
	}
	if from == to {
		return Result{}, ErrSameSquare
	}
	a, z := b.At(from), b.At(to)
	if a.IsEmpty() || z.IsEmpty() {
		return Result{}, ErrEmptySquare
	}
	if a.Color() != c || z.Color() != c {
		return Result{}, ErrNotOwnPiece
	}

	b.Set(from, z)
	b.Set(to, a)
	return Result{
		Kind:     ActionSwap,
		From:     from,
		To:       to,
		Piece:    a,
		Notation: SwapNotation(from, to),
	}, nil
}
