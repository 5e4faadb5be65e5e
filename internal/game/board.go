package game

import (
	"fmt"
	"strings"

	"github.com/corentings/chess/v2"
)

// Board is the 8x8 grid. Row 0 holds black's back rank, row 7 white's.
type Board [Size][Size]Piece

// NewBoard returns the standard starting layout.
func NewBoard() Board {
	var b Board
	for sq, p := range chess.NewGame().Position().Board().SquareMap() {
		b.Set(fromChessSquare(sq), fromChessPiece(p))
	}
	return b
}

func (b *Board) At(s Square) Piece { return b[s.Row][s.Col] }

func (b *Board) Set(s Square, p Piece) { b[s.Row][s.Col] = p }

// FEN returns the piece-placement field of the board's FEN.
func (b *Board) FEN() string {
	m := make(map[chess.Square]chess.Piece)
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			sq := Square{Row: r, Col: c}
			if p := b.At(sq); !p.IsEmpty() {
				m[toChessSquare(sq)] = toChessPiece(p)
			}
		}
	}
	return chess.NewBoard(m).String()
}

// String names the square in algebraic form, e.g. row 6 col 4 is "e2".
func (s Square) String() string {
	if !s.In() {
		return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
	}
	return toChessSquare(s).String()
}

// ParseSquare parses an algebraic square name such as "e2".
func ParseSquare(name string) (Square, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) != 2 || name[0] < 'a' || name[0] > 'h' || name[1] < '1' || name[1] > '8' {
		return Square{}, fmt.Errorf("invalid square %q", name)
	}
	return Square{Row: Size - int(name[1]-'0'), Col: int(name[0] - 'a')}, nil
}

func toChessSquare(s Square) chess.Square {
	return chess.NewSquare(chess.File(s.Col), chess.Rank(Size-1-s.Row))
}

func fromChessSquare(sq chess.Square) Square {
	return Square{Row: Size - 1 - int(sq.Rank()), Col: int(sq.File())}
}

var kindToChess = map[Kind]chess.PieceType{
	Pawn:   chess.Pawn,
	Knight: chess.Knight,
	Bishop: chess.Bishop,
	Rook:   chess.Rook,
	Queen:  chess.Queen,
	King:   chess.King,
}

func toChessPiece(p Piece) chess.Piece {
	c := chess.Black
	if p.Color() == White {
		c = chess.White
	}
	return chess.NewPiece(kindToChess[p.Kind()], c)
}

func fromChessPiece(p chess.Piece) Piece {
	if p == chess.NoPiece {
		return NoPiece
	}
	c := Black
	if p.Color() == chess.White {
		c = White
	}
	for k, t := range kindToChess {
		if t == p.Type() {
			return NewPiece(c, k)
		}
	}
	return NoPiece
}
