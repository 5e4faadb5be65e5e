package game

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Size is the number of rows and columns on the board.
const Size = 8

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opponent returns the other color.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) Valid() bool { return c == White || c == Black }

type Kind byte

const (
	Pawn   Kind = 'p'
	Knight Kind = 'n'
	Bishop Kind = 'b'
	Rook   Kind = 'r'
	Queen  Kind = 'q'
	King   Kind = 'k'
)

// Piece is a single-letter piece code. Uppercase letters are white pieces,
// lowercase letters are black. The zero value is an empty cell.
type Piece string

const NoPiece Piece = ""

func NewPiece(c Color, k Kind) Piece {
	s := string(rune(k))
	if c == White {
		s = strings.ToUpper(s)
	}
	return Piece(s)
}

func (p Piece) IsEmpty() bool { return p == NoPiece }

// Valid reports whether p is empty or one of the twelve piece codes.
func (p Piece) Valid() bool {
	if p.IsEmpty() {
		return true
	}
	if len(p) != 1 {
		return false
	}
	switch Kind(strings.ToLower(string(p))[0]) {
	case Pawn, Knight, Bishop, Rook, Queen, King:
		return true
	}
	return false
}

func (p Piece) Color() Color {
	if p.IsEmpty() {
		return ""
	}
	if strings.ToUpper(string(p)) == string(p) {
		return White
	}
	return Black
}

func (p Piece) Kind() Kind {
	if p.IsEmpty() {
		return 0
	}
	return Kind(strings.ToLower(string(p))[0])
}

// MarshalJSON encodes an empty cell as null.
func (p Piece) MarshalJSON() ([]byte, error) {
	if p.IsEmpty() {
		return []byte("null"), nil
	}
	return json.Marshal(string(p))
}

func (p *Piece) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = NoPiece
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if !Piece(s).Valid() {
		return fmt.Errorf("invalid piece code %q", s)
	}
	*p = Piece(s)
	return nil
}

// Square addresses a cell by row (0 is black's back rank) and column (0 is the a-file).
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (s Square) In() bool {
	return s.Row >= 0 && s.Row < Size && s.Col >= 0 && s.Col < Size
}

// UnmarshalJSON accepts {"row":6,"col":4} as well as the algebraic form "e2".
func (s *Square) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var name string
		if err := json.Unmarshal(b, &name); err != nil {
			return err
		}
		sq, err := ParseSquare(name)
		if err != nil {
			return err
		}
		*s = sq
		return nil
	}
	type plain Square
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = Square(v)
	return nil
}

type ActionKind string

const (
	ActionMove ActionKind = "move"
	ActionSwap ActionKind = "swap"
)

// Result describes what an accepted action did to the board.
type Result struct {
	Kind     ActionKind `json:"type"`
	From     Square     `json:"from"`
	To       Square     `json:"to"`
	Piece    Piece      `json:"piece"`
	Captured Piece      `json:"captured,omitempty"`
	Promoted bool       `json:"promoted,omitempty"`
	Notation string     `json:"notation"`
}
