package game

import (
	"encoding/json"
	"errors"
	"testing"
)

func sq(t *testing.T, name string) Square {
	t.Helper()
	s, err := ParseSquare(name)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", name, err)
	}
	return s
}

func TestNewBoardLayout(t *testing.T) {
	b := NewBoard()
	if got := b.FEN(); got != "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR" {
		t.Fatalf("unexpected starting FEN %q", got)
	}
	if b[0][4] != "k" || b[7][4] != "K" {
		t.Fatalf("kings misplaced: %q %q", b[0][4], b[7][4])
	}
	if b[6][0] != "P" || b[1][7] != "p" {
		t.Fatalf("pawns misplaced")
	}
	for r := 2; r < 6; r++ {
		for c := 0; c < Size; c++ {
			if !b[r][c].IsEmpty() {
				t.Fatalf("expected empty middle, got %q at %d,%d", b[r][c], r, c)
			}
		}
	}
}

func TestSquareNames(t *testing.T) {
	cases := map[string]Square{
		"a8": {Row: 0, Col: 0},
		"h1": {Row: 7, Col: 7},
		"e2": {Row: 6, Col: 4},
		"e4": {Row: 4, Col: 4},
	}
	for name, want := range cases {
		if got := sq(t, name); got != want {
			t.Errorf("ParseSquare(%q) = %+v, want %+v", name, got, want)
		}
		if got := want.String(); got != name {
			t.Errorf("%+v.String() = %q, want %q", want, got, name)
		}
	}
	if _, err := ParseSquare("i9"); err == nil {
		t.Fatalf("expected error for i9")
	}
}

func TestApplyMovePawnPush(t *testing.T) {
	b := NewBoard()
	res, err := ApplyMove(&b, sq(t, "e2"), sq(t, "e4"))
	if err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	if b[4][4] != "P" || !b[6][4].IsEmpty() {
		t.Fatalf("board not updated: %q %q", b[4][4], b[6][4])
	}
	if res.Notation != "e2e4" {
		t.Fatalf("notation = %q", res.Notation)
	}
}

func TestApplyMoveRejects(t *testing.T) {
	b := NewBoard()
	before := b

	if _, err := ApplyMove(&b, Square{Row: 8, Col: 0}, Square{Row: 4, Col: 0}); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if _, err := ApplyMove(&b, Square{Row: 6, Col: 0}, Square{Row: 6, Col: -1}); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if _, err := ApplyMove(&b, sq(t, "e4"), sq(t, "e5")); !errors.Is(err, ErrEmptySquare) {
		t.Fatalf("expected ErrEmptySquare, got %v", err)
	}
	if b != before {
		t.Fatalf("rejected moves changed the board")
	}
}

func TestPromotionAlwaysQueen(t *testing.T) {
	var b Board
	b.Set(sq(t, "a7"), "P")
	b.Set(sq(t, "h2"), "p")
	b.Set(sq(t, "c7"), "R")

	res, err := ApplyMove(&b, sq(t, "a7"), sq(t, "a8"))
	if err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	if b.At(sq(t, "a8")) != "Q" || !res.Promoted || res.Notation != "a7a8=Q" {
		t.Fatalf("white pawn not promoted: %q %+v", b.At(sq(t, "a8")), res)
	}

	if _, err := ApplyMove(&b, sq(t, "h2"), sq(t, "h1")); err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	if b.At(sq(t, "h1")) != "q" {
		t.Fatalf("black pawn not promoted: %q", b.At(sq(t, "h1")))
	}

	res, err = ApplyMove(&b, sq(t, "c7"), sq(t, "c8"))
	if err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	if b.At(sq(t, "c8")) != "R" || res.Promoted {
		t.Fatalf("rook altered on back rank: %q", b.At(sq(t, "c8")))
	}
}

func TestApplySwapKeepsPieces(t *testing.T) {
	b := NewBoard()
	before := Count(b)

	res, err := ApplySwap(&b, sq(t, "a1"), sq(t, "b1"), White)
	if err != nil {
		t.Fatalf("ApplySwap: %v", err)
	}
	if b.At(sq(t, "a1")) != "N" || b.At(sq(t, "b1")) != "R" {
		t.Fatalf("pieces not exchanged: %q %q", b.At(sq(t, "a1")), b.At(sq(t, "b1")))
	}
	if res.Notation != "SWAP a1<->b1" {
		t.Fatalf("notation = %q", res.Notation)
	}
	after := Count(b)
	if len(after) != len(before) {
		t.Fatalf("piece set changed")
	}
	for p, n := range before {
		if after[p] != n {
			t.Fatalf("count for %q changed from %d to %d", p, n, after[p])
		}
	}
}

func TestApplySwapRejects(t *testing.T) {
	b := NewBoard()
	before := b
	cases := []struct {
		name     string
		from, to string
		color    Color
		want     error
	}{
		{"empty cell", "a1", "a3", White, ErrEmptySquare},
		{"opponent piece", "a1", "a8", White, ErrNotOwnPiece},
		{"both opponent", "a8", "b8", White, ErrNotOwnPiece},
		{"same square", "a1", "a1", White, ErrSameSquare},
	}
	for _, tc := range cases {
		if _, err := ApplySwap(&b, sq(t, tc.from), sq(t, tc.to), tc.color); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
	if b != before {
		t.Fatalf("rejected swaps changed the board")
	}
}

func TestKingCaptured(t *testing.T) {
	var b Board
	b.Set(sq(t, "e1"), "K")
	b.Set(sq(t, "e8"), "k")
	b.Set(sq(t, "e7"), "Q")

	res, err := ApplyMove(&b, sq(t, "e7"), sq(t, "e8"))
	if err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	if !KingCaptured(res) {
		t.Fatalf("expected king capture")
	}
	if HasKing(b, Black) || !HasKing(b, White) {
		t.Fatalf("HasKing wrong after capture")
	}
	if m := Material(b); m[White] != 2 || m[Black] != 0 {
		t.Fatalf("material = %v", m)
	}
}

func TestBoardJSON(t *testing.T) {
	b := NewBoard()
	raw, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var rows [][]*string
	if err := json.Unmarshal(raw, &rows); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rows[4][4] != nil {
		t.Fatalf("empty cell should be null")
	}
	if rows[6][4] == nil || *rows[6][4] != "P" {
		t.Fatalf("expected P at [6][4]")
	}

	var s Square
	if err := json.Unmarshal([]byte(`"e2"`), &s); err != nil || s != (Square{Row: 6, Col: 4}) {
		t.Fatalf("square from string: %+v %v", s, err)
	}
	if err := json.Unmarshal([]byte(`{"row":1,"col":2}`), &s); err != nil || s != (Square{Row: 1, Col: 2}) {
		t.Fatalf("square from object: %+v %v", s, err)
	}
}
