package room

import (
	"sync"
	"time"

	"swapchess/internal/game"

	"github.com/google/uuid"
)

type Role string

const (
	RoleWhite     Role = Role(game.White)
	RoleBlack     Role = Role(game.Black)
	RoleSpectator Role = "spectator"
)

// Color returns the seat color for player roles.
func (r Role) Color() (game.Color, bool) {
	c := game.Color(r)
	return c, c.Valid()
}

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

// Seat is a participant slot, either a player color or a spectator entry.
type Seat struct {
	ConnID    string `json:"id"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`

	token string
}

func newSeat(connID, name string) *Seat {
	return &Seat{ConnID: connID, Name: name, Connected: true, token: uuid.NewString()}
}

type HistoryEntry struct {
	Kind     game.ActionKind `json:"type"`
	From     game.Square     `json:"from"`
	To       game.Square     `json:"to"`
	Piece    game.Piece      `json:"piece"`
	Color    game.Color      `json:"color"`
	Notation string          `json:"notation"`
	At       time.Time       `json:"timestamp"`
}

// Session is one game: board, turn, seats and history. All fields are
// guarded by mu.
type Session struct {
	mu sync.Mutex

	Code       string
	Board      game.Board
	Turn       game.Color
	Players    map[game.Color]*Seat
	Spectators []*Seat
	History    []HistoryEntry
	GameOver   bool
	Result     string
	CreatedAt  time.Time

	rematchFrom game.Color
	deleted     bool
}

func newSession(code string, now time.Time) *Session {
	return &Session{
		Code:      code,
		Board:     game.NewBoard(),
		Turn:      game.White,
		Players:   make(map[game.Color]*Seat, 2),
		CreatedAt: now,
	}
}

func (s *Session) statusLocked() Status {
	switch {
	case s.GameOver:
		return StatusFinished
	case s.Players[game.White] != nil && s.Players[game.Black] != nil:
		return StatusActive
	default:
		return StatusWaiting
	}
}

// reset restores the starting position and keeps every seat.
func (s *Session) reset() {
	s.Board = game.NewBoard()
	s.Turn = game.White
	s.History = nil
	s.GameOver = false
	s.Result = ""
	s.rematchFrom = ""
}

// abandonedLocked reports whether no player is connected and no spectator remains.
func (s *Session) abandonedLocked() bool {
	for _, p := range s.Players {
		if p != nil && p.Connected {
			return false
		}
	}
	return len(s.Spectators) == 0
}

func (s *Session) removeSpectator(seat *Seat) {
	for i, sp := range s.Spectators {
		if sp == seat {
			s.Spectators = append(s.Spectators[:i], s.Spectators[i+1:]...)
			return
		}
	}
}

// Snapshot is the serialisable view of a Session pushed to clients.
type Snapshot struct {
	Code       string              `json:"roomId"`
	Board      game.Board          `json:"board"`
	FEN        string              `json:"fen"`
	Turn       game.Color          `json:"turn"`
	Status     Status              `json:"status"`
	Players    map[game.Color]Seat `json:"players"`
	Spectators []Seat              `json:"spectators"`
	History    []HistoryEntry      `json:"history"`
	GameOver   bool                `json:"gameOver"`
	Result     string              `json:"result,omitempty"`
	Material   map[game.Color]int  `json:"material"`
	CreatedAt  time.Time           `json:"createdAt"`
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Code:       s.Code,
		Board:      s.Board,
		FEN:        s.Board.FEN(),
		Turn:       s.Turn,
		Status:     s.statusLocked(),
		Players:    make(map[game.Color]Seat, len(s.Players)),
		Spectators: make([]Seat, 0, len(s.Spectators)),
		History:    append([]HistoryEntry{}, s.History...),
		GameOver:   s.GameOver,
		Result:     s.Result,
		Material:   game.Material(s.Board),
		CreatedAt:  s.CreatedAt,
	}
	for c, p := range s.Players {
		if p != nil {
			snap.Players[c] = *p
		}
	}
	for _, sp := range s.Spectators {
		snap.Spectators = append(snap.Spectators, *sp)
	}
	return snap
}

// Snapshot copies the session state under its lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}
