package room

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"swapchess/internal/game"
	"swapchess/internal/shared"

	"go.uber.org/zap"
)

// lockMember resolves the caller's room and returns it locked.
func (m *Manager) lockMember(connID string) (*Session, membership, error) {
	mem, ok := m.membership(connID)
	if !ok {
		return nil, membership{}, ErrNotInRoom
	}
	s, ok := m.store.GetRoom(mem.code)
	if !ok {
		return nil, membership{}, ErrRoomNotFound
	}
	s.mu.Lock()
	if s.deleted {
		s.mu.Unlock()
		return nil, membership{}, ErrRoomNotFound
	}
	return s, mem, nil
}

// lockPlayer is lockMember restricted to seated players.
func (m *Manager) lockPlayer(connID string) (*Session, game.Color, error) {
	s, mem, err := m.lockMember(connID)
	if err != nil {
		return nil, "", err
	}
	c, ok := mem.role.Color()
	if !ok {
		s.mu.Unlock()
		return nil, "", ErrNotPlayer
	}
	return s, c, nil
}

// Apply plays a move or swap for the caller and broadcasts the new state.
// Capturing the opposing king finishes the game.
func (m *Manager) Apply(ctx context.Context, connID string, mv shared.MakeMove) (game.Result, error) {
	s, mem, err := m.lockMember(connID)
	if err != nil {
		return game.Result{}, err
	}
	defer s.mu.Unlock()

	color, ok := mem.role.Color()
	if !ok {
		return game.Result{}, ErrSpectator
	}
	if s.GameOver {
		return game.Result{}, ErrGameOver
	}
	if s.Turn != color {
		return game.Result{}, ErrNotYourTurn
	}

	var res game.Result
	switch mv.Type {
	case game.ActionSwap:
		res, err = game.ApplySwap(&s.Board, mv.From, mv.To, color)
	case game.ActionMove, "":
		res, err = game.ApplyMove(&s.Board, mv.From, mv.To)
	default:
		err = fmt.Errorf("unknown action %q", mv.Type)
	}
	if err != nil {
		return game.Result{}, fmt.Errorf("%w: %w", ErrInvalidAction, err)
	}
	if !mv.Piece.IsEmpty() && mv.Piece != res.Piece {
		m.log.Debug("client_piece_mismatch",
			zap.String("room", s.Code),
			zap.String("claimed", string(mv.Piece)),
			zap.String("actual", string(res.Piece)))
	}

	s.History = append(s.History, HistoryEntry{
		Kind:     res.Kind,
		From:     res.From,
		To:       res.To,
		Piece:    res.Piece,
		Color:    color,
		Notation: res.Notation,
		At:       m.now(),
	})
	s.Turn = color.Opponent()
	s.rematchFrom = ""
	if game.KingCaptured(res) {
		s.GameOver = true
		s.Result = m.winText(color)
	}

	snap := s.snapshotLocked()
	m.bc.Broadcast(s.Code, shared.EventMoveMade, MoveMade{MoveData: res, Color: color, Game: snap})
	if s.GameOver {
		m.bc.Broadcast(s.Code, shared.EventGameEnded, GameEnded{Result: s.Result, Game: snap})
		m.log.Info("game_ended", zap.String("room", s.Code), zap.String("result", s.Result))
	}
	return res, nil
}

func (m *Manager) winText(c game.Color) string {
	text, err := m.msgs.Render("results.king_captured", map[string]string{"Color": string(c)})
	if err != nil {
		return string(c) + " wins"
	}
	return text
}

// ReportGameOver records a result declared by a player. Only the first report
// counts.
func (m *Manager) ReportGameOver(ctx context.Context, connID, result string) error {
	s, _, err := m.lockPlayer(connID)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()
	if s.GameOver {
		return ErrGameOver
	}

	s.GameOver = true
	s.Result = strings.TrimSpace(result)
	s.rematchFrom = ""
	m.bc.Broadcast(s.Code, shared.EventGameEnded, GameEnded{Result: s.Result, Game: s.snapshotLocked()})
	m.log.Info("game_ended", zap.String("room", s.Code), zap.String("result", s.Result))
	return nil
}

// RequestRematch tells the rest of the room that the caller wants a new game.
// Only a finished game can be rematched.
func (m *Manager) RequestRematch(ctx context.Context, connID string) error {
	s, c, err := m.lockPlayer(connID)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()
	if !s.GameOver {
		return ErrGameActive
	}
	s.rematchFrom = c
	m.bc.Broadcast(s.Code, shared.EventRematchRequested, RematchRequested{From: Role(c)}, connID)
	return nil
}

// AcceptRematch resets a finished game and keeps everyone seated. The player
// who asked for the rematch cannot accept it.
func (m *Manager) AcceptRematch(ctx context.Context, connID string) error {
	s, c, err := m.lockPlayer(connID)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()
	if !s.GameOver {
		return ErrGameActive
	}
	if s.rematchFrom == c {
		return ErrOwnRematch
	}
	s.reset()
	m.bc.Broadcast(s.Code, shared.EventGameReset, s.snapshotLocked())
	m.log.Info("game_reset", zap.String("room", s.Code))
	return nil
}

// Chat relays a message to everyone in the caller's room, sender included.
// Blank messages are dropped and long ones are cut to the configured limit.
func (m *Manager) Chat(ctx context.Context, connID, text string) (ChatPayload, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ChatPayload{}, fmt.Errorf("%w: empty message", ErrInvalidAction)
	}
	if limit := m.cfg.Room.MaxChatLength; limit > 0 && utf8.RuneCountInString(text) > limit {
		text = string([]rune(text)[:limit])
	}

	s, mem, err := m.lockMember(connID)
	if err != nil {
		return ChatPayload{}, err
	}
	defer s.mu.Unlock()

	msg := ChatPayload{
		PlayerName: mem.seat.Name,
		Message:    text,
		Timestamp:  m.now().UnixMilli(),
		Color:      mem.role,
	}
	m.bc.Broadcast(s.Code, shared.EventChatMessage, msg)
	return msg, nil
}
