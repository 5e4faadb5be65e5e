package ws

import (
	"context"

	"swapchess/internal/game"
	"swapchess/internal/room"
	"swapchess/internal/shared"
)

// RoomManager is the session layer the hub dispatches client events to.
type RoomManager interface {
	Create(ctx context.Context, connID, name string) (room.Joined, error)
	Join(ctx context.Context, code, connID, name string) (room.Joined, error)
	Rejoin(ctx context.Context, code, connID, token string) (room.Joined, error)
	Apply(ctx context.Context, connID string, mv shared.MakeMove) (game.Result, error)
	ReportGameOver(ctx context.Context, connID, result string) error
	RequestRematch(ctx context.Context, connID string) error
	AcceptRematch(ctx context.Context, connID string) error
	Chat(ctx context.Context, connID, text string) (room.ChatPayload, error)
	Disconnect(ctx context.Context, connID string)
}

var _ RoomManager = (*room.Manager)(nil)
