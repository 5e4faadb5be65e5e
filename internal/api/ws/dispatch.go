package ws

import (
	"context"
	"errors"

	"swapchess/internal/room"
	"swapchess/internal/shared"

	"go.uber.org/zap"
)

// dispatch decodes one inbound frame and runs it against the room manager.
// Only errors a client can act on are reported back; the rest are dropped.
func (h *Hub) dispatch(c *Client, raw []byte) {
	in, err := shared.Decode(raw)
	if err != nil {
		c.log.Debug("bad_frame", zap.Error(err))
		h.Send(c.id, shared.EventError, h.msgs.Text("errors.bad_request"))
		return
	}

	ctx := context.Background()
	switch ev := in.(type) {
	case shared.CreateRoom:
		_, err = h.roomManager.Create(ctx, c.id, ev.PlayerName)
	case shared.JoinRoom:
		_, err = h.roomManager.Join(ctx, ev.RoomID, c.id, ev.PlayerName)
	case shared.RejoinRoom:
		_, err = h.roomManager.Rejoin(ctx, ev.RoomID, c.id, ev.SeatToken)
	case shared.MakeMove:
		_, err = h.roomManager.Apply(ctx, c.id, ev)
	case shared.GameOver:
		err = h.roomManager.ReportGameOver(ctx, c.id, ev.Result)
	case shared.ChatMessage:
		_, err = h.roomManager.Chat(ctx, c.id, ev.Text)
	case shared.RequestRematch:
		err = h.roomManager.RequestRematch(ctx, c.id)
	case shared.AcceptRematch:
		err = h.roomManager.AcceptRematch(ctx, c.id)
	}
	if err != nil {
		h.reportError(c, in.EventName(), err)
	}
}

func (h *Hub) reportError(c *Client, event string, err error) {
	key := ""
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		key = "errors.room_not_found"
	case errors.Is(err, room.ErrNotYourTurn):
		key = "errors.not_your_turn"
	case errors.Is(err, room.ErrBadSeatToken):
		key = "errors.invalid_seat_token"
	case event == shared.EventCreateRoom:
		key = "errors.internal"
		c.log.Warn("create_room_failed", zap.Error(err))
	}
	if key == "" {
		c.log.Debug("event_rejected", zap.String("event", event), zap.Error(err))
		return
	}
	h.Send(c.id, shared.EventError, h.msgs.Text(key))
}
