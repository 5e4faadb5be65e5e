package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"swapchess/internal/game"
)

// Inbound event names.
const (
	EventCreateRoom     = "create-room"
	EventJoinRoom       = "join-room"
	EventRejoinRoom     = "rejoin-room"
	EventMakeMove       = "make-move"
	EventGameOver       = "game-over"
	EventChatMessage    = "chat-message"
	EventRequestRematch = "request-rematch"
	EventAcceptRematch  = "accept-rematch"
)

// Outbound event names.
const (
	EventRoomCreated       = "room-created"
	EventRoomJoined        = "room-joined"
	EventGameStart         = "game-start"
	EventMoveMade          = "move-made"
	EventGameEnded         = "game-ended"
	EventRematchRequested  = "rematch-requested"
	EventGameReset         = "game-reset"
	EventPlayerLeft        = "player-disconnected"
	EventPlayerReconnected = "player-reconnected"
	EventError             = "error"
)

var (
	ErrUnknownEvent = errors.New("unknown event")
	ErrBadPayload   = errors.New("malformed payload")
)

// Envelope is the frame exchanged over the transport in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Outbound is an event ready to be encoded and pushed to connections.
type Outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Inbound is implemented by every decoded client event.
type Inbound interface {
	EventName() string
}

type CreateRoom struct {
	PlayerName string `json:"playerName"`
}

type JoinRoom struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

type RejoinRoom struct {
	RoomID    string `json:"roomId"`
	SeatToken string `json:"seatToken"`
}

// MakeMove carries a move or swap. Piece is what the client claims ends up on
// the destination square; the server recomputes it.
type MakeMove struct {
	Type  game.ActionKind `json:"type"`
	From  game.Square     `json:"from"`
	To    game.Square     `json:"to"`
	Piece game.Piece      `json:"piece,omitempty"`
}

type GameOver struct {
	Result string `json:"result"`
}

type ChatMessage struct {
	Text string `json:"message"`
}

type RequestRematch struct{}

type AcceptRematch struct{}

func (CreateRoom) EventName() string     { return EventCreateRoom }
func (JoinRoom) EventName() string       { return EventJoinRoom }
func (RejoinRoom) EventName() string     { return EventRejoinRoom }
func (MakeMove) EventName() string       { return EventMakeMove }
func (GameOver) EventName() string       { return EventGameOver }
func (ChatMessage) EventName() string    { return EventChatMessage }
func (RequestRematch) EventName() string { return EventRequestRematch }
func (AcceptRematch) EventName() string  { return EventAcceptRematch }

// Decode parses a raw frame into one of the Inbound variants. Unknown event
// names and payloads that do not fit the variant are rejected.
func Decode(raw []byte) (Inbound, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	switch env.Event {
	case EventCreateRoom:
		name, err := stringOrField(env.Data, "playerName")
		if err != nil {
			return nil, err
		}
		return CreateRoom{PlayerName: name}, nil
	case EventJoinRoom:
		var v JoinRoom
		if err := strictUnmarshal(env.Data, &v); err != nil {
			return nil, err
		}
		v.RoomID = strings.ToUpper(strings.TrimSpace(v.RoomID))
		if v.RoomID == "" {
			return nil, fmt.Errorf("%w: missing roomId", ErrBadPayload)
		}
		return v, nil
	case EventRejoinRoom:
		var v RejoinRoom
		if err := strictUnmarshal(env.Data, &v); err != nil {
			return nil, err
		}
		v.RoomID = strings.ToUpper(strings.TrimSpace(v.RoomID))
		if v.RoomID == "" || v.SeatToken == "" {
			return nil, fmt.Errorf("%w: missing roomId or seatToken", ErrBadPayload)
		}
		return v, nil
	case EventMakeMove:
		return decodeMove(env.Data)
	case EventGameOver:
		result, err := stringOrField(env.Data, "result")
		if err != nil {
			return nil, err
		}
		return GameOver{Result: result}, nil
	case EventChatMessage:
		text, err := stringOrField(env.Data, "message")
		if err != nil {
			return nil, err
		}
		return ChatMessage{Text: text}, nil
	case EventRequestRematch:
		return RequestRematch{}, nil
	case EventAcceptRematch:
		return AcceptRematch{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
}

// moveWire mirrors MakeMove with presence tracking on the squares. The piece
// is advisory, so a value the server cannot read is dropped, not rejected.
type moveWire struct {
	Type  game.ActionKind `json:"type"`
	From  *game.Square    `json:"from"`
	To    *game.Square    `json:"to"`
	Piece json.RawMessage `json:"piece"`
}

func decodeMove(raw json.RawMessage) (MakeMove, error) {
	var w moveWire
	if err := strictUnmarshal(raw, &w); err != nil {
		return MakeMove{}, err
	}
	if w.From == nil || w.To == nil {
		return MakeMove{}, fmt.Errorf("%w: move needs from and to", ErrBadPayload)
	}
	v := MakeMove{Type: w.Type, From: *w.From, To: *w.To}
	if v.Type == "" {
		v.Type = game.ActionMove
	}
	if v.Type != game.ActionMove && v.Type != game.ActionSwap {
		return MakeMove{}, fmt.Errorf("%w: unknown move type %q", ErrBadPayload, v.Type)
	}
	var p game.Piece
	if len(w.Piece) > 0 && json.Unmarshal(w.Piece, &p) == nil {
		v.Piece = p
	}
	return v, nil
}

func strictUnmarshal(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing data", ErrBadPayload)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}

// stringOrField accepts either a bare JSON string or an object carrying the
// string under field.
func stringOrField(raw json.RawMessage, field string) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", fmt.Errorf("%w: expected string or object", ErrBadPayload)
	}
	v, ok := obj[field]
	if !ok {
		return "", nil
	}
	if err := json.Unmarshal(v, &s); err != nil {
		return "", fmt.Errorf("%w: %s must be a string", ErrBadPayload, field)
	}
	return s, nil
}
