package room

import "swapchess/internal/game"

// Joined is sent to a connection that created, joined or rejoined a room.
// SeatToken is only set for player seats.
type Joined struct {
	RoomID    string   `json:"roomId"`
	Color     Role     `json:"color"`
	SeatToken string   `json:"seatToken,omitempty"`
	Game      Snapshot `json:"game"`
}

type MoveMade struct {
	MoveData game.Result `json:"moveData"`
	Color    game.Color  `json:"color"`
	Game     Snapshot    `json:"game"`
}

type GameEnded struct {
	Result string   `json:"result"`
	Game   Snapshot `json:"game"`
}

type ChatPayload struct {
	PlayerName string `json:"playerName"`
	Message    string `json:"message"`
	Timestamp  int64  `json:"timestamp"`
	Color      Role   `json:"color"`
}

type RematchRequested struct {
	From Role `json:"from"`
}

type PlayerStatus struct {
	Color Role   `json:"color"`
	Name  string `json:"name,omitempty"`
}
