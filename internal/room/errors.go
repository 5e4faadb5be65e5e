package room

import "errors"

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrNotInRoom     = errors.New("connection is not in a room")
	ErrSpectator     = errors.New("spectators cannot act")
	ErrNotPlayer     = errors.New("only players can do that")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrGameOver      = errors.New("game is over")
	ErrGameActive    = errors.New("game is still in progress")
	ErrOwnRematch    = errors.New("cannot accept your own rematch request")
	ErrInvalidAction = errors.New("invalid action")
	ErrBadSeatToken  = errors.New("invalid seat token")
	ErrCodeSpace     = errors.New("could not allocate a free room code")
)
