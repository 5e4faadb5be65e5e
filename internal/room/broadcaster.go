package room

// Broadcaster delivers named events to connections. Calls must not block on
// delivery and must not call back into the Manager.
type Broadcaster interface {
	Subscribe(roomCode, connID string)
	Unsubscribe(roomCode, connID string)
	Broadcast(roomCode string, event string, data any, except ...string)
	Send(connID string, event string, data any)
	CloseRoom(roomCode string)
}

type nopBroadcaster struct{}

func (nopBroadcaster) Subscribe(string, string)                {}
func (nopBroadcaster) Unsubscribe(string, string)              {}
func (nopBroadcaster) Broadcast(string, string, any, ...string) {}
func (nopBroadcaster) Send(string, string, any)                {}
func (nopBroadcaster) CloseRoom(string)                        {}
