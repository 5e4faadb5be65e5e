package room

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"swapchess/internal/config"
	"swapchess/internal/msgcat"
	"swapchess/internal/shared"

	"go.uber.org/zap"
)

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Store is the room registry backing a Manager.
type Store interface {
	GetRoom(code string) (*Session, bool)
	// InsertRoom adds s unless its code is taken and reports whether it did.
	InsertRoom(s *Session) bool
	DeleteRoom(code string) bool
	Rooms() []*Session
}

// CodeReserver claims room codes outside the process so several servers do
// not hand out the same code.
type CodeReserver interface {
	Reserve(ctx context.Context, code string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, code string) error
}

type membership struct {
	code string
	role Role
	seat *Seat
}

type Option func(*Manager)

func WithCodeFunc(fn func(n int) string) Option {
	return func(m *Manager) { m.genCode = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(m *Manager) { m.now = fn }
}

func WithReserver(r CodeReserver) Option {
	return func(m *Manager) { m.codes = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.log = l.Named("room") }
}

func WithCatalog(c *msgcat.Catalog) Option {
	return func(m *Manager) { m.msgs = c }
}

// Manager owns every session and the connection memberships. Lock order is
// session.mu before m.mu; m.mu is never held while calling out.
type Manager struct {
	store   Store
	cfg     config.Config
	bc      Broadcaster
	codes   CodeReserver
	msgs    *msgcat.Catalog
	log     *zap.Logger
	now     func() time.Time
	genCode func(n int) string

	mu      sync.Mutex
	members map[string]membership

	reclaimer *Reclaimer
}

func NewManager(s Store, cfg config.Config, bc Broadcaster, opts ...Option) *Manager {
	m := &Manager{
		store:   s,
		cfg:     cfg,
		log:     zap.NewNop(),
		now:     time.Now,
		genCode: randCode,
		members: make(map[string]membership),
	}
	m.SetBroadcaster(bc)
	for _, opt := range opts {
		opt(m)
	}
	if m.msgs == nil {
		m.msgs = msgcat.MustDefault()
	}
	m.reclaimer = newReclaimer(m, cfg.Lifecycle, m.log, m.now)
	return m
}

// SetBroadcaster wires the transport after construction, since the hub needs
// the manager first.
func (m *Manager) SetBroadcaster(bc Broadcaster) {
	if bc == nil {
		bc = nopBroadcaster{}
	}
	m.bc = bc
}

func (m *Manager) Reclaimer() *Reclaimer { return m.reclaimer }

func (m *Manager) sessions() []*Session { return m.store.Rooms() }

// Codes lists the codes of every live room.
func (m *Manager) Codes() []string {
	rooms := m.store.Rooms()
	out := make([]string, 0, len(rooms))
	for _, s := range rooms {
		out = append(out, s.Code)
	}
	return out
}

func (m *Manager) Get(code string) (Snapshot, error) {
	s, ok := m.store.GetRoom(normalizeCode(code))
	if !ok {
		return Snapshot{}, ErrRoomNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleted {
		return Snapshot{}, ErrRoomNotFound
	}
	return s.snapshotLocked(), nil
}

type Stats struct {
	Rooms       int `json:"rooms"`
	Connections int `json:"connections"`
}

func (m *Manager) Stats() Stats {
	m.mu.Lock()
	n := len(m.members)
	m.mu.Unlock()
	return Stats{Rooms: len(m.store.Rooms()), Connections: n}
}

// Create registers a new room with the caller seated as white.
func (m *Manager) Create(ctx context.Context, connID, name string) (Joined, error) {
	m.Disconnect(ctx, connID)

	s, err := m.register(ctx)
	if err != nil {
		return Joined{}, err
	}

	defer s.mu.Unlock()
	seat := newSeat(connID, normalizeName(name))
	role := assignRole(s, seat)
	m.bind(connID, s.Code, role, seat)
	m.bc.Subscribe(s.Code, connID)

	out := Joined{RoomID: s.Code, Color: role, SeatToken: seat.token, Game: s.snapshotLocked()}
	m.bc.Send(connID, shared.EventRoomCreated, out)
	m.log.Info("room_created", zap.String("room", s.Code), zap.String("conn", connID))
	return out, nil
}

// register inserts a fresh session under an unused code and returns it locked.
func (m *Manager) register(ctx context.Context) (*Session, error) {
	attempts := max(m.cfg.Room.CodeAttempts, 1)
	for i := 0; i < attempts; i++ {
		code := m.genCode(m.cfg.Room.CodeLength)
		if m.codes != nil {
			ok, err := m.codes.Reserve(ctx, code, m.cfg.Lifecycle.MaxAge)
			if err != nil {
				return nil, err
			}
			if !ok {
				m.log.Debug("room_code_reserved_elsewhere", zap.String("room", code))
				continue
			}
		}
		s := newSession(code, m.now())
		s.mu.Lock()
		if m.store.InsertRoom(s) {
			return s, nil
		}
		s.mu.Unlock()
		m.releaseCode(ctx, code)
		m.log.Debug("room_code_collision", zap.String("room", code))
	}
	return nil, ErrCodeSpace
}

// Join seats the caller as black if the seat is free, otherwise as a spectator.
func (m *Manager) Join(ctx context.Context, code, connID, name string) (Joined, error) {
	code = normalizeCode(code)
	if _, ok := m.store.GetRoom(code); !ok {
		return Joined{}, ErrRoomNotFound
	}
	m.Disconnect(ctx, connID)

	s, ok := m.store.GetRoom(code)
	if !ok {
		return Joined{}, ErrRoomNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleted {
		return Joined{}, ErrRoomNotFound
	}

	seat := newSeat(connID, normalizeName(name))
	role := assignRole(s, seat)
	m.bind(connID, code, role, seat)
	m.bc.Subscribe(code, connID)
	m.reclaimer.Cancel(code)

	out := Joined{RoomID: code, Color: role, Game: s.snapshotLocked()}
	if role != RoleSpectator {
		out.SeatToken = seat.token
	}
	m.bc.Send(connID, shared.EventRoomJoined, out)
	if role == RoleBlack {
		m.bc.Broadcast(code, shared.EventGameStart, out.Game)
	}
	m.log.Info("room_joined", zap.String("room", code), zap.String("conn", connID), zap.String("role", string(role)))
	return out, nil
}

// Rejoin moves a player seat to a new connection using the token issued when
// the seat was taken.
func (m *Manager) Rejoin(ctx context.Context, code, connID, token string) (Joined, error) {
	code = normalizeCode(code)
	if _, ok := m.store.GetRoom(code); !ok {
		return Joined{}, ErrRoomNotFound
	}
	m.Disconnect(ctx, connID)

	s, ok := m.store.GetRoom(code)
	if !ok {
		return Joined{}, ErrRoomNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleted {
		return Joined{}, ErrRoomNotFound
	}

	color, seat, ok := seatByToken(s, token)
	if !ok {
		return Joined{}, ErrBadSeatToken
	}
	role := Role(color)
	if old := seat.ConnID; old != connID {
		m.unbindSeat(old, seat)
		m.bc.Unsubscribe(code, old)
	}
	seat.ConnID = connID
	seat.Connected = true
	m.bind(connID, code, role, seat)
	m.bc.Subscribe(code, connID)
	m.reclaimer.Cancel(code)

	out := Joined{RoomID: code, Color: role, SeatToken: seat.token, Game: s.snapshotLocked()}
	m.bc.Send(connID, shared.EventRoomJoined, out)
	m.bc.Broadcast(code, shared.EventPlayerReconnected, PlayerStatus{Color: role, Name: seat.Name}, connID)
	m.log.Info("room_rejoined", zap.String("room", code), zap.String("conn", connID), zap.String("role", string(role)))
	return out, nil
}

// Disconnect removes the connection from whatever room it is in. Spectators
// lose their entry, players keep their seat marked as disconnected. It is a
// no-op for unknown connections.
func (m *Manager) Disconnect(ctx context.Context, connID string) {
	mem, ok := m.unbind(connID)
	if !ok {
		return
	}
	s, ok := m.store.GetRoom(mem.code)
	if !ok {
		return
	}

	s.mu.Lock()
	if s.deleted {
		s.mu.Unlock()
		return
	}
	if mem.role == RoleSpectator {
		s.removeSpectator(mem.seat)
	} else if mem.seat.ConnID == connID {
		mem.seat.Connected = false
	}
	m.bc.Unsubscribe(mem.code, connID)
	m.bc.Broadcast(mem.code, shared.EventPlayerLeft, PlayerStatus{Color: mem.role, Name: mem.seat.Name})
	s.mu.Unlock()

	m.log.Info("room_left", zap.String("room", mem.code), zap.String("conn", connID), zap.String("role", string(mem.role)))
	m.reclaimer.Schedule(mem.code)
}

// Delete removes a room and everything attached to it. Deleting a missing
// room returns false.
func (m *Manager) Delete(ctx context.Context, code string) bool {
	s, ok := m.store.GetRoom(normalizeCode(code))
	if !ok {
		return false
	}
	s.mu.Lock()
	removed := m.removeLocked(s)
	s.mu.Unlock()
	if removed {
		m.releaseCode(ctx, s.Code)
	}
	return removed
}

// reclaimIfAbandoned deletes the room when nobody is left in it. The check and
// the removal happen under the same lock so a concurrent join wins.
func (m *Manager) reclaimIfAbandoned(ctx context.Context, code string) bool {
	s, ok := m.store.GetRoom(code)
	if !ok {
		return false
	}
	s.mu.Lock()
	removed := false
	if !s.deleted && s.abandonedLocked() {
		removed = m.removeLocked(s)
	}
	s.mu.Unlock()
	if removed {
		m.log.Info("room_reclaimed", zap.String("room", code), zap.String("reason", "abandoned"))
		m.releaseCode(ctx, code)
	}
	return removed
}

func (m *Manager) removeLocked(s *Session) bool {
	if s.deleted {
		return false
	}
	s.deleted = true
	m.store.DeleteRoom(s.Code)

	m.mu.Lock()
	for conn, mem := range m.members {
		if mem.code == s.Code {
			delete(m.members, conn)
		}
	}
	m.mu.Unlock()

	m.bc.CloseRoom(s.Code)
	m.reclaimer.Cancel(s.Code)
	m.log.Info("room_deleted", zap.String("room", s.Code))
	return true
}

func (m *Manager) releaseCode(ctx context.Context, code string) {
	if m.codes == nil {
		return
	}
	if err := m.codes.Release(ctx, code); err != nil {
		m.log.Warn("room_code_release_failed", zap.String("room", code), zap.Error(err))
	}
}

func (m *Manager) bind(connID, code string, role Role, seat *Seat) {
	m.mu.Lock()
	m.members[connID] = membership{code: code, role: role, seat: seat}
	m.mu.Unlock()
}

func (m *Manager) unbind(connID string) (membership, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.members[connID]
	if ok {
		delete(m.members, connID)
	}
	return mem, ok
}

// unbindSeat drops connID only if it still points at seat.
func (m *Manager) unbindSeat(connID string, seat *Seat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mem, ok := m.members[connID]; ok && mem.seat == seat {
		delete(m.members, connID)
	}
}

func (m *Manager) membership(connID string) (membership, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.members[connID]
	return mem, ok
}

// Membership reports the room and role bound to a connection.
func (m *Manager) Membership(connID string) (code string, role Role, ok bool) {
	mem, ok := m.membership(connID)
	return mem.code, mem.role, ok
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Player"
	}
	return name
}

func randCode(n int) string {
	if n <= 0 {
		n = 6
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return string(b)
}
