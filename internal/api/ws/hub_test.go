package ws

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"swapchess/internal/config"
	"swapchess/internal/room"
	"swapchess/internal/shared"
	"swapchess/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, customize func(*config.Config)) (*httptest.Server, *Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	if customize != nil {
		customize(&cfg)
	}
	mgr := room.NewManager(store.NewMemoryStore(), cfg, nil)
	hub := NewHub(mgr, cfg, nil, nil)
	mgr.SetBroadcaster(hub)

	r := gin.New()
	r.GET("/ws", hub.HandleWS)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = hub.Shutdown(ctx)
		srv.Close()
	})
	return srv, hub
}

func dial(t *testing.T, srv *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func emit(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"event": event, "data": data}); err != nil {
		t.Fatalf("write %s: %v", event, err)
	}
}

// expect reads frames until one named event arrives.
func expect(t *testing.T, conn *websocket.Conn, event string) frame {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		_ = conn.SetReadDeadline(deadline)
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("waiting for %s: %v", event, err)
		}
		if f.Event == event {
			return f
		}
	}
}

func expectNoMessage(t *testing.T, conn *websocket.Conn, timeout time.Duration) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	_, msg, err := conn.ReadMessage()
	if err == nil {
		t.Fatalf("expected no message, got %s", msg)
	}
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return
	}
	t.Fatalf("unexpected error: %v", err)
}

func errorText(t *testing.T, f frame) string {
	t.Helper()
	var s string
	if err := json.Unmarshal(f.Data, &s); err != nil {
		t.Fatalf("error payload: %v", err)
	}
	return s
}

func TestRoomFlowOverWebsocket(t *testing.T) {
	srv, hub := newTestServer(t, nil)
	alice := dial(t, srv, nil)
	bob := dial(t, srv, nil)
	eve := dial(t, srv, nil)

	emit(t, alice, shared.EventCreateRoom, "Alice")
	var created room.Joined
	if err := json.Unmarshal(expect(t, alice, shared.EventRoomCreated).Data, &created); err != nil {
		t.Fatalf("room-created: %v", err)
	}
	if created.Color != room.RoleWhite || created.SeatToken == "" {
		t.Fatalf("created = %+v", created)
	}

	emit(t, bob, shared.EventJoinRoom, map[string]string{"roomId": strings.ToLower(created.RoomID), "playerName": "Bob"})
	var joined room.Joined
	if err := json.Unmarshal(expect(t, bob, shared.EventRoomJoined).Data, &joined); err != nil {
		t.Fatalf("room-joined: %v", err)
	}
	if joined.Color != room.RoleBlack {
		t.Fatalf("bob color = %s", joined.Color)
	}
	expect(t, bob, shared.EventGameStart)
	expect(t, alice, shared.EventGameStart)

	emit(t, eve, shared.EventJoinRoom, map[string]string{"roomId": created.RoomID, "playerName": "Eve"})
	var spec room.Joined
	_ = json.Unmarshal(expect(t, eve, shared.EventRoomJoined).Data, &spec)
	if spec.Color != room.RoleSpectator {
		t.Fatalf("eve color = %s", spec.Color)
	}

	emit(t, bob, shared.EventMakeMove, map[string]string{"from": "e7", "to": "e5"})
	if got := errorText(t, expect(t, bob, shared.EventError)); got != "Not your turn" {
		t.Fatalf("error = %q", got)
	}

	emit(t, alice, shared.EventMakeMove, map[string]any{"from": map[string]int{"row": 6, "col": 4}, "to": "e4"})
	for _, conn := range []*websocket.Conn{alice, bob, eve} {
		var mm struct {
			MoveData struct {
				Notation string `json:"notation"`
			} `json:"moveData"`
			Game struct {
				Board [8][8]*string `json:"board"`
				Turn  string        `json:"turn"`
			} `json:"game"`
		}
		if err := json.Unmarshal(expect(t, conn, shared.EventMoveMade).Data, &mm); err != nil {
			t.Fatalf("move-made: %v", err)
		}
		if mm.MoveData.Notation != "e2e4" || mm.Game.Turn != "black" {
			t.Fatalf("move-made = %+v", mm)
		}
		if mm.Game.Board[4][4] == nil || *mm.Game.Board[4][4] != "P" || mm.Game.Board[6][4] != nil {
			t.Fatalf("board cells not updated")
		}
	}

	emit(t, eve, shared.EventChatMessage, map[string]string{"message": "nice"})
	var chat room.ChatPayload
	_ = json.Unmarshal(expect(t, alice, shared.EventChatMessage).Data, &chat)
	if chat.PlayerName != "Eve" || chat.Message != "nice" || chat.Color != room.RoleSpectator {
		t.Fatalf("chat = %+v", chat)
	}

	_ = bob.Close()
	var left room.PlayerStatus
	_ = json.Unmarshal(expect(t, alice, shared.EventPlayerLeft).Data, &left)
	if left.Color != room.RoleBlack {
		t.Fatalf("player-disconnected = %+v", left)
	}

	if hub.ClientCount() != 2 {
		t.Fatalf("clients = %d", hub.ClientCount())
	}
}

func TestErrorsGoToRequesterOnly(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	alice := dial(t, srv, nil)
	bob := dial(t, srv, nil)

	emit(t, alice, shared.EventCreateRoom, map[string]string{"playerName": "Alice"})
	expect(t, alice, shared.EventRoomCreated)

	emit(t, bob, shared.EventJoinRoom, map[string]string{"roomId": "ZZZZZZ", "playerName": "Bob"})
	if got := errorText(t, expect(t, bob, shared.EventError)); got != "Room not found" {
		t.Fatalf("error = %q", got)
	}

	if err := bob.WriteMessage(websocket.TextMessage, []byte(`{"event":"teleport"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := errorText(t, expect(t, bob, shared.EventError)); got != "Malformed message" {
		t.Fatalf("error = %q", got)
	}

	emit(t, bob, shared.EventRejoinRoom, map[string]string{"roomId": "ZZZZZZ", "seatToken": "x"})
	expect(t, bob, shared.EventError)

	expectNoMessage(t, alice, 100*time.Millisecond)
}

func TestInvalidActionIsSilent(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	alice := dial(t, srv, nil)
	emit(t, alice, shared.EventCreateRoom, "Alice")
	expect(t, alice, shared.EventRoomCreated)

	next := func() frame {
		t.Helper()
		_ = alice.SetReadDeadline(time.Now().Add(2 * time.Second))
		var f frame
		if err := alice.ReadJSON(&f); err != nil {
			t.Fatalf("read: %v", err)
		}
		return f
	}

	emit(t, alice, shared.EventMakeMove, map[string]string{"from": "e4", "to": "e5"})
	emit(t, alice, shared.EventAcceptRematch, nil)
	emit(t, alice, shared.EventMakeMove, map[string]string{"to": "a6"})
	if f := next(); f.Event != shared.EventError || errorText(t, f) != "Malformed message" {
		t.Fatalf("move without from produced %q", f.Event)
	}

	emit(t, alice, shared.EventChatMessage, "still here")
	if f := next(); f.Event != shared.EventChatMessage {
		t.Fatalf("rejected action produced %q", f.Event)
	}

	emit(t, alice, shared.EventMakeMove, map[string]string{"from": "e2", "to": "e4"})
	var mm struct {
		MoveData struct {
			Notation string `json:"notation"`
		} `json:"moveData"`
		Game struct {
			History []json.RawMessage `json:"history"`
		} `json:"game"`
	}
	_ = json.Unmarshal(expect(t, alice, shared.EventMoveMade).Data, &mm)
	if mm.MoveData.Notation != "e2e4" || len(mm.Game.History) != 1 {
		t.Fatalf("board changed by rejected actions: %+v", mm)
	}
}

func TestRejoinOverWebsocket(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	alice := dial(t, srv, nil)
	bob := dial(t, srv, nil)

	emit(t, alice, shared.EventCreateRoom, "Alice")
	var created room.Joined
	_ = json.Unmarshal(expect(t, alice, shared.EventRoomCreated).Data, &created)
	emit(t, bob, shared.EventJoinRoom, map[string]string{"roomId": created.RoomID, "playerName": "Bob"})
	expect(t, alice, shared.EventGameStart)

	_ = alice.Close()
	expect(t, bob, shared.EventPlayerLeft)

	again := dial(t, srv, nil)
	emit(t, again, shared.EventRejoinRoom, map[string]string{"roomId": created.RoomID, "seatToken": created.SeatToken})
	var back room.Joined
	_ = json.Unmarshal(expect(t, again, shared.EventRoomJoined).Data, &back)
	if back.Color != room.RoleWhite || back.Game.Players["white"].Name != "Alice" {
		t.Fatalf("rejoined = %+v", back)
	}
	expect(t, bob, shared.EventPlayerReconnected)

	emit(t, again, shared.EventMakeMove, map[string]string{"from": "e2", "to": "e4"})
	expect(t, bob, shared.EventMoveMade)
}

func TestOriginAllowList(t *testing.T) {
	srv, _ := newTestServer(t, func(c *config.Config) {
		c.AllowedOrigins = []string{"https://play.example.com"}
	})
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	bad := http.Header{}
	bad.Set("Origin", "https://evil.example.com")
	if _, resp, err := websocket.DefaultDialer.Dial(url, bad); err == nil {
		t.Fatalf("expected rejection")
	} else if resp != nil && resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	good := http.Header{}
	good.Set("Origin", "HTTPS://Play.Example.com")
	dial(t, srv, good)
}

func TestShutdownClosesConnections(t *testing.T) {
	srv, hub := newTestServer(t, nil)
	conn := dial(t, srv, nil)
	emit(t, conn, shared.EventCreateRoom, "Alice")
	expect(t, conn, shared.EventRoomCreated)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := hub.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected normal close, got %v", err)
	}
	if hub.ClientCount() != 0 {
		t.Fatalf("clients = %d", hub.ClientCount())
	}
}

func TestShutdownRefusesLateClients(t *testing.T) {
	srv, hub := newTestServer(t, nil)
	conns := make([]*websocket.Conn, 0, 4)
	for range 4 {
		conns = append(conns, dial(t, srv, nil))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := hub.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if hub.ClientCount() != 0 {
		t.Fatalf("clients after shutdown = %d", hub.ClientCount())
	}

	late := dial(t, srv, nil)
	_ = late.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := late.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Fatalf("expected going-away close, got %v", err)
	}
	if hub.ClientCount() != 0 {
		t.Fatalf("late client registered")
	}
	for _, c := range conns {
		_ = c.SetReadDeadline(time.Now().Add(time.Second))
		if _, _, err := c.ReadMessage(); err == nil {
			t.Fatalf("connection still open after shutdown")
		}
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(2, time.Second)
	now := rl.lastCheck
	if !rl.allowAt(now) || !rl.allowAt(now) {
		t.Fatalf("burst should pass")
	}
	if rl.allowAt(now) {
		t.Fatalf("third message should be limited")
	}
	if !rl.allowAt(now.Add(600 * time.Millisecond)) {
		t.Fatalf("token should refill")
	}
}

func TestOriginPolicy(t *testing.T) {
	p := newOriginPolicy([]string{" https://a.example.com ", "not a url"})
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	if p.check(req) {
		t.Fatalf("missing origin should be rejected")
	}
	req.Header.Set("Origin", "https://A.example.com")
	if !p.check(req) {
		t.Fatalf("origin should match case-insensitively")
	}
	if !newOriginPolicy([]string{"*"}).check(httptest.NewRequest(http.MethodGet, "/ws", nil)) {
		t.Fatalf("wildcard should allow everything")
	}
}
