package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kanban_board/internal/domain"
	"kanban_board/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type fakeDrops struct {
	got chan domain.DropEvent
}

func (f *fakeDrops) HandleDrop(_ context.Context, ev domain.DropEvent) (service.DropResult, error) {
	f.got <- ev
	return service.DropResult{Applied: true, Writes: 2}, nil
}

func startServer(t *testing.T, hub *Hub) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", HandleWS(hub, false, ""))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		t.Fatalf("decode %s: %v", msg, err)
	}
	return env
}

func waitClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, hub.Clients())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestNewClientReceivesLatestSnapshot(t *testing.T) {
	hub := NewHub(nil)
	hub.BroadcastBoard(domain.Board{Columns: []domain.Column{{ID: "c1", Title: "Backlog"}}})

	conn := dial(t, startServer(t, hub))
	env := readEnvelope(t, conn)
	if env.Type != MsgSnapshot {
		t.Fatalf("expected snapshot, got %s", env.Type)
	}
	var board domain.Board
	if err := json.Unmarshal(env.Data, &board); err != nil {
		t.Fatalf("decode board: %v", err)
	}
	if len(board.Columns) != 1 || board.Columns[0].Title != "Backlog" {
		t.Fatalf("board %+v", board)
	}
}

func TestBroadcastReachesConnectedClients(t *testing.T) {
	hub := NewHub(nil)
	url := startServer(t, hub)
	a, b := dial(t, url), dial(t, url)
	waitClients(t, hub, 2)

	hub.BroadcastBoard(domain.Board{Columns: []domain.Column{{ID: "c1"}, {ID: "c2", Order: 1}}})

	for _, conn := range []*websocket.Conn{a, b} {
		if env := readEnvelope(t, conn); env.Type != MsgSnapshot {
			t.Fatalf("expected snapshot, got %s", env.Type)
		}
	}
}

func TestDropMessageIsForwarded(t *testing.T) {
	drops := &fakeDrops{got: make(chan domain.DropEvent, 1)}
	hub := NewHub(drops)
	conn := dial(t, startServer(t, hub))
	waitClients(t, hub, 1)

	dest := domain.BoardTrackID
	msg, _ := encode(MsgDrop, domain.DropEvent{
		SourceContainerID:      domain.BoardTrackID,
		SourceIndex:            1,
		DestinationContainerID: &dest,
		DraggedItemID:          "c2",
		ItemType:               domain.ItemColumn,
	})
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case ev := <-drops.got:
		if ev.DraggedItemID != "c2" || ev.SourceIndex != 1 || !ev.HasDestination() {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("drop not forwarded")
	}

	env := readEnvelope(t, conn)
	if env.Type != MsgDropResult {
		t.Fatalf("expected drop_result, got %s", env.Type)
	}
	var res service.DropResult
	if err := json.Unmarshal(env.Data, &res); err != nil || !res.Applied || res.Writes != 2 {
		t.Fatalf("result %+v err %v", res, err)
	}
}

func TestUnknownMessageGetsError(t *testing.T) {
	hub := NewHub(nil)
	conn := dial(t, startServer(t, hub))
	waitClients(t, hub, 1)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"shout"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if env := readEnvelope(t, conn); env.Type != MsgError {
		t.Fatalf("expected error, got %s", env.Type)
	}
}

func TestDisconnectUnregisters(t *testing.T) {
	hub := NewHub(nil)
	conn := dial(t, startServer(t, hub))
	waitClients(t, hub, 1)

	conn.Close()
	waitClients(t, hub, 0)
}

type denyAll struct {
	users chan string
}

func (d *denyAll) Allow(_ context.Context, user string) (bool, error) {
	d.users <- user
	return false, nil
}

func TestDropOverRateLimitIsRejected(t *testing.T) {
	drops := &fakeDrops{got: make(chan domain.DropEvent, 1)}
	limiter := &denyAll{users: make(chan string, 1)}
	hub := NewHub(drops)
	hub.LimitDrops(limiter)
	conn := dial(t, startServer(t, hub))
	waitClients(t, hub, 1)

	dest := "c2"
	msg, _ := encode(MsgDrop, domain.DropEvent{
		SourceContainerID:      "c1",
		DestinationContainerID: &dest,
		DraggedItemID:          "t1",
		ItemType:               domain.ItemTask,
	})
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		t.Fatalf("write: %v", err)
	}

	env := readEnvelope(t, conn)
	if env.Type != MsgError {
		t.Fatalf("expected error, got %s", env.Type)
	}
	var payload ErrorPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if !strings.Contains(payload.Message, "rate limit") {
		t.Fatalf("unexpected error %+v", payload)
	}
	if user := <-limiter.users; user != "anonymous" {
		t.Fatalf("limited as %q, want anonymous", user)
	}
	select {
	case ev := <-drops.got:
		t.Fatalf("limited drop reached the engine: %+v", ev)
	default:
	}
}
