package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"boomshine/internal/input"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

func newHubServer(t *testing.T, q *mockQueue, cfg HubConfig) (*WebSocketHub, *httptest.Server) {
	t.Helper()
	hub := NewWebSocketHub(q, cfg)
	ts := testRouter(RouterConfig{Queue: q, Hub: hub})
	t.Cleanup(func() {
		hub.Stop()
		ts.Close()
	})
	return hub, ts
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitClients(t *testing.T, hub *WebSocketHub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", hub.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocketForwardsActions(t *testing.T) {
	q := newMockQueue()
	_, ts := newHubServer(t, q, DefaultHubConfig())
	conn := dial(t, ts, "")

	messages := []string{
		`not json`,
		`{"type": "explode"}`,
		`{"type": "click"}`,
		`{"type": "click", "x": 10, "y": 20}`,
	}
	for _, m := range messages {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	select {
	case a := <-q.got:
		if a.Kind != input.KindClick || a.X != 10 || a.Y != 20 {
			t.Errorf("action = %+v", a)
		}
		if !strings.HasPrefix(a.Source, "ws:") {
			t.Errorf("source = %q, want ws: prefix", a.Source)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no action forwarded")
	}

	if n := q.Stats().Enqueued; n != 1 {
		t.Errorf("enqueued %d actions, want only the valid click", n)
	}
}

func TestWebSocketBroadcastJSON(t *testing.T) {
	q := newMockQueue()
	hub, ts := newHubServer(t, q, DefaultHubConfig())
	conn := dial(t, ts, "")
	waitClients(t, hub, 1)

	hub.Broadcast(newMockEngine().Snapshot())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msgType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if msgType != websocket.TextMessage {
		t.Errorf("message type = %d, want text", msgType)
	}

	var msg struct {
		Event string                 `json:"event"`
		Data  map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Event != "game:state" || msg.Data["state"] != "default" {
		t.Errorf("message = %+v", msg)
	}
}

func TestWebSocketBroadcastMsgpack(t *testing.T) {
	q := newMockQueue()
	hub, ts := newHubServer(t, q, DefaultHubConfig())
	conn := dial(t, ts, "?codec=msgpack")
	waitClients(t, hub, 1)

	hub.Broadcast(newMockEngine().Snapshot())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msgType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if msgType != websocket.BinaryMessage {
		t.Errorf("message type = %d, want binary", msgType)
	}

	var msg struct {
		Event string `msgpack:"event"`
		Data  struct {
			Level      int    `msgpack:"level"`
			StateName  string `msgpack:"state"`
			TotalScore int    `msgpack:"totalScore"`
		} `msgpack:"data"`
	}
	if err := msgpack.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Event != "game:state" || msg.Data.Level != 2 || msg.Data.StateName != "default" || msg.Data.TotalScore != 4 {
		t.Errorf("message = %+v", msg)
	}
}

func TestWebSocketBroadcastLoop(t *testing.T) {
	q := newMockQueue()
	hub, ts := newHubServer(t, q, HubConfig{BroadcastInterval: 10 * time.Millisecond})
	conn := dial(t, ts, "")
	waitClients(t, hub, 1)

	hub.StartBroadcastLoop(newMockEngine())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("no snapshot from the broadcast loop: %v", err)
	}
}

func TestWebSocketPerIPLimit(t *testing.T) {
	q := newMockQueue()
	hub, ts := newHubServer(t, q, HubConfig{MaxConnectionsPerIP: 1})
	dial(t, ts, "")
	waitClients(t, hub, 1)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("second connection from the same IP should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("response = %v, want 429", resp)
	}
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	q := newMockQueue()
	_, ts := newHubServer(t, q, DefaultHubConfig())

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	if _, _, err := websocket.DefaultDialer.Dial(url, header); err == nil {
		t.Fatal("foreign origin should be rejected")
	}
}

func TestWebSocketDisconnectReleasesSlot(t *testing.T) {
	q := newMockQueue()
	hub, ts := newHubServer(t, q, HubConfig{MaxConnectionsPerIP: 1})

	conn := dial(t, ts, "")
	waitClients(t, hub, 1)
	conn.Close()
	waitClients(t, hub, 0)

	dial(t, ts, "")
	waitClients(t, hub, 1)
}
