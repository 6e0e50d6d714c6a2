package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"boomshine/internal/game"
	"boomshine/internal/input"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	wsWriteWait      = 2 * time.Second
	wsReadLimit      = 512
	wsSendBufferSize = 16
)

// Codec is the encoding a WebSocket client receives snapshots in
type Codec uint8

const (
	CodecJSON Codec = iota
	CodecMsgpack
)

// ParseCodec reads the ?codec= query value. Unknown values use JSON.
func ParseCodec(s string) Codec {
	if s == "msgpack" {
		return CodecMsgpack
	}
	return CodecJSON
}

// HubConfig bounds WebSocket usage
type HubConfig struct {
	MaxConnectionsTotal int
	MaxConnectionsPerIP int
	BroadcastInterval   time.Duration
	AllowedOrigins      []string // extra browser origins beyond localhost
}

// DefaultHubConfig returns the default WebSocket limits
func DefaultHubConfig() HubConfig {
	return HubConfig{
		MaxConnectionsTotal: 500,
		MaxConnectionsPerIP: 10,
		BroadcastInterval:   100 * time.Millisecond,
	}
}

// message is the envelope for every outbound frame
type message struct {
	Event string      `json:"event" msgpack:"event"`
	Data  interface{} `json:"data" msgpack:"data"`
}

type wsClient struct {
	conn  *websocket.Conn
	ip    string
	codec Codec
	send  chan []byte
}

// WebSocketHub pushes snapshots to connected clients and turns their
// messages into queued actions.
//
// Each client has its own writer goroutine and a small send buffer; a client
// that cannot keep up misses frames instead of slowing the others.
type WebSocketHub struct {
	mu      sync.RWMutex
	clients map[*wsClient]struct{}

	queue     ActionQueue
	config    HubConfig
	wsLimiter *WebSocketRateLimiter
	upgrader  websocket.Upgrader

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewWebSocketHub creates a hub that forwards client actions to queue.
func NewWebSocketHub(queue ActionQueue, cfg HubConfig) *WebSocketHub {
	def := DefaultHubConfig()
	if cfg.MaxConnectionsTotal <= 0 {
		cfg.MaxConnectionsTotal = def.MaxConnectionsTotal
	}
	if cfg.MaxConnectionsPerIP <= 0 {
		cfg.MaxConnectionsPerIP = def.MaxConnectionsPerIP
	}
	if cfg.BroadcastInterval <= 0 {
		cfg.BroadcastInterval = def.BroadcastInterval
	}

	h := &WebSocketHub{
		clients:   make(map[*wsClient]struct{}),
		queue:     queue,
		config:    cfg,
		wsLimiter: NewWebSocketRateLimiter(cfg.MaxConnectionsPerIP),
		stopChan:  make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if IsAllowedOrigin(origin, cfg.AllowedOrigins) {
				return true
			}
			log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
			RecordConnectionRejected("origin")
			return false
		},
	}
	return h
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast encodes snap once per codec in use and queues it for every client.
func (h *WebSocketHub) Broadcast(snap game.GameSnapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.clients) == 0 {
		return
	}

	encoded := make(map[Codec][]byte, 2)
	for c := range h.clients {
		payload, ok := encoded[c.codec]
		if !ok {
			var err error
			payload, err = encodeMessage(c.codec, message{Event: "game:state", Data: snap})
			if err != nil {
				log.Printf("⚠️ Snapshot encode failed: %v", err)
				return
			}
			encoded[c.codec] = payload
		}

		select {
		case c.send <- payload:
		default:
			// Slow client, skip this frame
		}
	}
	IncrementWSMessages()
}

func encodeMessage(codec Codec, m message) ([]byte, error) {
	if codec == CodecMsgpack {
		return msgpack.Marshal(m)
	}
	return json.Marshal(m)
}

// SnapshotSource provides frames for the broadcast loop
type SnapshotSource interface {
	Snapshot() game.GameSnapshot
}

// StartBroadcastLoop pushes a snapshot to all clients every BroadcastInterval
// until Stop. Unchanged frames (same sequence) are not resent.
func (h *WebSocketHub) StartBroadcastLoop(source SnapshotSource) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		ticker := time.NewTicker(h.config.BroadcastInterval)
		defer ticker.Stop()

		var lastSeq uint64
		for {
			select {
			case <-h.stopChan:
				return
			case <-ticker.C:
				if h.ClientCount() == 0 {
					continue
				}
				snap := source.Snapshot()
				if snap.Sequence == lastSeq && lastSeq != 0 {
					continue
				}
				lastSeq = snap.Sequence
				h.Broadcast(snap)
			}
		}
	}()
}

// Stop ends the broadcast loop and closes every client.
func (h *WebSocketHub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopChan)
	})
	h.wg.Wait()

	h.mu.Lock()
	for c := range h.clients {
		c.conn.Close()
	}
	h.mu.Unlock()
}

// HandleWebSocket upgrades the request and serves one client.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if h.ClientCount() >= h.config.MaxConnectionsTotal {
		log.Printf("⚠️ WebSocket connection rejected: total limit reached (%d)", h.config.MaxConnectionsTotal)
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	if !h.wsLimiter.Allow(ip) {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.wsLimiter.Release(ip)
		return
	}

	c := &wsClient{
		conn:  conn,
		ip:    ip,
		codec: ParseCodec(r.URL.Query().Get("codec")),
		send:  make(chan []byte, wsSendBufferSize),
	}
	h.register(c)

	go h.writeLoop(c)
	go h.readLoop(c)
}

func (h *WebSocketHub) register(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("📱 Client connected from %s (%d total)", c.ip, count)
	UpdateWSConnections(count)
}

func (h *WebSocketHub) unregister(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	count := len(h.clients)
	h.mu.Unlock()

	h.wsLimiter.Release(c.ip)
	c.conn.Close()

	log.Printf("📱 Client disconnected (%d remaining)", count)
	UpdateWSConnections(count)
}

func (h *WebSocketHub) writeLoop(c *wsClient) {
	msgType := websocket.TextMessage
	if c.codec == CodecMsgpack {
		msgType = websocket.BinaryMessage
	}

	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := c.conn.WriteMessage(msgType, payload); err != nil {
			h.unregister(c)
			return
		}
	}
}

// readLoop forwards client messages as actions until the connection drops.
func (h *WebSocketHub) readLoop(c *wsClient) {
	defer h.unregister(c)

	c.conn.SetReadLimit(wsReadLimit)
	source := "ws:" + c.ip

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var req actionRequest
		if err := json.Unmarshal(data, &req); err != nil {
			continue
		}
		kind, err := input.ParseKind(req.Type)
		if err != nil {
			continue
		}
		a, msg := req.toAction(kind, source)
		if msg != "" {
			continue
		}

		if !h.queue.Enqueue(a) {
			RecordInputDropped(a)
		}
	}
}
