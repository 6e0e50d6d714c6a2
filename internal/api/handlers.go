package api

import (
	"bytes"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"time"

	"boomshine/internal/input"
)

// maxBodyBytes bounds action request bodies
const maxBodyBytes = 1 << 10

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.Snapshot())
}

func (h *routerHandlers) handleGetLevels(w http.ResponseWriter, r *http.Request) {
	levels := h.engine.Levels()
	writeJSON(w, map[string]interface{}{
		"levels":     levels,
		"finalLevel": len(levels),
	})
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	events := h.engine.EventLogStats()
	UpdateEventLogStats(events)

	stats := map[string]interface{}{
		"ticks":     h.engine.TickCount(),
		"input":     h.queue.Stats(),
		"rateLimit": h.rateLimiter.Stats(),
		"events":    events,
		"wsClients": 0,
	}
	if h.hub != nil {
		stats["wsClients"] = h.hub.ClientCount()
	}
	writeJSON(w, stats)
}

func (h *routerHandlers) handleGetFrame(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		writeError(w, "Frame rendering disabled", http.StatusServiceUnavailable)
		return
	}

	start := time.Now()
	var buf bytes.Buffer
	if err := h.renderer.EncodePNG(&buf, h.engine.Snapshot()); err != nil {
		log.Printf("❌ Frame render failed: %v", err)
		writeError(w, "Render failed", http.StatusInternalServerError)
		return
	}
	RecordRender(time.Since(start))

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// actionRequest is the body of /api/click and /api/action, and the shape of
// inbound WebSocket messages.
type actionRequest struct {
	Type string   `json:"type"`
	X    *float64 `json:"x"`
	Y    *float64 `json:"y"`
}

// toAction validates a request. Clicks need finite coordinates.
func (req actionRequest) toAction(kind input.Kind, source string) (input.Action, string) {
	a := input.Action{Kind: kind, Source: source}
	if kind != input.KindClick {
		return a, ""
	}
	if req.X == nil || req.Y == nil {
		return a, "x and y are required"
	}
	if math.IsNaN(*req.X) || math.IsInf(*req.X, 0) || math.IsNaN(*req.Y) || math.IsInf(*req.Y, 0) {
		return a, "x and y must be finite"
	}
	a.X, a.Y = *req.X, *req.Y
	return a, ""
}

func (h *routerHandlers) handleClick(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	a, msg := req.toAction(input.KindClick, GetClientIP(r))
	if msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}
	h.enqueue(w, a)
}

func (h *routerHandlers) handleAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	kind, err := input.ParseKind(req.Type)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	a, msg := req.toAction(kind, GetClientIP(r))
	if msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}
	h.enqueue(w, a)
}

func (h *routerHandlers) handleSimpleAction(kind input.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.enqueue(w, input.Action{Kind: kind, Source: GetClientIP(r)})
	}
}

func (h *routerHandlers) enqueue(w http.ResponseWriter, a input.Action) {
	if !h.queue.Enqueue(a) {
		RecordInputDropped(a)
		w.Header().Set("Retry-After", "1")
		writeError(w, "Input queue full", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"queued": true,
		"action": a.Kind.String(),
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
