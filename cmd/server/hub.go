package main

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"fuelmarket/internal/domain"
	"fuelmarket/internal/observability"
	"fuelmarket/internal/snapshot"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Snapshots are read-only data; allow any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Subscription is one connected websocket client and the snapshot
// parameters it wants pushed.
type Subscription struct {
	Base    string
	UserID  string
	Ref     time.Time
	Filters snapshot.Filters

	conn *websocket.Conn
	mu   sync.Mutex // serializes writes to conn
}

// Hub tracks websocket subscriptions by base.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	logger *log.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		logger: logger,
	}
}

// Run blocks until the context is done, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		sub.conn.Close()
		delete(h.subs, sub)
		observability.RemoveWSClient()
	}
}

// Subscriptions returns the current subscriptions for a base.
func (h *Hub) Subscriptions(base string) []*Subscription {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []*Subscription
	for sub := range h.subs {
		if sub.Base == base {
			out = append(out, sub)
		}
	}
	return out
}

// Send pushes a JSON payload to one subscriber, dropping it from the
// hub if the write fails.
func (h *Hub) Send(sub *Subscription, payload any) {
	sub.mu.Lock()
	sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := sub.conn.WriteJSON(payload)
	sub.mu.Unlock()

	if err != nil {
		h.logger.Printf("write to client failed, dropping: %v", err)
		h.remove(sub)
	}
}

func (h *Hub) add(sub *Subscription) {
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	observability.AddWSClient()
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	_, present := h.subs[sub]
	delete(h.subs, sub)
	h.mu.Unlock()

	if present {
		sub.conn.Close()
		observability.RemoveWSClient()
	}
}

// handleWS serves GET /ws. Query parameters mirror /api/v1/snapshot;
// the client receives an initial snapshot on connect and a fresh one
// whenever a quote lands on its base.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	base := r.URL.Query().Get("base")
	if base == "" {
		s.writeError(w, "ws", http.StatusBadRequest, "base is required")
		return
	}

	ref := time.Now()
	if refStr := r.URL.Query().Get("ref"); refStr != "" {
		parsed, err := domain.ParseDay(refStr)
		if err != nil {
			s.writeError(w, "ws", http.StatusBadRequest, "ref must be YYYY-MM-DD")
			return
		}
		ref = parsed
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("websocket upgrade: %v", err)
		return
	}

	sub := &Subscription{
		Base:   base,
		UserID: r.URL.Query().Get("user_id"),
		Ref:    ref,
		Filters: snapshot.Filters{
			ActiveDistributors: splitParam(r.URL.Query(), "distributors"),
			TrackedBrands:      splitParam(r.URL.Query(), "brands"),
		},
		conn: conn,
	}
	s.hub.add(sub)

	// Initial snapshot so the client renders immediately.
	if state, err := s.service.Snapshot(r.Context(), sub.UserID, sub.Base, sub.Ref, sub.Filters); err == nil {
		s.hub.Send(sub, snapshotResponse(state))
	} else {
		s.logger.Printf("initial snapshot for %s: %v", base, err)
	}

	go s.readLoop(sub)
	go s.pingLoop(sub)
}

// readLoop drains client frames so pong handlers run, removing the
// subscription on any read error.
func (s *Server) readLoop(sub *Subscription) {
	defer s.hub.remove(sub)

	sub.conn.SetReadLimit(512)
	sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		sub.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// pingLoop keeps the connection alive.
func (s *Server) pingLoop(sub *Subscription) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		sub.mu.Lock()
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := sub.conn.WriteMessage(websocket.PingMessage, nil)
		sub.mu.Unlock()
		if err != nil {
			s.hub.remove(sub)
			return
		}
	}
}
