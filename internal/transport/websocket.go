// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	applog "vortex/internal/log"
	"vortex/internal/visual"
)

// WebSocketSink broadcasts frames as JSON to every connected client,
// with rate limiting so a fast pipeline cannot flood slow clients.
//
// Thread safety:
// - Mutex-guarded client map
// - JSON marshaling happens synchronously in Emit, so the pipeline's
//   reused frame buffer is never read after Emit returns
type WebSocketSink struct {
	clients         map[*websocket.Conn]bool
	clientsMutex    sync.Mutex
	upgrader        websocket.Upgrader
	server          *http.Server
	lastSend        time.Time
	minSendInterval time.Duration
}

// NewWebSocketSink creates the sink and starts an HTTP server on the
// given port serving websocket upgrades at /frames. minSendInterval of 0
// disables rate limiting.
func NewWebSocketSink(port string, minSendInterval time.Duration) *WebSocketSink {
	s := &WebSocketSink{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // local visualization feed, any origin may read
			},
		},
		minSendInterval: minSendInterval,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/frames", s.handleWebSocket)
	s.server = &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		applog.Infof("websocket: frame server listening on port %s", port)
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			applog.Errorf("websocket: server error: %v", err)
		}
	}()

	return s
}

// handleWebSocket upgrades the connection, registers the client and
// watches for its close.
func (s *WebSocketSink) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Errorf("websocket: upgrade error: %v", err)
		return
	}

	s.clientsMutex.Lock()
	s.clients[conn] = true
	total := len(s.clients)
	s.clientsMutex.Unlock()
	applog.Infof("websocket: client connected, total: %d", total)

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.clientsMutex.Lock()
				delete(s.clients, conn)
				total := len(s.clients)
				s.clientsMutex.Unlock()
				conn.Close()
				applog.Infof("websocket: client disconnected, total: %d", total)
				return
			}
		}
	}()
}

// Emit broadcasts the frame to all connected clients. Frames arriving
// inside the rate-limit interval are dropped, not queued.
func (s *WebSocketSink) Emit(frame *visual.Frame) error {
	now := time.Now()
	if now.Sub(s.lastSend) < s.minSendInterval {
		return nil
	}
	s.lastSend = now

	jsonData, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	s.clientsMutex.Lock()
	for client := range s.clients {
		if err := client.WriteMessage(websocket.TextMessage, jsonData); err != nil {
			client.Close()
			delete(s.clients, client)
		}
	}
	s.clientsMutex.Unlock()

	return nil
}

// Close drops all clients and shuts the HTTP server down. Idempotent.
func (s *WebSocketSink) Close() error {
	s.clientsMutex.Lock()
	for client := range s.clients {
		client.Close()
		delete(s.clients, client)
	}
	s.clientsMutex.Unlock()

	return s.server.Close()
}

var _ FrameSink = (*WebSocketSink)(nil)
