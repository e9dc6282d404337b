// SPDX-License-Identifier: MIT
package sink

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	applog "lightwave/internal/log"
)

// wsFrame is the JSON payload broadcast to WebSocket clients.
type wsFrame struct {
	Type   string   `json:"type"`
	Colors []uint32 `json:"colors"`
}

// WebSocket broadcasts color frames as JSON to all connected clients.
// Emit hands the frame to a buffered channel and never blocks the update
// loop; when the channel is full the frame is dropped.
type WebSocket struct {
	addr      string
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan wsFrame
	server    *http.Server
}

// NewWebSocket creates the sink and starts its HTTP server on addr.
// Clients connect to /colors.
func NewWebSocket(addr string) *WebSocket {
	ws := &WebSocket{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // local visualization clients only
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan wsFrame, 256),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/colors", ws.handleWebSocket)
	ws.server = &http.Server{Addr: addr, Handler: mux}

	go func() {
		applog.Infof("sink: WebSocket server listening on %s", addr)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			applog.Errorf("sink: WebSocket server: %v", err)
		}
	}()
	go ws.handleBroadcasts()

	return ws
}

func (ws *WebSocket) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Errorf("sink: WebSocket upgrade: %v", err)
		return
	}

	ws.clientsMu.Lock()
	ws.clients[conn] = true
	total := len(ws.clients)
	ws.clientsMu.Unlock()
	applog.Infof("sink: WebSocket client connected, total: %d", total)

	go func() {
		// Block until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		ws.clientsMu.Lock()
		delete(ws.clients, conn)
		total := len(ws.clients)
		ws.clientsMu.Unlock()
		conn.Close()
		applog.Infof("sink: WebSocket client disconnected, total: %d", total)
	}()
}

func (ws *WebSocket) handleBroadcasts() {
	for frame := range ws.broadcast {
		ws.clientsMu.Lock()
		for client := range ws.clients {
			if err := client.WriteJSON(frame); err != nil {
				applog.Errorf("sink: WebSocket write: %v", err)
				client.Close()
				delete(ws.clients, client)
			}
		}
		ws.clientsMu.Unlock()
	}
}

// Emit queues the frame for broadcast. The colors are copied; the engine
// reuses its slice across ticks.
func (ws *WebSocket) Emit(colors []uint32) error {
	frame := wsFrame{Type: "colors", Colors: make([]uint32, len(colors))}
	copy(frame.Colors, colors)

	select {
	case ws.broadcast <- frame:
	default:
		// Channel full, drop the frame.
	}
	return nil
}

// Close disconnects all clients and shuts the server down.
func (ws *WebSocket) Close() error {
	ws.clientsMu.Lock()
	for client := range ws.clients {
		client.Close()
	}
	ws.clients = make(map[*websocket.Conn]bool)
	ws.clientsMu.Unlock()

	if ws.server != nil {
		return ws.server.Close()
	}
	return nil
}

var _ Sink = (*WebSocket)(nil)
