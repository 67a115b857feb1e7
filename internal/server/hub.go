// Package server hosts the WebSocket endpoint browsers connect to. The
// hub fans simulation frames out to every connected client and forwards
// their input messages to the game loop.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/liftoff-sim/simcore/pkg/streaming"
)

const (
	sendChSize = 256
	writeWait  = 10 * time.Second
)

// InputFunc receives the message type of each input envelope a client
// sends. It must not block; the hub calls it from client read loops.
type InputFunc func(msgType string)

// Hub manages connected clients. A single write goroutine per client
// drains its send channel; broadcast drops frames for clients that
// cannot keep up.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool

	hello    []byte
	onInput  InputFunc
	upgrader ws.Upgrader
	logger   *slog.Logger
}

type client struct {
	conn   *ws.Conn
	sendCh chan []byte
	done   chan struct{}
}

// NewHub creates a hub that reports client input through onInput.
func NewHub(logger *slog.Logger, onInput InputFunc) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		onInput: onInput,
		upgrader: ws.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// SetHello sets the greeting sent to each client right after upgrade.
func (h *Hub) SetHello(p streaming.HelloPayload) error {
	data, err := marshalEnvelope(streaming.TypeHello, p)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.hello = data
	h.mu.Unlock()
	return nil
}

// ServeHTTP upgrades the request and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	c := &client{
		conn:   conn,
		sendCh: make(chan []byte, sendChSize),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	hello := h.hello
	h.mu.Unlock()

	h.logger.Info("Client connected", "remote", r.RemoteAddr)

	if hello != nil {
		select {
		case c.sendCh <- hello:
		default:
		}
	}

	go h.writeLoop(c)
	go h.readLoop(c)
}

// writeLoop drains the client's send channel onto the wire. It returns
// on write error or client shutdown.
func (h *Hub) writeLoop(c *client) {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.sendCh:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				h.drop(c, err)
				return
			}
			if err := c.conn.WriteMessage(ws.TextMessage, data); err != nil {
				h.drop(c, err)
				return
			}
		}
	}
}

// readLoop decodes input envelopes and hands their type to onInput.
func (h *Hub) readLoop(c *client) {
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			h.drop(c, err)
			return
		}

		var env streaming.Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			h.logger.Debug("Undecodable client message", "raw", string(message))
			continue
		}

		switch env.Type {
		case streaming.TypeAction, streaming.TypeRestart:
			if h.onInput != nil {
				h.onInput(env.Type)
			}
		default:
			h.logger.Debug("Unknown client message type", "type", env.Type)
		}
	}
}

// drop unregisters a client and closes its connection.
func (h *Hub) drop(c *client, err error) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.done)
	}
	h.mu.Unlock()

	if ok {
		_ = c.conn.Close()
		h.logger.Info("Client disconnected", "error", err)
	}
}

// Broadcast marshals the payload into an envelope and queues it to
// every connected client. Clients with a full send channel skip the
// frame rather than stall the loop.
func (h *Hub) Broadcast(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.sendCh <- data:
		default:
			h.logger.Warn("Client send channel full, dropping frame", "type", msgType)
		}
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all clients and rejects new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		close(c.done)
		_ = c.conn.WriteMessage(
			ws.CloseMessage,
			ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
		)
		_ = c.conn.Close()
	}
	return nil
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}
