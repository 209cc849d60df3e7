// Package viewport broadcasts processed frames to websocket-connected
// live viewers, the "4 competing estimates side-by-side" display of
// spec section 1. Clients never block the driver: a client whose send
// buffer is full misses that frame instead of applying back-pressure
// to the broadcast.
package viewport

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tracktum/go-attitude/internal/linalg"
	"github.com/tracktum/go-attitude/internal/logging"
	"github.com/tracktum/go-attitude/internal/metrics"
	"github.com/tracktum/go-attitude/internal/record"
)

const clientSendBuffer = 16

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans frames out to every connected viewport client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan frameMessage
}

// frameMessage is the wire representation of one Frame, the four
// estimators' rotation matrices as flat 9-element row-major arrays.
type frameMessage struct {
	AccMag   [9]float64 `json:"acc_mag"`
	GyroOnly [9]float64 `json:"gyro_only"`
	QESKF    [9]float64 `json:"qeskf"`
	VEKF     [9]float64 `json:"vekf_pair"`
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// ServeHTTP upgrades the connection and registers it as a viewport
// client until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Log.Error().Err(err).Msg("viewport: upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan frameMessage, clientSendBuffer)}
	h.register(c)
	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	metrics.GetMetrics().ViewportClients.Set(float64(len(h.clients)))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		metrics.GetMetrics().ViewportClients.Set(float64(len(h.clients)))
	}
}

// Broadcast fans out one frame to every connected client, dropping it
// for any client whose buffer is currently full.
func (h *Hub) Broadcast(f record.Frame) {
	msg := frameMessage{
		AccMag:   flatten(f.AccMag),
		GyroOnly: flatten(f.GyroOnly),
		QESKF:    flatten(f.QESKF),
		VEKF:     flatten(f.VEKFPair),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			metrics.GetMetrics().ViewportDropped.Inc()
		}
	}
}

func (h *Hub) writePump(c *client) {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			break
		}
	}
	c.conn.Close()
}

// readPump drains and discards any client messages; the viewport is
// one-directional. It exists to notice disconnects and unregister.
func (h *Hub) readPump(c *client) {
	defer h.unregister(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func flatten(m linalg.Mat3) [9]float64 {
	var out [9]float64
	k := 0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[k] = m.At(i, j)
			k++
		}
	}
	return out
}
