// Package stream serves engine frames to browsers over a websocket and
// accepts lifecycle controls from them.
package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/picogrid/swarm-canvas/pkg/logger"
	"github.com/picogrid/swarm-canvas/pkg/swarm"
)

// Path is where the hub is usually mounted.
const Path = "/ws/swarm"

// Controller is the part of the engine a client may drive.
type Controller interface {
	Start() error
	Stop()
	Reset()
	SetSpeedMultiplier(v float64) error
	SpeedMultiplier() float64
	State() swarm.State
	Ticks() uint64
	RunID() uuid.UUID
}

type frameMessage struct {
	Type   string            `json:"type"`
	RunID  string            `json:"run_id"`
	Tick   uint64            `json:"tick"`
	Speed  float64           `json:"speed"`
	Agents []swarm.AgentView `json:"agents"`
	Edges  [][2]int          `json:"edges"`
}

type stateMessage struct {
	Type  string  `json:"type"`
	State string  `json:"state"`
	RunID string  `json:"run_id"`
	Tick  uint64  `json:"tick"`
	Speed float64 `json:"speed"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type controlMessage struct {
	Action string  `json:"action"`
	Value  float64 `json:"value"`
}

// Hub fans frames out to every connected client.
type Hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
	every    uint64
	log      logger.Logger
}

// NewHub returns a hub broadcasting one frame in every.
func NewHub(every int, log logger.Logger) *Hub {
	if every < 1 {
		every = 1
	}
	if log == nil {
		log = logger.WithPrefix("stream")
	}
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		every: uint64(every),
		log:   log,
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

// Observe is a swarm.FrameHook broadcasting due frames.
func (h *Hub) Observe(f swarm.Frame) {
	if f.Tick%h.every != 0 {
		return
	}
	edges := make([][2]int, len(f.Edges))
	for i, e := range f.Edges {
		edges[i] = [2]int{e.A, e.B}
	}
	h.broadcast(frameMessage{
		Type:   "frame",
		RunID:  f.RunID.String(),
		Tick:   f.Tick,
		Speed:  f.Speed,
		Agents: f.Agents,
		Edges:  edges,
	})
}

func (h *Hub) broadcast(msg interface{}) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.log.Errorf("Failed to marshal message: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.log.Warnf("Failed to write to client: %v", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// send writes to a single client, serialised with broadcasts.
func (h *Hub) send(conn *websocket.Conn, msg interface{}) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.log.Errorf("Failed to marshal message: %v", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		h.log.Warnf("Failed to write to client: %v", err)
	}
}

func snapshot(c Controller) stateMessage {
	return stateMessage{
		Type:  "state",
		State: c.State().String(),
		RunID: c.RunID().String(),
		Tick:  c.Ticks(),
		Speed: c.SpeedMultiplier(),
	}
}

// apply runs one control action against the engine.
func apply(c Controller, msg controlMessage) error {
	switch msg.Action {
	case "start":
		return c.Start()
	case "stop":
		c.Stop()
	case "reset":
		c.Reset()
	case "speed":
		return c.SetSpeedMultiplier(swarm.ClampSpeed(msg.Value))
	default:
		return fmt.Errorf("unknown action %q", msg.Action)
	}
	return nil
}

// Handler upgrades the request and serves one client until it disconnects.
func (h *Hub) Handler(ctrl Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Warnf("Websocket upgrade failed: %v", err)
			return
		}
		h.add(conn)
		defer h.remove(conn)

		log := h.log.WithField("remote", r.RemoteAddr)
		log.Debug("Client connected")

		h.send(conn, snapshot(ctrl))

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				log.Debugf("Client read ended: %v", err)
				return
			}

			var msg controlMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Warnf("Unable to decode control message: %v", err)
				continue
			}

			if err := apply(ctrl, msg); err != nil {
				log.Warnf("Control %q rejected: %v", msg.Action, err)
				h.send(conn, errorMessage{Type: "error", Message: err.Error()})
				continue
			}
			log.Infof("Applied control %q", msg.Action)
			h.broadcast(snapshot(ctrl))
		}
	}
}
