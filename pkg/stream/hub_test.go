package stream

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/picogrid/swarm-canvas/pkg/logger"
	"github.com/picogrid/swarm-canvas/pkg/surface"
	"github.com/picogrid/swarm-canvas/pkg/swarm"
)

type inbound struct {
	Type    string            `json:"type"`
	State   string            `json:"state"`
	RunID   string            `json:"run_id"`
	Tick    uint64            `json:"tick"`
	Speed   float64           `json:"speed"`
	Agents  []swarm.AgentView `json:"agents"`
	Edges   [][2]int          `json:"edges"`
	Message string            `json:"message"`
}

func quietLogger() logger.Logger {
	return logger.NewWithConfig(logger.Config{Level: logger.FatalLevel, Writer: io.Discard, NoColor: true})
}

type fixture struct {
	engine *swarm.Engine
	clock  *swarm.ManualClock
	hub    *Hub
	conn   *websocket.Conn
}

func newFixture(t *testing.T, every int) *fixture {
	t.Helper()
	log := quietLogger()
	hub := NewHub(every, log)
	clock := swarm.NewManualClock()

	engine, err := swarm.New(swarm.DefaultConfig(),
		swarm.WithSeed(9),
		swarm.WithClock(clock),
		swarm.WithSurface(surface.Discard{}),
		swarm.WithLogger(log),
		swarm.WithFrameHook(hub.Observe),
	)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	t.Cleanup(engine.Stop)

	mux := http.NewServeMux()
	mux.Handle(Path, hub.Handler(engine))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + Path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return &fixture{engine: engine, clock: clock, hub: hub, conn: conn}
}

func (f *fixture) read(t *testing.T) inbound {
	t.Helper()
	var msg inbound
	_ = f.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := f.conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func (f *fixture) control(t *testing.T, action string, value float64) {
	t.Helper()
	if err := f.conn.WriteJSON(controlMessage{Action: action, Value: value}); err != nil {
		t.Fatalf("write %s: %v", action, err)
	}
}

func TestHubSendsStateOnConnect(t *testing.T) {
	f := newFixture(t, 1)

	msg := f.read(t)
	if msg.Type != "state" || msg.State != "idle" {
		t.Fatalf("expected idle state, got %+v", msg)
	}
	if msg.RunID != f.engine.RunID().String() {
		t.Errorf("run id mismatch: %s", msg.RunID)
	}
	if f.hub.Clients() != 1 {
		t.Errorf("expected 1 client, got %d", f.hub.Clients())
	}
}

func TestHubStreamsFramesAndControls(t *testing.T) {
	f := newFixture(t, 1)
	f.read(t)

	f.control(t, "start", 0)
	if msg := f.read(t); msg.Type != "state" || msg.State != "running" {
		t.Fatalf("expected running state, got %+v", msg)
	}

	if !f.clock.Advance() {
		t.Fatal("ticker not live")
	}
	frame := f.read(t)
	if frame.Type != "frame" || frame.Tick != 1 {
		t.Fatalf("expected frame 1, got %+v", frame)
	}
	if len(frame.Agents) != 20 {
		t.Errorf("expected 20 agents, got %d", len(frame.Agents))
	}
	for _, e := range frame.Edges {
		if e[0] >= e[1] {
			t.Errorf("edge not canonical: %v", e)
		}
	}

	f.control(t, "speed", 50)
	if msg := f.read(t); msg.Speed != swarm.MaxControlSpeed {
		t.Errorf("expected clamped speed %v, got %v", swarm.MaxControlSpeed, msg.Speed)
	}

	f.control(t, "stop", 0)
	if msg := f.read(t); msg.State != "idle" || msg.Tick != 1 {
		t.Errorf("expected idle at tick 1, got %+v", msg)
	}
}

func TestHubReportsRejectedControls(t *testing.T) {
	f := newFixture(t, 1)
	f.read(t)

	if err := f.conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	f.control(t, "fly", 0)
	msg := f.read(t)
	if msg.Type != "error" || !strings.Contains(msg.Message, "fly") {
		t.Errorf("expected error for unknown action, got %+v", msg)
	}

	f.control(t, "start", 0)
	f.read(t)
	f.control(t, "start", 0)
	if msg := f.read(t); msg.Type != "error" {
		t.Errorf("expected error for double start, got %+v", msg)
	}
}

func TestHubThrottlesFrames(t *testing.T) {
	f := newFixture(t, 3)
	f.read(t)

	f.control(t, "start", 0)
	f.read(t)
	for i := 0; i < 3; i++ {
		f.clock.Advance()
	}
	if msg := f.read(t); msg.Type != "frame" || msg.Tick != 3 {
		t.Errorf("expected only frame 3, got %+v", msg)
	}
}

func TestHubResetChangesRun(t *testing.T) {
	f := newFixture(t, 1)
	first := f.read(t)

	f.control(t, "reset", 0)
	msg := f.read(t)
	if msg.RunID == first.RunID {
		t.Error("reset should start a new run")
	}
	if msg.State != "idle" || msg.Tick != 0 {
		t.Errorf("unexpected state after reset: %+v", msg)
	}
}
