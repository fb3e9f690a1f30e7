// Package swarm implements the swarm frame engine: a fixed set of drone
// agents moving inside a padded rectangle, the communication graph between
// agents in radio range, and the per-frame rendering of both.
//
// The engine owns all agent state. Hosts drive it either directly through
// Tick, or by calling Start, which pulls frame signals from an injected Clock
// and runs Tick, ComputeCommunicationGraph and Render in sequence for each
// one.
package swarm

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/picogrid/swarm-canvas/pkg/logger"
)

// State is the lifecycle state of an engine.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

// Frame is the immutable result of one completed loop iteration.
type Frame struct {
	RunID  uuid.UUID
	Tick   uint64
	Speed  float64
	Agents []AgentView
	Edges  []Edge
}

// FrameHook observes completed frames. Hooks run on the loop goroutine,
// outside the engine lock, and may call back into the engine.
type FrameHook func(Frame)

// Option customises an engine at construction.
type Option func(*Engine)

// WithSource sets the random source used for spawning agents.
func WithSource(src Source) Option {
	return func(e *Engine) { e.src = src }
}

// WithSeed is shorthand for WithSource(NewSource(seed)).
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.src = NewSource(seed) }
}

// WithClock sets the clock driving the frame loop.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithSurface sets the surface the frame loop renders to.
func WithSurface(s Surface) Option {
	return func(e *Engine) { e.surface = s }
}

// WithTheme overrides the default render theme.
func WithTheme(t Theme) Option {
	return func(e *Engine) { e.theme = t }
}

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithFrameHook registers a frame observer.
func WithFrameHook(h FrameHook) Option {
	return func(e *Engine) { e.hooks = append(e.hooks, h) }
}

// Engine is the swarm frame engine.
type Engine struct {
	mu sync.Mutex

	cfg     Config
	src     Source
	clock   Clock
	surface Surface
	theme   Theme
	log     logger.Logger
	hooks   []FrameHook

	agents []Agent
	speed  float64
	ticks  uint64
	runID  uuid.UUID
	state  State

	// gen identifies the current loop goroutine; a loop whose generation
	// is stale never commits another frame.
	gen  uint64
	quit chan struct{}
	done chan struct{}
	err  error
}

// New validates cfg and spawns the initial agents.
func New(cfg Config, opts ...Option) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	close(done)

	e := &Engine{
		cfg:   cfg,
		clock: RealClock(),
		theme: DefaultTheme(),
		speed: cfg.SpeedMultiplier,
		done:  done,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.src == nil {
		e.src = NewSource(0)
	}
	if e.log == nil {
		e.log = logger.WithPrefix("swarm")
	}

	e.spawn()
	e.log.Debugf("Engine configured with %d agents on a %gx%g canvas", cfg.AgentCount, cfg.Width, cfg.Height)
	return e, nil
}

// spawn discards agent state and places a fresh population. The speed
// multiplier is host state and survives. Caller holds mu or has exclusive
// access.
func (e *Engine) spawn() {
	e.agents = spawnAgents(e.cfg, e.src)
	e.ticks = 0
	e.runID = uuid.New()
	e.err = nil
}

// Config returns the validated configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Tick advances every agent by one step scaled by speedMultiplier.
func (e *Engine) Tick(speedMultiplier float64) error {
	if !positive(speedMultiplier) {
		return fmt.Errorf("%w: got %g", ErrInvalidSpeed, speedMultiplier)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.step(speedMultiplier)
	return nil
}

// step integrates positions and resolves wall reflections per axis.
func (e *Engine) step(speed float64) {
	minX, maxX, minY, maxY := e.cfg.bounds()
	for i := range e.agents {
		a := &e.agents[i]
		a.Position.X, a.Velocity.X = reflectAxis(a.Position.X, a.Velocity.X, speed, minX, maxX)
		a.Position.Y, a.Velocity.Y = reflectAxis(a.Position.Y, a.Velocity.Y, speed, minY, maxY)
	}
	e.ticks++
}

// ComputeCommunicationGraph returns the edges for the current positions.
func (e *Engine) ComputeCommunicationGraph() []Edge {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph()
}

func (e *Engine) graph() []Edge {
	return CommunicationGraph(e.agents, e.cfg.CommunicationRange, e.cfg.GraphStrategy)
}

// Render draws the current agents and their communication graph onto s.
func (e *Engine) Render(s Surface) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Render(s, e.cfg.Width, e.cfg.Height, e.theme, e.agents, e.graph())
}

// Agents returns id-ordered positions as of the last completed tick.
func (e *Engine) Agents() []AgentView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.views()
}

func (e *Engine) views() []AgentView {
	out := make([]AgentView, len(e.agents))
	for i, a := range e.agents {
		out[i] = a.View()
	}
	return out
}

// AgentStates returns a copy of the full agent state, velocities included.
func (e *Engine) AgentStates() []Agent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Agent, len(e.agents))
	copy(out, e.agents)
	return out
}

// SetSpeedMultiplier changes the displacement scale used from the next tick on.
func (e *Engine) SetSpeedMultiplier(v float64) error {
	if !positive(v) {
		return fmt.Errorf("%w: got %g", ErrInvalidSpeed, v)
	}
	e.mu.Lock()
	e.speed = v
	e.mu.Unlock()
	return nil
}

// SpeedMultiplier returns the multiplier used by the frame loop.
func (e *Engine) SpeedMultiplier() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSurface replaces the loop's surface. It takes effect on the next frame.
func (e *Engine) SetSurface(s Surface) {
	e.mu.Lock()
	e.surface = s
	e.mu.Unlock()
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Ticks returns the number of ticks since the last reset.
func (e *Engine) Ticks() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ticks
}

// RunID identifies the current agent population; it changes on every reset.
func (e *Engine) RunID() uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runID
}

// Done is closed when the most recently started loop has exited.
func (e *Engine) Done() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done
}

// Err returns the error that stopped the last loop, if any.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Start begins running one frame per clock tick until Stop or Reset.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Running {
		return ErrAlreadyRunning
	}
	if e.surface == nil {
		return ErrNoSurface
	}

	e.gen++
	e.quit = make(chan struct{})
	e.done = make(chan struct{})
	e.err = nil
	e.state = Running

	ticker := e.clock.NewTicker(e.cfg.FrameInterval)
	go e.loop(e.gen, ticker, e.quit, e.done)

	e.log.WithField("run", e.runID).Infof("Swarm started with %d agents", len(e.agents))
	return nil
}

// Stop halts the loop before its next frame. Agent state is kept.
// Calling Stop on an idle engine does nothing.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Running {
		return
	}
	e.halt()
	e.log.WithField("run", e.runID).Infof("Swarm stopped after %d ticks", e.ticks)
}

// Reset stops a running loop and replaces every agent with a fresh one.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.halt()
	e.spawn()
	e.log.WithField("run", e.runID).Info("Swarm reset")
}

// halt moves a running engine to Idle. Caller holds mu.
func (e *Engine) halt() {
	if e.state != Running {
		return
	}
	e.state = Idle
	close(e.quit)
}

func (e *Engine) loop(gen uint64, ticker Ticker, quit, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			return
		case <-ticker.C():
			frame, hooks, ok, err := e.frame(gen)
			if err != nil {
				e.fail(gen, err)
				return
			}
			if !ok {
				return
			}
			for _, h := range hooks {
				h(frame)
			}
		}
	}
}

// frame runs one tick, graph and render atomically with respect to every
// other engine method.
func (e *Engine) frame(gen uint64) (Frame, []FrameHook, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gen != gen || e.state != Running {
		return Frame{}, nil, false, nil
	}

	e.step(e.speed)
	edges := e.graph()
	if err := Render(e.surface, e.cfg.Width, e.cfg.Height, e.theme, e.agents, edges); err != nil {
		return Frame{}, nil, false, fmt.Errorf("render tick %d: %w", e.ticks, err)
	}

	frame := Frame{
		RunID:  e.runID,
		Tick:   e.ticks,
		Speed:  e.speed,
		Agents: e.views(),
		Edges:  edges,
	}
	return frame, e.hooks, true, nil
}

func (e *Engine) fail(gen uint64, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gen != gen {
		return
	}
	e.halt()
	e.err = err
	e.log.WithField("run", e.runID).Errorf("Swarm halted: %v", err)
}
