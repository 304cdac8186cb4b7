package force

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is the lifecycle state of a Runner.
type State int

// Runner states.
const (
	Idle State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	}
	return "unknown"
}

// ErrAlreadyStarted is returned by Start on a runner that is not idle.
var ErrAlreadyStarted = errors.New("runner already started")

// TickStats describes one applied tick.
type TickStats struct {
	Tick     uint64
	Duration time.Duration
	Speed    float64 // sum of velocity magnitudes after the tick
	Nodes    int
	Links    int
}

// Observer receives stats after every tick.
type Observer interface {
	ObserveTick(TickStats)
}

// Runner drives an Engine on a fixed-period timer. While paused no timer is
// pending; pausing cancels it.
type Runner struct {
	engine   *Engine
	period   time.Duration
	onTick   func(uint64)
	observer Observer

	mu     sync.Mutex
	state  State
	parent context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// OnTick registers a callback invoked after every tick, outside any lock.
func OnTick(fn func(tick uint64)) RunnerOption {
	return func(r *Runner) {
		r.onTick = fn
	}
}

// WithObserver registers a tick observer.
func WithObserver(o Observer) RunnerOption {
	return func(r *Runner) {
		r.observer = o
	}
}

// NewRunner creates an idle runner for e using the engine's tick period.
func NewRunner(e *Engine, opts ...RunnerOption) *Runner {
	r := &Runner{
		engine: e,
		period: e.Params().TickPeriod,
	}
	if r.period <= 0 {
		r.period = DefaultParams().TickPeriod
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Engine returns the engine this runner drives.
func (r *Runner) Engine() *Engine {
	return r.engine
}

// Start leaves the idle state. With running set the timer starts immediately,
// otherwise the runner starts paused.
func (r *Runner) Start(ctx context.Context, running bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != Idle {
		return ErrAlreadyStarted
	}
	r.parent = ctx
	if running {
		r.startLoop()
		r.state = Running
	} else {
		r.state = Paused
	}
	return nil
}

// SetRunning pauses or resumes the simulation. It has no effect while idle.
// When it returns false, no further tick will be applied until resumed.
func (r *Runner) SetRunning(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.state == Running && !on:
		r.cancel()
		r.state = Paused
	case r.state == Paused && on:
		r.startLoop()
		r.state = Running
	}
}

// Toggle flips between running and paused and reports the new running flag.
func (r *Runner) Toggle() bool {
	r.mu.Lock()
	on := r.state != Running
	r.mu.Unlock()

	r.SetRunning(on)
	return r.Running()
}

// Running reports whether the timer is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == Running
}

// State returns the lifecycle state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Reset re-randomizes the layout and keeps the running flag as it is.
func (r *Runner) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engine.Reset()
}

// Stop cancels the timer, waits for the loop to exit and returns to idle.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.state == Idle {
		r.mu.Unlock()
		return
	}
	if r.cancel != nil {
		r.cancel()
	}
	done := r.done
	r.state = Idle
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if done != nil {
		<-done
	}
}

// startLoop launches the timer goroutine. Callers hold r.mu.
func (r *Runner) startLoop() {
	ctx, cancel := context.WithCancel(r.parent)
	done := make(chan struct{})
	r.cancel, r.done = cancel, done
	go r.loop(ctx, done)
}

func (r *Runner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats, ok := r.step(ctx)
			if !ok {
				return
			}
			if r.observer != nil {
				r.observer.ObserveTick(stats)
			}
			if r.onTick != nil {
				r.onTick(stats.Tick)
			}
		}
	}
}

// step applies one tick unless the loop was cancelled. Holding r.mu for the
// tick means a pause that has returned can never be followed by a stray tick.
func (r *Runner) step(ctx context.Context) (TickStats, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ctx.Err() != nil {
		return TickStats{}, false
	}
	start := time.Now()
	r.engine.Tick()
	elapsed := time.Since(start)

	g := r.engine.Graph()
	return TickStats{
		Tick:     r.engine.Ticks(),
		Duration: elapsed,
		Speed:    r.engine.Speed(),
		Nodes:    g.Len(),
		Links:    len(g.Links()),
	}, true
}
