package sim

import (
	"log/slog"
	"time"
)

// Cleanup cadence; cache GC is cheap but pointless to run every tick.
const cleanupInterval = 500

// Engine drives the simulation forward, one coordination step per tick.
type Engine struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Base tick interval
	MaxTicks uint64        // Stop after this many ticks; 0 runs forever
	Running  bool

	// Callbacks populated during setup.
	OnTick    func(tick uint64) // Every tick: the coordination step
	OnReport  func(tick uint64) // Periodic summary
	OnCleanup func(tick uint64) // Cache GC sweeps

	ReportEvery uint64 // Report cadence in ticks
}

// NewEngine creates an engine with default pacing.
func NewEngine() *Engine {
	return &Engine{
		Speed:       1.0,
		Interval:    100 * time.Millisecond,
		ReportEvery: 100,
	}
}

// Run starts the loop. Blocks until Stop is called or MaxTicks is reached.
func (e *Engine) Run() {
	e.Running = true
	slog.Info("engine started", "tick", e.Tick, "speed", e.Speed, "interval", e.Interval)

	for e.Running {
		if e.Speed <= 0 {
			// Paused; check again shortly.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.step()
		if e.MaxTicks > 0 && e.Tick >= e.MaxTicks {
			e.Running = false
			break
		}

		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("engine stopped", "tick", e.Tick)
}

// Stop halts the loop after the current tick.
func (e *Engine) Stop() {
	e.Running = false
}

// step advances the simulation by one tick.
func (e *Engine) step() {
	e.Tick++

	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}
	if e.ReportEvery > 0 && e.Tick%e.ReportEvery == 0 && e.OnReport != nil {
		e.OnReport(e.Tick)
	}
	if e.Tick%cleanupInterval == 0 && e.OnCleanup != nil {
		e.OnCleanup(e.Tick)
	}
}
