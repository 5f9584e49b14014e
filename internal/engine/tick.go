// Package engine provides the tick-based simulation loop and the colony
// simulation it drives.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTicksPerDay is one sim-minute per tick.
const DefaultTicksPerDay = 1440

// Engine drives the simulation forward at a fixed rate.
type Engine struct {
	Interval    time.Duration // Base tick interval
	TicksPerDay uint64

	// Callbacks for each tick layer, populated during setup.
	OnTick func(tick uint64) // Every tick
	OnDay  func(tick uint64) // Every TicksPerDay ticks

	log zerolog.Logger

	mu    sync.Mutex
	tick  uint64
	speed float64 // 1.0 = real-time, 0 = paused
}

// NewEngine creates a simulation engine with default settings.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		Interval:    100 * time.Millisecond,
		TicksPerDay: DefaultTicksPerDay,
		log:         log,
		speed:       1.0,
	}
}

// Tick returns the last completed tick.
func (e *Engine) Tick() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the speed multiplier; 0 pauses.
func (e *Engine) SetSpeed(s float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s < 0 {
		s = 0
	}
	e.speed = s
}

// Run ticks until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	e.log.Info().Uint64("tick", e.Tick()).Float64("speed", e.Speed()).Msg("simulation engine started")

	for {
		speed := e.Speed()
		wait := 100 * time.Millisecond // Paused: check again shortly
		if speed > 0 {
			start := time.Now()
			e.Step()
			wait = time.Duration(float64(e.Interval)/speed) - time.Since(start)
		}
		if wait < 0 {
			wait = 0
		}

		select {
		case <-ctx.Done():
			e.log.Info().Uint64("tick", e.Tick()).Msg("simulation engine stopped")
			return
		case <-time.After(wait):
		}
	}
}

// Step advances the simulation by one tick.
func (e *Engine) Step() {
	e.mu.Lock()
	e.tick++
	tick := e.tick
	e.mu.Unlock()

	if e.OnTick != nil {
		e.OnTick(tick)
	}
	if e.TicksPerDay > 0 && tick%e.TicksPerDay == 0 && e.OnDay != nil {
		e.OnDay(tick)
	}
}

// SimTime returns a human-readable simulation time for a tick, assuming one
// sim-minute per tick.
func SimTime(tick uint64) string {
	minutes := tick % 60
	hours := (tick / 60) % 24
	days := tick/DefaultTicksPerDay + 1
	return fmt.Sprintf("Day %d, %d:%02d", days, hours, minutes)
}
