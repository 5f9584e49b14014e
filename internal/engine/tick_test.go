package engine

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestStepFiresCallbacks(t *testing.T) {
	e := NewEngine(zerolog.Nop())
	e.TicksPerDay = 5

	var ticks, days []uint64
	e.OnTick = func(tick uint64) { ticks = append(ticks, tick) }
	e.OnDay = func(tick uint64) { days = append(days, tick) }

	for i := 0; i < 12; i++ {
		e.Step()
	}
	if len(ticks) != 12 || ticks[0] != 1 || ticks[11] != 12 {
		t.Errorf("ticks = %v", ticks)
	}
	if len(days) != 2 || days[0] != 5 || days[1] != 10 {
		t.Errorf("days = %v, want [5 10]", days)
	}
	if e.Tick() != 12 {
		t.Errorf("Tick() = %d, want 12", e.Tick())
	}
}

func TestSetSpeedClamps(t *testing.T) {
	e := NewEngine(zerolog.Nop())
	e.SetSpeed(-3)
	if e.Speed() != 0 {
		t.Errorf("Speed() = %v, want 0", e.Speed())
	}
	e.SetSpeed(4)
	if e.Speed() != 4 {
		t.Errorf("Speed() = %v, want 4", e.Speed())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	e := NewEngine(zerolog.Nop())
	e.Interval = time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	if e.Tick() == 0 {
		t.Error("engine never ticked")
	}
}

func TestSimTime(t *testing.T) {
	tests := []struct {
		tick uint64
		want string
	}{
		{0, "Day 1, 0:00"},
		{61, "Day 1, 1:01"},
		{1500, "Day 2, 1:00"},
	}
	for _, tt := range tests {
		if got := SimTime(tt.tick); got != tt.want {
			t.Errorf("SimTime(%d) = %q, want %q", tt.tick, got, tt.want)
		}
	}
}
