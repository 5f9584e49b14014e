package persistence

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/config"
	"github.com/talgya/colony/internal/engine"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:", zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSessionIsUUID(t *testing.T) {
	db := openTest(t)
	if _, err := uuid.Parse(db.Session()); err != nil {
		t.Errorf("session %q is not a UUID: %v", db.Session(), err)
	}
}

func TestEventsRoundTrip(t *testing.T) {
	db := openTest(t)
	events := []engine.Event{
		{Seq: 1, Tick: 10, Description: "Ada ate Cabbage", Category: "agent", Meta: map[string]any{"agent_id": 1}},
		{Seq: 2, Tick: 11, Description: "zone 1 removed", Category: "zone"},
		{Seq: 3, Tick: 12, Description: "Carrot at (2,2) has rotted", Category: "resource"},
	}
	if err := db.SaveEvents(events); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveEvents(nil); err != nil {
		t.Errorf("saving nothing should be a no-op, got %v", err)
	}

	got, err := db.RecentEvents(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Seq != 3 || got[1].Seq != 2 {
		t.Fatalf("RecentEvents(2) = %+v", got)
	}

	all, err := db.RecentEvents(10)
	if err != nil {
		t.Fatal(err)
	}
	oldest := all[len(all)-1]
	if oldest.Meta["agent_id"] != float64(1) {
		t.Errorf("meta did not survive: %v", oldest.Meta)
	}
	if all[0].Meta != nil {
		t.Errorf("empty meta should decode to nil, got %v", all[0].Meta)
	}
}

func TestMeta(t *testing.T) {
	db := openTest(t)
	if err := db.SaveMeta("seed", "1"); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveMeta("seed", "2"); err != nil {
		t.Fatal(err)
	}
	v, err := db.GetMeta("seed")
	if err != nil || v != "2" {
		t.Errorf("GetMeta(seed) = %q, %v", v, err)
	}
	if _, err := db.GetMeta("missing"); err == nil {
		t.Error("missing key should error")
	}
}

func TestDailyStats(t *testing.T) {
	db := openTest(t)
	st := engine.SimStats{
		Tick:       1440,
		Population: 5,
		AvgFood:    72.5,
		Tasks:      map[agents.Task]int{agents.TaskEat: 2, agents.TaskIdle: 3},
	}
	if err := db.SaveDailyStats(st); err != nil {
		t.Fatal(err)
	}
	st.Population = 6
	if err := db.SaveDailyStats(st); err != nil {
		t.Fatal(err)
	}
	st.Tick = 2880
	if err := db.SaveDailyStats(st); err != nil {
		t.Fatal(err)
	}
	n, err := db.DailyStatsCount()
	if err != nil || n != 2 {
		t.Errorf("DailyStatsCount() = %d, %v; want 2 (one row per day)", n, err)
	}
}

func TestSaveSnapshot(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 11
	cfg.World.Width, cfg.World.Length = 8, 8
	cfg.World.Biome = "meadow"
	cfg.Agents.Colonists, cfg.Agents.Animals = 1, 0
	sim, err := engine.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	sim.Tick(1)
	if err := sim.IssueOrder(1, "rest"); err != nil {
		t.Fatal(err)
	}
	events, _ := sim.EventsSince(0)

	db, err := Open(filepath.Join(t.TempDir(), "colony.db"), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := db.SaveSnapshot(sim, events); err != nil {
		t.Fatal(err)
	}

	for key, want := range map[string]string{"last_tick": "1", "seed": "11", "generation": "0"} {
		if got, err := db.GetMeta(key); err != nil || got != want {
			t.Errorf("meta %s = %q, %v; want %q", key, got, err, want)
		}
	}
	saved, err := db.RecentEvents(100)
	if err != nil {
		t.Fatal(err)
	}
	if len(saved) != len(events) {
		t.Errorf("saved %d events, want %d", len(saved), len(events))
	}
}
