package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/config"
	"github.com/talgya/colony/internal/resources"
	"github.com/talgya/colony/internal/world"
	"github.com/talgya/colony/internal/zones"
)

// newTestSim builds a small all-grass colony with no rations lying around.
func newTestSim(t *testing.T, mutate ...func(*config.Config)) *Simulation {
	t.Helper()
	cfg := config.Default()
	cfg.Seed = 1
	cfg.World.Width, cfg.World.Length = 12, 10
	cfg.World.Biome = "meadow"
	cfg.Agents.Colonists = 3
	cfg.Agents.Animals = 1
	cfg.Actions.StartingRations = 0
	for _, m := range mutate {
		m(&cfg)
	}
	s, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func clearFlora(s *Simulation) {
	s.despawn(s.plantEntities)
}

func colonist(t *testing.T, s *Simulation) agents.AgentID {
	t.Helper()
	for _, a := range s.Agents() {
		if a.Actor != agents.ActorPig.String() && a.Actor != agents.ActorRat.String() {
			return a.ID
		}
	}
	t.Fatal("no colonist spawned")
	return 0
}

func agentParts(t *testing.T, s *Simulation, id agents.AgentID) (*world.Position, *agents.Status, *agents.Brain) {
	t.Helper()
	e, err := s.agentEntity(id)
	if err != nil {
		t.Fatal(err)
	}
	_, pos, status, brain, _, _ := s.agentMap.Get(e)
	return pos, status, brain
}

func setNeeds(t *testing.T, s *Simulation, id agents.AgentID, food, sleep, fun float32) {
	t.Helper()
	_, st, _ := agentParts(t, s, id)
	st.Food.Current = food
	st.Sleep.Current = sleep
	st.Entertainment.Current = fun
}

func hasEvent(s *Simulation, category, substr string) bool {
	evs, _ := s.EventsSince(0)
	for _, e := range evs {
		if e.Category == category && strings.Contains(e.Description, substr) {
			return true
		}
	}
	return false
}

func TestNewSimulation(t *testing.T) {
	s := newTestSim(t)
	if got := s.Index.Len(); got != 120 {
		t.Errorf("index has %d cells, want 120", got)
	}
	for _, p := range []world.Position{{X: 0, Y: 0}, {X: 11, Y: 9}, {X: 5, Y: 0}, {X: 0, Y: 4}} {
		if tt, _ := s.Index.Lookup(p); tt != world.TileWallGame {
			t.Errorf("border %v = %v, want WallGame", p, tt)
		}
	}
	views := s.Agents()
	if len(views) != 4 {
		t.Fatalf("population = %d, want 4", len(views))
	}
	for i, a := range views {
		if i > 0 && views[i-1].ID >= a.ID {
			t.Error("Agents() not ordered by ID")
		}
		if !s.Index.Passable(a.Position) {
			t.Errorf("%s spawned on impassable %v", a.Name, a.Position)
		}
	}
	if s.Generation() != 0 {
		t.Errorf("Generation() = %d, want 0", s.Generation())
	}
	if !s.Index.Visible(views[0].Position) || !s.Index.Revealed(views[0].Position) {
		t.Error("agent cell should be visible after creation")
	}
}

func TestNewRejectsUnknownBiome(t *testing.T) {
	cfg := config.Default()
	cfg.World.Biome = "swamp"
	if _, err := New(cfg, zerolog.Nop()); err == nil {
		t.Error("expected an error for an unknown biome")
	}
}

func TestNewRejectsAllWallTiles(t *testing.T) {
	cfg := config.Default()
	cfg.World.CustomTiles = []string{"WallStone"}
	if _, err := New(cfg, zerolog.Nop()); err == nil || !strings.Contains(err.Error(), "no passable tile") {
		t.Errorf("New() err = %v, want a no passable tile error", err)
	}
}

func TestSameSeedSameWorld(t *testing.T) {
	a := newTestSim(t, func(c *config.Config) { c.World.Biome = "grassland" })
	b := newTestSim(t, func(c *config.Config) { c.World.Biome = "grassland" })
	if !a.Index.Equal(b.Index) {
		t.Error("same seed produced different maps")
	}
}

func TestTickDecaysNeedsBeforeActing(t *testing.T) {
	s := newTestSim(t)
	clearFlora(s)
	id := colonist(t, s)
	setNeeds(t, s, id, 50, 50, 50)

	s.Tick(1)
	_, st, brain := agentParts(t, s, id)
	want := 50 - s.cfg.Agents.Needs.FoodRate
	if st.Food.Current != want {
		t.Errorf("food after one tick = %v, want %v", st.Food.Current, want)
	}
	if brain.Motivation == agents.MotivationNone {
		t.Error("motivation unresolved after a tick")
	}
}

func TestStarvingAgentEats(t *testing.T) {
	s := newTestSim(t)
	clearFlora(s)
	id := colonist(t, s)
	setNeeds(t, s, id, 0, 80, 80)

	s.Tick(1)
	_, _, brain := agentParts(t, s, id)
	if brain.Motivation != agents.MotivationHunger || brain.Task != agents.TaskEat {
		t.Fatalf("starving agent = %v/%v, want Hunger/Eat", brain.Motivation, brain.Task)
	}

	s.Tick(2)
	if _, _, brain = agentParts(t, s, id); brain.Task != agents.TaskEat {
		t.Errorf("Eat should stick while hungry, got %v", brain.Task)
	}

	pos, _, _ := agentParts(t, s, id)
	s.spawnFood(*pos, resources.DefaultFood(), resources.ItemCabbage)
	s.Tick(3)

	_, st, brain := agentParts(t, s, id)
	if st.Food.Current != resources.DefaultFood().Nutrition {
		t.Errorf("food after eating = %v", st.Food.Current)
	}
	if brain.Task != agents.TaskNone {
		t.Errorf("task after eating = %v, want None", brain.Task)
	}
	if len(s.foodEntities()) != 0 {
		t.Error("eaten food was not removed")
	}
	if s.Stats.Meals != 1 || !hasEvent(s, "agent", "ate Food") {
		t.Errorf("meal not recorded: meals=%d", s.Stats.Meals)
	}
}

func TestCabbageEatenWhereItGrows(t *testing.T) {
	s := newTestSim(t)
	clearFlora(s)
	id := colonist(t, s)
	setNeeds(t, s, id, 0, 80, 80)
	pos, _, _ := agentParts(t, s, id)
	cabbage := s.spawnPlant(*pos, resources.Plant{Type: resources.PlantCabbage, Growth: 1})

	s.Tick(1)
	if s.ecs.Alive(cabbage) {
		t.Error("cabbage should be gone once eaten")
	}
	if len(s.foodEntities()) != 0 {
		t.Error("eating in place should not drop food on the map")
	}
	_, st, _ := agentParts(t, s, id)
	if st.Food.Current <= 0 {
		t.Errorf("food after eating = %v", st.Food.Current)
	}
	if s.Stats.Meals != 1 || !hasEvent(s, "agent", "where it grew") {
		t.Errorf("meal not recorded: meals=%d", s.Stats.Meals)
	}
}

func TestRottenFoodIsNotEaten(t *testing.T) {
	s := newTestSim(t)
	clearFlora(s)
	id := colonist(t, s)
	setNeeds(t, s, id, 0, 80, 80)

	pos, _, _ := agentParts(t, s, id)
	s.spawnFood(*pos, resources.Food{Nutrition: 10, Spoilage: 0.05, SpoilageRate: 0.1, Name: "Stew"}, resources.ItemCarrot)
	s.Tick(1)

	if !hasEvent(s, "resource", "Stew at") {
		t.Error("rotting should emit an event")
	}
	if len(s.foodEntities()) != 1 {
		t.Error("rotten food should stay on the map")
	}
	_, st, _ := agentParts(t, s, id)
	if st.Food.Current != 0 {
		t.Errorf("agent ate rotten food: %v", st.Food.Current)
	}
}

func TestOrderTakesPrecedence(t *testing.T) {
	s := newTestSim(t)
	clearFlora(s)
	id := colonist(t, s)
	setNeeds(t, s, id, 0, 80, 80)

	if err := s.IssueOrder(id, "dig a well"); err != nil {
		t.Fatal(err)
	}
	s.Tick(1)
	view, err := s.Agent(id)
	if err != nil {
		t.Fatal(err)
	}
	if view.Motivation != "Order" || view.Task != "Order" || view.Order != "dig a well" {
		t.Errorf("ordered agent = %s/%s %q", view.Motivation, view.Task, view.Order)
	}
	if !hasEvent(s, "command", "dig a well") {
		t.Error("order event missing")
	}

	if err := s.IssueOrder(id, ""); err != nil {
		t.Fatal(err)
	}
	s.Tick(2)
	view, _ = s.Agent(id)
	if view.Motivation != "Hunger" || view.Task != "Eat" {
		t.Errorf("after clearing the order = %s/%s, want Hunger/Eat", view.Motivation, view.Task)
	}
}

func TestRemotivate(t *testing.T) {
	s := newTestSim(t)
	id := colonist(t, s)
	s.Tick(1)
	if err := s.IssueOrder(id, "guard"); err != nil {
		t.Fatal(err)
	}
	if err := s.Remotivate(id); err != nil {
		t.Fatal(err)
	}
	view, _ := s.Agent(id)
	if view.Motivation != "None" || view.Task != "None" || view.Order != "" || view.PathLength != 0 {
		t.Errorf("after Remotivate: %+v", view)
	}
}

func TestUnknownAgent(t *testing.T) {
	s := newTestSim(t)
	const missing agents.AgentID = 999
	checks := map[string]error{
		"order":      s.IssueOrder(missing, "x"),
		"clear":      s.ClearOrder(missing),
		"remotivate": s.Remotivate(missing),
		"condition":  s.SetCondition(missing, Condition{Injured: true}),
	}
	_, err := s.Agent(missing)
	checks["view"] = err
	for name, err := range checks {
		if !errors.Is(err, ErrAgentNotFound) {
			t.Errorf("%s: err = %v, want ErrAgentNotFound", name, err)
		}
	}
}

func TestConditionRaisesCrisis(t *testing.T) {
	s := newTestSim(t)
	id := colonist(t, s)
	if err := s.SetCondition(id, Condition{Crisis: "fire"}); err != nil {
		t.Fatal(err)
	}
	s.Tick(1)
	_, _, brain := agentParts(t, s, id)
	if brain.Motivation != agents.MotivationCrisis || brain.Task != agents.TaskCrisis {
		t.Errorf("crisis agent = %v/%v", brain.Motivation, brain.Task)
	}
}

func TestSleepHoldsUntilRested(t *testing.T) {
	s := newTestSim(t)
	clearFlora(s)
	id := colonist(t, s)
	setNeeds(t, s, id, 100, 0, 100)

	s.Tick(1)
	_, _, brain := agentParts(t, s, id)
	if brain.Task != agents.TaskSleeping {
		t.Fatalf("task after lying down = %v, want Sleeping", brain.Task)
	}

	var tick uint64 = 2
	for ; tick < 200; tick++ {
		s.Tick(tick)
		_, st, brain := agentParts(t, s, id)
		if brain.Task != agents.TaskSleeping {
			if !st.Sleep.Full() {
				t.Fatalf("woke at sleep %v", st.Sleep.Current)
			}
			break
		}
		if brain.Motivation != agents.MotivationTired {
			t.Fatalf("tick %d: motivation %v while sleeping", tick, brain.Motivation)
		}
	}
	if tick == 200 {
		t.Fatal("agent never finished sleeping")
	}

	s.Tick(tick + 1)
	if _, _, brain = agentParts(t, s, id); brain.Motivation == agents.MotivationTired {
		t.Error("rested agent is still tired")
	}
}

func TestFarmZoneGetsPlanted(t *testing.T) {
	s := newTestSim(t)
	clearFlora(s)
	area := world.NewRect(3, 3, 4, 3)
	zid, err := s.DesignateZone(area, zones.Zone{Type: zones.ZoneFarm, Plant: resources.PlantCarrot})
	if err != nil {
		t.Fatal(err)
	}

	s.Tick(1)
	if len(s.plantEntities()) != 0 {
		t.Fatal("undelivered farm zones must not be planted")
	}
	if err := s.DeliverMaterial(zid); err != nil {
		t.Fatal(err)
	}
	for tick := uint64(2); tick < 60; tick++ {
		s.Tick(tick)
	}

	planted := 0
	q := s.plantFilter.Query()
	for q.Next() {
		pos, plant := q.Get()
		if !area.Contains(*pos) || plant.Type != resources.PlantCarrot {
			t.Errorf("unexpected plant %v at %v", plant.Type, *pos)
		}
		planted++
	}
	if planted == 0 {
		t.Error("no crops planted in a supplied farm zone")
	}
	if !hasEvent(s, "resource", "planted Carrot") {
		t.Error("planting event missing")
	}
}

func TestRipeCropIsForaged(t *testing.T) {
	s := newTestSim(t)
	clearFlora(s)
	if _, err := s.DesignateZone(world.NewRect(4, 4, 2, 2), zones.Zone{Type: zones.ZoneFarm, Plant: resources.PlantCarrot}); err != nil {
		t.Fatal(err)
	}
	crop := s.spawnPlant(world.Position{X: 4, Y: 4}, resources.Plant{Type: resources.PlantCarrot, Growth: 0.995})

	s.Tick(1)
	if !s.foragable.Has(crop) {
		t.Fatal("crop ripening in its farm zone should be marked for foraging")
	}
	for tick := uint64(2); tick < 40 && s.Stats.Harvests == 0; tick++ {
		s.Tick(tick)
	}
	if s.Stats.Harvests == 0 {
		t.Fatal("ripe crop was never foraged")
	}
	if s.ecs.Alive(crop) {
		t.Error("a forage-once crop should be destroyed")
	}
}

func TestFarmZoneLaidOverRipeCrop(t *testing.T) {
	s := newTestSim(t)
	clearFlora(s)
	crop := s.spawnPlant(world.Position{X: 4, Y: 4}, resources.Plant{Type: resources.PlantCarrot, Growth: 1})
	if _, err := s.DesignateZone(world.NewRect(4, 4, 2, 2), zones.Zone{Type: zones.ZoneFarm, Plant: resources.PlantCarrot}); err != nil {
		t.Fatal(err)
	}

	s.Tick(1)
	if s.ecs.Alive(crop) && !s.foragable.Has(crop) {
		t.Fatal("ripe crop under a new farm zone should be marked for foraging")
	}
	for tick := uint64(2); tick < 60 && s.Stats.Harvests == 0; tick++ {
		s.Tick(tick)
	}
	if s.Stats.Harvests == 0 || s.ecs.Alive(crop) {
		t.Errorf("ripe crop was not foraged: harvests=%d", s.Stats.Harvests)
	}
}

func TestUpdateZoneCropMarksRipePlants(t *testing.T) {
	s := newTestSim(t)
	clearFlora(s)
	crop := s.spawnPlant(world.Position{X: 4, Y: 4}, resources.Plant{Type: resources.PlantCarrot, Growth: 1})
	id, err := s.DesignateZone(world.NewRect(4, 4, 2, 2), zones.Zone{Type: zones.ZoneFarm, Plant: resources.PlantCabbage})
	if err != nil {
		t.Fatal(err)
	}

	s.Tick(1)
	if s.foragable.Has(crop) {
		t.Fatal("a carrot in a cabbage farm should be left alone")
	}
	carrot := resources.PlantCarrot
	if err := s.UpdateZone(id, nil, &carrot); err != nil {
		t.Fatal(err)
	}
	s.Tick(2)
	marked := s.Stats.Harvests > 0 // foraged on the tick it was marked
	if s.ecs.Alive(crop) {
		marked = s.foragable.Has(crop)
	}
	if !marked {
		t.Error("switching the farm to carrots should mark the ripe carrot")
	}
}

func TestUnzonedRipePlantIsLeftAlone(t *testing.T) {
	s := newTestSim(t)
	clearFlora(s)
	crop := s.spawnPlant(world.Position{X: 4, Y: 4}, resources.Plant{Type: resources.PlantCarrot, Growth: 0.995})
	s.Tick(1)
	if s.foragable.Has(crop) {
		t.Error("ripe plants outside farm zones are not designated automatically")
	}
}

func TestDesignatedTreeIsChopped(t *testing.T) {
	s := newTestSim(t)
	clearFlora(s)
	p := world.Position{X: 6, Y: 5}
	tree := s.spawnPlant(p, resources.Plant{Type: resources.PlantOakTree})

	if err := s.DesignatePlant(p, true); err != nil {
		t.Fatal(err)
	}
	for tick := uint64(1); tick < 40 && s.ecs.Alive(tree); tick++ {
		s.Tick(tick)
	}
	if s.ecs.Alive(tree) {
		t.Fatal("designated tree was never chopped")
	}
	logs := 0
	q := s.itemFilter.Query()
	for q.Next() {
		pos, item := q.Get()
		if *pos == p && item.Type == resources.ItemOakLog {
			logs++
		}
	}
	if logs != 1 {
		t.Errorf("found %d oak logs on %v, want 1", logs, p)
	}
	s.TickDay(40)
	if s.StatsSnapshot().Materials != 1 {
		t.Errorf("materials = %d, want 1", s.StatsSnapshot().Materials)
	}
}

func TestUnreachableJobIsSkipped(t *testing.T) {
	s := newTestSim(t)
	clearFlora(s)
	walled := world.Position{X: 6, Y: 5}
	for _, p := range walled.Neighbors() {
		if err := s.Index.Set(p, world.TileWallStone); err != nil {
			t.Fatal(err)
		}
	}
	open := world.Position{X: 10, Y: 8}
	oak := s.spawnPlant(walled, resources.Plant{Type: resources.PlantOakTree})
	pine := s.spawnPlant(open, resources.Plant{Type: resources.PlantPineTree})
	for _, p := range []world.Position{walled, open} {
		if err := s.DesignatePlant(p, true); err != nil {
			t.Fatal(err)
		}
	}
	var workers []agents.AgentID
	for _, a := range s.Agents() {
		pos, _, _ := agentParts(t, s, a.ID)
		*pos = world.Position{X: 2, Y: 2}
		if a.Actor != agents.ActorPig.String() && a.Actor != agents.ActorRat.String() {
			setNeeds(t, s, a.ID, 80, 80, 80)
			workers = append(workers, a.ID)
		}
	}

	for tick := uint64(1); tick < 100 && s.ecs.Alive(pine); tick++ {
		s.Tick(tick)
	}
	if s.ecs.Alive(pine) {
		t.Fatal("reachable pine was never chopped")
	}
	if !s.ecs.Alive(oak) {
		t.Error("walled-in oak should still stand")
	}
	if !s.unreachableFor(workers[0], walled) {
		t.Errorf("agent %d should remember %v as unreachable", workers[0], walled)
	}
	if s.hasWork(workers[0], s.jobs()) {
		t.Error("only the unreachable oak is left; no work should be offered")
	}

	s.LastTick += unreachableRetry
	if !s.hasWork(workers[0], s.jobs()) {
		t.Error("the oak should be retried once the retry window passes")
	}
}

func TestDesignatePlantNeedsAPlant(t *testing.T) {
	s := newTestSim(t)
	clearFlora(s)
	if err := s.DesignatePlant(world.Position{X: 3, Y: 3}, false); !errors.Is(err, ErrNoPlant) {
		t.Errorf("err = %v, want ErrNoPlant", err)
	}
}

func TestDesignateZoneBounds(t *testing.T) {
	s := newTestSim(t)
	tests := []struct {
		name string
		area world.Rect
		ok   bool
	}{
		{"inside", world.NewRect(1, 1, 3, 3), true},
		{"whole map", world.NewRect(0, 0, 12, 10), true},
		{"past the edge", world.NewRect(10, 8, 3, 3), false},
		{"negative", world.NewRect(-1, 0, 2, 2), false},
		{"empty", world.NewRect(2, 2, 0, 3), false},
	}
	for _, tt := range tests {
		_, err := s.DesignateZone(tt.area, zones.Default())
		if tt.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if !tt.ok && !errors.Is(err, world.ErrOutOfBounds) {
			t.Errorf("%s: err = %v, want ErrOutOfBounds", tt.name, err)
		}
	}
	if n := len(s.ZoneList()); n != 2 {
		t.Errorf("ZoneList() has %d zones, want 2", n)
	}
}

func TestDesignateZoneCountsOverlaps(t *testing.T) {
	s := newTestSim(t)
	for _, r := range []world.Rect{world.NewRect(0, 0, 4, 4), world.NewRect(6, 6, 2, 2)} {
		if _, err := s.DesignateZone(r, zones.Default()); err != nil {
			t.Fatal(err)
		}
	}
	id, err := s.DesignateZone(world.NewRect(2, 2, 5, 5), zones.Default())
	if err != nil {
		t.Fatal(err)
	}
	evs, _ := s.EventsSince(0)
	last := evs[len(evs)-1]
	if last.Meta["zone_id"] != id || last.Meta["overlaps"] != 2 {
		t.Errorf("event meta = %v, want zone %d with 2 overlaps", last.Meta, id)
	}
}

func TestUpdateZone(t *testing.T) {
	s := newTestSim(t)
	id, err := s.DesignateZone(world.NewRect(1, 1, 2, 2), zones.Default())
	if err != nil {
		t.Fatal(err)
	}
	farm, carrot := zones.ZoneFarm, resources.PlantCarrot
	if err := s.UpdateZone(id, &farm, &carrot); err != nil {
		t.Fatal(err)
	}
	d, ok := s.Zone(id)
	if !ok {
		t.Fatal("zone vanished")
	}
	if got, ok := d.Zone.FarmPlant(); !ok || got != resources.PlantCarrot {
		t.Errorf("FarmPlant() = %v, %v", got, ok)
	}

	if err := s.UpdateZone(id, nil, nil); err != nil {
		t.Errorf("no-op update err = %v", err)
	}
	if err := s.UpdateZone(99, nil, nil); !errors.Is(err, zones.ErrZoneNotFound) {
		t.Errorf("unknown zone err = %v", err)
	}
	if err := s.UpdateZone(99, &farm, nil); !errors.Is(err, zones.ErrZoneNotFound) {
		t.Errorf("unknown zone with type err = %v", err)
	}
}

func TestUndesignateZone(t *testing.T) {
	s := newTestSim(t)
	id, err := s.DesignateZone(world.NewRect(1, 1, 2, 2), zones.Zone{Type: zones.ZoneHospital})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.UndesignateZone(id); err != nil {
		t.Fatal(err)
	}
	if err := s.UndesignateZone(id); !errors.Is(err, zones.ErrZoneNotFound) {
		t.Errorf("second removal err = %v", err)
	}
}

func TestRegenerate(t *testing.T) {
	s := newTestSim(t, func(c *config.Config) { c.World.Biome = "quarry" })
	before := s.Index.Snapshot()

	if err := s.Regenerate(); err != nil {
		t.Fatal(err)
	}
	if s.Generation() != 1 {
		t.Errorf("Generation() = %d, want 1", s.Generation())
	}
	if s.Index.Len() != len(before) {
		t.Errorf("regenerated index has %d cells, want %d", s.Index.Len(), len(before))
	}
	if len(s.tileEntities()) != s.Index.Len() {
		t.Errorf("%d tile entities for %d cells", len(s.tileEntities()), s.Index.Len())
	}
	if !s.RebuildIndex() {
		t.Error("index diverged from tile entities after regeneration")
	}
	for _, a := range s.Agents() {
		if !s.Index.Passable(a.Position) {
			t.Errorf("%s left on impassable %v", a.Name, a.Position)
		}
	}
	if !hasEvent(s, "world", "generation 1") {
		t.Error("regeneration event missing")
	}
}

func TestRegenerateMovesEveryAgent(t *testing.T) {
	s := newTestSim(t, func(c *config.Config) {
		c.World.Width, c.World.Length = 3, 3
		c.Agents.Colonists, c.Agents.Animals = 4, 0
	})
	centre := world.Position{X: 1, Y: 1}
	if err := s.Regenerate(); err != nil {
		t.Fatal(err)
	}
	for _, a := range s.Agents() {
		if a.Position != centre {
			t.Errorf("%s at %v, want the only open cell %v", a.Name, a.Position, centre)
		}
	}
}

func TestRebuildIndexRestoresEntityState(t *testing.T) {
	s := newTestSim(t)
	if !s.RebuildIndex() {
		t.Fatal("fresh index should match its tile entities")
	}

	p := world.Position{X: 2, Y: 2}
	want, _ := s.Index.Lookup(p)
	s.Index.AddRoom(world.NewRect(1, 1, 2, 2))
	if err := s.Index.Set(p, world.TileWater); err != nil {
		t.Fatal(err)
	}

	if s.RebuildIndex() {
		t.Error("hand-edited index should be reported as diverged")
	}
	if got, _ := s.Index.Lookup(p); got != want {
		t.Errorf("rebuilt tile = %v, want %v", got, want)
	}
	if len(s.Index.Rooms()) != 1 {
		t.Error("rooms should survive a rebuild")
	}
	if !s.Index.Revealed(s.Agents()[0].Position) {
		t.Error("revealed plane should survive a rebuild")
	}
}

func TestEventsSince(t *testing.T) {
	s := newTestSim(t)
	_, seq := s.EventsSince(0)

	s.mu.Lock()
	s.EmitEvent(Event{Description: "one", Category: "world"})
	s.EmitEvent(Event{Description: "two", Category: "world"})
	s.mu.Unlock()

	evs, last := s.EventsSince(seq)
	if len(evs) != 2 || evs[0].Description != "one" || evs[1].Seq != seq+2 || last != seq+2 {
		t.Errorf("EventsSince(%d) = %+v, %d", seq, evs, last)
	}
	if evs, _ := s.EventsSince(last); len(evs) != 0 {
		t.Errorf("nothing new expected, got %d", len(evs))
	}

	s.mu.Lock()
	for i := 0; i < maxEvents+5; i++ {
		s.EmitEvent(Event{Description: "spam", Category: "world"})
	}
	s.mu.Unlock()
	evs, _ = s.EventsSince(0)
	if len(evs) != maxEvents {
		t.Errorf("buffer holds %d events, want %d", len(evs), maxEvents)
	}
}

func TestTileView(t *testing.T) {
	s := newTestSim(t)
	clearFlora(s)
	wall, err := s.Tile(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if wall.Tile != "WallGame" || wall.Passable {
		t.Errorf("corner = %+v", wall)
	}
	if _, err := s.Tile(50, 50); !errors.Is(err, world.ErrOutOfBounds) {
		t.Errorf("off-map err = %v", err)
	}

	a := s.Agents()[0]
	p := a.Position
	s.mu.Lock()
	s.spawnPlant(p, resources.Plant{Type: resources.PlantBush, Growth: 0.5})
	s.spawnItem(p, resources.ItemPineLog)
	s.mu.Unlock()

	view, err := s.Tile(p.X, p.Y)
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Hover) != 2 || view.Hover[0] != "Bush Growth: 50.00%" || view.Hover[1] != "PineLog" {
		t.Errorf("hover = %q", view.Hover)
	}
	found := false
	for _, id := range view.Agents {
		found = found || id == a.ID
	}
	if !found {
		t.Errorf("agent %d missing from its tile", a.ID)
	}
}

func TestSpawnAgent(t *testing.T) {
	s := newTestSim(t)
	id, err := s.SpawnAgent(agents.ActorElf)
	if err != nil {
		t.Fatal(err)
	}
	view, err := s.Agent(id.ID)
	if err != nil {
		t.Fatal(err)
	}
	if view.Actor != "Elf" || !view.Roaming {
		t.Errorf("spawned agent = %+v", view)
	}
	if len(s.Agents()) != 5 {
		t.Errorf("population = %d, want 5", len(s.Agents()))
	}
}

func TestParallelDecisions(t *testing.T) {
	s := newTestSim(t, func(c *config.Config) {
		c.World.Width, c.World.Length = 30, 30
		c.Agents.Colonists = parallelThreshold + 6
	})
	s.Tick(1)
	q := s.agentFilter.Query()
	n := 0
	for q.Next() {
		_, _, _, brain, _, _ := q.Get()
		if brain.Motivation == agents.MotivationNone {
			t.Errorf("entity %v left unresolved", q.Entity())
		}
		n++
	}
	if n < parallelThreshold {
		t.Fatalf("only %d agents; parallel path not exercised", n)
	}
}

func TestDespawnKeepsOtherKinds(t *testing.T) {
	s := newTestSim(t)
	s.mu.Lock()
	s.spawnItem(world.Position{X: 2, Y: 2}, resources.ItemCedarLog)
	s.spawnFood(world.Position{X: 2, Y: 2}, resources.DefaultFood(), resources.ItemCabbage)
	s.mu.Unlock()

	if n := s.despawn(s.itemEntities); n != 1 {
		t.Errorf("despawned %d items, want 1", n)
	}
	if len(s.foodEntities()) != 1 {
		t.Error("food is not a plain item and must survive")
	}
}
