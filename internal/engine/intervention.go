package engine

import (
	"errors"
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/entropy"
	"github.com/talgya/colony/internal/resources"
	"github.com/talgya/colony/internal/world"
	"github.com/talgya/colony/internal/zones"
)

// ErrAgentNotFound is returned for commands naming an unknown agent.
var ErrAgentNotFound = errors.New("agent not found")

// ErrNoPlant is returned when a plant designation targets an empty cell.
var ErrNoPlant = errors.New("no plant at position")

// ErrNoStandingRoom is returned when a map has no passable cell.
var ErrNoStandingRoom = errors.New("no passable cell")

// Condition is an externally reported agent condition. Empty strings clear
// the crisis or danger.
type Condition struct {
	Crisis  string `json:"crisis"`
	Danger  string `json:"danger"`
	Injured bool   `json:"injured"`
}

// agentEntity resolves an agent ID. Callers hold mu.
func (s *Simulation) agentEntity(id agents.AgentID) (ecs.Entity, error) {
	e, ok := s.agentIndex[id]
	if !ok || !s.ecs.Alive(e) {
		return ecs.Entity{}, fmt.Errorf("agent %d: %w", id, ErrAgentNotFound)
	}
	return e, nil
}

// IssueOrder installs a standing order on an agent. The order outranks
// everything but a crisis from the next tick on.
func (s *Simulation) IssueOrder(id agents.AgentID, order string) error {
	if order == "" {
		return s.ClearOrder(id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.agentEntity(id)
	if err != nil {
		return err
	}
	ident, _, _, brain, _, _ := s.agentMap.Get(e)
	brain.SetOrder(order)
	s.EmitEvent(Event{
		Description: fmt.Sprintf("%s was ordered: %s", ident.Name, order),
		Category:    "command",
		Meta:        map[string]any{"agent_id": id, "order": order},
	})
	s.log.Info().Uint64("agent", uint64(id)).Str("order", order).Msg("order issued")
	return nil
}

// ClearOrder removes an agent's standing order.
func (s *Simulation) ClearOrder(id agents.AgentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.agentEntity(id)
	if err != nil {
		return err
	}
	s.brains.Get(e).SetOrder("")
	s.log.Info().Uint64("agent", uint64(id)).Msg("order cleared")
	return nil
}

// Remotivate clears an agent's motivation, task and order so the next
// tick resolves from scratch. Its route is dropped too.
func (s *Simulation) Remotivate(id agents.AgentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.agentEntity(id)
	if err != nil {
		return err
	}
	_, _, _, brain, path, _ := s.agentMap.Get(e)
	brain.Remotivate()
	path.Reset()
	s.log.Info().Uint64("agent", uint64(id)).Msg("agent remotivated")
	return nil
}

// SetCondition records a crisis, danger or injury reported for an agent.
func (s *Simulation) SetCondition(id agents.AgentID, c Condition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.agentEntity(id)
	if err != nil {
		return err
	}
	_, _, status, _, _, _ := s.agentMap.Get(e)
	status.Crisis = c.Crisis
	status.Danger = c.Danger
	status.Injured = c.Injured
	return nil
}

// DesignateZone creates a zone over area, which must lie inside the map.
func (s *Simulation) DesignateZone(area world.Rect, z zones.Zone) (zones.ZoneID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if area.X2 <= area.X1 || area.Y2 <= area.Y1 ||
		!s.Index.InBounds(world.Position{X: area.X1, Y: area.Y1}) ||
		!s.Index.InBounds(world.Position{X: area.X2 - 1, Y: area.Y2 - 1}) {
		return 0, fmt.Errorf("zone %+v: %w", area, world.ErrOutOfBounds)
	}
	// Overlaps are allowed; a cell then belongs to every zone covering it.
	overlaps := 0
	for _, d := range s.Zones.List() {
		if d.Area.Intersect(area) {
			overlaps++
		}
	}
	id := s.Zones.Designate(area, z)
	s.EmitEvent(Event{
		Description: fmt.Sprintf("%s zone designated at (%d,%d)-(%d,%d)", z.Type, area.X1, area.Y1, area.X2, area.Y2),
		Category:    "zone",
		Meta:        map[string]any{"zone_id": id, "overlaps": overlaps},
	})
	return id, nil
}

// UpdateZone changes a zone's type, its crop, or both. Nil leaves a field
// as it is.
func (s *Simulation) UpdateZone(id zones.ZoneID, t *zones.ZoneType, crop *resources.PlantType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t != nil {
		if err := s.Zones.SetType(id, *t); err != nil {
			return err
		}
	}
	if crop != nil {
		if err := s.Zones.AssignPlant(id, *crop); err != nil {
			return err
		}
	}
	d, ok := s.Zones.Get(id)
	if !ok {
		return fmt.Errorf("update zone %d: %w", id, zones.ErrZoneNotFound)
	}
	s.EmitEvent(Event{
		Description: fmt.Sprintf("zone %d is now %s", id, d.Zone.Type),
		Category:    "zone",
		Meta:        map[string]any{"zone_id": id},
	})
	return nil
}

// UndesignateZone removes a zone.
func (s *Simulation) UndesignateZone(id zones.ZoneID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Zones.Undesignate(id); err != nil {
		return err
	}
	s.EmitEvent(Event{Description: fmt.Sprintf("zone %d removed", id), Category: "zone"})
	return nil
}

// DeliverMaterial marks a zone supplied, which lets farm zones be planted.
func (s *Simulation) DeliverMaterial(id zones.ZoneID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Zones.DeliverMaterial(id)
}

// DesignatePlant marks the plant on p for foraging (chop false) or
// chopping (chop true).
func (s *Simulation) DesignatePlant(p world.Position, chop bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var target ecs.Entity
	found := false
	q := s.plantFilter.Query()
	for q.Next() {
		pos, _ := q.Get()
		if pos.X == p.X && pos.Y == p.Y {
			target, found = q.Entity(), true
			q.Close()
			break
		}
	}
	if !found {
		return fmt.Errorf("designate (%d,%d): %w", p.X, p.Y, ErrNoPlant)
	}
	if chop {
		if !s.choppable.Has(target) {
			s.choppable.Add(target, &resources.Choppable{})
		}
	} else if !s.foragable.Has(target) {
		s.foragable.Add(target, &resources.Foragable{})
	}
	return nil
}

// SpawnAgent adds a new agent of the given type on a random passable cell.
func (s *Simulation) SpawnAgent(actor agents.ActorType) (agents.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.spawnAgent(actor, true)
	if err != nil {
		return id, err
	}
	s.EmitEvent(Event{Description: fmt.Sprintf("%s joined the colony", id.Name), Category: "agent"})
	return id, nil
}

// Regenerate replaces the map wholesale under the write lock: tiles,
// plants and items are despawned and regenerated from the next seed
// generation, and every agent is dropped on a new passable cell.
func (s *Simulation) Regenerate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Dry run of the next generation: the live world is left alone when the
	// new map would have nowhere for agents to stand.
	next := entropy.New(s.seed, entropy.StreamTerrain, s.generation+1)
	if _, ok := firstPassable(world.Generate(s.biome, s.cfg.Dimensions(), next, nil)); !ok {
		return fmt.Errorf("regenerate generation %d: %w", s.generation+1, ErrNoStandingRoom)
	}

	s.despawn(s.tileEntities)
	s.despawn(s.plantEntities)
	s.despawn(s.foodEntities)
	s.despawn(s.itemEntities)
	clear(s.unreachable)

	s.generation++
	s.generateMap()
	s.spawnFlora()
	s.spawnRations(s.cfg.Actions.StartingRations)

	var ents []ecs.Entity
	q := s.agentFilter.Query()
	for q.Next() {
		ents = append(ents, q.Entity())
	}
	for _, e := range ents {
		_, pos, _, brain, path, view := s.agentMap.Get(e)
		if p, ok := s.randomPassable(); ok {
			*pos = p
		}
		brain.Complete()
		path.Reset()
		view.Dirty = true
	}
	s.updateVisibility()
	s.updateStats()

	s.EmitEvent(Event{
		Description: fmt.Sprintf("the world was regenerated (generation %d)", s.generation),
		Category:    "world",
	})
	s.log.Info().Int("generation", s.generation).Int("plants", s.Stats.Plants).Msg("map regenerated")
	return nil
}

// RebuildIndex derives the index from the spawned tile entities and swaps
// it in. It reports whether the rebuilt index matched the live one.
func (s *Simulation) RebuildIndex() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rebuilt := world.Rebuild(s.Index.Dimensions(), s.placedTiles())
	same := rebuilt.Equal(s.Index)
	if !same {
		s.log.Warn().Int("live", s.Index.Len()).Int("rebuilt", rebuilt.Len()).Msg("index diverged from tile entities")
	}
	for _, r := range s.Index.Rooms() {
		rebuilt.AddRoom(r)
	}
	dims := s.Index.Dimensions()
	for x := 0; x < dims.Width; x++ {
		for y := 0; y < dims.Length; y++ {
			if p := (world.Position{X: x, Y: y}); s.Index.Revealed(p) {
				rebuilt.Reveal(p)
			}
		}
	}
	s.Index.Replace(rebuilt)
	clear(s.unreachable)
	return same
}
