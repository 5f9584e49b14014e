package engine

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/pathing"
	"github.com/talgya/colony/internal/resources"
	"github.com/talgya/colony/internal/world"
	"github.com/talgya/colony/internal/zones"
)

// actor bundles one agent's components for the action systems.
type actor struct {
	entity ecs.Entity
	id     *agents.Identity
	pos    *world.Position
	status *agents.Status
	brain  *agents.Brain
	path   *pathing.Pathing
	view   *world.Viewshed
}

// workTarget is a cell some form of work should happen at.
type workTarget struct {
	Task  agents.Task
	Pos   world.Position
	Plant ecs.Entity // zero for planting
	Crop  resources.PlantType
}

// act runs the built-in action system for every agent's current task.
// Agents are collected first so actions may spawn and despawn entities.
func (s *Simulation) act() {
	var ents []ecs.Entity
	q := s.agentFilter.Query()
	for q.Next() {
		ents = append(ents, q.Entity())
	}
	for _, e := range ents {
		if !s.ecs.Alive(e) {
			continue
		}
		id, pos, status, brain, path, view := s.agentMap.Get(e)
		a := &actor{entity: e, id: id, pos: pos, status: status, brain: brain, path: path, view: view}

		switch brain.Task {
		case agents.TaskEat:
			s.actEat(a)
		case agents.TaskSleep, agents.TaskSleeping:
			s.actSleep(a)
		case agents.TaskPlay:
			s.actPlay(a)
		case agents.TaskWork, agents.TaskForage, agents.TaskChop, agents.TaskPlant:
			s.actWork(a)
		case agents.TaskMeander, agents.TaskFlee:
			s.actWander(a)
		case agents.TaskHospital:
			s.actHospital(a)
		}
	}
}

// goTo moves the agent one step toward dest, planning a route when the
// current one does not lead there. It reports whether the agent stands on
// dest and whether dest is reachable at all.
func (s *Simulation) goTo(a *actor, dest world.Position) (arrived, reachable bool) {
	if *a.pos == dest {
		return true, true
	}
	if a.path.Destination != dest || len(a.path.Path) == 0 || a.path.Unreachable {
		wasUnreachable := a.path.Unreachable && a.path.Destination == dest
		if !a.path.Route(s.Planner, s.Index, *a.pos, dest) {
			if !wasUnreachable {
				s.EmitEvent(Event{
					Description: fmt.Sprintf("%s cannot reach (%d,%d)", a.id.Name, dest.X, dest.Y),
					Category:    "agent",
					Meta:        map[string]any{"agent_id": a.id.ID, "task": a.brain.Task.String()},
				})
			}
			return false, false
		}
	}
	s.walk(a)
	return *a.pos == dest, true
}

// walk advances one waypoint. A waypoint that turned impassable since the
// route was planned triggers a replan.
func (s *Simulation) walk(a *actor) {
	if a.path.Unreachable {
		return
	}
	next, ok := a.path.Step()
	if !ok {
		return
	}
	if !s.Index.Passable(next) {
		a.path.Route(s.Planner, s.Index, *a.pos, a.path.Destination)
		return
	}
	*a.pos = next
	a.view.Dirty = true
}

// actEat walks to the nearest fresh food and eats it. Without food it
// forages the nearest ripe edible plant instead; the harvest is eaten on a
// later tick.
func (s *Simulation) actEat(a *actor) {
	if a.status.Food == nil {
		a.brain.Complete()
		return
	}
	if e, p, ok := s.nearestFood(*a.pos); ok {
		arrived, reachable := s.goTo(a, p)
		if arrived {
			_, food, _, _ := s.food.Get(e)
			a.status.Food.Replenish(food.Nutrition)
			s.EmitEvent(Event{
				Description: fmt.Sprintf("%s ate %s", a.id.Name, food.Name),
				Category:    "agent",
				Meta:        map[string]any{"agent_id": a.id.ID, "nutrition": food.Nutrition},
			})
			s.ecs.RemoveEntity(e)
			s.Stats.Meals++
			a.brain.Complete()
		}
		if reachable {
			return
		}
	}
	if e, p, ok := s.nearestEdiblePlant(*a.pos); ok {
		if arrived, _ := s.goTo(a, p); !arrived {
			return
		}
		_, plant, _ := s.plants.Get(e)
		if plant.Type.IsEdible() {
			s.eatInPlace(a, e)
			return
		}
		s.harvest(a, e, resources.Forage)
	}
}

// eatInPlace eats a plant where it stands instead of harvesting it first.
func (s *Simulation) eatInPlace(a *actor, e ecs.Entity) {
	_, plant, _ := s.plants.Get(e)
	kind := plant.Type
	h := resources.Forage(plant)
	if h.Empty() {
		return
	}
	a.status.Food.Replenish(h.Item.Nutrition() * float32(h.Quantity))
	if h.Destroy {
		s.ecs.RemoveEntity(e)
	}
	s.Stats.Meals++
	s.EmitEvent(Event{
		Description: fmt.Sprintf("%s ate a %s where it grew", a.id.Name, kind),
		Category:    "agent",
		Meta:        map[string]any{"agent_id": a.id.ID},
	})
	a.brain.Complete()
}

// actSleep lies the agent down, then restores sleep until it is full.
func (s *Simulation) actSleep(a *actor) {
	if a.status.Sleep == nil {
		a.brain.Complete()
		return
	}
	if a.brain.Rest() {
		a.path.Reset()
		return
	}
	a.status.Sleep.Replenish(s.cfg.Actions.SleepRestore)
	if a.status.Sleep.Full() {
		a.brain.Complete()
	}
}

// actPlay restores entertainment until it is full.
func (s *Simulation) actPlay(a *actor) {
	if a.status.Entertainment == nil {
		a.brain.Complete()
		return
	}
	a.status.Entertainment.Replenish(s.cfg.Actions.PlayRestore)
	if a.status.Entertainment.Full() {
		a.brain.Complete()
	}
}

// actWork narrows generic work to the nearest job, walks there and does it.
func (s *Simulation) actWork(a *actor) {
	t, ok := s.findWork(a.id.ID, *a.pos, s.jobs())
	if !ok {
		a.brain.Complete()
		return
	}
	if a.brain.Task != t.Task && !a.brain.Engage(t.Task) {
		return
	}
	arrived, reachable := s.goTo(a, t.Pos)
	if !reachable {
		s.markUnreachable(a.id.ID, t.Pos)
		a.brain.Complete()
		return
	}
	if !arrived {
		return
	}
	switch t.Task {
	case agents.TaskForage:
		s.harvest(a, t.Plant, resources.Forage)
	case agents.TaskChop:
		s.harvest(a, t.Plant, resources.Chop)
	case agents.TaskPlant:
		s.spawnPlant(t.Pos, resources.Plant{Type: t.Crop})
		s.EmitEvent(Event{
			Description: fmt.Sprintf("%s planted %s at (%d,%d)", a.id.Name, t.Crop, t.Pos.X, t.Pos.Y),
			Category:    "resource",
			Meta:        map[string]any{"agent_id": a.id.ID},
		})
	}
	a.brain.Complete()
}

// harvest applies fn to the plant entity, drops the yield on its cell and
// removes the plant when the harvest destroys it.
func (s *Simulation) harvest(a *actor, e ecs.Entity, fn func(*resources.Plant) resources.Harvest) {
	if !s.ecs.Alive(e) {
		return
	}
	pos, plant, _ := s.plants.Get(e)
	kind := plant.Type
	h := fn(plant)
	if h.Empty() {
		return
	}
	at := *pos
	s.spawnHarvest(at, h)
	if h.Destroy {
		s.ecs.RemoveEntity(e)
	}
	s.Stats.Harvests++
	s.EmitEvent(Event{
		Description: fmt.Sprintf("%s harvested %d %s from a %s", a.id.Name, h.Quantity, h.Item, kind),
		Category:    "resource",
		Meta:        map[string]any{"agent_id": a.id.ID, "x": at.X, "y": at.Y},
	})
}

// actWander walks to a random nearby passable cell, finishing on arrival.
func (s *Simulation) actWander(a *actor) {
	if len(a.path.Path) == 0 {
		dest, ok := s.wanderTarget(*a.pos, s.cfg.Actions.WanderRadius)
		if !ok || !a.path.Route(s.Planner, s.Index, *a.pos, dest) {
			a.brain.Complete()
			return
		}
	}
	s.walk(a)
	if a.path.Arrived() {
		a.brain.Complete()
	}
}

// actHospital walks to the nearest hospital zone, if any.
func (s *Simulation) actHospital(a *actor) {
	best, found := world.Position{}, false
	for _, d := range s.Zones.List() {
		if d.Zone.Type != zones.ZoneHospital {
			continue
		}
		c := d.Area.Center()
		if !found || world.Distance(*a.pos, c) < world.Distance(*a.pos, best) {
			best, found = c, true
		}
	}
	if found {
		s.goTo(a, best)
	}
}

func (s *Simulation) wanderTarget(from world.Position, radius int) (world.Position, bool) {
	if radius < 1 {
		radius = 1
	}
	for attempt := 0; attempt < 16; attempt++ {
		p := world.Position{
			X: from.X + s.rng.Intn(2*radius+1) - radius,
			Y: from.Y + s.rng.Intn(2*radius+1) - radius,
			Z: from.Z,
		}
		if p != from && s.Index.Passable(p) {
			return p, true
		}
	}
	return world.Position{}, false
}

// nearestFood finds the closest food item that has not rotted.
func (s *Simulation) nearestFood(from world.Position) (ecs.Entity, world.Position, bool) {
	var best ecs.Entity
	var bestPos world.Position
	bestDist := -1
	q := s.foodFilter.Query()
	for q.Next() {
		pos, food, _ := q.Get()
		if food.Rotten() {
			continue
		}
		if d := world.Distance(from, *pos); bestDist < 0 || d < bestDist {
			best, bestPos, bestDist = q.Entity(), *pos, d
		}
	}
	return best, bestPos, bestDist >= 0
}

// nearestEdiblePlant finds the closest ripe plant whose forage yield is food.
func (s *Simulation) nearestEdiblePlant(from world.Position) (ecs.Entity, world.Position, bool) {
	var best ecs.Entity
	var bestPos world.Position
	bestDist := -1
	q := s.plantFilter.Query()
	for q.Next() {
		pos, plant := q.Get()
		y := plant.Type.ForageYield()
		if !plant.Mature() || !y.OK || !y.Item.IsFood() {
			continue
		}
		if d := world.Distance(from, *pos); bestDist < 0 || d < bestDist {
			best, bestPos, bestDist = q.Entity(), *pos, d
		}
	}
	return best, bestPos, bestDist >= 0
}

// unreachableRetry is how many ticks a job an agent failed to route to is
// skipped for that agent before it is tried again.
const unreachableRetry = 500

// jobs lists the work waiting for a colonist: ripe plants designated for
// foraging, plants designated for chopping, and empty passable cells of
// supplied farm zones.
func (s *Simulation) jobs() []workTarget {
	var out []workTarget
	occupied := make(map[world.Position]bool)
	q := s.plantFilter.Query()
	for q.Next() {
		pos, plant := q.Get()
		occupied[*pos] = true
		e := q.Entity()
		switch {
		case s.foragable.Has(e) && plant.Mature() && plant.Type.ForageYield().OK:
			out = append(out, workTarget{Task: agents.TaskForage, Pos: *pos, Plant: e})
		case s.choppable.Has(e) && plant.Type.ChopYield().OK:
			out = append(out, workTarget{Task: agents.TaskChop, Pos: *pos, Plant: e})
		}
	}

	for _, d := range s.farmZones() {
		if !d.Zone.MaterialDelivered {
			continue
		}
		crop, _ := d.Zone.FarmPlant()
		for x := d.Area.X1; x < d.Area.X2; x++ {
			for y := d.Area.Y1; y < d.Area.Y2; y++ {
				p := world.Position{X: x, Y: y}
				if occupied[p] || !s.Index.Passable(p) {
					continue
				}
				occupied[p] = true
				out = append(out, workTarget{Task: agents.TaskPlant, Pos: p, Crop: crop})
			}
		}
	}
	return out
}

// findWork picks the job closest to from, skipping jobs the agent recently
// failed to reach.
func (s *Simulation) findWork(id agents.AgentID, from world.Position, jobs []workTarget) (workTarget, bool) {
	var best workTarget
	bestDist := -1
	for _, t := range jobs {
		if s.unreachableFor(id, t.Pos) {
			continue
		}
		if d := world.Distance(from, t.Pos); bestDist < 0 || d < bestDist {
			best, bestDist = t, d
		}
	}
	return best, bestDist >= 0
}

// hasWork reports whether any of jobs is worth trying for the agent.
func (s *Simulation) hasWork(id agents.AgentID, jobs []workTarget) bool {
	for _, t := range jobs {
		if !s.unreachableFor(id, t.Pos) {
			return true
		}
	}
	return false
}

func (s *Simulation) unreachableFor(id agents.AgentID, p world.Position) bool {
	at, ok := s.unreachable[id][p]
	return ok && s.LastTick-at < unreachableRetry
}

func (s *Simulation) markUnreachable(id agents.AgentID, p world.Position) {
	cells := s.unreachable[id]
	if cells == nil {
		cells = make(map[world.Position]uint64)
		s.unreachable[id] = cells
	}
	cells[p] = s.LastTick
}
