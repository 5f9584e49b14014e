package engine

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/entropy"
	"github.com/talgya/colony/internal/pathing"
	"github.com/talgya/colony/internal/resources"
	"github.com/talgya/colony/internal/world"
)

// Render layers for the transform hint.
const (
	layerTile  float32 = 0
	layerPlant float32 = 1
	layerItem  float32 = 2
)

// SpawnTile implements world.TileSpawner: one entity per generated cell.
func (s *Simulation) SpawnTile(p world.Position, t world.TileType) {
	size := world.Flat(world.TileSize)
	if t.IsWall() {
		size = world.Cube(world.TileSize)
	}
	tr := p.ToTransformLayer(layerTile)
	s.tiles.NewEntity(&p, &world.Tile{Type: t}, &size, &tr)
}

// generateMap spawns tile entities for the current generation and installs
// the resulting index. Callers hold mu (or own s exclusively).
func (s *Simulation) generateMap() {
	rng := entropy.New(s.seed, entropy.StreamTerrain, s.generation)
	idx := world.Generate(s.biome, s.cfg.Dimensions(), rng, s)
	if s.Index == nil {
		s.Index = idx
	} else {
		s.Index.Replace(idx)
	}
}

// spawnFlora scatters plants over the current index.
func (s *Simulation) spawnFlora() {
	cfg := resources.DefaultScatterConfig(s.seed + entropy.StreamFlora + int64(s.generation))
	if s.cfg.World.FloraDensity > 0 {
		cfg.Density = s.cfg.World.FloraDensity
	}
	if s.cfg.World.FloraFrequency > 0 {
		cfg.Frequency = s.cfg.World.FloraFrequency
	}
	for _, pl := range resources.Scatter(s.Index, cfg) {
		s.spawnPlant(pl.Position, pl.Plant)
	}
}

func (s *Simulation) spawnPlant(p world.Position, plant resources.Plant) ecs.Entity {
	tr := p.ToTransformLayer(layerPlant)
	return s.plants.NewEntity(&p, &plant, &tr)
}

// spawnFood places a food item on a cell.
func (s *Simulation) spawnFood(p world.Position, f resources.Food, item resources.ItemType) ecs.Entity {
	tr := p.ToTransformLayer(layerItem)
	return s.food.NewEntity(&p, &f, &resources.Item{Type: item}, &tr)
}

// spawnItem places a non-food item such as a log on a cell.
func (s *Simulation) spawnItem(p world.Position, item resources.ItemType) ecs.Entity {
	tr := p.ToTransformLayer(layerItem)
	return s.items.NewEntity(&p, &resources.Item{Type: item}, &tr)
}

// spawnHarvest turns a harvest into entities on the cell: food items for
// edible yields, plain items otherwise.
func (s *Simulation) spawnHarvest(p world.Position, h resources.Harvest) {
	for i := 0; i < h.Quantity; i++ {
		if h.Item.IsFood() {
			s.spawnFood(p, resources.NewFood(h.Item), h.Item)
		} else {
			s.spawnItem(p, h.Item)
		}
	}
}

// spawnRations lays out generic rations on random passable cells.
func (s *Simulation) spawnRations(n int) {
	for i := 0; i < n; i++ {
		p, ok := s.randomPassable()
		if !ok {
			return
		}
		s.spawnFood(p, resources.DefaultFood(), resources.ItemCabbage)
	}
}

// spawnAgent creates an agent on a random passable cell. Every agent gets
// an empty brain, a default pathing and a dirty viewshed.
func (s *Simulation) spawnAgent(actor agents.ActorType, roaming bool) (agents.Identity, error) {
	p, ok := s.randomPassable()
	if !ok {
		return agents.Identity{}, fmt.Errorf("spawn %s: %w", actor, ErrNoStandingRoom)
	}
	id, status := s.spawner.Spawn(actor)
	brain := agents.Brain{}
	path := pathing.Pathing{}
	view := world.NewViewshed(s.cfg.Agents.SightRange)

	e := s.agentMap.NewEntity(&id, &p, &status, &brain, &path, &view)
	if roaming {
		s.roaming.Add(e, &agents.Roaming{})
	}
	s.agentIndex[id.ID] = e
	return id, nil
}

// randomPassable draws cells until it hits a passable one. After a bounded
// number of misses it scans for the first passable cell, so it only fails
// on a map with nowhere to stand.
func (s *Simulation) randomPassable() (world.Position, bool) {
	dims := s.Index.Dimensions()
	for attempt := 0; attempt < dims.Cells()*4; attempt++ {
		p := world.Position{X: s.rng.Intn(dims.Width), Y: s.rng.Intn(dims.Length)}
		if s.Index.Passable(p) {
			return p, true
		}
	}
	return firstPassable(s.Index)
}

// firstPassable scans idx column by column.
func firstPassable(idx *world.Index) (world.Position, bool) {
	dims := idx.Dimensions()
	for x := 0; x < dims.Width; x++ {
		for y := 0; y < dims.Length; y++ {
			if p := (world.Position{X: x, Y: y}); idx.Passable(p) {
				return p, true
			}
		}
	}
	return world.Position{}, false
}

// placedTiles scans the tile entities.
func (s *Simulation) placedTiles() []world.PlacedTile {
	var out []world.PlacedTile
	q := s.tileFilter.Query()
	for q.Next() {
		p, t := q.Get()
		out = append(out, world.PlacedTile{Position: *p, Type: t.Type})
	}
	return out
}

// despawn removes every entity matched by collect. Entities are gathered
// first: the store cannot change shape during a query.
func (s *Simulation) despawn(collect func() []ecs.Entity) int {
	doomed := collect()
	for _, e := range doomed {
		s.ecs.RemoveEntity(e)
	}
	return len(doomed)
}

func (s *Simulation) tileEntities() []ecs.Entity {
	var out []ecs.Entity
	q := s.tileFilter.Query()
	for q.Next() {
		out = append(out, q.Entity())
	}
	return out
}

func (s *Simulation) plantEntities() []ecs.Entity {
	var out []ecs.Entity
	q := s.plantFilter.Query()
	for q.Next() {
		out = append(out, q.Entity())
	}
	return out
}

func (s *Simulation) foodEntities() []ecs.Entity {
	var out []ecs.Entity
	q := s.foodFilter.Query()
	for q.Next() {
		out = append(out, q.Entity())
	}
	return out
}

func (s *Simulation) itemEntities() []ecs.Entity {
	var out []ecs.Entity
	q := s.itemFilter.Query()
	for q.Next() {
		out = append(out, q.Entity())
	}
	return out
}
