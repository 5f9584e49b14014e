// Simulation ties together all colony systems and runs them each tick.
package engine

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/mlange-42/ark/ecs"
	"github.com/rs/zerolog"

	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/config"
	"github.com/talgya/colony/internal/entropy"
	"github.com/talgya/colony/internal/pathing"
	"github.com/talgya/colony/internal/resources"
	"github.com/talgya/colony/internal/world"
	"github.com/talgya/colony/internal/zones"
)

// maxEvents bounds the in-memory event log.
const maxEvents = 1000

// Event is a notable occurrence in the colony.
type Event struct {
	Seq         uint64         `json:"seq"`
	Tick        uint64         `json:"tick"`
	Description string         `json:"description"`
	Category    string         `json:"category"` // "agent", "resource", "zone", "command", "world"
	Meta        map[string]any `json:"meta,omitempty"`
}

// SimStats tracks aggregate colony statistics.
type SimStats struct {
	Tick             uint64                    `json:"tick"`
	Population       int                       `json:"population"`
	Plants           int                       `json:"plants"`
	MaturePlants     int                       `json:"mature_plants"`
	FoodItems        int                       `json:"food_items"`
	RottenFood       int                       `json:"rotten_food"`
	Materials        int                       `json:"materials"`
	AvgFood          float32                   `json:"avg_food"`
	AvgSleep         float32                   `json:"avg_sleep"`
	AvgEntertainment float32                   `json:"avg_entertainment"`
	Motivations      map[agents.Motivation]int `json:"motivations"`
	Tasks            map[agents.Task]int       `json:"tasks"`
	Meals            int                       `json:"meals"`
	Harvests         int                       `json:"harvests"`
	Generation       int                       `json:"generation"`
}

// Simulation holds the complete colony state. Entities live in an ark
// world; the tile index is rebuilt from it on demand. All mutation and every
// entity query happens under the write lock; readers of plain fields such
// as Events and Stats take RLock.
type Simulation struct {
	mu sync.RWMutex

	cfg        config.Config
	log        zerolog.Logger
	seed       int64
	generation int
	biome      world.Biome

	ecs     *ecs.World
	Index   *world.Index
	Zones   *zones.Registry
	Planner pathing.Planner
	spawner *agents.Spawner
	rng     *rand.Rand // action stream

	tiles      *ecs.Map4[world.Position, world.Tile, world.SizeXYZ, world.Transform]
	tileFilter *ecs.Filter2[world.Position, world.Tile]

	plants      *ecs.Map3[world.Position, resources.Plant, world.Transform]
	plantFilter *ecs.Filter2[world.Position, resources.Plant]
	foragable   *ecs.Map[resources.Foragable]
	choppable   *ecs.Map[resources.Choppable]

	food       *ecs.Map4[world.Position, resources.Food, resources.Item, world.Transform]
	foodFilter *ecs.Filter3[world.Position, resources.Food, resources.Item]
	items      *ecs.Map3[world.Position, resources.Item, world.Transform]
	itemFilter *ecs.Filter2[world.Position, resources.Item] // non-food only

	agentMap    *ecs.Map6[agents.Identity, world.Position, agents.Status, agents.Brain, pathing.Pathing, world.Viewshed]
	agentFilter *ecs.Filter6[agents.Identity, world.Position, agents.Status, agents.Brain, pathing.Pathing, world.Viewshed]
	brains      *ecs.Map[agents.Brain]
	roaming     *ecs.Map[agents.Roaming]
	agentIndex  map[agents.AgentID]ecs.Entity
	unreachable map[agents.AgentID]map[world.Position]uint64 // job cell -> tick routing failed

	Events   []Event
	eventSeq uint64
	LastTick uint64
	Stats    SimStats
}

// New builds a simulation from configuration: it generates the map,
// scatters flora, lays out starting rations and spawns the population.
func New(cfg config.Config, log zerolog.Logger) (*Simulation, error) {
	biome, err := cfg.Biome()
	if err != nil {
		return nil, err
	}
	seed := entropy.ResolveSeed(cfg.Seed)
	w := ecs.NewWorld()

	s := &Simulation{
		cfg:     cfg,
		log:     log.With().Str("component", "simulation").Logger(),
		seed:    seed,
		biome:   biome,
		ecs:     w,
		Zones:   zones.NewRegistry(),
		Planner: pathing.NewAStar(),
		spawner: agents.NewSpawner(seed, cfg.Agents.Needs),
		rng:     entropy.New(seed, entropy.StreamActions, 0),

		tiles:      ecs.NewMap4[world.Position, world.Tile, world.SizeXYZ, world.Transform](w),
		tileFilter: ecs.NewFilter2[world.Position, world.Tile](w),

		plants:      ecs.NewMap3[world.Position, resources.Plant, world.Transform](w),
		plantFilter: ecs.NewFilter2[world.Position, resources.Plant](w),
		foragable:   ecs.NewMap[resources.Foragable](w),
		choppable:   ecs.NewMap[resources.Choppable](w),

		food:       ecs.NewMap4[world.Position, resources.Food, resources.Item, world.Transform](w),
		foodFilter: ecs.NewFilter3[world.Position, resources.Food, resources.Item](w),
		items:      ecs.NewMap3[world.Position, resources.Item, world.Transform](w),
		itemFilter: ecs.NewFilter2[world.Position, resources.Item](w).Without(ecs.C[resources.Food]()),

		agentMap:    ecs.NewMap6[agents.Identity, world.Position, agents.Status, agents.Brain, pathing.Pathing, world.Viewshed](w),
		agentFilter: ecs.NewFilter6[agents.Identity, world.Position, agents.Status, agents.Brain, pathing.Pathing, world.Viewshed](w),
		brains:      ecs.NewMap[agents.Brain](w),
		roaming:     ecs.NewMap[agents.Roaming](w),
		agentIndex:  make(map[agents.AgentID]ecs.Entity),
		unreachable: make(map[agents.AgentID]map[world.Position]uint64),
		Stats:       SimStats{Motivations: map[agents.Motivation]int{}, Tasks: map[agents.Task]int{}},
	}

	s.generateMap()
	s.spawnFlora()
	s.spawnRations(cfg.Actions.StartingRations)
	for i := 0; i < cfg.Agents.Colonists; i++ {
		if _, err := s.spawnAgent(s.spawner.RandomColonist(), true); err != nil {
			return nil, fmt.Errorf("spawn colonists: %w", err)
		}
	}
	for i := 0; i < cfg.Agents.Animals; i++ {
		actor := agents.ActorPig
		if i%2 == 1 {
			actor = agents.ActorRat
		}
		if _, err := s.spawnAgent(actor, true); err != nil {
			return nil, fmt.Errorf("spawn animals: %w", err)
		}
	}
	s.updateVisibility()
	s.updateStats()

	s.log.Info().
		Int64("seed", seed).
		Str("biome", biome.Name).
		Int("width", cfg.World.Width).
		Int("length", cfg.World.Length).
		Int("agents", len(s.agentIndex)).
		Int("plants", s.Stats.Plants).
		Msg("simulation created")
	return s, nil
}

// Seed returns the session seed every random stream derives from.
func (s *Simulation) Seed() int64 { return s.seed }

// Generation returns how many times the map has been regenerated.
func (s *Simulation) Generation() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastTick
}

// Tick advances every system by one tick. Stage order is fixed: resource
// lifecycle, needs decay, motivation resolution with task dispatch, then
// the action systems and visibility.
func (s *Simulation) Tick(tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.LastTick = tick
	s.growPlants()
	s.spoilFood()
	s.decayNeeds()
	if err := s.think(); err != nil {
		s.log.Error().Err(err).Uint64("tick", tick).Msg("decision stage failed")
	}
	s.act()
	s.updateVisibility()
}

// TickDay refreshes statistics and logs a daily report.
func (s *Simulation) TickDay(tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updateStats()
	s.log.Info().
		Uint64("tick", tick).
		Str("time", SimTime(tick)).
		Int("population", s.Stats.Population).
		Int("plants", s.Stats.Plants).
		Int("food", s.Stats.FoodItems).
		Str("avg_food", fmt.Sprintf("%.1f", s.Stats.AvgFood)).
		Str("avg_sleep", fmt.Sprintf("%.1f", s.Stats.AvgSleep)).
		Int("meals", s.Stats.Meals).
		Int("harvests", s.Stats.Harvests).
		Msg("daily report")
	s.Stats.Meals = 0
	s.Stats.Harvests = 0
}

// EmitEvent stamps and appends an event, trimming the oldest beyond
// maxEvents. Callers hold mu.
func (s *Simulation) EmitEvent(e Event) {
	if e.Tick == 0 {
		e.Tick = s.LastTick
	}
	s.eventSeq++
	e.Seq = s.eventSeq
	s.Events = append(s.Events, e)
	if len(s.Events) > maxEvents {
		s.Events = s.Events[len(s.Events)-maxEvents:]
	}
}

// EventsSince returns the buffered events with a sequence number above
// seq, oldest first, plus the latest sequence number. Events trimmed from
// the buffer before they were read are lost.
func (s *Simulation) EventsSince(seq uint64) ([]Event, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := sort.Search(len(s.Events), func(i int) bool { return s.Events[i].Seq > seq })
	out := make([]Event, len(s.Events)-i)
	copy(out, s.Events[i:])
	return out, s.eventSeq
}

// StatsSnapshot returns a copy of the current statistics.
func (s *Simulation) StatsSnapshot() SimStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.Stats
	out.Motivations = make(map[agents.Motivation]int, len(s.Stats.Motivations))
	for k, v := range s.Stats.Motivations {
		out.Motivations[k] = v
	}
	out.Tasks = make(map[agents.Task]int, len(s.Stats.Tasks))
	for k, v := range s.Stats.Tasks {
		out.Tasks[k] = v
	}
	return out
}

// updateStats recomputes aggregates. Callers hold mu.
func (s *Simulation) updateStats() {
	st := &s.Stats
	st.Tick = s.LastTick
	st.Generation = s.generation
	st.Population, st.Plants, st.MaturePlants, st.FoodItems, st.RottenFood, st.Materials = 0, 0, 0, 0, 0, 0
	st.Motivations = map[agents.Motivation]int{}
	st.Tasks = map[agents.Task]int{}

	var food, sleep, fun float32
	var nFood, nSleep, nFun int
	q := s.agentFilter.Query()
	for q.Next() {
		_, _, status, brain, _, _ := q.Get()
		st.Population++
		st.Motivations[brain.Motivation]++
		st.Tasks[brain.Task]++
		if status.Food != nil {
			food += status.Food.Percent()
			nFood++
		}
		if status.Sleep != nil {
			sleep += status.Sleep.Percent()
			nSleep++
		}
		if status.Entertainment != nil {
			fun += status.Entertainment.Percent()
			nFun++
		}
	}
	st.AvgFood = avg(food, nFood)
	st.AvgSleep = avg(sleep, nSleep)
	st.AvgEntertainment = avg(fun, nFun)

	pq := s.plantFilter.Query()
	for pq.Next() {
		_, plant := pq.Get()
		st.Plants++
		if plant.Mature() {
			st.MaturePlants++
		}
	}
	fq := s.foodFilter.Query()
	for fq.Next() {
		_, f, _ := fq.Get()
		st.FoodItems++
		if f.Rotten() {
			st.RottenFood++
		}
	}
	iq := s.itemFilter.Query()
	for iq.Next() {
		st.Materials++
	}
}

func avg(sum float32, n int) float32 {
	if n == 0 {
		return 0
	}
	return sum / float32(n)
}
