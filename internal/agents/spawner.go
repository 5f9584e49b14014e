// Agent spawning: names, actor types, and starting needs for new colonists.
package agents

import (
	"math/rand"

	"github.com/talgya/colony/internal/entropy"
)

// NeedsTemplate gives the max and per-tick rate for each need a new agent
// starts with. A zero Max leaves the need absent.
type NeedsTemplate struct {
	FoodMax           float32 `yaml:"food_max"`
	FoodRate          float32 `yaml:"food_rate"`
	SleepMax          float32 `yaml:"sleep_max"`
	SleepRate         float32 `yaml:"sleep_rate"`
	EntertainmentMax  float32 `yaml:"entertainment_max"`
	EntertainmentRate float32 `yaml:"entertainment_rate"`
}

// Spawner creates agents for the simulation.
type Spawner struct {
	rng    *rand.Rand
	nextID AgentID
	needs  NeedsTemplate
}

// NewSpawner creates an agent spawner with the given seed.
func NewSpawner(seed int64, needs NeedsTemplate) *Spawner {
	return &Spawner{
		rng:    entropy.New(seed, entropy.StreamAgents, 0),
		nextID: 1,
		needs:  needs,
	}
}

// Spawn issues a new identity and starting status for an actor.
func (s *Spawner) Spawn(actor ActorType) (Identity, Status) {
	id := s.nextID
	s.nextID++

	name := actor.String()
	if !actor.IsAnimal() {
		name = s.generateName(actor)
	}
	return Identity{ID: id, Name: name, Actor: actor}, s.startingStatus(actor)
}

// RandomColonist picks a non-animal actor type.
func (s *Spawner) RandomColonist() ActorType {
	return ActorType(s.rng.Intn(int(ActorManCave) + 1))
}

// startingStatus builds needs mostly met at spawn, with some spread so the
// colony does not get hungry in lockstep. Animals only get hunger.
func (s *Spawner) startingStatus(actor ActorType) Status {
	var st Status
	t := s.needs
	if t.FoodMax > 0 {
		st.Food = s.partialNeed(t.FoodMax, t.FoodRate)
	}
	if actor.IsAnimal() {
		return st
	}
	if t.SleepMax > 0 {
		st.Sleep = s.partialNeed(t.SleepMax, t.SleepRate)
	}
	if t.EntertainmentMax > 0 {
		st.Entertainment = s.partialNeed(t.EntertainmentMax, t.EntertainmentRate)
	}
	return st
}

func (s *Spawner) partialNeed(max, rate float32) *Need {
	n := NewNeed(max, rate)
	n.Current = max * (0.6 + s.rng.Float32()*0.4)
	return n
}

func (s *Spawner) generateName(actor ActorType) string {
	firsts := maleNames
	if actor == ActorWoman || (actor != ActorMan && actor != ActorMan2 && s.rng.Float32() < 0.5) {
		firsts = femaleNames
	}
	first := firsts[s.rng.Intn(len(firsts))]
	last := lastNames[s.rng.Intn(len(lastNames))]
	return first + " " + last
}

// Name pools for colonists.
var maleNames = []string{
	"Anselm", "Bors", "Corwin", "Dagfinn", "Emrys", "Fergus", "Godric",
	"Hamish", "Ingram", "Joss", "Konrad", "Lorcan", "Merrick", "Njal",
	"Osric", "Padrig", "Ragnall", "Sigurd", "Tobin", "Ulf", "Wystan",
	"Alaric", "Brand", "Crispin", "Duncan", "Egil", "Garrick", "Hob",
}

var femaleNames = []string{
	"Aelis", "Bryony", "Ciara", "Dervla", "Edda", "Fenna", "Gudrun",
	"Hesper", "Isolde", "Jessamy", "Kestrel", "Linnea", "Maren", "Nia",
	"Orla", "Primrose", "Ragna", "Sabine", "Tova", "Ysolde", "Wynn",
	"Agatha", "Bettany", "Clover", "Elspeth", "Hazel", "Meadow", "Saffi",
}

var lastNames = []string{
	"Barleycorn", "Cobblestone", "Ditchley", "Fairweather", "Furrow",
	"Gristmill", "Hayward", "Hedgerow", "Kettleby", "Longbarrow",
	"Mossbank", "Nettlefield", "Oatley", "Plowright", "Quarrie",
	"Rushmere", "Sheaf", "Thistledown", "Underhill", "Wainwright",
	"Woodcock", "Yarrow", "Appleyard", "Brackenridge", "Cropper",
}
