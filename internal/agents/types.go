// Package agents provides the colonist data model: needs, motivation
// resolution, and task dispatch.
package agents

import (
	"strings"

	"github.com/talgya/colony/internal/world"
)

// AgentID is a unique, stable identifier for an agent. Cross-entity
// references use it rather than holding the entity itself.
type AgentID uint64

// ActorType is the kind of creature an agent is.
type ActorType uint8

const (
	ActorDwarf ActorType = iota
	ActorManCrazy
	ActorElf
	ActorTeen
	ActorRanger
	ActorWoman
	ActorMan
	ActorMan2
	ActorManCave
	ActorPig
	ActorRat
)

// NumActorTypes is the total number of actor types.
const NumActorTypes = 11

var actorNames = [NumActorTypes]string{
	"Dwarf", "ManCrazy", "Elf", "Teen", "Ranger", "Woman", "Man", "Man2", "ManCave", "Pig", "Rat",
}

// String returns the actor's name.
func (a ActorType) String() string {
	if int(a) < len(actorNames) {
		return actorNames[a]
	}
	return "Unknown"
}

// ParseActorType looks an actor type up by name, case-insensitively.
func ParseActorType(name string) (ActorType, bool) {
	for i, n := range actorNames {
		if strings.EqualFold(n, name) {
			return ActorType(i), true
		}
	}
	return 0, false
}

// SpriteRowCol returns the actor's sprite sheet cell.
func (a ActorType) SpriteRowCol() (row, col int) {
	switch a {
	case ActorDwarf:
		return 59, 13
	case ActorManCrazy:
		return 59, 15
	case ActorElf:
		return 59, 18
	case ActorTeen:
		return 60, 11
	case ActorRanger:
		return 59, 22
	case ActorWoman:
		return 60, 48
	case ActorMan:
		return 66, 46
	case ActorMan2:
		return 60, 21
	case ActorManCave:
		return 60, 25
	case ActorPig:
		return 64, 0
	case ActorRat:
		return 64, 19
	default:
		return 0, 0
	}
}

// SpriteIndex returns the actor's linear sprite index.
func (a ActorType) SpriteIndex() int {
	return world.SpriteIndex(a.SpriteRowCol())
}

// IsAnimal reports whether the actor is livestock or vermin rather than a
// colonist.
func (a ActorType) IsAnimal() bool {
	return a == ActorPig || a == ActorRat
}

// Identity is the component naming an agent.
type Identity struct {
	ID    AgentID   `json:"id"`
	Name  string    `json:"name"`
	Actor ActorType `json:"actor"`
}

// Roaming marks agents that wander when nothing else needs doing.
type Roaming struct{}
