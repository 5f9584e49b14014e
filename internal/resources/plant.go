package resources

import (
	"fmt"
	"strings"

	"github.com/talgya/colony/internal/world"
)

// PlantType is a species of plant.
type PlantType uint8

const (
	PlantAloe PlantType = iota
	PlantAzalea
	PlantBush
	PlantCabbage
	PlantCactusRound
	PlantCactusUp
	PlantCarrot
	PlantCedarTree
	PlantFlowerBush
	PlantPineTree
	PlantOakTree
	PlantThornBush
	PlantVine
	PlantWeed
)

// NumPlantTypes is the total number of plant types.
const NumPlantTypes = 14

var plantNames = [NumPlantTypes]string{
	"Aloe", "Azalea", "Bush", "Cabbage", "CactusRound", "CactusUp", "Carrot",
	"CedarTree", "FlowerBush", "PineTree", "OakTree", "ThornBush", "Vine", "Weed",
}

// String returns the plant's name.
func (p PlantType) String() string {
	if int(p) < len(plantNames) {
		return plantNames[p]
	}
	return "Unknown"
}

// ParsePlantType resolves a plant name, case-insensitively.
func ParsePlantType(name string) (PlantType, bool) {
	for i, n := range plantNames {
		if strings.EqualFold(n, name) {
			return PlantType(i), true
		}
	}
	return 0, false
}

// ForageType says what foraging does to the plant.
type ForageType uint8

const (
	ForageOnce   ForageType = iota // Plant is consumed
	ForageRepeat                   // Plant survives and regrows from zero
)

// IsEdible reports whether the plant itself can be eaten in place.
func (p PlantType) IsEdible() bool {
	return p == PlantCabbage
}

// SpriteRowCol returns the plant's sprite sheet cell.
func (p PlantType) SpriteRowCol() (row, col int) {
	switch p {
	case PlantCabbage:
		return 94, 32
	case PlantCarrot:
		return 94, 31
	case PlantCedarTree:
		return 13, 15
	case PlantPineTree:
		return 13, 13
	case PlantOakTree:
		return 13, 14
	default:
		return 67, 57
	}
}

// SpriteIndex returns the plant's linear sprite index.
func (p PlantType) SpriteIndex() int {
	return world.SpriteIndex(p.SpriteRowCol())
}

// GrowthSpeed is the growth added per tick.
func (p PlantType) GrowthSpeed() float32 {
	switch p {
	case PlantCabbage:
		return 0.001
	default:
		return 0.01
	}
}

// Yield is one row of the static yield tables.
type Yield struct {
	Item     ItemType
	Quantity int
	Forage   ForageType
	OK       bool
}

// ForageYield returns what foraging the plant produces. OK is false for
// plants that cannot be foraged.
func (p PlantType) ForageYield() Yield {
	switch p {
	case PlantCabbage:
		return Yield{Item: ItemCabbage, Quantity: 1, Forage: ForageOnce, OK: true}
	case PlantCarrot:
		return Yield{Item: ItemCarrot, Quantity: 1, Forage: ForageOnce, OK: true}
	case PlantBush:
		return Yield{Item: ItemBerries, Quantity: 2, Forage: ForageRepeat, OK: true}
	default:
		return Yield{}
	}
}

// ChopYield returns what chopping the plant produces.
func (p PlantType) ChopYield() Yield {
	switch p {
	case PlantPineTree:
		return Yield{Item: ItemPineLog, Quantity: 1, OK: true}
	case PlantOakTree:
		return Yield{Item: ItemOakLog, Quantity: 1, OK: true}
	case PlantCedarTree:
		return Yield{Item: ItemCedarLog, Quantity: 1, OK: true}
	default:
		return Yield{}
	}
}

// Plant is a growing plant instance.
type Plant struct {
	Growth float32   `json:"growth"` // 0.0–1.0
	Type   PlantType `json:"type"`
}

// Grow advances growth by the type's speed, capped at 1.
func (p *Plant) Grow() {
	p.Growth += p.Type.GrowthSpeed()
	if p.Growth > 1.0 {
		p.Growth = 1.0
	}
}

// Mature reports whether the plant has finished growing.
func (p *Plant) Mature() bool {
	return p.Growth >= 1.0
}

// HoverNote implements HoverNote.
func (p *Plant) HoverNote() string {
	return fmt.Sprintf("%s Growth: %.2f%%", p.Type, p.Growth*100)
}

// Harvest is the outcome of a forage or chop against a plant.
type Harvest struct {
	Item     ItemType
	Quantity int
	Destroy  bool // Plant entity must be removed
}

// Empty reports whether the harvest produced nothing.
func (h Harvest) Empty() bool {
	return h.Quantity == 0
}

// Forage extracts the plant's forage yield. A Once plant is marked for
// destruction; a Repeat plant keeps living with growth reset to zero.
// Plants without a forage yield are left untouched.
func Forage(p *Plant) Harvest {
	y := p.Type.ForageYield()
	if !y.OK {
		return Harvest{}
	}
	h := Harvest{Item: y.Item, Quantity: y.Quantity}
	switch y.Forage {
	case ForageRepeat:
		p.Growth = 0
	default:
		h.Destroy = true
	}
	return h
}

// Chop fells the plant. Chopping is always terminal for choppable plants.
func Chop(p *Plant) Harvest {
	y := p.Type.ChopYield()
	if !y.OK {
		return Harvest{}
	}
	return Harvest{Item: y.Item, Quantity: y.Quantity, Destroy: true}
}

// Foragable marks plants an agent may forage.
type Foragable struct{}

// Choppable marks plants an agent may chop.
type Choppable struct{}
