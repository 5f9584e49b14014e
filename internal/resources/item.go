// Package resources provides plants, harvested items, and perishable food:
// growth, forage/chop yields, and spoilage.
package resources

import "github.com/talgya/colony/internal/world"

// ItemType is a harvested resource.
type ItemType uint8

const (
	ItemCabbage ItemType = iota
	ItemCarrot
	ItemBerries
	ItemCedarLog
	ItemPineLog
	ItemOakLog
)

// NumItemTypes is the total number of item types.
const NumItemTypes = 6

var itemNames = [NumItemTypes]string{"Cabbage", "Carrot", "Berries", "CedarLog", "PineLog", "OakLog"}

// String returns the item's name.
func (i ItemType) String() string {
	if int(i) < len(itemNames) {
		return itemNames[i]
	}
	return "Unknown"
}

// SpriteIndex returns the item's linear sprite index.
func (i ItemType) SpriteIndex() int {
	switch i {
	case ItemCabbage:
		return world.SpriteIndex(94, 33)
	case ItemCarrot:
		return world.SpriteIndex(94, 24)
	case ItemBerries:
		return world.SpriteIndex(94, 26)
	default: // Logs share one sprite
		return world.SpriteIndex(94, 30)
	}
}

// Nutrition is the food value of one unit. Non-food items return 0.
func (i ItemType) Nutrition() float32 {
	switch i {
	case ItemCabbage, ItemCarrot:
		return 10.0
	case ItemBerries:
		return 5.0
	default:
		return 0.0
	}
}

// SpoilageRate is the per-tick freshness loss of one unit.
func (i ItemType) SpoilageRate() float32 {
	switch i {
	case ItemCabbage, ItemCarrot, ItemBerries:
		return 0.1
	default:
		return 0.01
	}
}

// IsFood reports whether the item can be eaten.
func (i ItemType) IsFood() bool {
	return i.Nutrition() > 0
}

// Item is the component carried by a harvested item lying in the world.
type Item struct {
	Type ItemType `json:"type"`
}
