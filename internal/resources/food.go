package resources

import "fmt"

// HoverNote is a read-only one-line description for hover display.
type HoverNote interface {
	HoverNote() string
}

// Food is a perishable edible instance. Spoilage runs from 1.0 (fresh)
// down to 0.0 (rotten).
type Food struct {
	Nutrition    float32 `json:"nutrition"`
	Spoilage     float32 `json:"spoilage"`
	SpoilageRate float32 `json:"spoilage_rate"`
	Name         string  `json:"name"`
}

// DefaultFood returns the generic ration.
func DefaultFood() Food {
	return Food{
		Nutrition:    10.0,
		Spoilage:     1.0,
		SpoilageRate: 0.03,
		Name:         "Food",
	}
}

// NewFood builds a fresh food instance from an item's static attributes.
func NewFood(item ItemType) Food {
	return Food{
		Nutrition:    item.Nutrition(),
		Spoilage:     1.0,
		SpoilageRate: item.SpoilageRate(),
		Name:         item.String(),
	}
}

// Spoil applies one tick of spoilage, floored at zero.
func (f *Food) Spoil() {
	f.Spoilage -= f.SpoilageRate
	if f.Spoilage < 0 {
		f.Spoilage = 0
	}
}

// Rotten reports whether the food has fully spoiled.
func (f *Food) Rotten() bool {
	return f.Spoilage <= 0
}

// HoverNote implements HoverNote.
func (f *Food) HoverNote() string {
	return fmt.Sprintf("Spoilage: %.2f%%", f.Spoilage*100)
}
