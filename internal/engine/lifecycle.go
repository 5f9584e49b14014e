package engine

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/talgya/colony/internal/resources"
	"github.com/talgya/colony/internal/zones"
)

// growPlants advances every plant. Mature crops standing in a farm zone
// that grows their type are designated for foraging, whether they ripened
// there or the zone was laid over them later.
func (s *Simulation) growPlants() {
	var ripe []ecs.Entity
	q := s.plantFilter.Query()
	for q.Next() {
		pos, plant := q.Get()
		plant.Grow()
		e := q.Entity()
		if !plant.Mature() || s.foragable.Has(e) {
			continue
		}
		for _, d := range s.Zones.At(*pos) {
			if crop, ok := d.Zone.FarmPlant(); ok && crop == plant.Type {
				ripe = append(ripe, e)
				break
			}
		}
	}
	for _, e := range ripe {
		s.foragable.Add(e, &resources.Foragable{})
	}
}

// spoilFood applies one tick of spoilage to every food item.
func (s *Simulation) spoilFood() {
	q := s.foodFilter.Query()
	for q.Next() {
		pos, food, _ := q.Get()
		if food.Rotten() {
			continue
		}
		food.Spoil()
		if food.Rotten() {
			s.EmitEvent(Event{
				Description: fmt.Sprintf("%s at (%d,%d) has rotted", food.Name, pos.X, pos.Y),
				Category:    "resource",
			})
		}
	}
}

// decayNeeds depletes every agent's needs by one tick.
func (s *Simulation) decayNeeds() {
	q := s.agentFilter.Query()
	for q.Next() {
		_, _, status, _, _, _ := q.Get()
		status.Decay()
	}
}

// farmZones lists the farm designations, for the planting work search.
func (s *Simulation) farmZones() []zones.Designation {
	var out []zones.Designation
	for _, d := range s.Zones.List() {
		if _, ok := d.Zone.FarmPlant(); ok {
			out = append(out, d)
		}
	}
	return out
}
