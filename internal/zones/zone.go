// Package zones tracks player-designated areas and their purpose.
package zones

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/talgya/colony/internal/resources"
	"github.com/talgya/colony/internal/world"
)

// ErrZoneNotFound is returned for operations on an unknown zone ID.
var ErrZoneNotFound = errors.New("zone not found")

// ZoneType is the purpose of a zone.
type ZoneType uint8

const (
	ZoneFarm ZoneType = iota
	ZonePasture
	ZoneStorage
	ZoneFishing
	ZoneHospital
	ZoneParty
	ZoneMeeting
)

var zoneNames = [...]string{"Farm", "Pasture", "Storage", "Fishing", "Hospital", "Party", "Meeting"}

// String returns the zone type's name.
func (z ZoneType) String() string {
	if int(z) < len(zoneNames) {
		return zoneNames[z]
	}
	return "Unknown"
}

// ParseZoneType resolves a zone type name, case-insensitively.
func ParseZoneType(name string) (ZoneType, bool) {
	for i, n := range zoneNames {
		if strings.EqualFold(n, name) {
			return ZoneType(i), true
		}
	}
	return 0, false
}

// Zone is an area tag. Plant is only meaningful when Type is ZoneFarm;
// readers go through FarmPlant rather than the field.
type Zone struct {
	Type              ZoneType            `json:"type"`
	Plant             resources.PlantType `json:"plant"`
	MaterialDelivered bool                `json:"material_delivered"`
}

// Default returns an undelivered cabbage farm.
func Default() Zone {
	return Zone{Type: ZoneFarm, Plant: resources.PlantCabbage}
}

// FarmPlant returns the crop for a farm zone. ok is false for every other
// zone type, whatever Plant holds.
func (z Zone) FarmPlant() (resources.PlantType, bool) {
	if z.Type != ZoneFarm {
		return 0, false
	}
	return z.Plant, true
}

// ZoneID identifies a designation.
type ZoneID uint64

// Designation is a zone placed over an area of the map.
type Designation struct {
	ID   ZoneID     `json:"id"`
	Area world.Rect `json:"area"`
	Zone Zone       `json:"zone"`
}

// Registry holds the live designations. It is not safe for concurrent
// use; the simulation serializes access.
type Registry struct {
	nextID ZoneID
	zones  map[ZoneID]*Designation
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{nextID: 1, zones: make(map[ZoneID]*Designation)}
}

// Designate creates a zone over area and returns its ID.
func (r *Registry) Designate(area world.Rect, z Zone) ZoneID {
	id := r.nextID
	r.nextID++
	r.zones[id] = &Designation{ID: id, Area: area, Zone: z}
	return id
}

// Undesignate destroys a zone.
func (r *Registry) Undesignate(id ZoneID) error {
	if _, ok := r.zones[id]; !ok {
		return fmt.Errorf("undesignate %d: %w", id, ErrZoneNotFound)
	}
	delete(r.zones, id)
	return nil
}

// Get returns a copy of a designation.
func (r *Registry) Get(id ZoneID) (Designation, bool) {
	d, ok := r.zones[id]
	if !ok {
		return Designation{}, false
	}
	return *d, true
}

// DeliverMaterial records that construction material reached the zone.
func (r *Registry) DeliverMaterial(id ZoneID) error {
	d, ok := r.zones[id]
	if !ok {
		return fmt.Errorf("deliver material to %d: %w", id, ErrZoneNotFound)
	}
	d.Zone.MaterialDelivered = true
	return nil
}

// AssignPlant sets the crop of a zone. Setting a plant on a non-farm zone
// is stored but ignored by FarmPlant.
func (r *Registry) AssignPlant(id ZoneID, p resources.PlantType) error {
	d, ok := r.zones[id]
	if !ok {
		return fmt.Errorf("assign plant to %d: %w", id, ErrZoneNotFound)
	}
	d.Zone.Plant = p
	return nil
}

// SetType changes a zone's purpose.
func (r *Registry) SetType(id ZoneID, t ZoneType) error {
	d, ok := r.zones[id]
	if !ok {
		return fmt.Errorf("set type of %d: %w", id, ErrZoneNotFound)
	}
	d.Zone.Type = t
	return nil
}

// At returns the designations covering p, oldest first.
func (r *Registry) At(p world.Position) []Designation {
	var out []Designation
	for _, d := range r.List() {
		if d.Area.Contains(p) {
			out = append(out, d)
		}
	}
	return out
}

// List returns all designations ordered by ID.
func (r *Registry) List() []Designation {
	out := make([]Designation, 0, len(r.zones))
	for _, d := range r.zones {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of live zones.
func (r *Registry) Len() int {
	return len(r.zones)
}
