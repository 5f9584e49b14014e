// Flora placement using layered simplex noise: plants cluster where the
// noise field is high, so groves and patches form instead of static.
package resources

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/colony/internal/world"
)

// ScatterConfig holds flora placement parameters.
type ScatterConfig struct {
	Seed      int64       // Noise seed
	Density   float64     // Noise threshold above which a cell gets a plant (0.0–1.0)
	Frequency float64     // Base noise frequency
	Species   []PlantType // Candidates, picked by a second noise layer
}

// DefaultScatterConfig returns a sparse mixed flora.
func DefaultScatterConfig(seed int64) ScatterConfig {
	return ScatterConfig{
		Seed:      seed,
		Density:   0.62,
		Frequency: 0.15,
		Species: []PlantType{
			PlantCabbage, PlantCarrot, PlantBush, PlantPineTree,
			PlantOakTree, PlantCedarTree, PlantWeed, PlantFlowerBush,
		},
	}
}

// Placement is a plant to spawn at a cell.
type Placement struct {
	Position world.Position
	Plant    Plant
}

// Scatter picks plant placements on passable, non-water cells of idx.
// The result depends only on the config and the index contents.
func Scatter(idx *world.Index, cfg ScatterConfig) []Placement {
	if len(cfg.Species) == 0 {
		return nil
	}
	density := opensimplex.NewNormalized(cfg.Seed)
	species := opensimplex.NewNormalized(cfg.Seed + 1)
	age := opensimplex.NewNormalized(cfg.Seed + 2)

	dims := idx.Dimensions()
	var out []Placement
	for x := 0; x < dims.Width; x++ {
		for y := 0; y < dims.Length; y++ {
			p := world.Position{X: x, Y: y}
			t, ok := idx.Lookup(p)
			if !ok || t.IsWall() || t == world.TileWater {
				continue
			}
			fx, fy := float64(x), float64(y)
			if octaveNoise(density, fx, fy, 3, cfg.Frequency, 0.5) < cfg.Density {
				continue
			}
			pick := int(species.Eval2(fx*cfg.Frequency*0.5, fy*cfg.Frequency*0.5) * float64(len(cfg.Species)))
			if pick >= len(cfg.Species) {
				pick = len(cfg.Species) - 1
			}
			out = append(out, Placement{
				Position: p,
				Plant: Plant{
					Type:   cfg.Species[pick],
					Growth: float32(age.Eval2(fx, fy)),
				},
			})
		}
	}
	return out
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
