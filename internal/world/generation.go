// World generation: a walled rectangle filled uniformly at random from the
// biome's tile set.
package world

import "math/rand"

// TileSpawner receives one call per generated cell. The engine implements
// it to spawn the tile entity alongside the index entry.
type TileSpawner interface {
	SpawnTile(p Position, t TileType)
}

// PlacedTile is a spawned tile as seen by a scan of the entity store.
type PlacedTile struct {
	Position Position
	Type     TileType
}

// Generate builds a fresh index. Border cells are WallGame; every other
// cell is drawn uniformly from biome.Tiles using rng. If spawner is non-nil
// it is called once per cell, in the same order the index is filled.
func Generate(biome Biome, dims Dimensions, rng *rand.Rand, spawner TileSpawner) *Index {
	idx := NewIndex(dims)
	choices := biome.Tiles
	if len(choices) == 0 {
		choices = []TileType{TileGrass}
	}

	for x := 0; x < dims.Width; x++ {
		for y := 0; y < dims.Length; y++ {
			var t TileType
			if x == 0 || x == dims.Width-1 || y == 0 || y == dims.Length-1 {
				t = TileWallGame
			} else {
				t = choices[rng.Intn(len(choices))]
			}
			p := Position{X: x, Y: y}
			if spawner != nil {
				spawner.SpawnTile(p, t)
			}
			idx.tiles[p] = t
		}
	}
	return idx
}

// Rebuild derives an index from the tiles currently spawned. It is the slow
// path: the result must match what Generate produced for the same tiles,
// which holds as long as the map is only a cache of spawned tile state.
func Rebuild(dims Dimensions, tiles []PlacedTile) *Index {
	idx := NewIndex(dims)
	for _, pt := range tiles {
		if !dims.Contains(pt.Position.X, pt.Position.Y) {
			continue
		}
		idx.tiles[cellKey(pt.Position)] = pt.Type
	}
	return idx
}
