package world

import (
	"fmt"
	"sort"
	"strings"
)

// Biome is the set of tile types generation may draw from for interior
// cells. Duplicates weight the draw.
type Biome struct {
	Name  string     `json:"name"`
	Tiles []TileType `json:"tiles"`
}

var biomes = map[string]Biome{
	"grassland": {Name: "grassland", Tiles: []TileType{TileGrass, TileGrass, TileGrass, TileDirt, TileWater}},
	"desert":    {Name: "desert", Tiles: []TileType{TileSand, TileSand, TileGravel, TileStone}},
	"quarry":    {Name: "quarry", Tiles: []TileType{TileStone, TileGravel, TileDirt, TileWallStone}},
	"meadow":    {Name: "meadow", Tiles: []TileType{TileGrass}},
}

// LookupBiome returns a registered biome by name.
func LookupBiome(name string) (Biome, bool) {
	b, ok := biomes[strings.ToLower(name)]
	return b, ok
}

// BiomeNames lists the registered biomes, sorted.
func BiomeNames() []string {
	names := make([]string, 0, len(biomes))
	for n := range biomes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewBiome builds a biome from tile names.
func NewBiome(name string, tileNames []string) (Biome, error) {
	b := Biome{Name: name}
	for _, tn := range tileNames {
		t, ok := ParseTileType(tn)
		if !ok {
			return Biome{}, fmt.Errorf("biome %q: unknown tile %q", name, tn)
		}
		b.Tiles = append(b.Tiles, t)
	}
	if len(b.Tiles) == 0 {
		return b, nil // Generate falls back to grass
	}
	for _, t := range b.Tiles {
		if !t.IsWall() {
			return b, nil
		}
	}
	return Biome{}, fmt.Errorf("biome %q: no passable tile to stand on", name)
}
