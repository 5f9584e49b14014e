package world

import "strings"

// SpriteColumns is the width of the sprite sheet in cells. Sprite indices
// are row*SpriteColumns + col.
const SpriteColumns = 64

// SpriteIndex flattens a sheet (row, col) pair.
func SpriteIndex(row, col int) int {
	return row*SpriteColumns + col
}

// TileType is the terrain or wall variant occupying a cell.
type TileType uint8

const (
	TileGrass TileType = iota
	TileDirt
	TileGravel
	TileSand
	TileStone
	TileWater
	TileWallBrick
	TileWallGame // Outer border of every generated map
	TileWallMetal
	TileWallStone
	TileWallWood
)

// NumTileTypes is the total number of tile types.
const NumTileTypes = 11

var tileNames = [NumTileTypes]string{
	"Grass", "Dirt", "Gravel", "Sand", "Stone", "Water",
	"WallBrick", "WallGame", "WallMetal", "WallStone", "WallWood",
}

// String returns the tile type's name.
func (t TileType) String() string {
	if int(t) < len(tileNames) {
		return tileNames[t]
	}
	return "Unknown"
}

// ParseTileType resolves a tile name, case-insensitively.
func ParseTileType(name string) (TileType, bool) {
	for i, n := range tileNames {
		if strings.EqualFold(n, name) {
			return TileType(i), true
		}
	}
	return 0, false
}

// IsWall reports whether the tile blocks movement.
func (t TileType) IsWall() bool {
	switch t {
	case TileWallBrick, TileWallGame, TileWallMetal, TileWallStone, TileWallWood:
		return true
	default:
		return false
	}
}

// SpriteRowCol returns the tile's sprite sheet cell.
func (t TileType) SpriteRowCol() (row, col int) {
	switch t {
	case TileGrass:
		return 9, 11
	case TileDirt:
		return 4, 1
	case TileGravel, TileSand:
		return 7, 42
	case TileStone:
		return 3, 61
	case TileWater:
		return 5, 12
	case TileWallGame:
		return 7, 20
	case TileWallStone:
		return 7, 21
	case TileWallWood:
		return 7, 22
	case TileWallBrick:
		return 4, 10
	case TileWallMetal:
		return 7, 24
	default:
		return 0, 0
	}
}

// SpriteIndex returns the tile's linear sprite index.
func (t TileType) SpriteIndex() int {
	return SpriteIndex(t.SpriteRowCol())
}

// Tile is the component carried by every spawned map cell.
type Tile struct {
	Type TileType `json:"type"`
}
