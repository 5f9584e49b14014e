// Package world provides the tile grid, biomes, and spatial data structures.
// Positions are integer (x, y, z) cells; z is a draw layer and never takes
// part in adjacency or distance.
package world

import "math"

// TileSize is the edge length of one grid cell in render units.
const TileSize float32 = 32

// Position identifies a grid cell.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Transform is the render placement derived from a Position.
type Transform struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// ToTransform returns the render transform for p: grid coordinate scaled
// by TileSize, z passed through as the layer.
func (p Position) ToTransform() Transform {
	return Transform{
		X: float32(p.X) * TileSize,
		Y: float32(p.Y) * TileSize,
		Z: float32(p.Z),
	}
}

// ToTransformLayer is ToTransform with an extra layer offset on z.
func (p Position) ToTransformLayer(layer float32) Transform {
	t := p.ToTransform()
	t.Z += layer
	return t
}

// neighborOffsets are the eight (x, y) steps around a cell.
var neighborOffsets = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// Neighbors returns the eight adjacent cells on the same layer.
func (p Position) Neighbors() [8]Position {
	var result [8]Position
	for i, d := range neighborOffsets {
		result[i] = Position{X: p.X + d[0], Y: p.Y + d[1], Z: p.Z}
	}
	return result
}

// Distance returns the Euclidean distance between a and b over (x, y),
// truncated toward zero.
func Distance(a, b Position) int {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return int(math.Sqrt(float64(dx*dx + dy*dy)))
}

// SizeXYZ is the render-size hint attached to spawned entities.
type SizeXYZ struct {
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
	Depth  float32 `json:"depth"`
}

// Cube returns a size with equal edges.
func Cube(x float32) SizeXYZ { return SizeXYZ{Width: x, Height: x, Depth: x} }

// Flat returns a thin square, used for ground tiles.
func Flat(x float32) SizeXYZ { return SizeXYZ{Width: x, Height: x, Depth: 0.1} }
