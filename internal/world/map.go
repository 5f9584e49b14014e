package world

import (
	"errors"
	"fmt"
	"sync"
)

// ErrOutOfBounds is returned when a write targets a cell outside the grid.
var ErrOutOfBounds = errors.New("position out of bounds")

// Dimensions is the size of the rectangular grid in cells.
type Dimensions struct {
	Width  int `yaml:"width" json:"width"`
	Length int `yaml:"length" json:"length"`
}

// Cells returns the number of cells in the grid.
func (d Dimensions) Cells() int {
	if d.Width <= 0 || d.Length <= 0 {
		return 0
	}
	return d.Width * d.Length
}

// Contains reports whether (x, y) lies on the grid.
func (d Dimensions) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < d.Width && y < d.Length
}

// Index is the authoritative mapping from cell to tile type. Every other
// system asks the Index for terrain; nothing infers it from render state.
//
// Tiles live on layer 0, so lookups ignore z. Reads may run concurrently;
// Set and Replace take the write lock.
type Index struct {
	mu       sync.RWMutex
	dims     Dimensions
	tiles    map[Position]TileType
	rooms    []Rect
	revealed []bool
	visible  []bool
}

// NewIndex creates an empty index for a grid of the given size.
func NewIndex(dims Dimensions) *Index {
	n := dims.Cells()
	return &Index{
		dims:     dims,
		tiles:    make(map[Position]TileType, n),
		revealed: make([]bool, n),
		visible:  make([]bool, n),
	}
}

func cellKey(p Position) Position {
	return Position{X: p.X, Y: p.Y}
}

func (idx *Index) offset(p Position) (int, bool) {
	if !idx.dims.Contains(p.X, p.Y) {
		return 0, false
	}
	return p.Y*idx.dims.Width + p.X, true
}

// Dimensions returns the grid size.
func (idx *Index) Dimensions() Dimensions {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.dims
}

// InBounds reports whether p lies on the grid.
func (idx *Index) InBounds(p Position) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.dims.Contains(p.X, p.Y)
}

// Lookup returns the tile type at p. The second result is false for
// out-of-bounds or ungenerated cells.
func (idx *Index) Lookup(p Position) (TileType, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	t, ok := idx.tiles[cellKey(p)]
	return t, ok
}

// Passable reports whether p is a generated, non-wall cell.
func (idx *Index) Passable(p Position) bool {
	t, ok := idx.Lookup(p)
	return ok && !t.IsWall()
}

// Set assigns a single cell.
func (idx *Index) Set(p Position, t TileType) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if !idx.dims.Contains(p.X, p.Y) {
		return fmt.Errorf("set tile at (%d,%d): %w", p.X, p.Y, ErrOutOfBounds)
	}
	idx.tiles[cellKey(p)] = t
	return nil
}

// Len returns the number of generated cells.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.tiles)
}

// Snapshot returns a copy of the position → tile map.
func (idx *Index) Snapshot() map[Position]TileType {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make(map[Position]TileType, len(idx.tiles))
	for p, t := range idx.tiles {
		out[p] = t
	}
	return out
}

// Replace swaps in the full contents of next. Nothing from the previous
// generation survives: tiles, rooms and both planes are taken from next.
func (idx *Index) Replace(next *Index) {
	next.mu.RLock()
	dims := next.dims
	tiles := make(map[Position]TileType, len(next.tiles))
	for p, t := range next.tiles {
		tiles[p] = t
	}
	rooms := append([]Rect(nil), next.rooms...)
	revealed := append([]bool(nil), next.revealed...)
	visible := append([]bool(nil), next.visible...)
	next.mu.RUnlock()

	idx.mu.Lock()
	idx.dims = dims
	idx.tiles = tiles
	idx.rooms = rooms
	idx.revealed = revealed
	idx.visible = visible
	idx.mu.Unlock()
}

// Equal reports whether two indexes hold the same dimensions and tiles.
func (idx *Index) Equal(other *Index) bool {
	a := idx.Snapshot()
	b := other.Snapshot()
	if idx.Dimensions() != other.Dimensions() || len(a) != len(b) {
		return false
	}
	for p, t := range a {
		if bt, ok := b[p]; !ok || bt != t {
			return false
		}
	}
	return true
}

// AddRoom appends a room. Rooms keep insertion order.
func (idx *Index) AddRoom(r Rect) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.rooms = append(idx.rooms, r)
}

// Rooms returns the rooms in insertion order.
func (idx *Index) Rooms() []Rect {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return append([]Rect(nil), idx.rooms...)
}

// Reveal marks p as seen at least once.
func (idx *Index) Reveal(p Position) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if i, ok := idx.offset(p); ok {
		idx.revealed[i] = true
	}
}

// Revealed reports whether p has ever been seen.
func (idx *Index) Revealed(p Position) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	i, ok := idx.offset(p)
	return ok && idx.revealed[i]
}

// MarkVisible flags every position in ps as currently visible and revealed.
func (idx *Index) MarkVisible(ps []Position) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, p := range ps {
		if i, ok := idx.offset(p); ok {
			idx.visible[i] = true
			idx.revealed[i] = true
		}
	}
}

// Visible reports whether p is currently visible to any agent.
func (idx *Index) Visible(p Position) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	i, ok := idx.offset(p)
	return ok && idx.visible[i]
}

// ClearVisible resets the currently-visible plane.
func (idx *Index) ClearVisible() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	clear(idx.visible)
}

// TileCounts returns a summary of tile type distribution.
func (idx *Index) TileCounts() map[TileType]int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	counts := make(map[TileType]int)
	for _, t := range idx.tiles {
		counts[t]++
	}
	return counts
}

// String returns a summary of the index.
func (idx *Index) String() string {
	d := idx.Dimensions()
	return fmt.Sprintf("Index(%dx%d, tiles=%d)", d.Width, d.Length, idx.Len())
}

// Rect is an axis-aligned room rectangle; X2 and Y2 are exclusive.
type Rect struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// NewRect builds a rectangle from an origin and size.
func NewRect(x, y, w, h int) Rect {
	return Rect{X1: x, Y1: y, X2: x + w, Y2: y + h}
}

// Intersect reports whether r and other overlap.
func (r Rect) Intersect(other Rect) bool {
	return r.X1 < other.X2 && r.X2 > other.X1 && r.Y1 < other.Y2 && r.Y2 > other.Y1
}

// Center returns the middle cell of r.
func (r Rect) Center() Position {
	return Position{X: (r.X1 + r.X2) / 2, Y: (r.Y1 + r.Y2) / 2}
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Position) bool {
	return p.X >= r.X1 && p.X < r.X2 && p.Y >= r.Y1 && p.Y < r.Y2
}
