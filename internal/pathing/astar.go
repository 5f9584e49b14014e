package pathing

import (
	"container/heap"
	"math"

	"github.com/talgya/colony/internal/world"
)

// AStar is a grid A* planner with 8-way movement. Diagonal steps are not
// allowed to cut a wall corner. MaxNodes bounds the search; zero means
// no bound.
type AStar struct {
	MaxNodes int
}

// NewAStar creates a planner with a search bound suited to colony maps.
func NewAStar() *AStar {
	return &AStar{MaxNodes: 1 << 16}
}

type cell struct{ x, y int }

type node struct {
	c     cell
	g, f  float64
	index int
}

type openSet []*node

func (o openSet) Len() int           { return len(o) }
func (o openSet) Less(i, j int) bool { return o[i].f < o[j].f }
func (o openSet) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].index = i
	o[j].index = j
}
func (o *openSet) Push(x any) {
	n := x.(*node)
	n.index = len(*o)
	*o = append(*o, n)
}
func (o *openSet) Pop() any {
	old := *o
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*o = old[:len(old)-1]
	return n
}

// octile is the exact cost of an unobstructed 8-way path.
func octile(a, b cell) float64 {
	dx := math.Abs(float64(a.x - b.x))
	dy := math.Abs(float64(a.y - b.y))
	return math.Max(dx, dy) + (math.Sqrt2-1)*math.Min(dx, dy)
}

// Plan implements Planner. Waypoints stay on the mover's layer (from.Z).
func (a *AStar) Plan(tiles TileSource, from, to world.Position) ([]world.Position, bool) {
	if !passable(tiles, to) {
		return nil, false
	}
	start := cell{from.X, from.Y}
	goal := cell{to.X, to.Y}
	if start == goal {
		return []world.Position{}, true
	}

	open := &openSet{}
	nodes := map[cell]*node{}
	came := map[cell]cell{}
	closed := map[cell]bool{}

	sn := &node{c: start, g: 0, f: octile(start, goal)}
	nodes[start] = sn
	heap.Push(open, sn)

	expanded := 0
	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)
		if cur.c == goal {
			return a.reconstruct(came, start, goal, from.Z), true
		}
		closed[cur.c] = true
		expanded++
		if a.MaxNodes > 0 && expanded > a.MaxNodes {
			return nil, false
		}

		for _, np := range (world.Position{X: cur.c.x, Y: cur.c.y}).Neighbors() {
			nc := cell{np.X, np.Y}
			if closed[nc] || !passable(tiles, np) {
				continue
			}
			step := 1.0
			if np.X != cur.c.x && np.Y != cur.c.y {
				// No squeezing between two walls diagonally.
				if !passable(tiles, world.Position{X: np.X, Y: cur.c.y}) ||
					!passable(tiles, world.Position{X: cur.c.x, Y: np.Y}) {
					continue
				}
				step = math.Sqrt2
			}
			g := cur.g + step
			if n, ok := nodes[nc]; ok {
				if g >= n.g {
					continue
				}
				n.g = g
				n.f = g + octile(nc, goal)
				came[nc] = cur.c
				heap.Fix(open, n.index)
				continue
			}
			n := &node{c: nc, g: g, f: g + octile(nc, goal)}
			nodes[nc] = n
			came[nc] = cur.c
			heap.Push(open, n)
		}
	}
	return nil, false
}

func (a *AStar) reconstruct(came map[cell]cell, start, goal cell, z int) []world.Position {
	var rev []world.Position
	for c := goal; c != start; c = came[c] {
		rev = append(rev, world.Position{X: c.x, Y: c.y, Z: z})
	}
	path := make([]world.Position, len(rev))
	for i := range rev {
		path[i] = rev[len(rev)-1-i]
	}
	return path
}
