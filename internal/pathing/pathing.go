// Package pathing defines the route contract every movement system honours,
// plus an A* planner over the world index.
//
// Convention: a path excludes the start cell and includes the destination.
// Adjacency is 2D over (x, y); z never affects traversal.
package pathing

import "github.com/talgya/colony/internal/world"

// TileSource is the read side of the world index a planner needs.
type TileSource interface {
	Lookup(p world.Position) (world.TileType, bool)
}

// Planner finds a route between two cells. ok is false when no passable
// route exists; path is then nil.
type Planner interface {
	Plan(tiles TileSource, from, to world.Position) (path []world.Position, ok bool)
}

// Pathing is an agent's current route.
type Pathing struct {
	Path        []world.Position `json:"path"`
	Destination world.Position   `json:"destination"`
	Unreachable bool             `json:"unreachable"`
}

// Route plans from `from` to `to` and records the outcome. On success the
// path is non-empty (unless from and to are the same cell) and Unreachable
// is false; on failure the path is empty and Unreachable is true. Callers
// must check Unreachable before moving.
func (p *Pathing) Route(planner Planner, tiles TileSource, from, to world.Position) bool {
	p.Destination = to
	path, ok := planner.Plan(tiles, from, to)
	if !ok {
		p.Path = nil
		p.Unreachable = true
		return false
	}
	p.Path = path
	p.Unreachable = false
	return true
}

// Step pops the next waypoint. ok is false when the path is exhausted.
func (p *Pathing) Step() (world.Position, bool) {
	if len(p.Path) == 0 {
		return world.Position{}, false
	}
	next := p.Path[0]
	p.Path = p.Path[1:]
	return next, true
}

// Arrived reports whether there is nothing left to walk.
func (p *Pathing) Arrived() bool {
	return len(p.Path) == 0 && !p.Unreachable
}

// Reset returns the pathing to its default: empty path, origin
// destination, reachable.
func (p *Pathing) Reset() {
	*p = Pathing{}
}

// passable is true for generated, non-wall cells.
func passable(tiles TileSource, p world.Position) bool {
	t, ok := tiles.Lookup(p)
	return ok && !t.IsWall()
}
