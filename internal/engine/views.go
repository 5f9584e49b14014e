package engine

import (
	"fmt"
	"sort"

	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/resources"
	"github.com/talgya/colony/internal/world"
	"github.com/talgya/colony/internal/zones"
)

// updateVisibility clears the visible plane and lets every agent mark what
// it sees, refreshing viewsheds that moved.
func (s *Simulation) updateVisibility() {
	s.Index.ClearVisible()
	q := s.agentFilter.Query()
	for q.Next() {
		_, pos, _, _, _, view := q.Get()
		view.Recompute(s.Index, *pos)
	}
}

// AgentView is a read-only projection of one agent.
type AgentView struct {
	ID          agents.AgentID `json:"id"`
	Name        string         `json:"name"`
	Actor       string         `json:"actor"`
	Sprite      int            `json:"sprite"`
	Position    world.Position `json:"position"`
	Motivation  string         `json:"motivation"`
	Task        string         `json:"task"`
	Order       string         `json:"order,omitempty"`
	Info        []string       `json:"info"`
	Status      agents.Status  `json:"status"`
	Destination world.Position `json:"destination"`
	PathLength  int            `json:"path_length"`
	Unreachable bool           `json:"unreachable"`
	Roaming     bool           `json:"roaming"`
}

// TileView is a read-only projection of one cell and what stands on it.
type TileView struct {
	Position world.Position      `json:"position"`
	Tile     string              `json:"tile"`
	Sprite   int                 `json:"sprite"`
	Passable bool                `json:"passable"`
	Revealed bool                `json:"revealed"`
	Visible  bool                `json:"visible"`
	Zones    []zones.Designation `json:"zones,omitempty"`
	Hover    []string            `json:"hover,omitempty"`
	Agents   []agents.AgentID    `json:"agents,omitempty"`
}

// Agents lists every agent ordered by ID. Projections that run entity
// queries take the write lock: ark queries are not safe to run concurrently.
func (s *Simulation) Agents() []AgentView {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []AgentView
	q := s.agentFilter.Query()
	for q.Next() {
		id, pos, status, brain, path, _ := q.Get()
		out = append(out, s.agentView(id, pos, status, brain, path.Destination, len(path.Path), path.Unreachable, s.roaming.Has(q.Entity())))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Agent returns one agent's projection.
func (s *Simulation) Agent(id agents.AgentID) (AgentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.agentEntity(id)
	if err != nil {
		return AgentView{}, err
	}
	ident, pos, status, brain, path, _ := s.agentMap.Get(e)
	return s.agentView(ident, pos, status, brain, path.Destination, len(path.Path), path.Unreachable, s.roaming.Has(e)), nil
}

func (s *Simulation) agentView(id *agents.Identity, pos *world.Position, status *agents.Status, brain *agents.Brain,
	dest world.Position, pathLen int, unreachable, roaming bool) AgentView {
	return AgentView{
		ID:          id.ID,
		Name:        id.Name,
		Actor:       id.Actor.String(),
		Sprite:      id.Actor.SpriteIndex(),
		Position:    *pos,
		Motivation:  brain.Motivation.String(),
		Task:        brain.Task.String(),
		Order:       brain.Order,
		Info:        status.InfoPanel(),
		Status:      status.Clone(),
		Destination: dest,
		PathLength:  pathLen,
		Unreachable: unreachable,
		Roaming:     roaming,
	}
}

// Tile returns the projection of cell (x, y).
func (s *Simulation) Tile(x, y int) (TileView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := world.Position{X: x, Y: y}
	t, ok := s.Index.Lookup(p)
	if !ok {
		return TileView{}, fmt.Errorf("tile (%d,%d): %w", x, y, world.ErrOutOfBounds)
	}
	view := TileView{
		Position: p,
		Tile:     t.String(),
		Sprite:   t.SpriteIndex(),
		Passable: s.Index.Passable(p),
		Revealed: s.Index.Revealed(p),
		Visible:  s.Index.Visible(p),
		Zones:    s.Zones.At(p),
	}

	var notes []resources.HoverNote
	pq := s.plantFilter.Query()
	for pq.Next() {
		pos, plant := pq.Get()
		if pos.X == x && pos.Y == y {
			pl := *plant
			notes = append(notes, &pl)
		}
	}
	fq := s.foodFilter.Query()
	for fq.Next() {
		pos, food, _ := fq.Get()
		if pos.X == x && pos.Y == y {
			f := *food
			notes = append(notes, &f)
		}
	}
	for _, n := range notes {
		view.Hover = append(view.Hover, n.HoverNote())
	}
	iq := s.itemFilter.Query()
	for iq.Next() {
		pos, item := iq.Get()
		if pos.X == x && pos.Y == y {
			view.Hover = append(view.Hover, item.Type.String())
		}
	}

	aq := s.agentFilter.Query()
	for aq.Next() {
		id, pos, _, _, _, _ := aq.Get()
		if pos.X == x && pos.Y == y {
			view.Agents = append(view.Agents, id.ID)
		}
	}
	return view, nil
}

// ZoneList returns every designation ordered by ID.
func (s *Simulation) ZoneList() []zones.Designation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Zones.List()
}

// Zone returns one designation by ID.
func (s *Simulation) Zone(id zones.ZoneID) (zones.Designation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Zones.Get(id)
}
