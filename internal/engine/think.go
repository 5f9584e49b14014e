package engine

import (
	"runtime"

	"github.com/mlange-42/ark/ecs"
	"golang.org/x/sync/errgroup"

	"github.com/talgya/colony/internal/agents"
)

// parallelThreshold is the minimum agent count to fan out decisions.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// agentSnapshot captures the read-only state one decision needs.
type agentSnapshot struct {
	Entity ecs.Entity
	ID     agents.AgentID
	Status agents.Status // deep copy
	Brain  agents.Brain
	Sig    agents.Signals
}

// decision is a computed outcome, applied after the parallel phase.
type decision struct {
	Brain    agents.Brain
	Decision agents.Decision
}

// think runs the motivation resolver and task dispatcher for every agent.
// Phase A snapshots agents single-threaded, phase B decides in parallel on
// the snapshots only, phase C writes brains back in snapshot order.
func (s *Simulation) think() error {
	jobs := s.jobs()

	// Phase A
	var snaps []agentSnapshot
	q := s.agentFilter.Query()
	for q.Next() {
		id, _, status, brain, _, _ := q.Get()
		e := q.Entity()
		snaps = append(snaps, agentSnapshot{
			Entity: e,
			ID:     id.ID,
			Status: status.Clone(),
			Brain:  *brain,
			Sig:    s.signals(e, id, status, brain, jobs),
		})
	}

	// Phase B
	out := make([]decision, len(snaps))
	decideRange := func(start, end int) {
		for i := start; i < end; i++ {
			sn := &snaps[i]
			b, d := agents.Decide(&sn.Status, sn.Brain, sn.Sig)
			out[i] = decision{Brain: b, Decision: d}
		}
	}
	if len(snaps) < parallelThreshold {
		decideRange(0, len(snaps))
	} else {
		workers := runtime.GOMAXPROCS(0)
		chunk := (len(snaps) + workers - 1) / workers
		var g errgroup.Group
		g.SetLimit(workers)
		for start := 0; start < len(snaps); start += chunk {
			start, end := start, min(start+chunk, len(snaps))
			g.Go(func() error {
				decideRange(start, end)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	// Phase C
	for i, sn := range snaps {
		brain := s.brains.Get(sn.Entity)
		*brain = out[i].Brain
		if d := out[i].Decision; d.Changed {
			s.log.Debug().
				Uint64("agent", uint64(sn.ID)).
				Str("motivation", d.Motivation.String()).
				Str("task", d.Task.String()).
				Msg("agent re-tasked")
		}
	}
	return nil
}

// signals computes the externally supplied conditions for one agent.
func (s *Simulation) signals(e ecs.Entity, id *agents.Identity, status *agents.Status, brain *agents.Brain, jobs []workTarget) agents.Signals {
	return agents.Signals{
		Work:    !id.Actor.IsAnimal() && s.hasWork(id.ID, jobs),
		Meander: s.roaming.Has(e),
		Resting: brain.Task == agents.TaskSleeping && status.Sleep != nil && !status.Sleep.Full(),
		Playing: brain.Task == agents.TaskPlay && brain.Motivation == agents.MotivationBored &&
			status.Entertainment != nil && !status.Entertainment.Full(),
	}
}
