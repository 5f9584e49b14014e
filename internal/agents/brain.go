package agents

// Brain is an agent's behavioural state. The zero value has no motivation,
// no task and no order.
type Brain struct {
	Motivation Motivation `json:"motivation"`
	Task       Task       `json:"task"`
	Order      string     `json:"order,omitempty"` // Standing directive from the command layer
}

// Think stores the newly resolved motivation and advances the task through
// NextTask. It reports whether either value changed.
func (b *Brain) Think(m Motivation) bool {
	next := NextTask(b.Task, b.Motivation, m, b.Order)
	changed := next != b.Task || m != b.Motivation
	b.Motivation = m
	b.Task = next
	return changed
}

// Complete is the action system's signal that the current task finished.
// The motivation is kept; the next Think assigns a fresh task.
func (b *Brain) Complete() {
	b.Task = TaskNone
}

// Engage narrows generic work to a specific form of work. It only applies
// while the agent is working and t is a work subtype.
func (b *Brain) Engage(t Task) bool {
	if !t.IsWork() || (b.Task != TaskWork && !b.Task.IsWork()) {
		return false
	}
	b.Task = t
	return true
}

// Rest moves a Sleep task on to Sleeping once the agent has lain down.
func (b *Brain) Rest() bool {
	if b.Task != TaskSleep {
		return false
	}
	b.Task = TaskSleeping
	return true
}

// SetOrder installs a standing order. An empty string clears it.
func (b *Brain) SetOrder(order string) {
	b.Order = order
}

// Remotivate clears motivation, task and order together so the next tick
// resolves from scratch.
func (b *Brain) Remotivate() {
	b.Motivation = MotivationNone
	b.Task = TaskNone
	b.Order = ""
}
