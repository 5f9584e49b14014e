// Per-tick agent behaviour: resolve one motivation from needs and signals,
// then run the task dispatcher. Both steps are pure so agents can be
// evaluated in any order or in parallel.
package agents

// Decision is the outcome of one agent's resolution for a tick.
type Decision struct {
	Motivation Motivation
	Task       Task
	Changed    bool // Motivation or task differs from the previous tick
}

// Decide resolves the agent's motivation and dispatches its task. The
// brain is taken by value and the updated brain returned; a standing order
// on the brain raises the Order signal.
func Decide(status *Status, brain Brain, sig Signals) (Brain, Decision) {
	if brain.Order != "" {
		sig.Order = true
	}
	m := Resolve(status, sig)
	changed := brain.Think(m)
	return brain, Decision{Motivation: brain.Motivation, Task: brain.Task, Changed: changed}
}
