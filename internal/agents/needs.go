package agents

// Need is one depleting quantity: Current stays in [0, Max] and drops by
// Rate each tick.
type Need struct {
	Current float32 `json:"current"`
	Max     float32 `json:"max"`
	Rate    float32 `json:"rate"`
}

// NewNeed returns a full need.
func NewNeed(max, rate float32) *Need {
	return &Need{Current: max, Max: max, Rate: rate}
}

// Decay applies one tick of depletion.
func (n *Need) Decay() {
	n.Current = clamp32(n.Current-n.Rate, 0, n.Max)
}

// Replenish adds amount, respecting the [0, Max] bounds. Action systems
// use it when an agent eats, sleeps or plays.
func (n *Need) Replenish(amount float32) {
	n.Current = clamp32(n.Current+amount, 0, n.Max)
}

// Critical reports whether the need is fully depleted.
func (n *Need) Critical() bool {
	return n.Current <= 0
}

// Full reports whether the need is at its maximum.
func (n *Need) Full() bool {
	return n.Current >= n.Max
}

// Percent returns Current as a percentage of Max.
func (n *Need) Percent() float32 {
	if n.Max <= 0 {
		return 0
	}
	return n.Current / n.Max * 100
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
