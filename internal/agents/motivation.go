package agents

// Motivation is the single concern driving an agent this tick. Values are
// declared in priority order: a lower value always wins. MotivationNone is
// the zero value and means "not yet resolved".
type Motivation uint8

const (
	MotivationNone Motivation = iota
	MotivationCrisis
	MotivationOrder
	MotivationDanger
	MotivationHunger
	MotivationThirst
	MotivationTired
	MotivationBored
	MotivationInjured
	MotivationSick
	MotivationHappy
	MotivationSad
	MotivationAngry
	MotivationLonely
	MotivationLove
	MotivationFear
	MotivationHate
	MotivationWork
	MotivationMeander
	MotivationIdle
)

var motivationNames = [...]string{
	"None", "Crisis", "Order", "Danger", "Hunger", "Thirst", "Tired", "Bored",
	"Injured", "Sick", "Happy", "Sad", "Angry", "Lonely", "Love", "Fear",
	"Hate", "Work", "Meander", "Idle",
}

// String returns the motivation's name.
func (m Motivation) String() string {
	if int(m) < len(motivationNames) {
		return motivationNames[m]
	}
	return "Unknown"
}

// Outranks reports whether m takes priority over o. Any motivation
// outranks MotivationNone.
func (m Motivation) Outranks(o Motivation) bool {
	if m == MotivationNone {
		return false
	}
	return o == MotivationNone || m < o
}

// Signals are conditions computed outside the needs model: world danger,
// standing orders, social and emotional state. The resolver only reads them.
type Signals struct {
	Crisis  bool
	Order   bool
	Danger  bool
	Thirst  bool
	Injured bool
	Sick    bool
	Happy   bool
	Sad     bool
	Angry   bool
	Lonely  bool
	Love    bool
	Fear    bool
	Hate    bool
	Work    bool // Work is available to this agent
	Meander bool // Agent wanders when otherwise unoccupied

	// Set by the action systems while a sleep or play session is still
	// running, so the motivation holds until the need is refilled.
	Resting bool
	Playing bool
}

// Resolve returns the highest-priority motivation whose trigger holds.
// Hunger, Tired and Bored trigger on critical needs (Tired and Bored also
// while Resting or Playing); Crisis, Danger and Injured also trigger from
// the status flags. It always returns exactly
// one motivation, MotivationIdle when nothing triggers. status may be nil.
func Resolve(status *Status, sig Signals) Motivation {
	if status != nil {
		sig.Crisis = sig.Crisis || status.Crisis != ""
		sig.Danger = sig.Danger || status.Danger != ""
		sig.Injured = sig.Injured || status.Injured
	}

	// Checked in declaration order, so the first hit is the winner.
	candidates := [...]struct {
		m  Motivation
		on bool
	}{
		{MotivationCrisis, sig.Crisis},
		{MotivationOrder, sig.Order},
		{MotivationDanger, sig.Danger},
		{MotivationHunger, status != nil && status.Food != nil && status.Food.Critical()},
		{MotivationThirst, sig.Thirst},
		{MotivationTired, sig.Resting || (status != nil && status.Sleep != nil && status.Sleep.Critical())},
		{MotivationBored, sig.Playing || (status != nil && status.Entertainment != nil && status.Entertainment.Critical())},
		{MotivationInjured, sig.Injured},
		{MotivationSick, sig.Sick},
		{MotivationHappy, sig.Happy},
		{MotivationSad, sig.Sad},
		{MotivationAngry, sig.Angry},
		{MotivationLonely, sig.Lonely},
		{MotivationLove, sig.Love},
		{MotivationFear, sig.Fear},
		{MotivationHate, sig.Hate},
		{MotivationWork, sig.Work},
		{MotivationMeander, sig.Meander},
	}
	for _, c := range candidates {
		if c.on {
			return c.m
		}
	}
	return MotivationIdle
}
