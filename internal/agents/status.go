package agents

import "fmt"

// InfoPanel is a read-only multi-line projection for the info display.
type InfoPanel interface {
	InfoPanel() []string
}

// Status holds an agent's needs and condition flags. A nil need means the
// agent does not have it and it never triggers a motivation.
type Status struct {
	Food          *Need  `json:"food,omitempty"`
	Sleep         *Need  `json:"sleep,omitempty"`
	Entertainment *Need  `json:"entertainment,omitempty"`
	Crisis        string `json:"crisis,omitempty"`
	Danger        string `json:"danger,omitempty"`
	Injured       bool   `json:"injured"`
}

// Decay depletes every present need by one tick.
func (s *Status) Decay() {
	for _, n := range []*Need{s.Food, s.Sleep, s.Entertainment} {
		if n != nil {
			n.Decay()
		}
	}
}

// InfoPanel implements InfoPanel.
func (s *Status) InfoPanel() []string {
	var lines []string
	if s.Food != nil {
		lines = append(lines, fmt.Sprintf("Food: %.2f%%", s.Food.Percent()))
	}
	if s.Entertainment != nil {
		lines = append(lines, fmt.Sprintf("Entertainment: %.2f%%", s.Entertainment.Percent()))
	}
	if s.Sleep != nil {
		lines = append(lines, fmt.Sprintf("Sleep: %.2f%%", s.Sleep.Percent()))
	}
	return lines
}

// Clone returns a deep copy, so a snapshot can be worked on off-thread.
func (s Status) Clone() Status {
	out := s
	if s.Food != nil {
		f := *s.Food
		out.Food = &f
	}
	if s.Sleep != nil {
		sl := *s.Sleep
		out.Sleep = &sl
	}
	if s.Entertainment != nil {
		e := *s.Entertainment
		out.Entertainment = &e
	}
	return out
}
