// game/ship.go
package game

// Ship holds the four shared resources the crew manages together.
// Values are always kept inside [0,100].
type Ship struct {
	Temperature int `json:"temperature"`
	Oxygen      int `json:"oxygen"`
	Hull        int `json:"hull"`
	Morale      int `json:"morale"`
}

// Effect is a set of signed deltas over the ship stats. The stat set
// is closed, so a fixed record is used instead of a sparse map; a
// zero field leaves the stat untouched.
type Effect struct {
	Temperature int `json:"temperature,omitempty"`
	Oxygen      int `json:"oxygen,omitempty"`
	Hull        int `json:"hull,omitempty"`
	Morale      int `json:"morale,omitempty"`
}

const (
	StatMin = 0
	StatMax = 100
)

func clamp(v int) int {
	if v < StatMin {
		return StatMin
	}
	if v > StatMax {
		return StatMax
	}
	return v
}

// Apply returns the ship with the effect applied and every stat
// clamped to [0,100]. This is the only way stats are mutated.
func (s Ship) Apply(e Effect) Ship {
	return Ship{
		Temperature: clamp(s.Temperature + e.Temperature),
		Oxygen:      clamp(s.Oxygen + e.Oxygen),
		Hull:        clamp(s.Hull + e.Hull),
		Morale:      clamp(s.Morale + e.Morale),
	}
}

// Depleted reports whether any stat has hit zero, returning the name
// of the first depleted stat.
func (s Ship) Depleted() (string, bool) {
	switch {
	case s.Temperature <= 0:
		return "temperature", true
	case s.Oxygen <= 0:
		return "oxygen", true
	case s.Hull <= 0:
		return "hull", true
	case s.Morale <= 0:
		return "morale", true
	}
	return "", false
}
