package room

// Action is one decoded inbound command. The server parses packets
// into this form and the room's current state decides what to do
// with it. Fields beyond Type and Actor are only meaningful for the
// matching action type.
type Action struct {
	Type      uint16
	Actor     string
	CardIndex int
	TargetID  string
	Anonymous bool
	Vote      bool
	Text      string
	To        string
}

func (a *Action) Kind() uint16 { return a.Type }

func (a *Action) ActorID() string { return a.Actor }
