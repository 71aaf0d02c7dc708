// game/events.go
package game

import "math/rand"

// Event is a random hazard applied to the ship at the start of every
// round, before any player action.
type Event struct {
	Name   string `json:"name"`
	Effect Effect `json:"effect"`
}

var Events = []Event{
	{Name: "Meteor Shower", Effect: Effect{Hull: -10}},
	{Name: "Oxygen Leak", Effect: Effect{Oxygen: -10}},
	{Name: "Crew Panic", Effect: Effect{Morale: -10}},
	{Name: "Cooling Failure", Effect: Effect{Temperature: 10}},
}

func RandomEvent(rng *rand.Rand) Event {
	return Events[rng.Intn(len(Events))]
}
