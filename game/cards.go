// game/cards.go
package game

import "math/rand"

// Role is one of the four crew positions.
type Role string

const (
	RoleEngineer     Role = "Engineer"
	RolePsychologist Role = "Psychologist"
	RoleNavigator    Role = "Navigator"
	RoleOperator     Role = "Operator"
)

// Roles in assignment order.
var Roles = []Role{RoleEngineer, RolePsychologist, RoleNavigator, RoleOperator}

// Card is an immutable deck entry.
type Card struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Effect      Effect `json:"effect"`
}

// HandSize is how many cards a player is offered each round.
const HandSize = 3

// Decks maps each role to its card pool.
var Decks = map[Role][]Card{
	RoleEngineer: {
		{Name: "Repair Hull", Description: "Patch small breaches in the hull.", Effect: Effect{Hull: 10}},
		{Name: "Vent Plasma", Description: "Lower temperature by venting plasma.", Effect: Effect{Temperature: -5}},
		{Name: "Reinforce Bulkhead", Description: "Improve hull integrity slightly.", Effect: Effect{Hull: 5}},
	},
	RolePsychologist: {
		{Name: "Motivational Speech", Description: "Raise crew morale.", Effect: Effect{Morale: 10}},
		{Name: "Calming Therapy", Description: "Reduce stress for a small morale gain.", Effect: Effect{Morale: 5}},
		{Name: "Harsh Critique", Description: "Morale drops a bit but reveals issues.", Effect: Effect{Morale: -5}},
	},
	RoleNavigator: {
		{Name: "Plot Safe Course", Description: "Avoid dangerous sectors.", Effect: Effect{Temperature: -5}},
		{Name: "Short Warp", Description: "Consume oxygen to jump forward.", Effect: Effect{Oxygen: -5}},
		{Name: "Sensor Sweep", Description: "Scan ahead for threats.", Effect: Effect{}},
	},
	RoleOperator: {
		{Name: "Scan Frequencies", Description: "Boost morale slightly.", Effect: Effect{Morale: 5}},
		{Name: "Override Alarms", Description: "Cool the ship but strain the hull.", Effect: Effect{Temperature: -5, Hull: -5}},
		{Name: "Open Channels", Description: "Communication boost at oxygen cost.", Effect: Effect{Oxygen: -5, Morale: 5}},
	},
}

// DealHand draws HandSize cards independently and uniformly (with
// replacement) from the role's deck.
func DealHand(role Role, rng *rand.Rand) []Card {
	deck := Decks[role]
	hand := make([]Card, 0, HandSize)
	for i := 0; i < HandSize; i++ {
		hand = append(hand, deck[rng.Intn(len(deck))])
	}
	return hand
}
