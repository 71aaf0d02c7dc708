// game/state.go
package game

import (
	"math/rand"
)

// DefaultMaxRounds is the round count at which the crew wins.
const DefaultMaxRounds = 15

// Outcome of a finished game.
type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomeWin       Outcome = "win"
	OutcomeLoss      Outcome = "loss"
	OutcomeAbandoned Outcome = "abandoned"
)

// PlayerState is a player's hidden per-game data.
type PlayerState struct {
	Role          Role
	Objective     string
	Saboteur      bool
	AbilityCharge int
	Cooldown      int
	Hand          []Card
	ChosenCard    *Card
}

// State is the authoritative game state of one room. It is pure data
// plus rules; scheduling, authority checks and broadcasting happen in
// the room layer. All randomness flows through the injected rng so
// tests can pin it.
type State struct {
	Ship      Ship
	Players   map[string]*PlayerState
	Order     []string // player ids in join order
	MaxRounds int

	rng *rand.Rand
}

// NewState deals roles, saboteurs and objectives for the given
// players (in join order) and places the ship at its starting stats.
func NewState(playerIDs []string, start Ship, maxRounds int, rng *rand.Rand) *State {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	st := &State{
		Ship:      start,
		Players:   make(map[string]*PlayerState, len(playerIDs)),
		Order:     append([]string(nil), playerIDs...),
		MaxRounds: maxRounds,
		rng:       rng,
	}

	saboteurs := pickSaboteurs(playerIDs, rng)
	for i, id := range playerIDs {
		sab := saboteurs[id]
		st.Players[id] = &PlayerState{
			Role:      Roles[i%len(Roles)],
			Objective: DrawObjective(sab, rng),
			Saboteur:  sab,
		}
	}
	return st
}

// pickSaboteurs chooses 1 or 2 players (uniform, capped at the player
// count) uniformly at random.
func pickSaboteurs(playerIDs []string, rng *rand.Rand) map[string]bool {
	count := 1 + rng.Intn(2)
	if count > len(playerIDs) {
		count = len(playerIDs)
	}
	chosen := make(map[string]bool)
	for _, idx := range rng.Perm(len(playerIDs))[:count] {
		chosen[playerIDs[idx]] = true
	}
	return chosen
}

// DrawEvent applies a random event to the ship and returns it.
func (st *State) DrawEvent() Event {
	ev := RandomEvent(st.rng)
	st.Ship = st.Ship.Apply(ev.Effect)
	return ev
}

// DealRound gives every player a fresh hand, clears pending cards
// and, except on the first round, advances the ability economy:
// cooldown ticks down, otherwise charge grows.
func (st *State) DealRound(first bool) {
	for _, p := range st.Players {
		p.Hand = DealHand(p.Role, st.rng)
		p.ChosenCard = nil
		if first {
			continue
		}
		if p.Cooldown > 0 {
			p.Cooldown--
		} else {
			p.AbilityCharge = gainCharge(p.AbilityCharge)
		}
	}
}

func gainCharge(charge int) int {
	charge += ChargeGain
	if charge > ChargeMax {
		charge = ChargeMax
	}
	return charge
}

// PlayCard marks the indexed hand card as the player's pending offer.
// It fails if the player is unknown, already has a pending card, or
// the index is out of bounds.
func (st *State) PlayCard(playerID string, cardIndex int) (Card, bool) {
	p, ok := st.Players[playerID]
	if !ok || p.ChosenCard != nil {
		return Card{}, false
	}
	if cardIndex < 0 || cardIndex >= len(p.Hand) {
		return Card{}, false
	}
	card := p.Hand[cardIndex]
	p.ChosenCard = &card
	return card, true
}

// ResolveCard applies the target's pending card to the ship, clears
// it and rewards the player with ability charge. No-op without a
// pending card.
func (st *State) ResolveCard(playerID string) (Card, bool) {
	p, ok := st.Players[playerID]
	if !ok || p.ChosenCard == nil {
		return Card{}, false
	}
	card := *p.ChosenCard
	st.Ship = st.Ship.Apply(card.Effect)
	p.ChosenCard = nil
	p.AbilityCharge = gainCharge(p.AbilityCharge)
	return card, true
}

// UseAbility fires the player's role ability if it is fully charged
// and off cooldown.
func (st *State) UseAbility(playerID string) bool {
	p, ok := st.Players[playerID]
	if !ok || p.AbilityCharge < ChargeMax || p.Cooldown != 0 {
		return false
	}
	st.Ship = st.Ship.Apply(AbilityEffects[p.Role])
	p.AbilityCharge = 0
	p.Cooldown = AbilityCooldown
	return true
}

// CheckEnd evaluates the end conditions for the given round counter:
// a depleted stat loses, reaching the round limit wins, in that
// order.
func (st *State) CheckEnd(round int) Outcome {
	if _, dead := st.Ship.Depleted(); dead {
		return OutcomeLoss
	}
	if round >= st.MaxRounds {
		return OutcomeWin
	}
	return OutcomeNone
}

// ObjectiveResult is one player's end-of-game evaluation.
type ObjectiveResult struct {
	PlayerID  string `json:"player_id"`
	Role      Role   `json:"role"`
	Objective string `json:"objective"`
	Saboteur  bool   `json:"saboteur"`
	Success   bool   `json:"success"`
}

// EvaluateObjectives scores every player against the final ship
// stats, in join order.
func (st *State) EvaluateObjectives(captainChanged bool) []ObjectiveResult {
	results := make([]ObjectiveResult, 0, len(st.Order))
	for _, id := range st.Order {
		p := st.Players[id]
		results = append(results, ObjectiveResult{
			PlayerID:  id,
			Role:      p.Role,
			Objective: p.Objective,
			Saboteur:  p.Saboteur,
			Success:   EvaluateObjective(p.Objective, st.Ship, captainChanged),
		})
	}
	return results
}
