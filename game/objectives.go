// game/objectives.go
package game

import "math/rand"

// Objective pools. Crew objectives keep the ship healthy, sabotage
// objectives work against it. Players may share an objective; the
// draw is uniform within the pool.
var (
	CrewObjectives = []string{
		"Keep morale above 90",
		"Keep hull above 50",
	}
	SabotageObjectives = []string{
		"Reduce oxygen below 30",
		"Change the captain once",
	}
)

func DrawObjective(saboteur bool, rng *rand.Rand) string {
	pool := CrewObjectives
	if saboteur {
		pool = SabotageObjectives
	}
	return pool[rng.Intn(len(pool))]
}

// EvaluateObjective checks an objective against the final ship stats
// and whether a coup ever changed the captaincy. Objectives are
// matched by their literal text.
func EvaluateObjective(objective string, ship Ship, captainChanged bool) bool {
	switch objective {
	case "Keep morale above 90":
		return ship.Morale > 90
	case "Keep hull above 50":
		return ship.Hull > 50
	case "Reduce oxygen below 30":
		return ship.Oxygen < 30
	case "Change the captain once":
		return captainChanged
	}
	return false
}
