package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShip_Apply_Clamps(t *testing.T) {
	ship := Ship{Temperature: 100, Oxygen: 100, Hull: 100, Morale: 100}

	ship = ship.Apply(Effect{Hull: 50})
	assert.Equal(t, 100, ship.Hull, "hull must clamp at 100")

	ship = ship.Apply(Effect{Oxygen: -250})
	assert.Equal(t, 0, ship.Oxygen, "oxygen must clamp at 0, never wrap")

	ship = ship.Apply(Effect{Temperature: -30, Morale: 10})
	assert.Equal(t, 70, ship.Temperature)
	assert.Equal(t, 100, ship.Morale)
}

func TestShip_Apply_UntouchedStats(t *testing.T) {
	ship := Ship{Temperature: 40, Oxygen: 50, Hull: 60, Morale: 70}
	next := ship.Apply(Effect{Hull: -5})

	assert.Equal(t, 40, next.Temperature)
	assert.Equal(t, 50, next.Oxygen)
	assert.Equal(t, 55, next.Hull)
	assert.Equal(t, 70, next.Morale)
}

func TestShip_Apply_RandomSequenceStaysBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ship := Ship{Temperature: 50, Oxygen: 50, Hull: 50, Morale: 50}

	for i := 0; i < 1000; i++ {
		ship = ship.Apply(Effect{
			Temperature: rng.Intn(61) - 30,
			Oxygen:      rng.Intn(61) - 30,
			Hull:        rng.Intn(61) - 30,
			Morale:      rng.Intn(61) - 30,
		})
		for _, v := range []int{ship.Temperature, ship.Oxygen, ship.Hull, ship.Morale} {
			assert.GreaterOrEqual(t, v, 0)
			assert.LessOrEqual(t, v, 100)
		}
	}
}

func TestShip_Depleted(t *testing.T) {
	ship := Ship{Temperature: 10, Oxygen: 10, Hull: 10, Morale: 10}
	_, dead := ship.Depleted()
	assert.False(t, dead)

	ship.Hull = 0
	stat, dead := ship.Depleted()
	assert.True(t, dead)
	assert.Equal(t, "hull", stat)
}
