// game/abilities.go
package game

const (
	ChargeGain      = 20
	ChargeMax       = 100
	AbilityCooldown = 4
)

// AbilityEffects maps each role to its charged ability.
var AbilityEffects = map[Role]Effect{
	RoleEngineer:     {Hull: 20},
	RolePsychologist: {Morale: 20},
	RoleNavigator:    {Oxygen: 20},
	RoleOperator:     {Temperature: -10},
}
