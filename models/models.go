// models/models.go
package models

import (
	"time"
)

// GameRecord is the archived result of one finished game.
type GameRecord struct {
	RoomCode  string         `json:"room_code"`
	Outcome   string         `json:"outcome"` // win/loss/abandoned
	Rounds    int            `json:"rounds"`
	Players   []PlayerResult `json:"players"`
	CreatedAt time.Time      `json:"created_at"`
}

// PlayerResult is one player's line in a game record.
type PlayerResult struct {
	PlayerID  string `json:"player_id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Objective string `json:"objective"`
	Saboteur  bool   `json:"saboteur"`
	Success   bool   `json:"success"`
	Bot       bool   `json:"bot"`
}

// PlayerStats aggregates a player's archived games by name.
type PlayerStats struct {
	Name       string `json:"name"`
	TotalGames int    `json:"total_games"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	Objectives int    `json:"objectives"` // personal objectives completed
}
