// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormGameRecord 游戏记录模型
type GormGameRecord struct {
	gorm.Model
	RoomCode string `gorm:"index;not null"`
	Outcome  string `gorm:"not null"`
	Rounds   int    `gorm:"default:0"`
	Players  string `gorm:"type:jsonb;not null"` // marshalled []PlayerResult
}
