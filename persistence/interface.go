// persistence/interface.go
package persistence

import (
	"fmt"

	"github.com/JustSadSock/the-crew/models"
)

// Database 数据库接口
//
// Live rooms are in-memory only and never restored; the database is
// a write-mostly archive of finished games.
type Database interface {
	SaveGameRecord(record *models.GameRecord) error
	GetPlayerStats(name string) (*models.PlayerStats, error)
	RecentGames(limit int) ([]models.GameRecord, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
