// services/record_service.go
package services

import (
	"github.com/JustSadSock/the-crew/logger"
	"github.com/JustSadSock/the-crew/models"
	"github.com/JustSadSock/the-crew/monitor"
	"github.com/JustSadSock/the-crew/persistence"
)

// RecordService archives finished games. It implements the room
// package's Recorder interface; failures are logged and swallowed so
// the game path never blocks on the database. A nil database still
// counts completed games, it just keeps no history.
type RecordService struct {
	db  persistence.Database
	mon *monitor.Monitor
}

func NewRecordService(db persistence.Database, mon *monitor.Monitor) *RecordService {
	return &RecordService{db: db, mon: mon}
}

// SaveGame 归档一局游戏
func (s *RecordService) SaveGame(record *models.GameRecord) {
	if s.mon != nil {
		s.mon.IncGamesCompleted()
	}
	if s.db == nil {
		return
	}
	if err := s.db.SaveGameRecord(record); err != nil {
		logger.Log.Errorf("Failed to save game record for room %s: %v", record.RoomCode, err)
		return
	}
	logger.Log.Infow("game record saved", "room", record.RoomCode, "outcome", record.Outcome)
}

// PlayerStats 查询玩家战绩
func (s *RecordService) PlayerStats(name string) (*models.PlayerStats, error) {
	if s.db == nil {
		return nil, persistence.ErrRecordNotFound
	}
	return s.db.GetPlayerStats(name)
}

// RecentGames 查询最近对局
func (s *RecordService) RecentGames(limit int) ([]models.GameRecord, error) {
	if s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	return s.db.RecentGames(limit)
}
