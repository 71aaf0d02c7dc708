// persistence/gorm_postgresql.go
package persistence

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/JustSadSock/the-crew/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	// 配置GORM日志
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移表结构
	if err := db.AutoMigrate(&models.GormGameRecord{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// SaveGameRecord 保存游戏记录
func (p *GormPostgreSQL) SaveGameRecord(record *models.GameRecord) error {
	players, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}

	return p.db.Transaction(func(tx *gorm.DB) error {
		row := models.GormGameRecord{
			RoomCode: record.RoomCode,
			Outcome:  record.Outcome,
			Rounds:   record.Rounds,
			Players:  string(players),
		}
		return tx.Create(&row).Error
	})
}

// GetPlayerStats 统计玩家战绩（按名字聚合）
func (p *GormPostgreSQL) GetPlayerStats(name string) (*models.PlayerStats, error) {
	var rows []models.GormGameRecord
	if err := p.db.Where("players::text LIKE ?", "%"+name+"%").Find(&rows).Error; err != nil {
		return nil, err
	}

	stats := &models.PlayerStats{Name: name}
	for _, row := range rows {
		var players []models.PlayerResult
		if err := json.Unmarshal([]byte(row.Players), &players); err != nil {
			continue
		}
		for _, pr := range players {
			if pr.Name != name {
				continue
			}
			stats.TotalGames++
			if row.Outcome == "win" {
				stats.Wins++
			} else if row.Outcome == "loss" {
				stats.Losses++
			}
			if pr.Success {
				stats.Objectives++
			}
		}
	}
	if stats.TotalGames == 0 {
		return nil, ErrRecordNotFound
	}
	return stats, nil
}

// RecentGames 最近的游戏记录
func (p *GormPostgreSQL) RecentGames(limit int) ([]models.GameRecord, error) {
	var rows []models.GormGameRecord
	if err := p.db.Order("created_at desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]models.GameRecord, 0, len(rows))
	for _, row := range rows {
		record := models.GameRecord{
			RoomCode:  row.RoomCode,
			Outcome:   row.Outcome,
			Rounds:    row.Rounds,
			CreatedAt: row.CreatedAt,
		}
		if err := json.Unmarshal([]byte(row.Players), &record.Players); err != nil {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
