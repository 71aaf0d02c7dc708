// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"

	"github.com/JustSadSock/the-crew/models"
)

// PostgreSQL is the plain database/sql implementation, for
// deployments that prefer raw SQL over the ORM.
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS game_records (
            id SERIAL PRIMARY KEY,
            room_code TEXT NOT NULL,
            outcome TEXT NOT NULL,
            rounds INT NOT NULL DEFAULT 0,
            players JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_game_records_room_code ON game_records (room_code)`)
	return err
}

// SaveGameRecord 保存游戏记录
func (p *PostgreSQL) SaveGameRecord(record *models.GameRecord) error {
	players, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}
	_, err = p.db.Exec(
		`INSERT INTO game_records (room_code, outcome, rounds, players) VALUES ($1, $2, $3, $4)`,
		record.RoomCode, record.Outcome, record.Rounds, players,
	)
	return err
}

// GetPlayerStats 统计玩家战绩
func (p *PostgreSQL) GetPlayerStats(name string) (*models.PlayerStats, error) {
	row := p.db.QueryRow(`
        SELECT
            COUNT(*),
            SUM(CASE WHEN outcome = 'win' THEN 1 ELSE 0 END),
            SUM(CASE WHEN outcome = 'loss' THEN 1 ELSE 0 END),
            SUM(CASE WHEN pl->>'success' = 'true' THEN 1 ELSE 0 END)
        FROM game_records, jsonb_array_elements(players) pl
        WHERE pl->>'name' = $1`, name)

	stats := &models.PlayerStats{Name: name}
	var total, wins, losses, objectives sql.NullInt64
	if err := row.Scan(&total, &wins, &losses, &objectives); err != nil {
		return nil, err
	}
	if total.Int64 == 0 {
		return nil, ErrRecordNotFound
	}
	stats.TotalGames = int(total.Int64)
	stats.Wins = int(wins.Int64)
	stats.Losses = int(losses.Int64)
	stats.Objectives = int(objectives.Int64)
	return stats, nil
}

// RecentGames 最近的游戏记录
func (p *PostgreSQL) RecentGames(limit int) ([]models.GameRecord, error) {
	rows, err := p.db.Query(
		`SELECT room_code, outcome, rounds, players, created_at FROM game_records ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.GameRecord
	for rows.Next() {
		var record models.GameRecord
		var players []byte
		if err := rows.Scan(&record.RoomCode, &record.Outcome, &record.Rounds, &players, &record.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(players, &record.Players); err != nil {
			continue
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
