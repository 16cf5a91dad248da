// Package history records finished games to Postgres. It is optional:
// the server runs without it and live session state is never persisted.
package history

import (
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type MatchResult struct {
	ID          uint `gorm:"primaryKey"`
	SessionName string
	Winner      string
	Players     string
	StartedAt   time.Time
	EndedAt     time.Time
	CreatedAt   time.Time
}

type Store struct {
	db *gorm.DB
}

func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&MatchResult{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// RecordResult inserts one row per finished game.
func (s *Store) RecordResult(session, winner string, players []string, started, ended time.Time) error {
	return s.db.Create(&MatchResult{
		SessionName: session,
		Winner:      winner,
		Players:     strings.Join(players, ","),
		StartedAt:   started,
		EndedAt:     ended,
	}).Error
}
