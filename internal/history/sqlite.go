package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// runSummary is the table row for one Entry.
type runSummary struct {
	ID                 uint      `gorm:"primaryKey"`
	RunID              string    `gorm:"size:36;not null"`
	Server             string    `gorm:"size:255;not null;index:idx_server_generated,priority:1"`
	GeneratedAt        time.Time `gorm:"not null;index:idx_server_generated,priority:2"`
	WindowStart        time.Time `gorm:"not null"`
	WindowEnd          time.Time `gorm:"not null"`
	TotalRestorePoints int       `gorm:"not null"`
	InWindowCount      int       `gorm:"not null"`
	CompliancePercent  float64   `gorm:"not null"`
	SkippedJobs        int       `gorm:"not null;default:0"`
}

func (runSummary) TableName() string { return "run_summaries" }

// SQLStore keeps entries in a SQLite database.
type SQLStore struct {
	db *gorm.DB
}

// OpenSQLite opens (creating if needed) the database at dsn and migrates the
// schema. ":memory:" is accepted for tests.
func OpenSQLite(dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, errors.New("history path is required")
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	// One connection keeps an in-memory database alive and serializes writes.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&runSummary{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate history database: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Append(ctx context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]runSummary, len(entries))
	for i, e := range entries {
		rows[i] = runSummary{
			RunID:              e.RunID,
			Server:             e.Server,
			GeneratedAt:        e.GeneratedAt.UTC(),
			WindowStart:        e.WindowStart.UTC(),
			WindowEnd:          e.WindowEnd.UTC(),
			TotalRestorePoints: e.TotalRestorePoints,
			InWindowCount:      e.InWindowCount,
			CompliancePercent:  e.CompliancePercent,
			SkippedJobs:        e.SkippedJobs,
		}
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context, q Query) ([]Entry, error) {
	tx := s.db.WithContext(ctx).Order("generated_at DESC").Order("id DESC")
	if q.Server != "" {
		tx = tx.Where("server = ? COLLATE NOCASE", q.Server)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var rows []runSummary
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	out := make([]Entry, len(rows))
	for i, r := range rows {
		out[i] = Entry{
			RunID:              r.RunID,
			Server:             r.Server,
			GeneratedAt:        r.GeneratedAt,
			WindowStart:        r.WindowStart,
			WindowEnd:          r.WindowEnd,
			TotalRestorePoints: r.TotalRestorePoints,
			InWindowCount:      r.InWindowCount,
			CompliancePercent:  r.CompliancePercent,
			SkippedJobs:        r.SkippedJobs,
		}
	}
	return out, nil
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
