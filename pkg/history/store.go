package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrRunNotFound is returned when no run matches an id
var ErrRunNotFound = errors.New("run not found")

// DefaultLimit bounds List when the caller passes no limit
const DefaultLimit = 20

// Store is the run catalogue backed by a SQLite file
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the catalogue at path and migrates it.
// The path ":memory:" opens a private in-memory database.
func Open(path string, verbose bool) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	logMode := gormlogger.Silent
	if verbose {
		logMode = gormlogger.Info
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logMode),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// one connection keeps an in-memory database alive and serializes writes
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Run{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}

	return &Store{db: db}, nil
}

// Record inserts a run, assigning its id
func (s *Store) Record(ctx context.Context, run *Run) error {
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// List returns the most recent runs first
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	var runs []Run
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Get returns the run with the given id. A unique id prefix is accepted.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrRunNotFound)
	}

	var runs []Run
	err := s.db.WithContext(ctx).
		Where("id = ? OR id LIKE ?", id, id+"%").
		Limit(2).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	for i := range runs {
		if runs[i].ID == id {
			return &runs[i], nil
		}
	}
	switch len(runs) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return &runs[0], nil
	default:
		return nil, fmt.Errorf("id prefix %q matches more than one run", id)
	}
}

// FindBySeed returns runs generated from seed, most recent first
func (s *Store) FindBySeed(ctx context.Context, seed int64) ([]Run, error) {
	var runs []Run
	err := s.db.WithContext(ctx).
		Where("seed = ?", seed).
		Order("created_at DESC").
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find runs: %w", err)
	}
	return runs, nil
}

// Close releases the database
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
