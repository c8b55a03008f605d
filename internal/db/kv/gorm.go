package kv

import (
	"context"
	"errors"
	"time"
	e "waterreminder/internal/core/domain/errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type entry struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (entry) TableName() string {
	return "kv_entries"
}

type Gorm struct {
	db *gorm.DB
}

func OpenSQLite(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
}

// NewGorm creates the entries table when it is missing.
func NewGorm(db *gorm.DB) (*Gorm, error) {
	if db == nil {
		panic(e.NewNilArgumentError("db"))
	}
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, err
	}
	return &Gorm{db: db}, nil
}

func (s *Gorm) Get(ctx context.Context, key string) (string, bool, error) {
	var found entry
	err := s.db.WithContext(ctx).Where("key = ?", key).Take(&found).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return found.Value, true, nil
}

func (s *Gorm) Set(ctx context.Context, key string, value string) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}).Error
}

func (s *Gorm) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
