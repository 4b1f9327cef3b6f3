package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/marcovilla/storefront-client/pkg/config"
	pkgerrors "github.com/marcovilla/storefront-client/pkg/errors"
	"github.com/marcovilla/storefront-client/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNotFound reports a missing key.
var ErrNotFound = errors.New("storage: key not found")

// Record is one durable key/value entry. The table stands in for the
// browser's localStorage: access_token, refresh_token, and the cached user
// profile live here.
type Record struct {
	Key       string `gorm:"primaryKey;column:key"`
	Value     string `gorm:"column:value"`
	UpdatedAt time.Time
}

func (Record) TableName() string {
	return "records"
}

// Store is the durable client-side storage backed by a local SQLite file.
type Store struct {
	conn *gorm.DB
}

// Open boots the storage file and ensures the schema exists.
func Open(ctx context.Context, cfg config.StorageConfig, logg *logger.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	gormLogger := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	conn, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening storage file: %w", err)
	}

	if err := conn.WithContext(ctx).AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrating storage schema: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "durable storage opened")
	}

	return &Store{conn: conn}, nil
}

// Get returns the stored value or ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var record Record
	err := s.conn.WithContext(ctx).First(&record, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeStorage, err, "read storage key")
	}
	return record.Value, nil
}

// Set writes or replaces the value for a key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	record := Record{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.conn.WithContext(ctx).Save(&record).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "write storage key")
	}
	return nil
}

// Delete removes the given keys. Missing keys are not an error, which keeps
// logout idempotent.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := s.conn.WithContext(ctx).Delete(&Record{}, "key IN ?", keys).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "delete storage keys")
	}
	return nil
}

// Close shuts down the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
