package store

import (
	"encoding/json"
	"fmt"
	"log"

	"blueme/internal/config"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// collectionRow is one whole collection serialized as a JSON blob. Keeping
// the blob-per-collection shape preserves the last-writer-wins semantics of
// the file store instead of silently upgrading them.
type collectionRow struct {
	Key   string `gorm:"primaryKey;type:varchar(64)"`
	Value string `gorm:"type:text"`
}

func (collectionRow) TableName() string {
	return "collections"
}

// DatabaseStore implements Store on top of gorm, for deployments that have
// outgrown flat files. Selected with STORAGE_DRIVER=sqlite or postgres.
type DatabaseStore struct {
	db *gorm.DB
}

func NewDatabaseStore(cfg *config.Config) (*DatabaseStore, error) {
	var dialector gorm.Dialector
	switch cfg.StorageDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DBPath)
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
		dialector = postgres.Open(dsn)
	default:
		return nil, errors.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "databaseStore: open")
	}
	if err := db.AutoMigrate(&collectionRow{}); err != nil {
		return nil, errors.Wrap(err, "databaseStore: migrate")
	}
	log.Printf("Connected to %s storage", cfg.StorageDriver)
	return &DatabaseStore{db: db}, nil
}

func (s *DatabaseStore) Load(collection string, out interface{}) error {
	var row collectionRow
	err := s.db.Where("key = ?", collection).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "databaseStore.Load(%s)", collection)
	}
	if err := json.Unmarshal([]byte(row.Value), out); err != nil {
		return errors.Wrapf(err, "databaseStore.Load(%s): decode", collection)
	}
	return nil
}

func (s *DatabaseStore) Save(collection string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "databaseStore.Save(%s): encode", collection)
	}
	row := collectionRow{Key: collection, Value: string(raw)}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&row).Error
	if err != nil {
		return errors.Wrapf(err, "databaseStore.Save(%s)", collection)
	}
	return nil
}

// Open picks the backend from config: flat JSON files by default, gorm
// otherwise.
func Open(cfg *config.Config) (Store, error) {
	if cfg.StorageDriver == "" || cfg.StorageDriver == "json" {
		return NewFileStore(cfg.DataDir), nil
	}
	return NewDatabaseStore(cfg)
}
