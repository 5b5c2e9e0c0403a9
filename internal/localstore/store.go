package localstore

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store is a key/value wrapper over an embedded SQLite database. It plays
// the role browser localStorage plays for the web client: one file per
// device, values are serialized JSON snapshots of whole collections, every
// write replaces the whole value under a key.
type Store struct {
	db *gorm.DB
}

type entry struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

func (entry) TableName() string { return "cache_entries" }

func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Get decodes the value under key into out. It never fails: a missing key
// or corrupt JSON leaves out untouched and returns false, so callers keep
// whatever default they initialized out with.
func (s *Store) Get(key Key, out interface{}) bool {
	var row entry
	if err := s.db.First(&row, "key = ?", string(key)).Error; err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(row.Value), out); err != nil {
		return false
	}
	return true
}

// Set serializes value and overwrites the prior value under key.
// Last write wins; there is no cross-key transactionality.
func (s *Store) Set(key Key, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	row := entry{Key: string(key), Value: string(raw), UpdatedAt: time.Now().UTC()}
	return s.db.Save(&row).Error
}

// Delete removes the given keys.
func (s *Store) Delete(keys ...Key) error {
	if len(keys) == 0 {
		return nil
	}
	raw := make([]string, 0, len(keys))
	for _, key := range keys {
		raw = append(raw, string(key))
	}
	return s.db.Delete(&entry{}, "key IN ?", raw).Error
}

// Clear removes every key the store has written. The table belongs
// exclusively to this store, so a full wipe is safe.
func (s *Store) Clear() error {
	return s.db.Where("1 = 1").Delete(&entry{}).Error
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// putRaw writes an unvalidated value; tests use it to simulate cache
// corruption.
func (s *Store) putRaw(key Key, value string) error {
	if s.db == nil {
		return errors.New("store closed")
	}
	row := entry{Key: string(key), Value: value, UpdatedAt: time.Now().UTC()}
	return s.db.Save(&row).Error
}
