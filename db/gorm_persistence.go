package db

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"student-manager-go/models"
)

// KVEntry is a row of the key-value table
type KVEntry struct {
	Key   string `gorm:"column:key;primaryKey;size:191"`
	Value string `gorm:"column:value;type:text;not null"`
}

// TableName pins the table name
func (KVEntry) TableName() string {
	return "kv_entries"
}

// GormPersistence stores the collection as a single row of kv_entries.
// Works with any GORM dialector; sqlite and postgres are wired in New.
type GormPersistence struct {
	DB  *gorm.DB
	Key string
}

// OpenGormPersistence opens the database and migrates kv_entries
func OpenGormPersistence(dialector gorm.Dialector, key string) (*GormPersistence, error) {
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := gdb.AutoMigrate(&KVEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv_entries: %w", err)
	}
	return &GormPersistence{DB: gdb, Key: key}, nil
}

// Load reads the row for Key, falling back to an empty collection
func (s *GormPersistence) Load(ctx context.Context) []models.Student {
	var entry KVEntry
	err := s.DB.WithContext(ctx).Take(&entry, "key = ?", s.Key).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("Error reading key %s from database, starting empty: %v", s.Key, err)
		}
		return []models.Student{}
	}
	students, ok := DecodeStudents([]byte(entry.Value))
	if !ok {
		log.Warnf("Stored value under %s is not a student list, starting empty", s.Key)
	}
	return students
}

// Save upserts the row for Key
func (s *GormPersistence) Save(ctx context.Context, students []models.Student) error {
	data, err := EncodeStudents(students)
	if err != nil {
		return err
	}
	entry := KVEntry{Key: s.Key, Value: string(data)}
	err = s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to save students to database: %w", err)
	}
	return nil
}

// Close releases the connection pool
func (s *GormPersistence) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
