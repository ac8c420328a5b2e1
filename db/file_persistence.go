package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"student-manager-go/models"
)

// FilePersistence stores the collection as one JSON file
type FilePersistence struct {
	path string
}

// NewFilePersistence creates the parent directory of path if needed
func NewFilePersistence(path string) (*FilePersistence, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FilePersistence{path: path}, nil
}

// Load reads the file; a missing or corrupt file yields an empty collection
func (s *FilePersistence) Load(_ context.Context) []models.Student {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("Error reading %s, starting empty: %v", s.path, err)
		}
		return []models.Student{}
	}
	students, ok := DecodeStudents(data)
	if !ok {
		log.Warnf("%s does not contain a student list, starting empty", s.path)
	}
	return students
}

// Save rewrites the whole file
func (s *FilePersistence) Save(_ context.Context, students []models.Student) error {
	data, err := EncodeStudents(students)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

// Close is a no-op; the file is not held open
func (s *FilePersistence) Close() error {
	return nil
}
