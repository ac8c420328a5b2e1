package db

import (
	"context"
	"sync"

	"student-manager-go/models"
)

// MemoryPersistence keeps the encoded blob in memory. Data is lost on
// restart. It goes through the same codec as the durable backends.
type MemoryPersistence struct {
	mu    sync.Mutex
	blob  []byte
	saves int
}

// NewMemoryPersistence creates an empty in-memory backend
func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{}
}

// Load decodes the stored blob, empty when nothing was saved
func (m *MemoryPersistence) Load(_ context.Context) []models.Student {
	m.mu.Lock()
	defer m.mu.Unlock()
	students, _ := DecodeStudents(m.blob)
	return students
}

// Save encodes and keeps the full collection
func (m *MemoryPersistence) Save(_ context.Context, students []models.Student) error {
	data, err := EncodeStudents(students)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blob = data
	m.saves++
	return nil
}

// SetRaw replaces the stored blob as-is
func (m *MemoryPersistence) SetRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blob = append([]byte(nil), data...)
}

// Saves reports how many times Save succeeded
func (m *MemoryPersistence) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Close is a no-op
func (m *MemoryPersistence) Close() error {
	return nil
}
