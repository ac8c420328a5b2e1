// Package store holds the authoritative in-memory student collection.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	log "github.com/sirupsen/logrus"

	"student-manager-go/models"
)

// ErrNotFound is returned by Update when no record has the requested id
var ErrNotFound = errors.New("student not found")

// Persistence is the durable slot the collection is mirrored to.
// Load must not fail; Save overwrites the whole collection.
type Persistence interface {
	Load(ctx context.Context) []models.Student
	Save(ctx context.Context, students []models.Student) error
}

// RecordStore is the ordered student collection. Every mutation saves the
// complete post-mutation collection exactly once; if that save fails the
// mutation is not applied, so memory and storage never diverge.
type RecordStore struct {
	mu       sync.RWMutex
	persist  Persistence
	students []models.Student
}

// New loads the collection from p
func New(ctx context.Context, p Persistence) *RecordStore {
	students := p.Load(ctx)
	log.Debugf("Loaded %d students", len(students))
	return &RecordStore{persist: p, students: students}
}

// NextID is the id Add would assign for class right now. Ids are the class
// followed by the collection size plus one, so after a removal a new id can
// repeat one that is still present.
func (s *RecordStore) NextID(class string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nextID(class, len(s.students))
}

func nextID(class string, size int) string {
	return class + "_" + strconv.Itoa(size+1)
}

// Add appends a new student and returns it with its assigned id
func (s *RecordStore) Add(ctx context.Context, fields models.StudentFields) (models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	student := fields.WithID(nextID(fields.Class, len(s.students)))
	next := make([]models.Student, len(s.students), len(s.students)+1)
	copy(next, s.students)
	next = append(next, student)

	if err := s.commit(ctx, next); err != nil {
		return models.Student{}, fmt.Errorf("add student %s: %w", student.ID, err)
	}
	log.Infof("Added student: %s (%s)", student.Name, student.ID)
	return student, nil
}

// Update replaces every field but the id of the records with that id
func (s *RecordStore) Update(ctx context.Context, id string, fields models.StudentFields) (models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Student, len(s.students))
	copy(next, s.students)
	var updated *models.Student
	for i := range next {
		if next[i].ID != id {
			continue
		}
		next[i] = fields.WithID(id)
		if updated == nil {
			updated = &next[i]
		}
	}
	if updated == nil {
		return models.Student{}, fmt.Errorf("update student %s: %w", id, ErrNotFound)
	}

	result := *updated
	if err := s.commit(ctx, next); err != nil {
		return models.Student{}, fmt.Errorf("update student %s: %w", id, err)
	}
	log.Infof("Updated student: %s (%s)", result.Name, result.ID)
	return result, nil
}

// Remove drops the records with that id. Removing an unknown id is not an
// error; the unchanged collection is still saved.
func (s *RecordStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Student, 0, len(s.students))
	for _, st := range s.students {
		if st.ID != id {
			next = append(next, st)
		}
	}

	removed := len(s.students) - len(next)
	if err := s.commit(ctx, next); err != nil {
		return fmt.Errorf("remove student %s: %w", id, err)
	}
	if removed > 0 {
		log.Infof("Removed student %s", id)
	}
	return nil
}

// commit saves next and, on success, makes it the current collection
func (s *RecordStore) commit(ctx context.Context, next []models.Student) error {
	if err := s.persist.Save(ctx, next); err != nil {
		return err
	}
	s.students = next
	return nil
}

// All returns a snapshot of the collection in insertion order
func (s *RecordStore) All() []models.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Student, len(s.students))
	copy(out, s.students)
	return out
}

// Get returns the first record with the id
func (s *RecordStore) Get(id string) (models.Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.students {
		if st.ID == id {
			return st, true
		}
	}
	return models.Student{}, false
}

// Len is the number of records
func (s *RecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.students)
}
