// Package app turns user intents into record store and form calls and
// hands back what the presentation should render.
package app

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"student-manager-go/form"
	"student-manager-go/models"
	"student-manager-go/store"
)

// View is everything a presentation needs to draw the page
type View struct {
	Query    string           `json:"query"`
	Students []models.Student `json:"students"`
	Total    int              `json:"total"`
	Form     form.State       `json:"form"`
}

// Session is the single user's page state. Each intent runs to completion,
// persistence included, before the next one starts.
type Session struct {
	mu      sync.Mutex
	records *store.RecordStore
	form    *form.Controller
	query   string
}

func NewSession(records *store.RecordStore) *Session {
	return &Session{
		records: records,
		form:    form.NewController(records),
	}
}

// Records exposes the underlying store for read-only callers
func (s *Session) Records() *store.RecordStore {
	return s.records
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (s *Session) view() View {
	return View{
		Query:    s.query,
		Students: store.Filter(s.records.All(), s.query),
		Total:    s.records.Len(),
		Form:     s.form.State(),
	}
}

// Search replaces the current query
func (s *Session) Search(query string) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = query
	return s.view()
}

func (s *Session) OpenForAdd() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.OpenForAdd()
	return s.view()
}

// OpenForEdit opens the form on the record with id
func (s *Session) OpenForEdit(id string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	student, ok := s.records.Get(id)
	if !ok {
		return s.view(), fmt.Errorf("edit student %s: %w", id, store.ErrNotFound)
	}
	s.form.OpenForEdit(student)
	return s.view(), nil
}

// OpenForEditStudent opens the form on the given record as displayed.
// Ids can repeat, so callers holding the row itself use this instead of
// looking it up by id.
func (s *Session) OpenForEditStudent(student models.Student) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.OpenForEdit(student)
	return s.view()
}

func (s *Session) Cancel() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Cancel()
	return s.view()
}

// Submit sends the form. The returned view reflects the form state after
// the attempt, open with errors or closed on success.
func (s *Session) Submit(ctx context.Context, values form.Values) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.form.Submit(ctx, values)
	return s.view(), err
}

// Delete removes the record with id; unknown ids are ignored
func (s *Session) Delete(ctx context.Context, id string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.records.Remove(ctx, id)
	return s.view(), err
}

// Import adds each row in order and reports how many were added. It stops
// at the first failed save.
func (s *Session) Import(ctx context.Context, rows []models.StudentFields) (int, View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	imported := 0
	for _, row := range rows {
		if _, err := s.records.Add(ctx, row); err != nil {
			log.Errorf("Import stopped after %d of %d students: %v", imported, len(rows), err)
			return imported, s.view(), err
		}
		imported++
	}
	log.Infof("Imported %d students", imported)
	return imported, s.view(), nil
}
