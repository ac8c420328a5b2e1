// Package form implements the add/edit modal as a small state machine.
package form

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"student-manager-go/models"
)

// ErrClosed is returned when submitting while no form is open
var ErrClosed = errors.New("form is not open")

// Records is the part of the record store the form writes to
type Records interface {
	Add(ctx context.Context, fields models.StudentFields) (models.Student, error)
	Update(ctx context.Context, id string, fields models.StudentFields) (models.Student, error)
}

// Mode is the modal state
type Mode int

const (
	Closed Mode = iota
	Adding
	Editing
)

func (m Mode) String() string {
	switch m {
	case Adding:
		return "adding"
	case Editing:
		return "editing"
	default:
		return "closed"
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// State is a snapshot of the controller for rendering
type State struct {
	Mode     Mode              `json:"mode"`
	Title    string            `json:"title,omitempty"`
	TargetID string            `json:"targetId,omitempty"`
	Values   Values            `json:"values"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// Open reports whether the modal is shown
func (s State) Open() bool {
	return s.Mode != Closed
}

// Controller owns the modal state. It is not safe for concurrent use; the
// session serializes access.
type Controller struct {
	records  Records
	mode     Mode
	targetID string
	values   Values
	errors   map[string]string
}

func NewController(records Records) *Controller {
	return &Controller{records: records}
}

// OpenForAdd shows an empty form with the default age
func (c *Controller) OpenForAdd() {
	c.mode = Adding
	c.targetID = ""
	c.values = Values{Age: DefaultAge}
	c.errors = nil
}

// OpenForEdit shows the form prefilled with the student, replacing any
// form that was already open
func (c *Controller) OpenForEdit(s models.Student) {
	c.mode = Editing
	c.targetID = s.ID
	c.values = ValuesOf(s)
	c.errors = nil
}

// Cancel closes the form and drops unsaved input
func (c *Controller) Cancel() {
	c.mode = Closed
	c.targetID = ""
	c.values = Values{}
	c.errors = nil
}

// Submit validates the inputs and adds or updates the record. On any error
// the form stays open with the submitted values so the user can fix, retry
// or cancel.
func (c *Controller) Submit(ctx context.Context, v Values) (models.Student, error) {
	if c.mode == Closed {
		return models.Student{}, ErrClosed
	}
	c.values = v

	fields, err := Parse(v)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			c.errors = verr.Fields
		}
		return models.Student{}, err
	}

	var saved models.Student
	switch c.mode {
	case Adding:
		saved, err = c.records.Add(ctx, fields)
	case Editing:
		saved, err = c.records.Update(ctx, c.targetID, fields)
	}
	if err != nil {
		log.Warnf("Submit in %s mode failed: %v", c.mode, err)
		c.errors = nil
		return models.Student{}, fmt.Errorf("submit form: %w", err)
	}

	c.Cancel()
	return saved, nil
}

// State returns a snapshot for rendering
func (c *Controller) State() State {
	st := State{
		Mode:     c.mode,
		TargetID: c.targetID,
		Values:   c.values,
	}
	switch c.mode {
	case Adding:
		st.Title = "Add Student"
	case Editing:
		st.Title = "Edit Student"
	}
	if len(c.errors) > 0 {
		st.Errors = make(map[string]string, len(c.errors))
		for k, v := range c.errors {
			st.Errors[k] = v
		}
	}
	return st
}
