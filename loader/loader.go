package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/Pallinder/go-randomdata"
	log "github.com/sirupsen/logrus"

	"student-manager-go/models"
)

// Adder is where generated students are inserted
type Adder interface {
	Add(ctx context.Context, fields models.StudentFields) (models.Student, error)
	Len() int
}

func GenerateStudent() models.StudentFields {
	return models.StudentFields{
		Name:    randomdata.FullName(randomdata.RandomGender),
		Age:     randomdata.Number(6, 19),
		Address: strings.ReplaceAll(randomdata.Address(), "\n", ", "),
		Class:   fmt.Sprintf("%d%s", randomdata.Number(1, 7), randomdata.StringSample("A", "B", "C")),
	}
}

func GenerateStudentList(n int) []models.StudentFields {
	students := make([]models.StudentFields, 0, n)
	for i := 0; i < n; i++ {
		students = append(students, GenerateStudent())
	}
	return students
}

// InsertStudentList adds every student in order and returns how many made it
func InsertStudentList(ctx context.Context, to Adder, students []models.StudentFields) (int, error) {
	for i, st := range students {
		if _, err := to.Add(ctx, st); err != nil {
			return i, fmt.Errorf("insert student %d of %d: %w", i+1, len(students), err)
		}
	}
	return len(students), nil
}

// SeedIfEmpty inserts n random students when the collection has none
func SeedIfEmpty(ctx context.Context, to Adder, n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	if count := to.Len(); count > 0 {
		log.Infof("Found %d existing students, skipping seed data", count)
		return 0, nil
	}
	log.Infof("No students found, adding %d generated students", n)
	return InsertStudentList(ctx, to, GenerateStudentList(n))
}
