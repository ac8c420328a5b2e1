package store

import (
	"strings"

	"student-manager-go/models"
)

// Filter returns the students whose name or class contains query,
// ignoring case. An empty query matches everything. Order is preserved and
// the input is not modified.
func Filter(students []models.Student, query string) []models.Student {
	out := make([]models.Student, 0, len(students))
	if query == "" {
		return append(out, students...)
	}
	q := strings.ToLower(query)
	for _, st := range students {
		if strings.Contains(strings.ToLower(st.Name), q) || strings.Contains(strings.ToLower(st.Class), q) {
			out = append(out, st)
		}
	}
	return out
}
