package db

import (
	"bytes"
	"encoding/json"
	"fmt"

	"student-manager-go/models"
)

// DefaultKey is the storage key the whole collection lives under
const DefaultKey = "students"

// EncodeStudents serializes the full collection. A nil collection is
// written as an empty array so the blob is always a valid list.
func EncodeStudents(students []models.Student) ([]byte, error) {
	if students == nil {
		students = []models.Student{}
	}
	data, err := json.Marshal(students)
	if err != nil {
		return nil, fmt.Errorf("failed to encode students: %w", err)
	}
	return data, nil
}

// DecodeStudents parses a stored blob. It never fails: an empty, null or
// malformed payload yields an empty collection and ok=false for anything
// that was present but unreadable.
func DecodeStudents(data []byte) (students []models.Student, ok bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []models.Student{}, true
	}
	var decoded []models.Student
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return []models.Student{}, false
	}
	if decoded == nil {
		decoded = []models.Student{}
	}
	return decoded, true
}
