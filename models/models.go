package models

// Student represents a student record
type Student struct {
	ID      string `json:"id"`      // Assigned at creation as "<class>_<n>", never changed afterwards
	Name    string `json:"name"`    // Student name
	Age     int    `json:"age"`     // Age in years
	Address string `json:"address"` // Home address
	Class   string `json:"class"`   // Class the student belongs to, e.g. "3A"
}

// StudentFields holds every Student field except the immutable ID.
// It is the input of add and update operations.
type StudentFields struct {
	Name    string `json:"name"`
	Age     int    `json:"age"`
	Address string `json:"address"`
	Class   string `json:"class"`
}

// Fields returns the mutable part of the student
func (s Student) Fields() StudentFields {
	return StudentFields{
		Name:    s.Name,
		Age:     s.Age,
		Address: s.Address,
		Class:   s.Class,
	}
}

// WithID builds a Student from the fields and the given id
func (f StudentFields) WithID(id string) Student {
	return Student{
		ID:      id,
		Name:    f.Name,
		Age:     f.Age,
		Address: f.Address,
		Class:   f.Class,
	}
}
