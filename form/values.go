package form

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"student-manager-go/models"
)

// DefaultAge prefills the age input when adding
const DefaultAge = "18"

// Values are the form inputs as typed by the user
type Values struct {
	Name    string `json:"name" validate:"required"`
	Age     string `json:"age" validate:"required,number"`
	Address string `json:"address" validate:"required"`
	Class   string `json:"class" validate:"required"`
}

// ValuesOf loads a student's fields into form inputs
func ValuesOf(s models.Student) Values {
	return Values{
		Name:    s.Name,
		Age:     strconv.Itoa(s.Age),
		Address: s.Address,
		Class:   s.Class,
	}
}

func (v Values) trimmed() Values {
	return Values{
		Name:    strings.TrimSpace(v.Name),
		Age:     strings.TrimSpace(v.Age),
		Address: strings.TrimSpace(v.Address),
		Class:   strings.TrimSpace(v.Class),
	}
}

// ValidationError lists the offending inputs by field name
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report errors under the json names the UI uses.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Parse checks required inputs and converts them to student fields
func Parse(v Values) (models.StudentFields, error) {
	v = v.trimmed()
	if err := validate.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return models.StudentFields{}, fmt.Errorf("validate form: %w", err)
		}
		verr := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
		for _, fe := range fieldErrs {
			verr.Fields[fe.Field()] = message(fe.Field(), fe.Tag())
		}
		return models.StudentFields{}, verr
	}

	age, err := strconv.Atoi(v.Age)
	if err != nil {
		return models.StudentFields{}, &ValidationError{Fields: map[string]string{"age": message("age", "number")}}
	}
	return models.StudentFields{
		Name:    v.Name,
		Age:     age,
		Address: v.Address,
		Class:   v.Class,
	}, nil
}

func message(field, tag string) string {
	if tag == "required" {
		return "Please input the " + field + "!"
	}
	return "Please input a valid " + field + "!"
}
