package db

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"student-manager-go/models"
)

const exportSheet = "Students"

// exportHeader is also the column order of exported rows
var exportHeader = []interface{}{"ID", "Name", "Age", "Address", "Class"}

// ReadStudentsFromExcel reads an Excel file stream and returns the student
// rows found on its first sheet. Row 1 is a header. When the header names
// all of Name, Age, Address and Class those columns are used, so an exported
// workbook imports as-is; otherwise columns A-D are taken in that order.
// Rows with a missing field or a non-numeric age are skipped and counted.
func ReadStudentsFromExcel(file io.Reader) (rows []models.StudentFields, skipped int, err error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		log.Errorf("Error opening Excel reader: %v", err)
		return nil, 0, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Errorf("Error closing excel file: %v", err)
		}
	}()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, errors.New("excel file does not contain any sheets")
	}

	cells, err := f.GetRows(sheetName)
	if err != nil {
		log.Errorf("Error getting rows from sheet '%s': %v", sheetName, err)
		return nil, 0, fmt.Errorf("failed to get rows from sheet %s: %w", sheetName, err)
	}

	if len(cells) == 0 {
		return nil, 0, nil
	}
	cols := importColumns(cells[0])

	for i, row := range cells {
		if i == 0 {
			continue // Skip header row
		}
		var values [4]string
		for field, col := range cols {
			if col < len(row) {
				values[field] = strings.TrimSpace(row[col])
			}
		}
		if values[0] == "" && values[1] == "" && values[2] == "" && values[3] == "" {
			continue // blank line, not worth reporting
		}
		age, convErr := strconv.Atoi(values[1])
		if values[0] == "" || values[2] == "" || values[3] == "" || convErr != nil || age < 0 {
			log.Warnf("Skipping row %d due to missing or invalid fields (Name: '%s', Age: '%s', Address: '%s', Class: '%s')",
				i+1, values[0], values[1], values[2], values[3])
			skipped++
			continue
		}
		rows = append(rows, models.StudentFields{
			Name:    values[0],
			Age:     age,
			Address: values[2],
			Class:   values[3],
		})
	}
	return rows, skipped, nil
}

// WriteStudentsToExcel writes the collection as a single-sheet workbook
func WriteStudentsToExcel(w io.Writer, students []models.Student) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Errorf("Error closing excel file: %v", err)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, s := range students {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{s.ID, s.Name, s.Age, s.Address, s.Class}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row for student %s: %w", s.ID, err)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write excel file: %w", err)
	}
	return nil
}

// importColumns maps Name, Age, Address, Class to column indexes
func importColumns(header []string) [4]int {
	byTitle := make(map[string]int, len(header))
	for i, title := range header {
		byTitle[strings.ToLower(strings.TrimSpace(title))] = i
	}
	var cols [4]int
	for field, title := range []string{"name", "age", "address", "class"} {
		idx, ok := byTitle[title]
		if !ok {
			return [4]int{0, 1, 2, 3}
		}
		cols[field] = idx
	}
	return cols
}
