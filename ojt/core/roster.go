package core

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"ojttracker.com/ojttracker/ojt/model"
	"ojttracker.com/ojttracker/utils"
)

var rosterRequired = []string{"student_number", "first_name", "last_name"}

// ParseRoster reads a student roster CSV. The header row names the columns;
// student_number, first_name and last_name are required, email, middle_name,
// department, host_establishment and shift_type are optional. Imported
// students start unapproved.
func ParseRoster(r io.Reader) ([]model.Student, error) {
	rows, err := utils.ParseCSV(r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("roster is empty")
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range rosterRequired {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("roster header is missing %q", name)
		}
	}

	get := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	optional := func(row []string, name string) *string {
		if v := get(row, name); v != "" {
			return &v
		}
		return nil
	}

	var students []model.Student
	for i, row := range rows[1:] {
		line := i + 2
		number := get(row, "student_number")
		if number == "" {
			return nil, fmt.Errorf("row %d: student_number is empty", line)
		}

		shift := model.StudentShiftType(strings.ToLower(get(row, "shift_type")))
		if shift == "" {
			shift = model.StudentShiftRegular
		}
		if !shift.Valid() || shift == model.StudentShiftCustom {
			return nil, fmt.Errorf("row %d: unsupported shift_type %q", line, shift)
		}

		students = append(students, model.Student{
			ID:                uuid.NewString(),
			UserEmail:         strings.ToLower(get(row, "email")),
			StudentNumber:     number,
			FirstName:         get(row, "first_name"),
			LastName:          get(row, "last_name"),
			MiddleName:        optional(row, "middle_name"),
			Department:        get(row, "department"),
			HostEstablishment: optional(row, "host_establishment"),
			ShiftType:         shift,
			IsActive:          true,
		})
	}
	return students, nil
}
