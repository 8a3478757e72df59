package utils

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestParseCSV(t *testing.T) {
	csvData := `student_number,first_name,last_name
2021-0001, Ana,Reyes
2021-0002,Ben,Cruz`

	reader := strings.NewReader(csvData)

	got, err := ParseCSV(reader)
	if err != nil {
		t.Fatalf("ParseCSV returned error: %v", err)
	}

	want := [][]string{
		{"student_number", "first_name", "last_name"},
		{"2021-0001", "Ana", "Reyes"},
		{"2021-0002", "Ben", "Cruz"},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseCSV returned %+v, want %+v", got, want)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []string{"Date", "Total Hours"}, [][]string{
		{"2025-03-03", "8.08"},
		{"2025-03-04", "0.00"},
	})
	if err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}

	want := "Date,Total Hours\n2025-03-03,8.08\n2025-03-04,0.00\n"
	if buf.String() != want {
		t.Errorf("WriteCSV wrote %q, want %q", buf.String(), want)
	}
}
