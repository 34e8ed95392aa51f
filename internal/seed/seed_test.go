package seed

import (
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

const sheetCSV = "\ufeffSchool,OFFICIAL ALBERT COURSE NAME,GCAL Abbreviation\n" +
	"CAS,Calculus I,CALC1\n" +
	"CAS,General Chemistry I,\n" +
	"CAS,,LINALG\n" +
	"CAS,,\n" +
	"CAS,Calculus I,CALC1\n"

func TestSupportedCourses_CSV(t *testing.T) {
	rows, err := readCSVRows(strings.NewReader(sheetCSV))
	if err != nil {
		t.Fatalf("readCSVRows failed: %v", err)
	}

	courses, err := SupportedCourses(rows)
	if err != nil {
		t.Fatalf("SupportedCourses failed: %v", err)
	}

	want := []struct{ name, abbreviation string }{
		{"Calculus I", "CALC1"},
		{"General Chemistry I", ""},
		{"LINALG", "LINALG"},
	}
	if len(courses) != len(want) {
		t.Fatalf("got %d courses, want %d", len(courses), len(want))
	}
	for i, w := range want {
		if courses[i].Name != w.name || courses[i].Abbreviation != w.abbreviation {
			t.Errorf("course %d = %q/%q, want %q/%q", i, courses[i].Name, courses[i].Abbreviation, w.name, w.abbreviation)
		}
		if !courses[i].Supported {
			t.Errorf("course %d is not supported", i)
		}
	}
}

func TestSupportedCourses_XLSX(t *testing.T) {
	workbook := excelize.NewFile()
	sheet := workbook.GetSheetName(0)
	values := map[string]string{
		"A1": NameColumn, "B1": AbbreviationColumn,
		"A2": "Calculus I", "B2": "CALC1",
		"A3": "Physics I",
	}
	for axis, value := range values {
		if err := workbook.SetCellValue(sheet, axis, value); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := workbook.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	rows, err := readXLSXRows(buf)
	if err != nil {
		t.Fatalf("readXLSXRows failed: %v", err)
	}
	courses, err := SupportedCourses(rows)
	if err != nil {
		t.Fatalf("SupportedCourses failed: %v", err)
	}

	if len(courses) != 2 {
		t.Fatalf("got %d courses, want 2", len(courses))
	}
	if courses[1].Name != "Physics I" || courses[1].Abbreviation != "" {
		t.Errorf("short row read as %+v", courses[1])
	}
}

func TestSupportedCourses_Errors(t *testing.T) {
	if _, err := SupportedCourses(nil); err == nil {
		t.Error("expected an error for an empty sheet")
	}
	if _, err := SupportedCourses([][]string{{"Name", "Abbreviation"}}); err == nil {
		t.Error("expected an error for missing columns")
	}

	rows := [][]string{{NameColumn, AbbreviationColumn}, {"Multivariable Calculus", "CALC-3"}}
	_, err := SupportedCourses(rows)
	if err == nil || !strings.Contains(err.Error(), "row 2") {
		t.Errorf("expected a row 2 error, got %v", err)
	}
}

func TestReadCourseExport(t *testing.T) {
	export := `[
		{"_id": "abc", "name": " Calculus I ", "department": "MATH-UA", "courseId": "121", "school": "CAS", "supported": true, "abbreviation": "CALC1"},
		{"id": 12, "uid": "f3c1", "name": "Physics I", "supported": false}
	]`

	courses, err := ReadCourseExport(strings.NewReader(export))
	if err != nil {
		t.Fatalf("ReadCourseExport failed: %v", err)
	}
	if len(courses) != 2 {
		t.Fatalf("got %d courses, want 2", len(courses))
	}
	if c := courses[0]; c.Name != "Calculus I" || c.CourseID != "121" || c.Abbreviation != "CALC1" {
		t.Errorf("first course = %+v", c)
	}
	if c := courses[1]; c.ID != 0 || c.UID != "f3c1" {
		t.Errorf("second course keeps id %d uid %q", c.ID, c.UID)
	}

	if _, err := ReadCourseExport(strings.NewReader(`{"name": "x"}`)); err == nil {
		t.Error("expected an error for a non-array export")
	}
}

func TestParseLocations(t *testing.T) {
	locations, err := ParseLocations([]string{
		"ARC=https://calendar.example.com/arc.ics",
		" Bobst = webcal://calendar.example.com/feed?key=a=b ",
	})
	if err != nil {
		t.Fatalf("ParseLocations failed: %v", err)
	}
	if locations[0].Label != "ARC" {
		t.Errorf("label = %q", locations[0].Label)
	}
	if locations[1].Label != "Bobst" || locations[1].FeedURL != "webcal://calendar.example.com/feed?key=a=b" {
		t.Errorf("second location = %+v", locations[1])
	}

	for _, bad := range []string{"ARC", "=https://example.com/a.ics", "ARC=ftp://example.com/a.ics"} {
		if _, err := ParseLocations([]string{bad}); err == nil {
			t.Errorf("expected an error for %q", bad)
		}
	}
}
