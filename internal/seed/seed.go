package seed

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulc-tools/blurb-scheduler/backend/internal/domain"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/repository"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/utils"
	"github.com/xuri/excelize/v2"
)

const (
	NameColumn         = "OFFICIAL ALBERT COURSE NAME"
	AbbreviationColumn = "GCAL Abbreviation"
)

// ReadSheetRows returns every row of a .xlsx (first sheet) or .csv file, header included.
func ReadSheetRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readXLSXRows(file)
	}
	return readCSVRows(file)
}

func readCSVRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

func readXLSXRows(r io.Reader) ([][]string, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer workbook.Close()

	sheet := workbook.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}
	return workbook.GetRows(sheet)
}

func cell(row []string, index int) string {
	if index >= len(row) {
		return "" // excelize drops trailing empty cells
	}
	return strings.TrimSpace(row[index])
}

// SupportedCourses turns the rows of the supported-course sheet into catalog entries.
// A row without abbreviation has none, a row without name is named after its abbreviation,
// and a row with neither is skipped.
func SupportedCourses(rows [][]string) ([]*domain.Course, error) {
	if len(rows) == 0 {
		return nil, errors.New("sheet is empty")
	}

	nameIndex, abbreviationIndex := -1, -1
	for i, header := range rows[0] {
		switch strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")) {
		case NameColumn:
			nameIndex = i
		case AbbreviationColumn:
			abbreviationIndex = i
		}
	}
	if nameIndex < 0 || abbreviationIndex < 0 {
		return nil, fmt.Errorf("sheet needs the columns %q and %q", NameColumn, AbbreviationColumn)
	}

	courses := make([]*domain.Course, 0, len(rows)-1)
	seen := make(map[string]bool)
	for i, row := range rows[1:] {
		name := cell(row, nameIndex)
		abbreviation := cell(row, abbreviationIndex)

		if name == "" && abbreviation == "" {
			continue
		}
		if name == "" {
			name = abbreviation
		}
		if seen[name] {
			slog.Warn("duplicate course in sheet", "row", i+2, "name", name)
			continue
		}
		seen[name] = true

		course := &domain.Course{
			Name:         name,
			Abbreviation: abbreviation,
			Supported:    true,
		}
		if err := utils.ValidateCourse(course); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		courses = append(courses, course)
	}

	return courses, nil
}

// ReadCourseExport decodes a JSON array of courses, as written by GET /courses or older exports.
// Database ids are dropped, uids are kept so that re-imports stay stable.
func ReadCourseExport(r io.Reader) ([]*domain.Course, error) {
	var courses []*domain.Course
	if err := json.NewDecoder(r).Decode(&courses); err != nil {
		return nil, fmt.Errorf("decode course export: %w", err)
	}

	for i, course := range courses {
		course.ID = 0
		course.Name = strings.TrimSpace(course.Name)
		if err := utils.ValidateCourse(course); err != nil {
			return nil, fmt.Errorf("course %d: %w", i, err)
		}
	}
	return courses, nil
}

// ParseLocations reads label=url pairs.
func ParseLocations(pairs []string) ([]*domain.Location, error) {
	locations := make([]*domain.Location, 0, len(pairs))
	for _, pair := range pairs {
		label, feedURL, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("location %q is not of the form label=url", pair)
		}

		location := &domain.Location{
			Label:   strings.TrimSpace(label),
			FeedURL: strings.TrimSpace(feedURL),
		}
		if err := utils.ValidateLocation(location); err != nil {
			return nil, fmt.Errorf("location %q: %w", pair, err)
		}
		locations = append(locations, location)
	}
	return locations, nil
}

func ImportSupportedCourses(r *repository.Repository, path string) error {
	rows, err := ReadSheetRows(path)
	if err != nil {
		return err
	}

	courses, err := SupportedCourses(rows)
	if err != nil {
		return err
	}

	created, err := r.ImportCourses(courses)
	if err != nil {
		return err
	}

	slog.Info("supported courses imported", "total", len(courses), "created", created, "updated", len(courses)-created)
	return nil
}

func CopyCourses(r *repository.Repository, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	courses, err := ReadCourseExport(file)
	if err != nil {
		return err
	}

	created, err := r.ImportCourses(courses)
	if err != nil {
		return err
	}

	slog.Info("courses copied", "total", len(courses), "created", created)
	return nil
}

func CreateLocations(r *repository.Repository, pairs []string) error {
	locations, err := ParseLocations(pairs)
	if err != nil {
		return err
	}

	for _, location := range locations {
		if err := r.CreateLocation(location); err != nil {
			return fmt.Errorf("create location %q: %w", location.Label, err)
		}
		slog.Info("location created", "id", location.ID, "label", location.Label)
	}
	return nil
}
