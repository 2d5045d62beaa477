package enroll

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/noah-isme/coursedesk-api/internal/models"
)

// Header is the column layout expected in bulk enrollment input.
var Header = []string{"Section", "Team", "Name", "Email", "Comments"}

// Row is one line of bulk enrollment input.
type Row struct {
	Section  string `csv:"Section" json:"section"`
	Team     string `csv:"Team" json:"team" validate:"required,max=60"`
	Name     string `csv:"Name" json:"name" validate:"required,max=100"`
	Email    string `csv:"Email" json:"email" validate:"required,email,max=254"`
	Comments string `csv:"Comments" json:"comments" validate:"max=500"`
}

// Record converts the row into a pending enrollment record for courseID.
// Pending rows have not been joined yet.
func (r Row) Record(courseID string) Record {
	return Record{
		Email:       r.Email,
		CourseID:    courseID,
		Name:        r.Name,
		JoinState:   models.JoinStateNotJoined,
		TeamName:    r.Team,
		SectionName: r.Section,
	}
}

// Student converts the row into a student ready to be persisted.
func (r Row) Student(courseID string) models.Student {
	return models.Student{
		Email:       r.Email,
		CourseID:    courseID,
		Name:        r.Name,
		Comments:    r.Comments,
		JoinState:   models.JoinStateNotJoined,
		TeamName:    r.Team,
		SectionName: r.Section,
	}
}

// Records converts rows for courseID.
func Records(courseID string, rows []Row) []Record {
	records := make([]Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.Record(courseID))
	}
	return records
}

// ParseRows reads bulk enrollment text. The first line must be a header naming the
// columns in Header; cells may be separated by tabs, pipes or commas.
func ParseRows(in io.Reader) ([]Row, error) {
	buffered := bufio.NewReader(in)
	first, err := buffered.Peek(buffered.Size())
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read enroll rows: %w", err)
	}

	reader := csv.NewReader(buffered)
	reader.Comma = detectDelimiter(string(first))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var rows []Row
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse enroll rows: %w", err)
	}
	for i := range rows {
		rows[i] = rows[i].trimmed()
	}
	return rows, nil
}

// ParseRowsString is ParseRows over a string.
func ParseRowsString(raw string) ([]Row, error) {
	return ParseRows(strings.NewReader(raw))
}

func (r Row) trimmed() Row {
	return Row{
		Section:  strings.TrimSpace(r.Section),
		Team:     strings.TrimSpace(r.Team),
		Name:     strings.TrimSpace(r.Name),
		Email:    strings.TrimSpace(r.Email),
		Comments: strings.TrimSpace(r.Comments),
	}
}

func detectDelimiter(sample string) rune {
	line := sample
	if idx := strings.IndexByte(sample, '\n'); idx >= 0 {
		line = sample[:idx]
	}
	switch {
	case strings.Contains(line, "\t"):
		return '\t'
	case strings.Contains(line, "|"):
		return '|'
	default:
		return ','
	}
}
