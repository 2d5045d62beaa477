package export

import (
	"fmt"

	"github.com/gocarina/gocsv"
)

// CSVExporter renders roster rows into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes, header line included even for an empty roster.
func (e *CSVExporter) Render(rows []RosterRow) ([]byte, error) {
	if rows == nil {
		rows = []RosterRow{}
	}
	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("render roster csv: %w", err)
	}
	return out, nil
}
