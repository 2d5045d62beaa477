package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []RosterRow {
	return []RosterRow{
		{Section: "Section 1", Team: "Team 1", Name: "Alice", Email: "alice@example.com", Status: "Joined"},
		{Section: "Section 2", Team: "Team 2", Name: "Bob, Jr.", Email: "bob@example.com", Status: "Yet to Join", Comments: "transfer"},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleRows())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(RosterHeaders, ","), lines[0])
	assert.Equal(t, "Section 1,Team 1,Alice,alice@example.com,Joined,", lines[1])
	assert.Contains(t, lines[2], `"Bob, Jr."`)
}

func TestCSVExporterEmptyRoster(t *testing.T) {
	out, err := NewCSVExporter().Render(nil)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(RosterHeaders, ","), strings.TrimSpace(string(out)))
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render("CS3281 roster", sampleRows())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
