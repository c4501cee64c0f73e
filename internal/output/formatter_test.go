package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopkg.in/yaml.v3"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"yaml", FormatYAML},
		{"yml", FormatYAML},
		{"toon", FormatTOON},
		{"text", FormatText},
		{"", FormatText},
		{"bogus", FormatText},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseFormat(tt.in), tt.in)
	}
}

func sampleTable() *Table {
	return NewTable("Results",
		[]string{"Location", "Message"},
		[][]string{
			{"a.js:3", "magic number 37"},
			{"b.js:9", "magic number 42"},
		},
		nil, nil)
}

func TestTableRenderText(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(&buf, FormatText, false)

	require.NoError(t, f.Output(sampleTable()))

	out := buf.String()
	assert.Contains(t, out, "Results")
	assert.Contains(t, out, "a.js:3")
	assert.Contains(t, out, "magic number 42")
}

func TestTableRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(&buf, FormatMarkdown, false)

	require.NoError(t, f.Output(sampleTable()))

	out := buf.String()
	assert.Contains(t, out, "## Results")
	assert.Contains(t, out, "| Location | Message |")
	assert.Contains(t, out, "| a.js:3 | magic number 37 |")
}

func TestTableRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(&buf, FormatJSON, false)

	require.NoError(t, f.Output(sampleTable()))

	var rows []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "a.js:3", rows[0]["Location"])
}

func TestTableDataOverridesRows(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(&buf, FormatJSON, false)

	table := sampleTable()
	table.Data = map[string]int{"issues": 2}
	require.NoError(t, f.Output(table))

	var got map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 2, got["issues"])
}

func TestYAMLOutput(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(&buf, FormatYAML, false)

	require.NoError(t, f.Output(map[string]any{"count": 3}))

	var got map[string]int
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 3, got["count"])
}

func TestTOONOutput(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(&buf, FormatTOON, false)

	require.NoError(t, f.Output(map[string]any{"count": 3}))
	assert.Contains(t, buf.String(), "count")
}

func TestSectionRenderText(t *testing.T) {
	var buf bytes.Buffer
	s := &Section{
		Title:   "Summary",
		Content: "Files analyzed: 4",
		Sections: []Section{
			{Title: "Breakdown", Content: "magic-number: 2"},
		},
	}
	require.NoError(t, s.RenderText(&buf, false))

	out := buf.String()
	assert.Contains(t, out, "Summary\n=======")
	assert.Contains(t, out, "Breakdown\n---------")
	assert.Contains(t, out, "magic-number: 2")
}

func TestReportRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	r := &Report{
		Title: "Analysis",
		Sections: []Renderable{
			&Section{Title: "Summary", Content: "ok"},
			sampleTable(),
		},
	}
	require.NoError(t, r.RenderMarkdown(&buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# Analysis"))
	assert.Contains(t, out, "## Summary")
	assert.Contains(t, out, "## Results")
}
