// Package dataset loads numeric tables into series.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/numkit/timeseries"
)

// Options selects which table columns a series is built from.
type Options struct {
	// Column names the value column, by header name or zero-based
	// index. Empty picks the last column.
	Column string

	// TimeColumn names the coordinate column the same way. Empty
	// produces a uniform series spaced by Step.
	TimeColumn string

	// Step is the sample interval for uniform series. Zero means 1.
	Step float64
}

// Load reads the table at path into a series.
func Load(path string, opts Options) (*timeseries.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, opts)
}

// Read parses a numeric table: comma-separated when the first content
// line contains a comma, whitespace-separated otherwise. Lines starting
// with # or @ are comments. A first row with non-numeric fields is
// taken as a header, and its names resolve Column and TimeColumn.
func Read(r io.Reader, opts Options) (*timeseries.Series, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	rows, err := tableRows(string(raw))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &timeseries.InvalidSeriesError{Reason: "no data rows"}
	}

	var header []string
	if !numericRow(rows[0]) {
		header = rows[0]
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, &timeseries.InvalidSeriesError{Reason: "no data rows after header"}
	}

	width := len(rows[0])
	valueIdx := width - 1
	if opts.Column != "" {
		if valueIdx, err = columnIndex(opts.Column, header, width); err != nil {
			return nil, err
		}
	}
	timeIdx := -1
	if opts.TimeColumn != "" {
		if timeIdx, err = columnIndex(opts.TimeColumn, header, width); err != nil {
			return nil, err
		}
	}

	values := make([]float64, 0, len(rows))
	var coords []float64
	if timeIdx >= 0 {
		coords = make([]float64, 0, len(rows))
	}

	for i, row := range rows {
		if len(row) != width {
			return nil, &timeseries.InvalidSeriesError{
				Reason: fmt.Sprintf("row %d has %d fields, want %d", i+1, len(row), width),
			}
		}
		v, err := parseField(row[valueIdx], i)
		if err != nil {
			return nil, err
		}
		values = append(values, v)

		if timeIdx >= 0 {
			c, err := parseField(row[timeIdx], i)
			if err != nil {
				return nil, err
			}
			coords = append(coords, c)
		}
	}

	if timeIdx >= 0 {
		return timeseries.NewWithCoords(coords, values)
	}
	step := opts.Step
	if step == 0 {
		step = 1
	}
	return timeseries.New(values, step)
}

func tableRows(text string) ([][]string, error) {
	if sniffDelimiter(text) == ',' {
		reader := csv.NewReader(strings.NewReader(text))
		reader.Comment = '#'
		reader.TrimLeadingSpace = true
		return reader.ReadAll()
	}

	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if skipLine(line) {
			continue
		}
		rows = append(rows, strings.Fields(line))
	}
	return rows, nil
}

// sniffDelimiter inspects the first content line.
func sniffDelimiter(text string) rune {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if skipLine(line) {
			continue
		}
		if strings.ContainsRune(line, ',') {
			return ','
		}
		break
	}
	return ' '
}

// skipLine drops blanks, # comments, and @ directives (xvg-style
// tables put plot metadata on @ lines).
func skipLine(line string) bool {
	return line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "@")
}

func numericRow(row []string) bool {
	for _, f := range row {
		if _, err := strconv.ParseFloat(strings.TrimSpace(f), 64); err != nil {
			return false
		}
	}
	return true
}

func columnIndex(name string, header []string, width int) (int, error) {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) && i < width {
			return i, nil
		}
	}
	if idx, err := strconv.Atoi(name); err == nil && idx >= 0 && idx < width {
		return idx, nil
	}
	return 0, &timeseries.InvalidParameterError{Name: "column", Value: name, Reason: "no such column"}
}

func parseField(field string, row int) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return 0, &timeseries.InvalidSeriesError{
			Reason: fmt.Sprintf("row %d: %q is not a number", row+1, field),
		}
	}
	return v, nil
}
