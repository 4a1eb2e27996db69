package samples

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/curvature.report/internal/fsutil"
)

// Columns selects the x and y columns by header name. With both names empty
// the first two columns are used and a header row is optional.
type Columns struct {
	X string
	Y string
}

// ReadCSV reads a series from r. Rows with an empty x or y cell are
// skipped; any other unparseable cell is an error. The result is sorted by x.
func ReadCSV(r io.Reader, cols Columns) (Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Series{}, ErrNoSamples
	}
	if err != nil {
		return Series{}, fmt.Errorf("failed to read csv header: %w", err)
	}

	xi, yi := 0, 1
	var pending []string
	if cols.X == "" && cols.Y == "" {
		if _, _, ok, _ := parseRow(first, xi, yi); ok {
			pending = first
		}
	} else {
		if xi, err = columnIndex(first, cols.X); err != nil {
			return Series{}, err
		}
		if yi, err = columnIndex(first, cols.Y); err != nil {
			return Series{}, err
		}
	}

	var s Series
	add := func(rec []string, line int) error {
		x, y, ok, err := parseRow(rec, xi, yi)
		if err != nil {
			return fmt.Errorf("csv line %d: %w", line, err)
		}
		if ok {
			s.X = append(s.X, x)
			s.Y = append(s.Y, y)
		}
		return nil
	}
	if pending != nil {
		line, _ := cr.FieldPos(0)
		if err := add(pending, line); err != nil {
			return Series{}, err
		}
	}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Series{}, fmt.Errorf("failed to read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if err := add(rec, line); err != nil {
			return Series{}, err
		}
	}
	if s.Len() == 0 {
		return Series{}, ErrNoSamples
	}
	s.SortByX()
	return s, nil
}

// LoadCSV reads a series from a CSV file on fsys.
func LoadCSV(fsys fsutil.FileSystem, path string, cols Columns) (Series, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return Series{}, fmt.Errorf("failed to read csv file: %w", err)
	}
	s, err := ReadCSV(bytes.NewReader(data), cols)
	if err != nil {
		return Series{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func columnIndex(header []string, name string) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("both x and y columns must be named")
	}
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %q not found in header %v", name, header)
}

// parseRow returns ok=false for rows missing either value.
func parseRow(rec []string, xi, yi int) (x, y float64, ok bool, err error) {
	if xi >= len(rec) || yi >= len(rec) {
		return 0, 0, false, nil
	}
	xs, ys := strings.TrimSpace(rec[xi]), strings.TrimSpace(rec[yi])
	if xs == "" || ys == "" {
		return 0, 0, false, nil
	}
	if x, err = strconv.ParseFloat(xs, 64); err != nil {
		return 0, 0, false, fmt.Errorf("bad x value %q: %w", xs, err)
	}
	if y, err = strconv.ParseFloat(ys, 64); err != nil {
		return 0, 0, false, fmt.Errorf("bad y value %q: %w", ys, err)
	}
	return x, y, true, nil
}
