package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
)

// pandas writes MultiIndex headers as "('GOOG', 'Close')"; accept them
// so datasets exported from notebooks load unchanged.
var tupleHeaderRe = regexp.MustCompile(`^\('([^']+)', '([^']+)'\)$`)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ReadCSV loads a wide table from a CSV file. The first column is the
// timestamp column (any of the supported layouts; an unparseable cell
// leaves the row present with a missing timestamp). Remaining headers
// are either "Label.Field" or the pandas tuple form. Files ending in
// ".xz" are decompressed on the fly.
func ReadCSV(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("frame: open xz %s: %w", path, err)
		}
		r = xr
	}

	fr, err := ReadCSVFrom(r)
	if err != nil {
		return nil, fmt.Errorf("frame: read %s: %w", path, err)
	}
	return fr, nil
}

// ReadCSVFrom reads a wide CSV table from r.
func ReadCSVFrom(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("header needs a date column and at least one data column")
	}

	keys := make([]Key, len(header)-1)
	for i, cell := range header[1:] {
		keys[i] = parseHeaderKey(cell)
	}

	var dates []time.Time
	vals := make([][]float64, len(keys))

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) != len(header) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", len(dates)+1, len(rec), len(header))
		}

		dates = append(dates, parseDate(rec[0]))
		for i, cell := range rec[1:] {
			vals[i] = append(vals[i], parseCell(cell))
		}
	}

	cols := make([]Column, len(keys))
	for i, k := range keys {
		cols[i] = Column{Key: k, Vals: vals[i]}
	}
	return New(dates, cols)
}

func parseHeaderKey(cell string) Key {
	cell = strings.TrimSpace(cell)
	if m := tupleHeaderRe.FindStringSubmatch(cell); m != nil {
		return Key{Label: m[1], Field: m[2]}
	}
	if label, field, ok := strings.Cut(cell, "."); ok {
		return Key{Label: label, Field: field}
	}
	return Key{Field: cell}
}

func parseDate(cell string) time.Time {
	cell = strings.TrimSpace(cell)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func parseCell(cell string) float64 {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// WriteCSV writes the frame as CSV. Missing timestamps and NaN cells
// become empty fields.
func (f *Frame) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(f.cols)+1)
	header = append(header, f.DateName)
	for _, c := range f.cols {
		header = append(header, c.Key.String())
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i := range f.dates {
		if f.dates[i].IsZero() {
			row[0] = ""
		} else {
			row[0] = f.dates[i].UTC().Format("2006-01-02")
		}
		for j, c := range f.cols {
			if math.IsNaN(c.Vals[i]) {
				row[j+1] = ""
			} else {
				row[j+1] = strconv.FormatFloat(c.Vals[i], 'g', -1, 64)
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
