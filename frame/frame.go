// Package frame provides a small column-oriented table used to carry
// wide market data through a simulation: one timestamp column plus any
// number of float64 columns addressed by a (label, field) key.
package frame

import (
	"fmt"
	"math"
	"time"
)

// Key addresses a column. Label is typically an asset's data label
// (e.g. "GOOG") and Field the quantity name (e.g. "Close"). Derived or
// label-less columns leave Label empty. Keys are structured on purpose:
// no string packing, no delimiter parsing.
type Key struct {
	Label string
	Field string
}

func K(label, field string) Key { return Key{Label: label, Field: field} }

// F returns a label-less key, used for asset-scoped and report columns.
func F(field string) Key { return Key{Field: field} }

func (k Key) String() string {
	if k.Label == "" {
		return k.Field
	}
	return k.Label + "." + k.Field
}

// Column is a named float64 series. NaN encodes a missing cell.
type Column struct {
	Key  Key
	Vals []float64
}

// Frame is an immutable-by-convention table: one row per trading day.
// Slices share backing arrays with their parent, so callers must treat
// every frame they did not build themselves as read-only.
type Frame struct {
	// DateName is the header used for the timestamp column when the
	// frame is written out. Loaders preserve whatever the file used.
	DateName string

	dates []time.Time // zero value marks a missing timestamp
	cols  []Column
	index map[Key]int
}

// New builds a frame from a timestamp column and data columns. All
// columns must have the same length as dates and keys must be unique.
func New(dates []time.Time, cols []Column) (*Frame, error) {
	f := &Frame{
		DateName: "Date",
		dates:    dates,
		cols:     cols,
		index:    make(map[Key]int, len(cols)),
	}
	for i, c := range cols {
		if len(c.Vals) != len(dates) {
			return nil, fmt.Errorf("frame: column %s has %d rows, want %d",
				c.Key, len(c.Vals), len(dates))
		}
		if _, dup := f.index[c.Key]; dup {
			return nil, fmt.Errorf("frame: duplicate column %s", c.Key)
		}
		f.index[c.Key] = i
	}
	return f, nil
}

func (f *Frame) NumRows() int { return len(f.dates) }

func (f *Frame) NumCols() int { return len(f.cols) }

// Date returns the timestamp of row i; the zero time means the row has
// no usable timestamp and should be skipped by calendar iteration.
func (f *Frame) Date(i int) time.Time { return f.dates[i] }

func (f *Frame) Dates() []time.Time { return f.dates }

// Keys returns the column keys in declaration order.
func (f *Frame) Keys() []Key {
	keys := make([]Key, len(f.cols))
	for i, c := range f.cols {
		keys[i] = c.Key
	}
	return keys
}

// Column returns the full series for a key.
func (f *Frame) Column(k Key) ([]float64, bool) {
	i, ok := f.index[k]
	if !ok {
		return nil, false
	}
	return f.cols[i].Vals, true
}

// Value returns the cell at (k, row). The bool reports whether the
// column exists and the row is in range; a present-but-missing cell is
// returned as NaN with ok=true.
func (f *Frame) Value(k Key, row int) (float64, bool) {
	vals, ok := f.Column(k)
	if !ok || row < 0 || row >= len(vals) {
		return math.NaN(), false
	}
	return vals[row], true
}

// Slice returns a zero-copy view of n rows starting at start. The
// length is clamped to the frame bounds.
func (f *Frame) Slice(start, n int) *Frame {
	if start < 0 {
		start = 0
	}
	if start > len(f.dates) {
		start = len(f.dates)
	}
	if start+n > len(f.dates) {
		n = len(f.dates) - start
	}
	out := &Frame{
		DateName: f.DateName,
		dates:    f.dates[start : start+n],
		cols:     make([]Column, len(f.cols)),
		index:    f.index,
	}
	for i, c := range f.cols {
		out.cols[i] = Column{Key: c.Key, Vals: c.Vals[start : start+n]}
	}
	return out
}

// Extend joins other's columns onto f horizontally. Row counts must
// match. On a key collision the receiver's column wins and the
// extension's column is dropped, so derived data can never occlude the
// base table.
func (f *Frame) Extend(other *Frame) (*Frame, error) {
	if other.NumRows() != f.NumRows() {
		return nil, fmt.Errorf("frame: extend row mismatch: %d vs %d",
			f.NumRows(), other.NumRows())
	}
	cols := make([]Column, 0, len(f.cols)+len(other.cols))
	cols = append(cols, f.cols...)
	for _, c := range other.cols {
		if _, exists := f.index[c.Key]; exists {
			continue
		}
		cols = append(cols, c)
	}
	out, err := New(f.dates, cols)
	if err != nil {
		return nil, err
	}
	out.DateName = f.DateName
	return out, nil
}

// ConcatPrefixed concatenates frames horizontally, stamping each
// frame's columns with the corresponding label. Timestamps are taken
// from the first frame; all frames must have the same row count.
func ConcatPrefixed(frames []*Frame, labels []string) (*Frame, error) {
	if len(frames) != len(labels) {
		return nil, fmt.Errorf("frame: %d frames but %d labels", len(frames), len(labels))
	}
	if len(frames) == 0 {
		return New(nil, nil)
	}
	var cols []Column
	for i, fr := range frames {
		if fr.NumRows() != frames[0].NumRows() {
			return nil, fmt.Errorf("frame: concat row mismatch for %q: %d vs %d",
				labels[i], fr.NumRows(), frames[0].NumRows())
		}
		for _, c := range fr.cols {
			cols = append(cols, Column{
				Key:  Key{Label: labels[i], Field: c.Key.Field},
				Vals: c.Vals,
			})
		}
	}
	out, err := New(frames[0].dates, cols)
	if err != nil {
		return nil, err
	}
	out.DateName = frames[0].DateName
	return out, nil
}
