package frame

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSVFromTupleHeaders(t *testing.T) {
	in := `Date,"('GOOG', 'High')","('GOOG', 'Close')"
2024-01-01,101,100
2024-01-02,103,102
`
	f, err := ReadCSVFrom(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 2, f.NumRows())
	assert.Equal(t, "Date", f.DateName)

	v, ok := f.Value(K("GOOG", "Close"), 1)
	assert.True(t, ok)
	assert.Equal(t, 102.0, v)
}

func TestReadCSVFromDottedHeaders(t *testing.T) {
	in := "ts,GOOG.Close,flat\n2024-01-01,100,1\n"
	f, err := ReadCSVFrom(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "ts", f.DateName)

	_, ok := f.Value(K("GOOG", "Close"), 0)
	assert.True(t, ok)

	// a header with no dot is a bare field key
	v, ok := f.Value(F("flat"), 0)
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)
}

func TestReadCSVFromMissingValues(t *testing.T) {
	in := "Date,GOOG.Close\n2024-01-01,\n2024-01-02,junk\n2024-01-03,99\n"
	f, err := ReadCSVFrom(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 3, f.NumRows())

	v, _ := f.Value(K("GOOG", "Close"), 0)
	assert.True(t, math.IsNaN(v))
	v, _ = f.Value(K("GOOG", "Close"), 1)
	assert.True(t, math.IsNaN(v))
	v, _ = f.Value(K("GOOG", "Close"), 2)
	assert.Equal(t, 99.0, v)
}

func TestReadCSVFromBadDateKeepsRow(t *testing.T) {
	in := "Date,GOOG.Close\nnot-a-date,100\n2024-01-02,101\n"
	f, err := ReadCSVFrom(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 2, f.NumRows())

	assert.True(t, f.Date(0).IsZero())
	assert.False(t, f.Date(1).IsZero())
}

func TestReadCSVFromRaggedRow(t *testing.T) {
	in := "Date,a,b\n2024-01-01,1\n"
	_, err := ReadCSVFrom(strings.NewReader(in))
	assert.Error(t, err)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	in := "Date,GOOG.Close,GOOG.High\n2024-01-01,100,\n2024-01-02,101.5,103\n"
	f, err := ReadCSVFrom(strings.NewReader(in))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.WriteCSV(&buf))

	back, err := ReadCSVFrom(&buf)
	require.NoError(t, err)
	require.Equal(t, f.NumRows(), back.NumRows())
	require.Equal(t, f.NumCols(), back.NumCols())

	v, _ := back.Value(K("GOOG", "Close"), 1)
	assert.Equal(t, 101.5, v)
	v, _ = back.Value(K("GOOG", "High"), 0)
	assert.True(t, math.IsNaN(v))
}
