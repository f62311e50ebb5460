package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/stratsim/journal"
)

func writeDataset(t *testing.T, dir string) string {
	t.Helper()

	closes := []float64{10, 9, 8, 7, 8, 10, 12, 13, 12, 10, 8, 7}
	var sb strings.Builder
	sb.WriteString("Date,GOOG.High,GOOG.Low,GOOG.Close\n")
	for i, c := range closes {
		fmt.Fprintf(&sb, "2024-01-%02d,%g,%g,%g\n", i+1, c+1, c-1, c)
	}

	path := filepath.Join(dir, "prices.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
	return path
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	dataPath := writeDataset(t, dir)
	dbPath := filepath.Join(dir, "journal.sqlite")

	cfg := fmt.Sprintf(`
data:
  path: %s
assets:
  - name: GOOG
    denom: USD
books:
  - name: main
    denom: USD
    cash: 10000
strategy:
  name: sma-cross
  size: 100
  params:
    fast: 2
  grid:
    - slow: 3
    - slow: 4
journal:
  type: sqlite
  db_path: %s
`, dataPath, dbPath)

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	out, err := execute(t, "run", "--config", cfgPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "OK")

	j, err := journal.NewSQLite(dbPath)
	require.NoError(t, err)
	defer j.Close()

	runs, err := j.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2, "one journaled run per grid entry")

	orders, err := j.ListOrders(runs[0].RunID)
	require.NoError(t, err)
	assert.Len(t, orders, runs[0].Processed)
}

func TestRunReportsFailedConfigurations(t *testing.T) {
	dir := t.TempDir()
	dataPath := writeDataset(t, dir)

	// slow <= fast is rejected by the strategy
	cfg := fmt.Sprintf(`
data:
  path: %s
assets:
  - name: GOOG
    denom: USD
books:
  - name: main
    denom: USD
    cash: 10000
strategy:
  name: sma-cross
  params:
    fast: 5
    slow: 2
`, dataPath)

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	out, err := execute(t, "run", "--config", cfgPath)
	assert.ErrorContains(t, err, "1 of 1 configurations failed")
	assert.Contains(t, out, "FAIL")
}
