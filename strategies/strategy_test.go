package strategies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/stratsim/backtest"
)

func TestByName(t *testing.T) {
	s, err := ByName("noop", nil, 0)
	require.NoError(t, err)
	assert.IsType(t, &Noop{}, s)

	s, err = ByName(" SMA-Cross ", []string{"GOOG"}, 50)
	require.NoError(t, err)
	sc := s.(*SMACross)
	assert.Equal(t, []string{"GOOG"}, sc.Assets)
	assert.Equal(t, 50.0, sc.Size)

	_, err = ByName("martingale", nil, 0)
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	proto := &Noop{}
	Register("custom-noop", proto)

	got := Get("custom-noop")
	require.NotNil(t, got)
	assert.Same(t, backtest.Strategy(proto), got)

	assert.Nil(t, Get("never-registered"))
}

func TestNoopRunsCleanly(t *testing.T) {
	r := &backtest.Runner{
		Data:       ohlcSeries(t, "GOOG", []float64{100, 101, 102}),
		Assets:     []backtest.Asset{backtest.NewOHLCAsset("GOOG", "USD")},
		Strategies: []backtest.Strategy{&Noop{}},
		Books:      []*backtest.Book{backtest.NewBook("main", "USD", 1000)},
	}

	res, err := r.Run(nil)
	require.NoError(t, err)
	assert.Empty(t, res.Processed)
	assert.Equal(t, 1000.0, res.Books[0].Cash)
	assert.Equal(t, 3, res.Books[0].History().NumRows())
}
