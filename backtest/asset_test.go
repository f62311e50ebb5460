package backtest

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/stratsim/frame"
)

func TestOHLCIntradayPriceMid(t *testing.T) {
	a := NewOHLCAsset("GOOG", "USD")
	d := ohlcDay(t, "GOOG", 104, 96, 101)

	scoped, err := FilterData(a, d)
	require.NoError(t, err)

	p, err := a.IntradayTradedPrice(scoped, 10)
	require.NoError(t, err)
	assert.Equal(t, 100.0, p)
}

func TestOHLCIntradayPriceFallsBackToClose(t *testing.T) {
	a := NewOHLCAsset("GOOG", "USD")
	d := ohlcDay(t, "GOOG", math.NaN(), 96, 101.567)

	scoped, err := FilterData(a, d)
	require.NoError(t, err)

	p, err := a.IntradayTradedPrice(scoped, 10)
	require.NoError(t, err)
	assert.Equal(t, 101.57, p, "close fallback is rounded to the asset's price dp")
}

func TestOHLCIntradayPriceUnavailable(t *testing.T) {
	a := NewOHLCAsset("GOOG", "USD")
	d := ohlcDay(t, "GOOG", math.NaN(), math.NaN(), math.NaN())

	scoped, err := FilterData(a, d)
	require.NoError(t, err)

	_, err = a.IntradayTradedPrice(scoped, 10)
	assert.ErrorIs(t, err, ErrPriceUnavailable)
}

func TestOHLCEndOfDayPrice(t *testing.T) {
	a := NewOHLCAsset("GOOG", "USD")

	scoped, err := FilterData(a, ohlcDay(t, "GOOG", 104, 96, 101.234))
	require.NoError(t, err)
	p, err := a.EndOfDayPrice(scoped)
	require.NoError(t, err)
	assert.Equal(t, 101.23, p)

	scoped, err = FilterData(a, ohlcDay(t, "GOOG", 104, 96, math.NaN()))
	require.NoError(t, err)
	_, err = a.EndOfDayPrice(scoped)
	assert.ErrorIs(t, err, ErrPriceUnavailable)
}

func TestFilterDataScopesToLabel(t *testing.T) {
	goog := NewOHLCAsset("GOOG", "USD")
	wide, err := ohlcDay(t, "GOOG", 104, 96, 100).Extend(ohlcDay(t, "MSFT", 54, 46, 50))
	require.NoError(t, err)

	scoped, err := FilterData(goog, wide)
	require.NoError(t, err)

	v, ok := scoped.Value(frame.F("Close"), 0)
	assert.True(t, ok)
	assert.Equal(t, 100.0, v)

	_, ok = scoped.Value(frame.K("MSFT", "Close"), 0)
	assert.False(t, ok)
}

func TestFilterDataNoColumns(t *testing.T) {
	a := NewOHLCAsset("TSLA", "USD")
	_, err := FilterData(a, ohlcDay(t, "GOOG", 104, 96, 100))
	assert.True(t, errors.Is(err, ErrNoAssetColumns))
}

func TestFilterDataCustomLabel(t *testing.T) {
	a := NewOHLCAsset("Google", "USD")
	a.DataLabel = "GOOG"

	scoped, err := FilterData(a, ohlcDay(t, "GOOG", 104, 96, 100))
	require.NoError(t, err)
	assert.Equal(t, 1, scoped.NumRows())
}

func TestFilterFields(t *testing.T) {
	a := NewOHLCAsset("GOOG", "USD")

	assert.Equal(t, []string{"Close"}, FilterFields(a, Required))
	assert.Equal(t, []string{"Open"}, FilterFields(a, AvailableAtOpen))
}

func TestRoundQuantity(t *testing.T) {
	a := NewOHLCAsset("GOOG", "USD")
	assert.Equal(t, 3.33, a.Info().RoundQuantity(10.0/3))

	a.QuantityRoundDP = 0
	assert.Equal(t, 3.0, a.Info().RoundQuantity(10.0 / 3))
}
