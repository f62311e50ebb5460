package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/stratsim/frame"
)

func TestAddTransactionsLedger(t *testing.T) {
	b := NewBook("bk", "USD", 10000)

	txs := []Transaction{
		&Trade{TS: day(0), Quantity: 10, Price: 100, AssetName: "GOOG"},
		&Trade{TS: day(1), Quantity: -4, Price: 110, AssetName: "GOOG"},
		&CashTransaction{TS: day(1), Amount: 25, Desc: "dividend"},
	}
	require.NoError(t, b.AddTransactions(txs))

	// cash must equal initial plus the sum of transaction totals
	want := 10000.0
	for _, tx := range txs {
		want += tx.Total()
	}
	assert.Equal(t, want, b.Cash)
	assert.Equal(t, 10000.0-1000+440+25, b.Cash)

	// position must equal the sum of trade quantities
	assert.Equal(t, 6.0, b.Positions["GOOG"])
	assert.Len(t, b.Transactions, 3)
}

func TestAddTransactionsUnsupported(t *testing.T) {
	b := NewBook("bk", "USD", 0)
	err := b.AddTransactions([]Transaction{unsupportedTx{}})
	assert.ErrorIs(t, err, ErrUnsupportedTransaction)
}

type unsupportedTx struct{}

func (unsupportedTx) Time() time.Time     { return time.Time{} }
func (unsupportedTx) Total() float64      { return 0 }
func (unsupportedTx) Description() string { return "unsupported" }

func TestTradeTotalSign(t *testing.T) {
	buy := &Trade{Quantity: 10, Price: 100}
	sell := &Trade{Quantity: -10, Price: 100}
	assert.Equal(t, -1000.0, buy.Total(), "buying costs cash")
	assert.Equal(t, 1000.0, sell.Total(), "selling raises cash")
}

func TestCloneIsIndependent(t *testing.T) {
	b := NewBook("bk", "USD", 1000)
	require.NoError(t, b.AddTransactions([]Transaction{
		&Trade{TS: day(0), Quantity: 5, Price: 10, AssetName: "GOOG"},
	}))

	c := b.Clone()
	c.Cash = 0
	c.Positions["GOOG"] = 99
	require.NoError(t, c.AddTransactions([]Transaction{
		&CashTransaction{TS: day(1), Amount: 1, Desc: "x"},
	}))

	assert.Equal(t, 950.0, b.Cash)
	assert.Equal(t, 5.0, b.Positions["GOOG"])
	assert.Len(t, b.Transactions, 1)
}

func TestEODTasksInterest(t *testing.T) {
	b := NewBook("bk", "USD", 1000)
	b.Rate = 0.01

	d := ohlcDay(t, "GOOG", 104, 96, 100)
	require.NoError(t, b.EODTasks(day(0), d, AssetMap{}))

	// 1000 * (e^0.01 - 1) = 10.050167..., rounded to 3dp
	assert.InDelta(t, 1010.05, b.Cash, 1e-9)
	require.Len(t, b.Transactions, 1)
	assert.InDelta(t, 10.05, b.Transactions[0].Total(), 1e-9)
}

func TestEODTasksNoInterestWhenZero(t *testing.T) {
	d := ohlcDay(t, "GOOG", 104, 96, 100)

	// zero rate accrues nothing
	b := NewBook("bk", "USD", 1000)
	require.NoError(t, b.EODTasks(day(0), d, AssetMap{}))
	assert.Empty(t, b.Transactions)
	assert.Equal(t, 1000.0, b.Cash)

	// interest that rounds to zero posts nothing
	b = NewBook("bk", "USD", 0.001)
	b.Rate = 0.01
	require.NoError(t, b.EODTasks(day(0), d, AssetMap{}))
	assert.Empty(t, b.Transactions)
}

func TestEODTasksMarkToMarket(t *testing.T) {
	goog := NewOHLCAsset("GOOG", "USD")
	assets := AssetMap{"GOOG": goog}

	b := NewBook("bk", "USD", 500)
	b.Positions["GOOG"] = 10

	require.NoError(t, b.EODTasks(day(0), ohlcDay(t, "GOOG", 104, 96, 101.234), assets))

	h := b.History()
	require.Equal(t, 1, h.NumRows())
	assert.Equal(t, day(0), h.Date(0))

	cash, _ := h.Value(frame.F("cash"), 0)
	mtm, _ := h.Value(frame.F("mtm"), 0)
	total, _ := h.Value(frame.F("total"), 0)
	assert.Equal(t, 500.0, cash)
	assert.InDelta(t, 1012.3, mtm, 1e-9) // 10 * round(101.234, 2)
	assert.InDelta(t, 1512.3, total, 1e-9)
}

func TestEODTasksSkipsUnknownAssets(t *testing.T) {
	b := NewBook("bk", "USD", 0)
	b.Positions["UNLISTED"] = 42

	require.NoError(t, b.EODTasks(day(0), ohlcDay(t, "GOOG", 104, 96, 100), AssetMap{}))

	h := b.History()
	mtm, _ := h.Value(frame.F("mtm"), 0)
	assert.Equal(t, 0.0, mtm)
}

func TestEODTasksZeroPosition(t *testing.T) {
	goog := NewOHLCAsset("GOOG", "USD")
	b := NewBook("bk", "USD", 100)
	b.Positions["GOOG"] = 0

	require.NoError(t, b.EODTasks(day(0), ohlcDay(t, "GOOG", 104, 96, 100), AssetMap{"GOOG": goog}))

	h := b.History()
	mtm, _ := h.Value(frame.F("mtm"), 0)
	total, _ := h.Value(frame.F("total"), 0)
	assert.Equal(t, 0.0, mtm)
	assert.Equal(t, 100.0, total)
}

func TestTestTradesMandate(t *testing.T) {
	b := NewBook("bk", "USD", 100)
	assert.True(t, b.TestTrades([]*Trade{{Quantity: 1e9}}), "nil mandate accepts everything")

	b.Mandate = func(b *Book, trades []*Trade) bool {
		for _, tr := range trades {
			if b.Cash+tr.Total() < 0 {
				return false
			}
		}
		return true
	}
	assert.True(t, b.TestTrades([]*Trade{{Quantity: 1, Price: 50}}))
	assert.False(t, b.TestTrades([]*Trade{{Quantity: 10, Price: 50}}))
}
