package backtest

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/quantfold/stratsim/frame"
)

// MandatePolicy decides whether a book accepts a batch of proposed
// trades. It sees the book's current state (positions, cash) and the
// trades an order wants to post.
type MandatePolicy func(b *Book, trades []*Trade) bool

// Book is one portfolio's ledger: cash, signed positions keyed by asset
// name, the full transaction list, and a daily valuation history. It is
// mutated by exactly one run at a time; the runner hands each run its
// own clone.
type Book struct {
	Name  string
	Denom string
	Cash  float64

	// Rate is a continuous daily compounding rate applied to cash at
	// end of day; zero disables interest accrual.
	Rate            float64
	InterestRoundDP int

	Positions    map[string]float64
	Transactions []Transaction

	// Mandate is the trade-acceptance hook. nil accepts everything.
	Mandate MandatePolicy

	history []historyRow
}

type historyRow struct {
	ts               time.Time
	cash, mtm, total float64
}

type BookMap map[string]*Book

// NewBook returns a book with no positions, no interest and 3dp
// interest rounding.
func NewBook(name, denom string, cash float64) *Book {
	return &Book{
		Name:            name,
		Denom:           denom,
		Cash:            cash,
		InterestRoundDP: 3,
		Positions:       make(map[string]float64),
	}
}

// Clone deep-copies the book so a run can mutate it freely. The clone
// shares nothing mutable with the original.
func (b *Book) Clone() *Book {
	c := *b
	c.Positions = make(map[string]float64, len(b.Positions))
	for k, v := range b.Positions {
		c.Positions[k] = v
	}
	c.Transactions = append([]Transaction(nil), b.Transactions...)
	c.history = append([]historyRow(nil), b.history...)
	return &c
}

// TestTrades runs the mandate hook over proposed trades. The default
// policy accepts everything; position-limit enforcement plugs in here.
func (b *Book) TestTrades(trades []*Trade) bool {
	if b.Mandate == nil {
		return true
	}
	return b.Mandate(b, trades)
}

// AddTransactions applies transactions in order. Trades move both the
// position and cash; cash transactions move cash only. Every applied
// transaction is appended to the book's transaction list.
func (b *Book) AddTransactions(transactions []Transaction) error {
	for _, tx := range transactions {
		switch t := tx.(type) {
		case *Trade:
			b.Positions[t.AssetName] += t.Quantity
			b.Cash += t.Total()
		case *CashTransaction:
			b.Cash += t.Total()
		default:
			return fmt.Errorf("%w: %T", ErrUnsupportedTransaction, tx)
		}
		b.Transactions = append(b.Transactions, tx)
	}
	return nil
}

// EODTasks accrues interest on cash, marks open positions to market
// using each asset's end-of-day price, and appends the day's valuation
// row. Positions in assets missing from assetMap contribute nothing.
func (b *Book) EODTasks(ts time.Time, dayData *frame.Frame, assetMap AssetMap) error {
	if b.Rate != 0 {
		interest := RoundDigits(b.Cash*(math.Exp(b.Rate)-1), b.InterestRoundDP)
		if interest != 0 {
			tx := &CashTransaction{
				TS:     ts,
				Amount: interest,
				Desc:   fmt.Sprintf("interest payment on cash %.2f", b.Cash),
			}
			if err := b.AddTransactions([]Transaction{tx}); err != nil {
				return err
			}
		}
	}

	// Iterate positions in name order so float accumulation is
	// reproducible across runs.
	names := make([]string, 0, len(b.Positions))
	for name := range b.Positions {
		names = append(names, name)
	}
	sort.Strings(names)

	mtm := 0.0
	for _, name := range names {
		asset, ok := assetMap[name]
		if !ok {
			continue
		}
		assetDay, err := FilterData(asset, dayData)
		if err != nil {
			return fmt.Errorf("book %s: %w", b.Name, err)
		}
		price, err := asset.EndOfDayPrice(assetDay)
		if err != nil {
			return fmt.Errorf("book %s: %w", b.Name, err)
		}
		mtm += price * b.Positions[name]
	}

	b.history = append(b.history, historyRow{
		ts:    ts,
		cash:  b.Cash,
		mtm:   mtm,
		total: b.Cash + mtm,
	})
	return nil
}

// History materializes the accumulated valuation rows as a frame with
// columns ts, cash, mtm and total, one row per simulated day.
func (b *Book) History() *frame.Frame {
	n := len(b.history)
	dates := make([]time.Time, n)
	cash := make([]float64, n)
	mtm := make([]float64, n)
	total := make([]float64, n)
	for i, row := range b.history {
		dates[i] = row.ts
		cash[i] = row.cash
		mtm[i] = row.mtm
		total[i] = row.total
	}

	f, err := frame.New(dates, []frame.Column{
		{Key: frame.F("cash"), Vals: cash},
		{Key: frame.F("mtm"), Vals: mtm},
		{Key: frame.F("total"), Vals: total},
	})
	if err != nil {
		// columns are built with matching lengths above
		panic(err)
	}
	f.DateName = "ts"
	return f
}
