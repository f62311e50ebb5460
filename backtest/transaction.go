package backtest

import "time"

// Transaction is an immutable fact applied to a book: once posted it is
// owned by the book's transaction list and never mutated.
type Transaction interface {
	Time() time.Time
	Total() float64
	Description() string
}

// CashTransaction moves cash with no position change (interest,
// deposits, fees).
type CashTransaction struct {
	TS     time.Time
	Amount float64
	Desc   string
}

func (t *CashTransaction) Time() time.Time     { return t.TS }
func (t *CashTransaction) Total() float64      { return t.Amount }
func (t *CashTransaction) Description() string { return t.Desc }

// Trade exchanges cash for a signed quantity of an asset. A buy
// (positive quantity) costs cash, so the total is the negated notional.
type Trade struct {
	TS         time.Time
	Quantity   float64
	Price      float64
	AssetName  string
	OrderLabel string
}

func (t *Trade) Time() time.Time { return t.TS }

func (t *Trade) Total() float64 { return -t.Quantity * t.Price }

func (t *Trade) Description() string {
	if t.Quantity < 0 {
		return "sell " + t.AssetName
	}
	return "buy " + t.AssetName
}
