// Package risk provides mandate policies for books: composable trade
// acceptance rules a book evaluates before an order posts its trades.
// A rejected batch books nothing and marks the order MANDATE_FAILED.
package risk

import (
	"math"

	"github.com/quantfold/stratsim/backtest"
)

// CashFloor rejects any trade batch that would leave the book's cash
// below min. Set min to zero to forbid borrowing.
func CashFloor(min float64) backtest.MandatePolicy {
	return func(b *backtest.Book, trades []*backtest.Trade) bool {
		cash := b.Cash
		for _, t := range trades {
			cash += t.Total()
		}
		return cash >= min
	}
}

// MaxPosition rejects any trade batch that would push an asset's
// absolute position past limit.
func MaxPosition(limit float64) backtest.MandatePolicy {
	return func(b *backtest.Book, trades []*backtest.Trade) bool {
		proposed := make(map[string]float64)
		for _, t := range trades {
			proposed[t.AssetName] += t.Quantity
		}
		for asset, delta := range proposed {
			if math.Abs(b.Positions[asset]+delta) > limit {
				return false
			}
		}
		return true
	}
}

// All combines policies; every one must accept. No policies accepts
// everything, matching a book with no mandate.
func All(policies ...backtest.MandatePolicy) backtest.MandatePolicy {
	return func(b *backtest.Book, trades []*backtest.Trade) bool {
		for _, p := range policies {
			if !p(b, trades) {
				return false
			}
		}
		return true
	}
}
