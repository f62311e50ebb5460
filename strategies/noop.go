package strategies

import "github.com/quantfold/stratsim/backtest"

// Noop ignores every callback. Handy as a baseline and in tests.
type Noop struct {
	backtest.BaseStrategy
}

func (s *Noop) Clone() backtest.Strategy {
	c := *s
	return &c
}
