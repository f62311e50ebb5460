package strategies

import (
	"fmt"
	"math"

	"github.com/quantfold/stratsim/backtest"
	"github.com/quantfold/stratsim/frame"
	"github.com/quantfold/stratsim/indicators"
)

const (
	smaFastField = "CloseSMAFast"
	smaSlowField = "CloseSMASlow"
)

// SMACross trades fixed-size orders on simple-moving-average
// crossovers of the close price. Window lengths come from the run
// params ("fast"/"slow", with "n"/"m" accepted as aliases), so one
// prototype can sweep a whole parameter grid.
//
// Orientation follows the classic mean-reversion variant: a fast
// average crossing above the slow one sells, the slow crossing above
// the fast buys.
type SMACross struct {
	backtest.BaseStrategy

	// Assets are the asset names (and data labels) to trade.
	Assets []string
	// Size is the order quantity per signal.
	Size float64

	// Defaults when the run params carry no windows.
	FastPeriod int
	SlowPeriod int

	// resolved per run during ExtendData
	fast, slow int
}

func NewSMACross(assets []string, size float64) *SMACross {
	if size == 0 {
		size = 100
	}
	return &SMACross{
		Assets:     assets,
		Size:       size,
		FastPeriod: 10,
		SlowPeriod: 20,
	}
}

func (s *SMACross) Clone() backtest.Strategy {
	c := *s
	c.Assets = append([]string(nil), s.Assets...)
	return &c
}

func (s *SMACross) periods(p backtest.Params) (fast, slow int) {
	fast, slow = s.FastPeriod, s.SlowPeriod
	if v, ok := p.Int("fast"); ok {
		fast = v
	} else if v, ok := p.Int("n"); ok {
		fast = v
	}
	if v, ok := p.Int("slow"); ok {
		slow = v
	} else if v, ok := p.Int("m"); ok {
		slow = v
	}
	return fast, slow
}

// ExtendData adds per-asset fast and slow SMA columns over Close.
func (s *SMACross) ExtendData(ctx *backtest.Context, base *frame.Frame) (*frame.Frame, error) {
	s.fast, s.slow = s.periods(ctx.Params)
	if s.fast <= 0 || s.slow <= 0 || s.fast >= s.slow {
		return nil, fmt.Errorf("sma-cross: bad windows fast=%d slow=%d", s.fast, s.slow)
	}

	var cols []frame.Column
	for _, label := range s.Assets {
		closes, ok := base.Column(frame.K(label, "Close"))
		if !ok {
			return nil, fmt.Errorf("sma-cross: no Close column for %q", label)
		}

		fastSMA, err := indicators.SMA(closes, s.fast)
		if err != nil {
			return nil, err
		}
		slowSMA, err := indicators.SMA(closes, s.slow)
		if err != nil {
			return nil, err
		}

		cols = append(cols,
			frame.Column{Key: frame.K(label, smaFastField), Vals: fastSMA},
			frame.Column{Key: frame.K(label, smaSlowField), Vals: slowSMA},
		)
	}
	return frame.New(base.Dates(), cols)
}

func (s *SMACross) OnClose(ctx *backtest.Context) error {
	rows := ctx.Data.NumRows()
	if rows < s.slow+1 {
		return nil
	}

	for _, label := range s.Assets {
		fastPrev, _ := ctx.Data.Value(frame.K(label, smaFastField), rows-2)
		fastCur, _ := ctx.Data.Value(frame.K(label, smaFastField), rows-1)
		slowPrev, _ := ctx.Data.Value(frame.K(label, smaSlowField), rows-2)
		slowCur, _ := ctx.Data.Value(frame.K(label, smaSlowField), rows-1)

		if math.IsNaN(fastPrev) || math.IsNaN(fastCur) ||
			math.IsNaN(slowPrev) || math.IsNaN(slowCur) {
			continue
		}

		switch {
		case crossover(fastPrev, fastCur, slowPrev, slowCur):
			ctx.Place(backtest.NewSimpleOrder(label, -s.Size))
		case crossover(slowPrev, slowCur, fastPrev, fastCur):
			ctx.Place(backtest.NewSimpleOrder(label, s.Size))
		}
	}
	return nil
}

// crossover reports whether series a crossed above series b between the
// previous row and the current one.
func crossover(aPrev, aCur, bPrev, bCur float64) bool {
	return aPrev <= bPrev && aCur > bCur
}
