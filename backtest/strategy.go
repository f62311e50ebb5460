package backtest

import (
	"github.com/quantfold/stratsim/frame"
)

// Params is one run's configuration: string keys to scalar values
// (float64, int, string or bool). It is passed unchanged to every
// strategy for the duration of the run.
type Params map[string]any

// Float returns a numeric parameter, accepting int values for
// convenience.
func (p Params) Float(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

func (p Params) Int(key string) (int, bool) {
	switch v := p[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}

func (p Params) Str(key string) (string, bool) {
	v, ok := p[key].(string)
	return v, ok
}

func (p Params) Bool(key string) (bool, bool) {
	v, ok := p[key].(bool)
	return v, ok
}

// Context is the run-scoped state a strategy sees. The asset map, book
// map and order queue are shared by every strategy in the run; Data is
// private to the strategy and re-sliced by the scheduler before each
// open callback so no future rows are ever visible.
type Context struct {
	Params Params
	Assets AssetMap
	Books  BookMap

	// Data is the strategy's extended view sliced to rows [0, tick].
	Data *frame.Frame

	queue *orderQueue
}

// Place enqueues orders for the scheduler. Orders placed during OnOpen
// are processed the same tick; orders placed during OnClose wait for
// the next tick's drain.
func (c *Context) Place(orders ...Order) {
	c.queue.push(orders...)
}

// orderQueue is the pending-order FIFO shared by a run's strategies.
type orderQueue struct {
	pending []Order
}

func (q *orderQueue) push(orders ...Order) {
	q.pending = append(q.pending, orders...)
}

func (q *orderQueue) pop() (Order, bool) {
	if len(q.pending) == 0 {
		return nil, false
	}
	o := q.pending[0]
	q.pending = q.pending[1:]
	return o, true
}

// Strategy is the user extension point. Implementations usually embed
// BaseStrategy and override the hooks they need. Two strategies are
// equal only if they are the same instance.
type Strategy interface {
	// Clone returns an independent copy for a single run.
	Clone() Strategy

	// ExtendData may return derived columns (indicators etc.) to join
	// onto the base table for this strategy's private view. Returning
	// nil means the strategy sees only the base columns. Params are
	// already attached to ctx; ctx.Data is not yet set.
	ExtendData(ctx *Context, base *frame.Frame) (*frame.Frame, error)

	// Init runs once per run, after the extended view is established.
	Init(ctx *Context) error

	// OnOpen runs at the start of every tick, before orders drain.
	OnOpen(ctx *Context) error

	// OnClose runs after the tick's orders have drained; this is where
	// new top-level orders are typically placed.
	OnClose(ctx *Context) error
}

// BaseStrategy provides no-op defaults for everything except Clone.
type BaseStrategy struct{}

func (BaseStrategy) ExtendData(ctx *Context, base *frame.Frame) (*frame.Frame, error) {
	return nil, nil
}
func (BaseStrategy) Init(ctx *Context) error                           { return nil }
func (BaseStrategy) OnOpen(ctx *Context) error                         { return nil }
func (BaseStrategy) OnClose(ctx *Context) error                        { return nil }
