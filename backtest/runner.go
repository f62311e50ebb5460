package backtest

import (
	"fmt"

	"github.com/alitto/pond"
	"go.uber.org/zap"

	"github.com/quantfold/stratsim/frame"
	"github.com/quantfold/stratsim/pkg/id"
)

// Runner drives the per-tick event loop for one parameter configuration
// and fans many configurations out across a worker pool. It owns the
// canonical data table and the asset/strategy/book prototypes; every
// run works on its own clones, so the runner itself is never mutated
// and is safe to share across concurrent runs.
type Runner struct {
	Data       *frame.Frame
	Assets     []Asset
	Strategies []Strategy
	Books      []*Book

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// Result bundles everything one run produced: the cloned strategies,
// books and assets, the processed orders, and any orders left on the
// queue when the calendar ran out (empty on a clean run).
type Result struct {
	RunID  string
	Params Params

	Strategies []Strategy
	Books      []*Book
	Assets     []Asset

	Processed   []Order
	Unprocessed []Order
}

// BookHistory concatenates every book's daily valuation history into a
// single report frame, prefixing each book's columns with its name.
func (r *Result) BookHistory() (*frame.Frame, error) {
	frames := make([]*frame.Frame, len(r.Books))
	labels := make([]string, len(r.Books))
	for i, b := range r.Books {
		frames[i] = b.History()
		labels[i] = b.Name
	}
	return frame.ConcatPrefixed(frames, labels)
}

// Run executes one full calendar traversal with the given parameters.
//
// The loop per tick: slice each strategy's view up to and including the
// tick and call OnOpen; drain the order queue FIFO, buffering suborders
// for the next tick; call OnClose; run every book's end-of-day tasks.
// Rows with a missing timestamp fire no callbacks at all.
func (r *Runner) Run(params Params) (*Result, error) {
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if len(r.Books) == 0 {
		return nil, ErrNoBooks
	}

	result := &Result{RunID: id.New(), Params: params}
	log.Debug("starting run", zap.String("run_id", result.RunID))

	// Clone every prototype into a set owned solely by this run.
	for _, s := range r.Strategies {
		result.Strategies = append(result.Strategies, s.Clone())
	}
	for _, b := range r.Books {
		result.Books = append(result.Books, b.Clone())
	}
	for _, a := range r.Assets {
		result.Assets = append(result.Assets, a.Clone())
	}

	assetMap := make(AssetMap, len(result.Assets))
	for _, a := range result.Assets {
		assetMap[a.Info().Name] = a
	}
	bookMap := make(BookMap, len(result.Books))
	for _, b := range result.Books {
		bookMap[b.Name] = b
	}
	defaultBook := result.Books[0]

	queue := &orderQueue{}

	// Attach shared state and build each strategy's private data view.
	views := make([]*frame.Frame, len(result.Strategies))
	contexts := make([]*Context, len(result.Strategies))
	for i, s := range result.Strategies {
		contexts[i] = &Context{
			Params: params,
			Assets: assetMap,
			Books:  bookMap,
			queue:  queue,
		}

		extension, err := s.ExtendData(contexts[i], r.Data)
		if err != nil {
			return nil, fmt.Errorf("extend data: %w", err)
		}
		views[i] = r.Data
		if extension != nil {
			views[i], err = r.Data.Extend(extension)
			if err != nil {
				return nil, fmt.Errorf("extend data: %w", err)
			}
		}

		if err := s.Init(contexts[i]); err != nil {
			return nil, fmt.Errorf("strategy init: %w", err)
		}
	}

	numRows := r.Data.NumRows()
	for tick := 0; tick < numRows; tick++ {
		ts := r.Data.Date(tick)
		if ts.IsZero() {
			continue
		}
		dayData := r.Data.Slice(tick, 1)

		for i, s := range result.Strategies {
			contexts[i].Data = views[i].Slice(0, tick+1)
			if err := s.OnOpen(contexts[i]); err != nil {
				return nil, fmt.Errorf("on open at %s: %w", ts.Format("2006-01-02"), err)
			}
		}

		// Drain the queue as it stood at tick start, FIFO. Suborders go
		// into the next-tick buffer and are never applied this tick.
		var nextTick []Order
		for {
			order, ok := queue.pop()
			if !ok {
				break
			}
			core := order.Core()

			if core.Book == nil {
				if core.BookName != "" {
					book, ok := bookMap[core.BookName]
					if !ok {
						return nil, fmt.Errorf("%w: %q", ErrUnknownBook, core.BookName)
					}
					core.Book = book
				} else {
					core.Book = defaultBook
				}
			}
			if core.Key == "" {
				core.Key = id.New()
			}

			log.Debug("applying order",
				zap.String("run_id", result.RunID),
				zap.String("key", core.Key),
				zap.Time("ts", ts))
			if err := order.Apply(ts, dayData, assetMap); err != nil {
				return nil, fmt.Errorf("apply order %s: %w", core.Key, err)
			}

			nextTick = append(nextTick, core.Suborders...)
			result.Processed = append(result.Processed, order)
		}
		queue.push(nextTick...)

		for i, s := range result.Strategies {
			if err := s.OnClose(contexts[i]); err != nil {
				return nil, fmt.Errorf("on close at %s: %w", ts.Format("2006-01-02"), err)
			}
		}

		for _, b := range result.Books {
			if err := b.EODTasks(ts, dayData, assetMap); err != nil {
				return nil, fmt.Errorf("eod tasks at %s: %w", ts.Format("2006-01-02"), err)
			}
		}
	}

	result.Unprocessed = queue.pending
	log.Debug("finished run",
		zap.String("run_id", result.RunID),
		zap.Int("processed", len(result.Processed)),
		zap.Int("unprocessed", len(result.Unprocessed)))
	return result, nil
}

// BatchResult is one configuration's outcome in a batch. A failing
// configuration carries its error here instead of discarding its
// siblings' results.
type BatchResult struct {
	Params Params
	Result *Result
	Err    error
}

// RunBatch executes Run once per parameter set on a bounded worker
// pool. workers <= 0 means one worker per parameter set. Results come
// back in input order; runs share only the read-only base table and the
// prototypes, so no synchronization beyond the pool is needed.
func (r *Runner) RunBatch(paramSets []Params, workers int) []BatchResult {
	results := make([]BatchResult, len(paramSets))
	if len(paramSets) == 0 {
		return results
	}
	if workers <= 0 {
		workers = len(paramSets)
	}

	pool := pond.New(workers, len(paramSets))
	defer pool.StopAndWait()

	group := pool.Group()
	for i, params := range paramSets {
		i, params := i, params
		group.Submit(func() {
			res, err := r.Run(params)
			results[i] = BatchResult{Params: params, Result: res, Err: err}
		})
	}
	group.Wait()

	return results
}
