// Package strategies holds the built-in strategies and a registry so
// user code (and the CLI) can look them up by name.
package strategies

import (
	"fmt"
	"strings"
	"sync"

	"github.com/quantfold/stratsim/backtest"
)

var (
	mu       sync.RWMutex
	registry = make(map[string]backtest.Strategy)
)

// Register makes a strategy prototype available under name. The
// registered instance is a prototype: runners clone it per run, so
// registering once is safe even across concurrent batches.
func Register(name string, strat backtest.Strategy) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = strat
}

// Get returns the registered prototype, or nil.
func Get(name string) backtest.Strategy {
	mu.RLock()
	defer mu.RUnlock()
	return registry[name]
}

// ByName builds one of the built-in strategies. assets and size only
// apply to strategies that trade.
func ByName(name string, assets []string, size float64) (backtest.Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "noop", "none":
		return &Noop{}, nil

	case "sma-cross", "smacross":
		return NewSMACross(assets, size), nil

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: noop, sma-cross)", name)
	}
}
