package backtest

import (
	"fmt"
	"math"

	"github.com/quantfold/stratsim/frame"
)

// FieldFlags tags a data field with when it becomes observable and
// whether the asset cannot be priced without it.
type FieldFlags uint8

const (
	AvailableAtClose FieldFlags = 1 << iota
	AvailableAtOpen
	Required
)

// Field is one named column an asset expects in its day slice.
type Field struct {
	Name  string
	Flags FieldFlags
}

// Asset is the pricing capability of one tradable instrument. Assets
// are read-only during a run; the runner clones each prototype so runs
// never share one.
type Asset interface {
	// Clone returns an independent copy for a single run.
	Clone() Asset

	// Info exposes the common identity and rounding settings.
	Info() *AssetInfo

	// DataFields lists the fields this asset type consumes, in order.
	DataFields() []Field

	// IntradayTradedPrice prices a trade executed during the day from a
	// single-row, asset-scoped slice. size is reserved for size-aware
	// pricing models and may be ignored.
	IntradayTradedPrice(day *frame.Frame, size float64) (float64, error)

	// EndOfDayPrice returns the mark price from a single-row,
	// asset-scoped slice.
	EndOfDayPrice(day *frame.Frame) (float64, error)
}

type AssetMap map[string]Asset

// AssetInfo carries the identity every asset variant shares. DataLabel
// is the label the wide table uses for this asset's columns; it
// defaults to the asset name.
type AssetInfo struct {
	Name            string
	Denom           string
	PriceRoundDP    int
	QuantityRoundDP int
	DataLabel       string
}

// RoundQuantity rounds a quantity to the asset's precision.
func (a *AssetInfo) RoundQuantity(q float64) float64 {
	return RoundDigits(q, a.QuantityRoundDP)
}

func (a *AssetInfo) roundPrice(p float64) float64 {
	return RoundDigits(p, a.PriceRoundDP)
}

// FilterFields returns the names of a's fields whose flags intersect
// flags.
func FilterFields(a Asset, flags FieldFlags) []string {
	var names []string
	for _, f := range a.DataFields() {
		if f.Flags&flags != 0 {
			names = append(names, f.Name)
		}
	}
	return names
}

// FilterData projects the columns labelled with a's data label out of a
// wide multi-asset table and re-keys them to bare field names, giving
// the single-row slice the asset's pricing methods consume.
func FilterData(a Asset, wide *frame.Frame) (*frame.Frame, error) {
	label := a.Info().DataLabel
	var cols []frame.Column
	for _, k := range wide.Keys() {
		if k.Label != label {
			continue
		}
		vals, _ := wide.Column(k)
		cols = append(cols, frame.Column{Key: frame.F(k.Field), Vals: vals})
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoAssetColumns, label)
	}
	out, err := frame.New(wide.Dates(), cols)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// OHLCAsset prices an instrument from daily open/high/low/close bars.
type OHLCAsset struct {
	AssetInfo
}

// NewOHLCAsset returns an OHLC asset with 2dp price and quantity
// rounding and the data label defaulted to the name. Fields may be
// adjusted on the prototype before it is handed to a runner.
func NewOHLCAsset(name, denom string) *OHLCAsset {
	return &OHLCAsset{AssetInfo{
		Name:            name,
		Denom:           denom,
		PriceRoundDP:    2,
		QuantityRoundDP: 2,
		DataLabel:       name,
	}}
}

func (a *OHLCAsset) Clone() Asset {
	c := *a
	return &c
}

func (a *OHLCAsset) Info() *AssetInfo { return &a.AssetInfo }

func (a *OHLCAsset) DataFields() []Field {
	return []Field{
		{Name: "High", Flags: AvailableAtClose},
		{Name: "Low", Flags: AvailableAtClose},
		{Name: "Open", Flags: AvailableAtClose | AvailableAtOpen},
		{Name: "Close", Flags: AvailableAtClose | Required},
		{Name: "Volume", Flags: AvailableAtClose},
	}
}

// IntradayTradedPrice approximates the traded price as the High/Low
// midpoint, falling back to Close when either side is missing. size is
// unused for bar data.
func (a *OHLCAsset) IntradayTradedPrice(day *frame.Frame, size float64) (float64, error) {
	low, okLow := day.Value(frame.F("Low"), 0)
	high, okHigh := day.Value(frame.F("High"), 0)
	if okLow && okHigh && !math.IsNaN(low) && !math.IsNaN(high) {
		return a.roundPrice((low + high) / 2), nil
	}

	if c, ok := day.Value(frame.F("Close"), 0); ok && !math.IsNaN(c) {
		return a.roundPrice(c), nil
	}
	return 0, fmt.Errorf("%w: intraday price for %s", ErrPriceUnavailable, a.Name)
}

func (a *OHLCAsset) EndOfDayPrice(day *frame.Frame) (float64, error) {
	c, ok := day.Value(frame.F("Close"), 0)
	if !ok || math.IsNaN(c) {
		return 0, fmt.Errorf("%w: end of day price for %s", ErrPriceUnavailable, a.Name)
	}
	return a.roundPrice(c), nil
}
