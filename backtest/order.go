package backtest

import (
	"fmt"
	"time"

	"github.com/quantfold/stratsim/frame"
)

// Status is an order's position in its state machine. Orders start
// Open; built-in orders end Complete or MandateFailed. Cancelled and
// Replaced are reserved for order types that support amendment.
type Status int

const (
	StatusOpen Status = iota
	StatusComplete
	StatusMandateFailed
	StatusCancelled
	StatusReplaced
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "OPEN"
	case StatusComplete:
		return "COMPLETE"
	case StatusMandateFailed:
		return "MANDATE_FAILED"
	case StatusCancelled:
		return "CANCELLED"
	case StatusReplaced:
		return "REPLACED"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s != StatusOpen
}

// SizeType selects how a SimpleOrder's Size is interpreted.
type SizeType int

const (
	// SizeQuantity: Size is a signed quantity of the asset.
	SizeQuantity SizeType = iota
	// SizeNotional: Size is a signed cash amount to convert at the
	// traded price.
	SizeNotional
	// SizeBookPercent: Size is a percentage of the book's cash.
	SizeBookPercent
)

func (t SizeType) String() string {
	switch t {
	case SizeQuantity:
		return "QUANTITY"
	case SizeNotional:
		return "NOTIONAL"
	case SizeBookPercent:
		return "BOOK_PERCENT"
	default:
		return fmt.Sprintf("SizeType(%d)", int(t))
	}
}

// Order is a unit of trading intent. The scheduler resolves its book,
// calls Apply exactly once, then moves it to the processed list; any
// suborders it produced are scheduled for the following tick.
type Order interface {
	// Clone returns an independent copy for a single run.
	Clone() Order

	// Core exposes the state shared by every order kind.
	Core() *OrderCore

	// Apply turns the order's intent into booked trades (or a terminal
	// failure status) for the given day.
	Apply(ts time.Time, dayData *frame.Frame, assetMap AssetMap) error
}

// OrderCore is embedded by every order kind and holds the scheduler-
// facing state.
type OrderCore struct {
	Status Status

	// BookName selects the target book; empty means the run's first
	// book. The scheduler resolves it into Book before Apply.
	BookName string
	Book     *Book

	Label string

	// Priority is declared order metadata. The scheduler currently
	// drains the queue in pure FIFO order and does not consult it.
	Priority int

	// Key identifies the order in journals. The scheduler assigns a
	// ULID when it is left empty.
	Key string

	// Suborders are child orders produced while applying, picked up by
	// the scheduler for the next tick.
	Suborders []Order
}

func (c *OrderCore) Core() *OrderCore { return c }

// BookTrades is the shared booking step: mandate-test the trades, post
// them, mark the order complete and run the post-complete hook. A
// mandate rejection books nothing and marks the order MandateFailed.
// post may be nil; when present its returned orders become suborders.
func (c *OrderCore) BookTrades(trades []*Trade, post func(trades []*Trade) []Order) error {
	if c.Book == nil {
		return ErrBookNotFound
	}
	if !c.Book.TestTrades(trades) {
		c.Status = StatusMandateFailed
		return nil
	}

	transactions := make([]Transaction, len(trades))
	for i, t := range trades {
		transactions[i] = t
	}
	if err := c.Book.AddTransactions(transactions); err != nil {
		return err
	}
	c.Status = StatusComplete

	if post != nil {
		c.Suborders = append(c.Suborders, post(trades)...)
	}
	return nil
}

// SimpleOrder trades a fixed size of one asset at the day's intraday
// traded price.
type SimpleOrder struct {
	OrderCore

	AssetName string
	Size      float64
	SizeType  SizeType

	// PreExecute runs after pricing and before booking. Returning
	// ok=true adopts the status and stops without trading; limit and
	// stop semantics plug in here.
	PreExecute func(ts time.Time, tradePrice float64) (Status, bool)

	// PostComplete runs after the trade books and may return child
	// orders to schedule for the next tick (bracket orders etc.).
	PostComplete func(trades []*Trade) []Order
}

// NewSimpleOrder returns an open quantity-sized order for the run's
// default book.
func NewSimpleOrder(assetName string, size float64) *SimpleOrder {
	return &SimpleOrder{
		OrderCore: OrderCore{Status: StatusOpen},
		AssetName: assetName,
		Size:      size,
		SizeType:  SizeQuantity,
	}
}

func (o *SimpleOrder) Clone() Order {
	c := *o
	c.Suborders = append([]Order(nil), o.Suborders...)
	return &c
}

// quantityPrice resolves the traded price and converts Size into a
// rounded quantity according to SizeType.
func (o *SimpleOrder) quantityPrice(dayData *frame.Frame, assetMap AssetMap) (quantity, price float64, err error) {
	asset, ok := assetMap[o.AssetName]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownAsset, o.AssetName)
	}
	assetDay, err := FilterData(asset, dayData)
	if err != nil {
		return 0, 0, err
	}
	tradePrice, err := asset.IntradayTradedPrice(assetDay, o.Size)
	if err != nil {
		return 0, 0, err
	}

	info := asset.Info()
	switch o.SizeType {
	case SizeQuantity:
		return info.RoundQuantity(o.Size), tradePrice, nil
	case SizeNotional:
		return info.RoundQuantity(o.Size / tradePrice), tradePrice, nil
	case SizeBookPercent:
		return info.RoundQuantity(o.Book.Cash * o.Size / 100 / tradePrice), tradePrice, nil
	default:
		return 0, 0, fmt.Errorf("%w: %s", ErrUnsupportedSizeType, o.SizeType)
	}
}

func (o *SimpleOrder) Apply(ts time.Time, dayData *frame.Frame, assetMap AssetMap) error {
	if o.Book == nil {
		return fmt.Errorf("%w: order for %q", ErrBookNotFound, o.AssetName)
	}

	quantity, price, err := o.quantityPrice(dayData, assetMap)
	if err != nil {
		return err
	}

	if o.PreExecute != nil {
		if status, stop := o.PreExecute(ts, price); stop {
			o.Status = status
			return nil
		}
	}

	trade := &Trade{
		TS:         ts,
		Quantity:   quantity,
		Price:      price,
		AssetName:  o.AssetName,
		OrderLabel: o.Label,
	}
	return o.BookTrades([]*Trade{trade}, o.PostComplete)
}
