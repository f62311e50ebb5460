package backtest

import "errors"

// Sentinel errors. Mandate rejection is not an error: a rejected order
// simply ends in StatusMandateFailed and the run continues. Everything
// below aborts the run that raised it.
var (
	ErrPriceUnavailable       = errors.New("price unavailable")
	ErrNoAssetColumns         = errors.New("no data columns for asset label")
	ErrUnsupportedTransaction = errors.New("unsupported transaction kind")
	ErrUnsupportedSizeType    = errors.New("unsupported order size type")
	ErrBookNotFound           = errors.New("order book not found")
	ErrUnknownBook            = errors.New("unknown book")
	ErrUnknownAsset           = errors.New("unknown asset")
	ErrNoBooks                = errors.New("no books configured")
)
