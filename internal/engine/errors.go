package engine

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind classifies a rejected command. The HTTP layer maps kinds to
// status codes; the message is what the caller re-renders.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindAuthorization
	KindNotFound
	KindExpired
)

// Error is a business-rule rejection. Every rejected command leaves
// the auction record unchanged.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// KindOf extracts the Kind from an error chain, or 0 when the error
// is not an engine rejection.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

var (
	ErrAuctionNotFound  = &Error{KindNotFound, "auction not found"}
	ErrOfferNotFound    = &Error{KindNotFound, "offer not found"}
	ErrAuctionNotActive = &Error{KindConflict, "auction is not active"}
	ErrAuctionEnded     = &Error{KindConflict, "auction has ended"}
	ErrSelfBid          = &Error{KindAuthorization, "seller cannot bid on their own auction"}
	ErrSelfBuy          = &Error{KindAuthorization, "seller cannot buy their own auction"}
	ErrSelfOffer        = &Error{KindAuthorization, "seller cannot make an offer on their own auction"}
	ErrNotSeller        = &Error{KindAuthorization, "only the seller can accept offers"}
	ErrOfferExpired     = &Error{KindExpired, "offer has expired"}
	ErrOfferNotPending  = &Error{KindConflict, "offer is no longer pending"}
	ErrOffersNotAllowed = &Error{KindValidation, "auction does not accept offers"}
	ErrBiddingDisabled  = &Error{KindValidation, "auction does not support bidding"}
	ErrBuyNowDisabled   = &Error{KindValidation, "auction does not support buy now"}
)

func validationf(format string, args ...any) *Error {
	return &Error{KindValidation, fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...any) *Error {
	return &Error{KindConflict, fmt.Sprintf(format, args...)}
}

// belowMinimum carries the exact minimum acceptable amount in its
// message so the caller can surface it verbatim.
func belowMinimum(min decimal.Decimal) *Error {
	return validationf("bid too low: minimum acceptable bid is %s", min.String())
}
