package domain

import "errors"

// Validation errors: bad operator input, no call leaves the process.
var (
	ErrReasonRequired        = errors.New("cancellation reason is required")
	ErrCustomReasonRequired  = errors.New("custom reason text is required")
	ErrNoItemsSelected       = errors.New("at least one out-of-stock item must be selected")
	ErrReopenTimeRequired    = errors.New("reopen time is required")
	ErrReopenTimeInvalid     = errors.New("reopen time must be HH:MM")
	ErrClosureChoiceRequired = errors.New("closure choice is required")
	ErrClosureDateRequired   = errors.New("closure end date is required")
	ErrClosureDateInPast     = errors.New("closure end date must not be before today")
	ErrUnknownReason         = errors.New("unknown cancellation reason")
	ErrClosureDaysInvalid    = errors.New("closure days must be at least 1")
)

// Precondition and lifecycle errors.
var (
	ErrOrderNotFound            = errors.New("order not found")
	ErrSubOrderNotFound         = errors.New("no sub-order for shop in this order")
	ErrShopNotFound             = errors.New("shop not found")
	ErrSessionNotFound          = errors.New("cancellation session not found")
	ErrSubOrderNotCancellable   = errors.New("sub-order can no longer be cancelled")
	ErrSubOrderAlreadyCancelled = errors.New("sub-order is already cancelled")
	ErrOrderVersionConflict     = errors.New("order version conflict")
	ErrShopVersionConflict      = errors.New("shop version conflict")
	ErrInvalidTransition        = errors.New("event not allowed in current step")
	ErrSubmitInFlight           = errors.New("commit already in flight")
	ErrSessionFinished          = errors.New("cancellation session already finished")
)

// Aggregate invariant errors.
var (
	ErrCustomerRequired  = errors.New("customer_id is required")
	ErrSubOrdersRequired = errors.New("order must contain at least one sub-order")
	ErrShopIDRequired    = errors.New("shop_id is required")
	ErrItemsRequired     = errors.New("sub-order must contain at least one item")
	ErrItemQtyInvalid    = errors.New("item qty must be greater than zero")
	ErrItemPriceInvalid  = errors.New("item price must be non-negative")
	ErrSubtotalMismatch  = errors.New("sub-order subtotal does not match items sum")
)

// Effector errors: a remote mutation failed; the draft stays intact and the
// operator may retry from the same step.
var (
	ErrAvailabilityFailed = errors.New("shop availability update failed")
	ErrCancelFailed       = errors.New("sub-order cancellation failed")
)

// IsValidation reports whether err is operator input that can be corrected
// in place.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrReasonRequired, ErrCustomReasonRequired, ErrNoItemsSelected,
		ErrReopenTimeRequired, ErrReopenTimeInvalid, ErrClosureChoiceRequired,
		ErrClosureDateRequired, ErrClosureDateInPast, ErrUnknownReason,
		ErrClosureDaysInvalid,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsPrecondition reports whether err means the sub-order raced away from the
// flow (read-only view, no recovery beyond leaving).
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrSubOrderNotCancellable) || errors.Is(err, ErrSubOrderAlreadyCancelled)
}

// IsEffector reports whether err is a failed remote mutation, retryable from
// the current step.
func IsEffector(err error) bool {
	return errors.Is(err, ErrAvailabilityFailed) || errors.Is(err, ErrCancelFailed)
}

// IsVersionConflict reports an optimistic-locking clash on save.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrOrderVersionConflict) || errors.Is(err, ErrShopVersionConflict)
}
