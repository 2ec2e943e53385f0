package workflow

import (
	"time"

	"github.com/nattawatt/canteen-cancellation/internal/domain"
)

// State is the current step of the cancellation flow.
type State string

const (
	StateSelectReason     State = "select_reason"
	StateCustomReason     State = "custom_reason_entry"
	StateCustomerContact  State = "customer_contact"
	StateOutOfStock       State = "out_of_stock_selection"
	StateShopBusy         State = "shop_busy_action"
	StateShopAboutToClose State = "shop_about_to_close_action"
	StateShopClosed       State = "shop_closed_action"
	StateDirectCancel     State = "direct_cancel"
	// StateSuccess is terminal; the only exit is the console's home screen.
	StateSuccess State = "success"
	// StateReadOnly renders the flow inert when the sub-order can no longer
	// be cancelled. No event is accepted.
	StateReadOnly State = "not_cancellable"
)

// Terminal reports whether no further events are accepted in s.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateReadOnly
}

// branch reports whether s is a reason branch step, i.e. a step commit is
// legal from.
func (s State) branch() bool {
	switch s {
	case StateOutOfStock, StateShopBusy, StateShopAboutToClose, StateShopClosed, StateDirectCancel:
		return true
	default:
		return false
	}
}

// Event is one operator input applied to the flow.
type Event interface {
	eventName() string
}

// SelectReason picks a reason from the catalog (or "custom").
type SelectReason struct{ Reason ReasonID }

// SetCustomReason records free-text for the custom reason. Pending-entry
// collects it inline on the reason step, preparing-entry on its own step.
type SetCustomReason struct{ Text string }

// ToggleItem flips a line item in the out-of-stock selection.
type ToggleItem struct{ ItemID string }

// SetReopenTime records the "HH:MM" reopen time for the busy branch.
type SetReopenTime struct{ Time string }

// SetClosure records how long the shop stays closed on the closed branch.
type SetClosure struct {
	Choice ClosureChoice
	Until  time.Time
}

// Advance moves forward one step.
type Advance struct{}

// Back moves toward the reason step. Always permitted below terminal states.
type Back struct{}

// Confirm commits the branch: availability side effect first, then the
// cancellation itself. Handled by the controller, validated here.
type Confirm struct{}

func (SelectReason) eventName() string    { return "select_reason" }
func (SetCustomReason) eventName() string { return "set_custom_reason" }
func (ToggleItem) eventName() string      { return "toggle_item" }
func (SetReopenTime) eventName() string   { return "set_reopen_time" }
func (SetClosure) eventName() string      { return "set_closure" }
func (Advance) eventName() string         { return "advance" }
func (Back) eventName() string            { return "back" }
func (Confirm) eventName() string         { return "confirm" }

// branchFor maps a finalized reason to its branch step.
func branchFor(reason ReasonID) State {
	switch reason {
	case ReasonOutOfStock:
		return StateOutOfStock
	case ReasonShopBusy:
		return StateShopBusy
	case ReasonShopAboutToClose:
		return StateShopAboutToClose
	case ReasonShopClosed:
		return StateShopClosed
	default:
		// Custom and any reason without a remediation action cancel directly.
		return StateDirectCancel
	}
}

// Next applies one event to (state, draft) and returns the resulting state.
// It performs no I/O: validation failures leave the state unchanged and the
// draft is only mutated by input events. Confirm never reaches this function.
func Next(entry EntryPoint, state State, event Event, draft *Draft, today time.Time) (State, error) {
	if state.Terminal() {
		if state == StateReadOnly {
			return state, domain.ErrSubOrderNotCancellable
		}
		return state, domain.ErrSessionFinished
	}

	switch ev := event.(type) {
	case SelectReason:
		if state != StateSelectReason {
			return state, domain.ErrInvalidTransition
		}
		if !knownReason(entry, ev.Reason) {
			return state, domain.ErrUnknownReason
		}
		draft.selectReason(ev.Reason)
		return state, nil

	case SetCustomReason:
		// Pending-entry edits the text inline on the reason step;
		// preparing-entry on the dedicated step.
		inline := state == StateSelectReason && entry == EntryPending
		if !inline && state != StateCustomReason {
			return state, domain.ErrInvalidTransition
		}
		if draft.SelectedReasonID != ReasonCustom {
			return state, domain.ErrInvalidTransition
		}
		draft.CustomReasonText = ev.Text
		return state, nil

	case ToggleItem:
		if state != StateOutOfStock {
			return state, domain.ErrInvalidTransition
		}
		draft.ToggleItem(ev.ItemID)
		return state, nil

	case SetReopenTime:
		if state != StateShopBusy {
			return state, domain.ErrInvalidTransition
		}
		if !domain.ValidReopenTime(ev.Time) {
			return state, domain.ErrReopenTimeInvalid
		}
		draft.ReopenTime = ev.Time
		return state, nil

	case SetClosure:
		if state != StateShopClosed {
			return state, domain.ErrInvalidTransition
		}
		if ev.Choice != ClosureToday && ev.Choice != ClosureMultipleDays {
			return state, domain.ErrClosureChoiceRequired
		}
		draft.ClosureChoice = ev.Choice
		if ev.Choice == ClosureMultipleDays {
			draft.ClosureUntilDate = ev.Until
		} else {
			draft.ClosureUntilDate = time.Time{}
		}
		return state, nil

	case Advance:
		return advance(entry, state, draft)

	case Back:
		return back(entry, state, draft), nil

	default:
		return state, domain.ErrInvalidTransition
	}
}

func advance(entry EntryPoint, state State, draft *Draft) (State, error) {
	switch state {
	case StateSelectReason:
		if draft.SelectedReasonID == "" {
			return state, domain.ErrReasonRequired
		}
		if draft.SelectedReasonID == ReasonCustom {
			if entry == EntryPreparing {
				return StateCustomReason, nil
			}
			if draft.CustomReasonText == "" {
				return state, domain.ErrCustomReasonRequired
			}
		}
		return StateCustomerContact, nil

	case StateCustomReason:
		if draft.CustomReasonText == "" {
			return state, domain.ErrCustomReasonRequired
		}
		return StateCustomerContact, nil

	case StateCustomerContact:
		// Purely navigational: the reason is final by the time we are here.
		return branchFor(draft.SelectedReasonID), nil

	default:
		// Branch steps advance through Confirm, not Advance.
		return state, domain.ErrInvalidTransition
	}
}

func back(entry EntryPoint, state State, draft *Draft) State {
	switch state {
	case StateCustomReason:
		return StateSelectReason
	case StateCustomerContact:
		if draft.SelectedReasonID == ReasonCustom && entry == EntryPreparing {
			return StateCustomReason
		}
		return StateSelectReason
	case StateOutOfStock, StateShopBusy, StateShopAboutToClose, StateShopClosed, StateDirectCancel:
		return StateCustomerContact
	default:
		return StateSelectReason
	}
}

// ValidateCommit checks that the draft is complete enough to commit from the
// given branch step. No network call happens until this passes.
func ValidateCommit(entry EntryPoint, state State, draft *Draft, today time.Time) error {
	if !state.branch() {
		return domain.ErrInvalidTransition
	}

	switch state {
	case StateOutOfStock:
		if len(draft.OutOfStockItemIDs) == 0 {
			return domain.ErrNoItemsSelected
		}
	case StateShopBusy:
		if draft.ReopenTime == "" {
			return domain.ErrReopenTimeRequired
		}
		if !domain.ValidReopenTime(draft.ReopenTime) {
			return domain.ErrReopenTimeInvalid
		}
	case StateShopClosed:
		switch draft.ClosureChoice {
		case ClosureToday:
		case ClosureMultipleDays:
			if draft.ClosureUntilDate.IsZero() {
				return domain.ErrClosureDateRequired
			}
			if startOfDay(draft.ClosureUntilDate).Before(startOfDay(today)) {
				return domain.ErrClosureDateInPast
			}
		default:
			return domain.ErrClosureChoiceRequired
		}
	case StateDirectCancel:
		if draft.SelectedReasonID == ReasonCustom && draft.CustomReasonText == "" {
			return domain.ErrCustomReasonRequired
		}
	}

	return nil
}

// CanAdvance reports whether the current step would accept Advance (or, on a
// branch step, Confirm) with the draft as it stands. Exposed so the console
// can enable its forward button without poking at workflow internals.
func CanAdvance(entry EntryPoint, state State, draft *Draft, today time.Time) bool {
	switch state {
	case StateSelectReason, StateCustomReason, StateCustomerContact:
		_, err := advance(entry, state, &Draft{
			SelectedReasonID: draft.SelectedReasonID,
			CustomReasonText: draft.CustomReasonText,
		})
		return err == nil
	case StateOutOfStock, StateShopBusy, StateShopAboutToClose, StateShopClosed, StateDirectCancel:
		return ValidateCommit(entry, state, draft, today) == nil
	default:
		return false
	}
}
