package workflow

import (
	"sort"
	"time"
)

// ClosureChoice is the operator's answer to "how long is the shop closed"
// on the shop_closed branch.
type ClosureChoice string

const (
	ClosureUnset        ClosureChoice = ""
	ClosureToday        ClosureChoice = "today"
	ClosureMultipleDays ClosureChoice = "multiple_days"
)

// Draft is the in-memory, not-yet-committed record of operator choices.
// It is discarded whole if the operator backs out before commit.
type Draft struct {
	SelectedReasonID ReasonID
	CustomReasonText string
	// OutOfStockItemIDs is only used by the out_of_stock branch.
	OutOfStockItemIDs map[string]struct{}
	// ReopenTime ("HH:MM") is only used by the shop_busy branch.
	ReopenTime string
	// ClosureChoice/ClosureUntilDate are only used by the shop_closed branch.
	ClosureChoice    ClosureChoice
	ClosureUntilDate time.Time
}

// NewDraft returns an empty draft.
func NewDraft() Draft {
	return Draft{OutOfStockItemIDs: make(map[string]struct{})}
}

// ToggleItem flips an item in or out of the out-of-stock selection.
func (d *Draft) ToggleItem(itemID string) {
	if d.OutOfStockItemIDs == nil {
		d.OutOfStockItemIDs = make(map[string]struct{})
	}
	if _, ok := d.OutOfStockItemIDs[itemID]; ok {
		delete(d.OutOfStockItemIDs, itemID)
		return
	}
	d.OutOfStockItemIDs[itemID] = struct{}{}
}

// SelectedItems returns the flagged item ids in stable order.
func (d *Draft) SelectedItems() []string {
	ids := make([]string, 0, len(d.OutOfStockItemIDs))
	for id := range d.OutOfStockItemIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// selectReason records a new reason and clears every field that belongs to
// a branch the draft is no longer headed for.
func (d *Draft) selectReason(id ReasonID) {
	if d.SelectedReasonID == id {
		return
	}
	d.SelectedReasonID = id
	if id != ReasonCustom {
		d.CustomReasonText = ""
	}
	if id != ReasonOutOfStock {
		d.OutOfStockItemIDs = make(map[string]struct{})
	}
	if id != ReasonShopBusy {
		d.ReopenTime = ""
	}
	if id != ReasonShopClosed {
		d.ClosureChoice = ClosureUnset
		d.ClosureUntilDate = time.Time{}
	}
}

// clone returns an independent copy safe to hand out of the controller.
func (d Draft) clone() Draft {
	out := d
	out.OutOfStockItemIDs = make(map[string]struct{}, len(d.OutOfStockItemIDs))
	for id := range d.OutOfStockItemIDs {
		out.OutOfStockItemIDs[id] = struct{}{}
	}
	return out
}
