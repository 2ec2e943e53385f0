package workflow

import "github.com/nattawatt/canteen-cancellation/internal/domain"

// EntryPoint is the sub-order status at which the operator opens the flow.
// It decides the reason catalog, the step count and the commit wording.
type EntryPoint string

const (
	EntryPending   EntryPoint = "pending"
	EntryPreparing EntryPoint = "preparing"
)

// EntryPointFor maps a sub-order status to its entry point. The second
// return is false when the status admits no cancellation at all.
func EntryPointFor(status domain.SubOrderStatus) (EntryPoint, bool) {
	switch status {
	case domain.SubOrderStatusPending:
		return EntryPending, true
	case domain.SubOrderStatusPreparing:
		return EntryPreparing, true
	default:
		return "", false
	}
}

// ReasonID identifies a predefined cancellation reason.
type ReasonID string

const (
	ReasonOutOfStock       ReasonID = "out_of_stock"
	ReasonShopBusy         ReasonID = "shop_busy"
	ReasonShopAboutToClose ReasonID = "shop_about_to_close"
	ReasonShopClosed       ReasonID = "shop_closed"
	// ReasonCustom is the implicit trailing free-text option.
	ReasonCustom ReasonID = "custom"
)

// Reason is one selectable entry of the catalog.
type Reason struct {
	ID    ReasonID
	Label string
}

var pendingReasons = []Reason{
	{ID: ReasonOutOfStock, Label: "Item out of stock"},
	{ID: ReasonShopBusy, Label: "Restaurant is busy"},
	{ID: ReasonShopClosed, Label: "Restaurant is closed"},
	{ID: ReasonCustom, Label: "Other reason"},
}

var preparingReasons = []Reason{
	{ID: ReasonOutOfStock, Label: "Item out of stock"},
	{ID: ReasonShopBusy, Label: "Restaurant is busy"},
	{ID: ReasonShopAboutToClose, Label: "Restaurant is about to close"},
	{ID: ReasonShopClosed, Label: "Restaurant is closed"},
	{ID: ReasonCustom, Label: "Other reason"},
}

// ReasonsFor returns the ordered catalog for an entry point, custom last.
func ReasonsFor(entry EntryPoint) []Reason {
	var src []Reason
	if entry == EntryPreparing {
		src = preparingReasons
	} else {
		src = pendingReasons
	}
	out := make([]Reason, len(src))
	copy(out, src)
	return out
}

// knownReason reports whether id is selectable at the given entry point.
func knownReason(entry EntryPoint, id ReasonID) bool {
	for _, r := range ReasonsFor(entry) {
		if r.ID == id {
			return true
		}
	}
	return false
}

// Conversation tips briefing the operator on what to tell the customer
// before anything destructive happens. Pure display data.
var conversationTips = map[ReasonID]string{
	ReasonOutOfStock:       "Apologize and tell the customer which items ran out, then offer to cancel or adjust the order.",
	ReasonShopBusy:         "Tell the customer the kitchen cannot take the order right now and when you expect to reopen.",
	ReasonShopAboutToClose: "Tell the customer the restaurant is closing for the day and the order cannot be prepared in time.",
	ReasonShopClosed:       "Tell the customer the restaurant is closed and when it will take orders again.",
	ReasonCustom:           "Explain your reason to the customer before cancelling.",
}

// TipFor returns the conversation tip for a reason, empty when none applies.
func TipFor(id ReasonID) string {
	return conversationTips[id]
}

// Commit reason texts recorded on the order. The busy wording differs by
// entry point; everything else is shared.
const (
	commitTextOutOfStock    = "Out of stock"
	commitTextBusyPending   = "Restaurant is busy (closed for 1 hr.)"
	commitTextBusyPreparing = "Restaurant is busy/not ready to send"
	commitTextAboutToClose  = "Restaurant is about to close"
	commitTextClosed        = "Restaurant is closed"
)

// CommitText resolves the reason string written to the sub-order on commit.
func CommitText(entry EntryPoint, id ReasonID, customText string) string {
	switch id {
	case ReasonOutOfStock:
		return commitTextOutOfStock
	case ReasonShopBusy:
		if entry == EntryPreparing {
			return commitTextBusyPreparing
		}
		return commitTextBusyPending
	case ReasonShopAboutToClose:
		return commitTextAboutToClose
	case ReasonShopClosed:
		return commitTextClosed
	default:
		return customText
	}
}
