package domain

import "time"

// SubOrderStatus describes the lifecycle of a shop-scoped sub-order.
type SubOrderStatus string

const (
	// SubOrderStatusPending: placed but not yet accepted into preparation.
	SubOrderStatusPending SubOrderStatus = "pending"
	// SubOrderStatusPreparing: the shop accepted the sub-order and is cooking.
	SubOrderStatusPreparing SubOrderStatus = "preparing"
	// SubOrderStatusOutForDelivery: handed to a courier.
	SubOrderStatusOutForDelivery SubOrderStatus = "out_for_delivery"
	// SubOrderStatusDelivered: received by the customer.
	SubOrderStatusDelivered SubOrderStatus = "delivered"
	// SubOrderStatusCancelled: cancelled before delivery; CancelReason is set.
	SubOrderStatusCancelled SubOrderStatus = "cancelled"
)

// Cancellable reports whether the operator cancellation flow may act on a
// sub-order in this status. Anything past preparing is out of reach.
func (s SubOrderStatus) Cancellable() bool {
	return s == SubOrderStatusPending || s == SubOrderStatusPreparing
}

// OptionChoice is one selected option on a line item (e.g. "extra spicy").
type OptionChoice struct {
	GroupName  string
	ChoiceName string
	PriceMinor int64
}

// LineItem is a single menu item within a sub-order.
type LineItem struct {
	ID         string
	MenuItemID string
	Name       string
	PriceMinor int64
	Qty        int32
	Options    []OptionChoice
	Note       string
}

// ShopSubOrder is the portion of an order belonging to one shop. It is the
// unit the cancellation flow operates on.
type ShopSubOrder struct {
	ShopID        string
	ShopName      string
	Status        SubOrderStatus
	SubtotalMinor int64
	Items         []LineItem
	CancelReason  string
	UpdatedAt     time.Time
}

// Order aggregates sub-orders across shops plus the customer contact the
// operator needs when calling about a cancellation.
type Order struct {
	ID            string
	CustomerID    string
	CustomerName  string
	CustomerPhone string
	SubOrders     []ShopSubOrder
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SubOrder returns the sub-order for the given shop, or ErrSubOrderNotFound.
func (o *Order) SubOrder(shopID string) (*ShopSubOrder, error) {
	for i := range o.SubOrders {
		if o.SubOrders[i].ShopID == shopID {
			return &o.SubOrders[i], nil
		}
	}
	return nil, ErrSubOrderNotFound
}

// ValidateInvariants checks basic aggregate invariants and returns findings.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.SubOrders) == 0 {
		errs = append(errs, ErrSubOrdersRequired)
	}

	for _, sub := range o.SubOrders {
		if sub.ShopID == "" {
			errs = append(errs, ErrShopIDRequired)
		}
		if len(sub.Items) == 0 {
			errs = append(errs, ErrItemsRequired)
		}

		// Subtotal must equal the sum of item prices including options.
		var calc int64
		for _, item := range sub.Items {
			if item.Qty <= 0 {
				errs = append(errs, ErrItemQtyInvalid)
			}
			if item.PriceMinor < 0 {
				errs = append(errs, ErrItemPriceInvalid)
			}
			unit := item.PriceMinor
			for _, opt := range item.Options {
				unit += opt.PriceMinor
			}
			calc += int64(item.Qty) * unit
		}
		if calc != sub.SubtotalMinor {
			errs = append(errs, ErrSubtotalMismatch)
		}
	}

	return errs
}
