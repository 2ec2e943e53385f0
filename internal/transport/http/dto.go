package http

import (
	"time"

	"github.com/nattawatt/canteen-cancellation/internal/domain"
	"github.com/nattawatt/canteen-cancellation/internal/workflow"
)

type openSessionRequest struct {
	OperatorID string `json:"operator_id" validate:"required"`
}

// eventRequest carries one workflow event. Type decides which of the
// optional fields matter.
type eventRequest struct {
	Type string `json:"type" validate:"required,oneof=select_reason set_custom_reason toggle_item set_reopen_time set_closure advance back confirm"`

	Reason     string `json:"reason,omitempty"`
	Text       string `json:"text,omitempty"`
	ItemID     string `json:"item_id,omitempty"`
	ReopenTime string `json:"reopen_time,omitempty" validate:"omitempty,hhmm"`
	Choice     string `json:"choice,omitempty" validate:"omitempty,oneof=today multiple_days"`
	// Until is the closure end date, "YYYY-MM-DD".
	Until string `json:"until,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type reasonView struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type lineItemView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceMinor int64  `json:"price_minor"`
	Qty        int32  `json:"qty"`
	Note       string `json:"note,omitempty"`
}

type subOrderView struct {
	ShopID        string         `json:"shop_id"`
	ShopName      string         `json:"shop_name"`
	Status        string         `json:"status"`
	SubtotalMinor int64          `json:"subtotal_minor"`
	CancelReason  string         `json:"cancel_reason,omitempty"`
	Items         []lineItemView `json:"items"`
}

type draftView struct {
	Reason       string   `json:"reason,omitempty"`
	CustomText   string   `json:"custom_text,omitempty"`
	ItemIDs      []string `json:"item_ids,omitempty"`
	ReopenTime   string   `json:"reopen_time,omitempty"`
	Choice       string   `json:"choice,omitempty"`
	ClosureUntil string   `json:"closure_until,omitempty"`
}

// sessionView is the full snapshot the console renders each step from.
type sessionView struct {
	SessionID     string       `json:"session_id"`
	EntryPoint    string       `json:"entry_point,omitempty"`
	State         string       `json:"state"`
	CanAdvance    bool         `json:"can_advance"`
	Error         string       `json:"error,omitempty"`
	Tip           string       `json:"tip,omitempty"`
	Reasons       []reasonView `json:"reasons,omitempty"`
	Draft         draftView    `json:"draft"`
	OrderID       string       `json:"order_id"`
	CustomerName  string       `json:"customer_name,omitempty"`
	CustomerPhone string       `json:"customer_phone,omitempty"`
	SubOrder      subOrderView `json:"sub_order"`
	QuotaCount    int          `json:"cancellation_count"`
}

func toSessionView(ctrl *workflow.Controller) sessionView {
	order := ctrl.Order()
	sub := ctrl.SubOrder()
	draft := ctrl.Draft()

	view := sessionView{
		SessionID:     ctrl.ID(),
		EntryPoint:    string(ctrl.Entry()),
		State:         string(ctrl.State()),
		CanAdvance:    ctrl.CanAdvance(),
		Tip:           ctrl.Tip(),
		Draft:         toDraftView(draft),
		OrderID:       order.ID,
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		SubOrder:      toSubOrderView(sub),
		QuotaCount:    ctrl.QuotaCount(),
	}
	if err := ctrl.Err(); err != nil {
		view.Error = err.Error()
	}
	if entry := ctrl.Entry(); entry != "" {
		for _, r := range workflow.ReasonsFor(entry) {
			view.Reasons = append(view.Reasons, reasonView{ID: string(r.ID), Label: r.Label})
		}
	}
	return view
}

func toDraftView(draft workflow.Draft) draftView {
	view := draftView{
		Reason:     string(draft.SelectedReasonID),
		CustomText: draft.CustomReasonText,
		ItemIDs:    draft.SelectedItems(),
		ReopenTime: draft.ReopenTime,
		Choice:     string(draft.ClosureChoice),
	}
	if !draft.ClosureUntilDate.IsZero() {
		view.ClosureUntil = draft.ClosureUntilDate.Format(time.DateOnly)
	}
	return view
}

func toSubOrderView(sub domain.ShopSubOrder) subOrderView {
	view := subOrderView{
		ShopID:        sub.ShopID,
		ShopName:      sub.ShopName,
		Status:        string(sub.Status),
		SubtotalMinor: sub.SubtotalMinor,
		CancelReason:  sub.CancelReason,
		Items:         make([]lineItemView, 0, len(sub.Items)),
	}
	for _, item := range sub.Items {
		view.Items = append(view.Items, lineItemView{
			ID:         item.ID,
			Name:       item.Name,
			PriceMinor: item.PriceMinor,
			Qty:        item.Qty,
			Note:       item.Note,
		})
	}
	return view
}
