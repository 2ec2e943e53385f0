package workflow

import (
	"testing"

	"github.com/nattawatt/canteen-cancellation/internal/domain"
)

func TestEntryPointFor(t *testing.T) {
	if entry, ok := EntryPointFor(domain.SubOrderStatusPending); !ok || entry != EntryPending {
		t.Fatalf("pending: got %s/%v", entry, ok)
	}
	if entry, ok := EntryPointFor(domain.SubOrderStatusPreparing); !ok || entry != EntryPreparing {
		t.Fatalf("preparing: got %s/%v", entry, ok)
	}
	for _, status := range []domain.SubOrderStatus{
		domain.SubOrderStatusOutForDelivery,
		domain.SubOrderStatusDelivered,
		domain.SubOrderStatusCancelled,
	} {
		if _, ok := EntryPointFor(status); ok {
			t.Fatalf("status %s must not open the flow", status)
		}
	}
}

func TestReasonCatalogs(t *testing.T) {
	pending := ReasonsFor(EntryPending)
	preparing := ReasonsFor(EntryPreparing)

	if len(pending) != 4 || len(preparing) != 5 {
		t.Fatalf("catalog sizes: pending=%d preparing=%d", len(pending), len(preparing))
	}
	if pending[len(pending)-1].ID != ReasonCustom || preparing[len(preparing)-1].ID != ReasonCustom {
		t.Fatal("custom must be the trailing option in both catalogs")
	}
	for _, r := range pending {
		if r.ID == ReasonShopAboutToClose {
			t.Fatal("about_to_close must not be offered at the pending entry")
		}
	}
}

func TestCommitText(t *testing.T) {
	cases := []struct {
		entry  EntryPoint
		reason ReasonID
		custom string
		want   string
	}{
		{EntryPending, ReasonOutOfStock, "", "Out of stock"},
		{EntryPreparing, ReasonOutOfStock, "", "Out of stock"},
		{EntryPending, ReasonShopBusy, "", "Restaurant is busy (closed for 1 hr.)"},
		{EntryPreparing, ReasonShopBusy, "", "Restaurant is busy/not ready to send"},
		{EntryPreparing, ReasonShopAboutToClose, "", "Restaurant is about to close"},
		{EntryPending, ReasonShopClosed, "", "Restaurant is closed"},
		{EntryPreparing, ReasonCustom, "Order slow", "Order slow"},
	}

	for _, tc := range cases {
		if got := CommitText(tc.entry, tc.reason, tc.custom); got != tc.want {
			t.Fatalf("CommitText(%s, %s): got %q, want %q", tc.entry, tc.reason, got, tc.want)
		}
	}
}

func TestTipForEveryReason(t *testing.T) {
	for _, entry := range []EntryPoint{EntryPending, EntryPreparing} {
		for _, r := range ReasonsFor(entry) {
			if TipFor(r.ID) == "" {
				t.Fatalf("reason %s has no conversation tip", r.ID)
			}
		}
	}
}
