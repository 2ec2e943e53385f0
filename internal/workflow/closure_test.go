package workflow

import (
	"testing"
	"time"
)

func TestClosureDays(t *testing.T) {
	today := time.Date(2025, 6, 2, 15, 45, 0, 0, time.UTC)

	cases := []struct {
		name  string
		until time.Time
		want  int
	}{
		{"until today", today, 1},
		{"until midnight today", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), 1},
		{"until tomorrow", today.AddDate(0, 0, 1), 2},
		{"until three days ahead", today.AddDate(0, 0, 3), 4},
		{"until yesterday clamps to one", today.AddDate(0, 0, -1), 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClosureDays(today, tc.until); got != tc.want {
				t.Fatalf("ClosureDays(%s): got %d, want %d", tc.until.Format(time.DateOnly), got, tc.want)
			}
		})
	}
}

func TestToggleItemRoundTrip(t *testing.T) {
	draft := NewDraft()
	draft.ToggleItem("b")
	draft.ToggleItem("a")
	draft.ToggleItem("b")
	draft.ToggleItem("c")

	got := draft.SelectedItems()
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("SelectedItems: got %v, want [a c]", got)
	}
}
