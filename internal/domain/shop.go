package domain

import "time"

// ShopSchedule is the trading-schedule slice of the Shop aggregate. The
// cancellation flow is one of several writers; it only ever closes.
type ShopSchedule struct {
	ShopID string
	IsOpen bool
	// ReopenTime is an "HH:MM" time of day after which the shop trades again.
	// Set by a temporary close, empty otherwise.
	ReopenTime string
	// TemporaryClosureUntil is the last calendar day (inclusive) of a
	// multi-day closure. Zero when no closure is in effect.
	TemporaryClosureUntil time.Time
	UpdatedAt             time.Time
}

// ValidReopenTime reports whether s is a zero-padded 24h "HH:MM" time of
// day. Stricter than time.Parse, which tolerates single-digit fields.
func ValidReopenTime(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	for _, c := range []byte{s[0], s[1], s[3], s[4]} {
		if c < '0' || c > '9' {
			return false
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	return h <= 23 && m <= 59
}

// Shop carries the identity fields the operator console shows next to the
// schedule badge.
type Shop struct {
	ID       string
	Name     string
	Campus   string
	Schedule ShopSchedule
	Version  int64
}
