package cache

import "time"

// Entry is one cached call result.
type Entry struct {
	Key       Key
	Args      Args
	Value     any
	CreatedAt time.Time

	// ExpiresAt is zero when the entry never expires.
	ExpiresAt time.Time
}

// IsAlive reports whether the entry is still valid at now.
func (e *Entry) IsAlive(now time.Time) bool {
	return e.ExpiresAt.IsZero() || now.Before(e.ExpiresAt)
}
