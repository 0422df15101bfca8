package domain

import "time"

// DefaultKeywordValidDuration is how long a trigger keeps an image eligible for capture
const DefaultKeywordValidDuration = 120 * time.Second

// TriggerRecord is the most recent trigger phrase seen from a user
type TriggerRecord struct {
	UserID      string
	TriggeredAt time.Time
}

// IsValid reports whether now is still inside the validity window of the record.
// The window is closed: a record exactly window old is still valid.
func (r TriggerRecord) IsValid(now time.Time, window time.Duration) bool {
	return now.Sub(r.TriggeredAt) <= window
}
