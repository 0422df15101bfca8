package repo

import "time"

// TriggerRepo is the per-user trigger registry.
// Implementations must be safe for concurrent use; for a given user the last Record wins.
type TriggerRepo interface {
	// Record overwrites the trigger time for userID
	Record(userID string, at time.Time)

	// IsValid reports whether userID has a trigger no older than window at now
	IsValid(userID string, now time.Time, window time.Duration) bool

	// Sweep removes entries that are no longer valid and returns how many were removed
	Sweep(now time.Time, window time.Duration) int

	// Len returns the number of stored entries, valid or not
	Len() int
}
