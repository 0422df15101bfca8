package data

import (
	"sync"
	"time"

	"github.com/linecardbot/line-card-bot/internal/biz/domain"
	"github.com/linecardbot/line-card-bot/internal/biz/repo"
)

// triggerRepo is the in-memory trigger registry
type triggerRepo struct {
	mu      sync.RWMutex
	records map[string]domain.TriggerRecord // userID -> latest trigger
}

// NewTriggerRepo creates an empty trigger registry
func NewTriggerRepo() repo.TriggerRepo {
	return &triggerRepo{records: make(map[string]domain.TriggerRecord)}
}

// Record overwrites the trigger for userID
func (r *triggerRepo) Record(userID string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[userID] = domain.TriggerRecord{UserID: userID, TriggeredAt: at}
}

// IsValid checks the trigger for userID against the window
func (r *triggerRepo) IsValid(userID string, now time.Time, window time.Duration) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[userID]
	if !ok {
		return false
	}
	return rec.IsValid(now, window)
}

// Sweep drops expired triggers
func (r *triggerRepo) Sweep(now time.Time, window time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, rec := range r.records {
		if !rec.IsValid(now, window) {
			delete(r.records, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored triggers
func (r *triggerRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
