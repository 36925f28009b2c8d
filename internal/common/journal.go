package common

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/planche-electronique/cepo/internal/constants"
	"github.com/planche-electronique/cepo/internal/metrics"
	"github.com/planche-electronique/cepo/internal/models/entities"
)

// UpdatesJournal keeps the edits applied during the last retention window so
// clients can poll for changes made by others. Entries are evicted on read.
type UpdatesJournal struct {
	mu        sync.Mutex
	entries   []entities.Update
	retention time.Duration
	now       func() time.Time
	metrics   *metrics.MetricsRegistry
}

func NewUpdatesJournal(retention time.Duration, now func() time.Time, m *metrics.MetricsRegistry) *UpdatesJournal {
	if retention <= 0 {
		retention = constants.UpdatesRetention
	}
	if now == nil {
		now = time.Now
	}
	return &UpdatesJournal{retention: retention, now: now, metrics: m}
}

// Append records an applied edit, stamping it with an id and the current time
// when they are missing.
func (j *UpdatesJournal) Append(u entities.Update) entities.Update {
	j.mu.Lock()
	defer j.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Timestamp.IsZero() {
		u.Timestamp = j.now()
	}
	j.entries = append(j.entries, u)
	j.metrics.SetJournalSize(len(j.entries))
	return u
}

// Snapshot drops entries older than the retention window and returns a copy of the rest.
func (j *UpdatesJournal) Snapshot() []entities.Update {
	j.mu.Lock()
	defer j.mu.Unlock()

	cutoff := j.now().Add(-j.retention)
	j.entries = slices.DeleteFunc(j.entries, func(u entities.Update) bool {
		return u.Timestamp.Before(cutoff)
	})
	j.metrics.SetJournalSize(len(j.entries))

	out := make([]entities.Update, len(j.entries))
	copy(out, j.entries)
	return out
}

func (j *UpdatesJournal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}
