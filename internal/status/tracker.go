package status

import (
	"sync"

	"github.com/matda59/video-to-mp3-converter/internal/models"
)

// Tracker holds the latest live progress snapshot per job id. Workers replace
// whole records, readers get copies; a single lock around each operation is
// all the coordination needed. Entries are not persisted, so a restart
// forgets every in-flight job (the history sweep marks those rows as error).
type Tracker struct {
	mu   sync.RWMutex
	jobs map[int64]models.LiveStatus
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{jobs: make(map[int64]models.LiveStatus)}
}

// Set replaces the snapshot for id.
func (t *Tracker) Set(id int64, s models.LiveStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[id] = s
}

// Get returns the snapshot for id, or a record with status unknown when
// nobody is tracking that id.
func (t *Tracker) Get(id int64) models.LiveStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if s, ok := t.jobs[id]; ok {
		return s
	}
	return models.LiveStatus{Status: models.StatusUnknown, Speed: models.SpeedUnknown}
}

// Remove drops the entry for id, if any.
func (t *Tracker) Remove(id int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.jobs, id)
}
