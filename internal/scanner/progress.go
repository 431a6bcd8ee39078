package scanner

import (
	"sync"
	"time"

	"github.com/1899nils/Spherix-sub000/internal/domain"
)

// Tracker accumulates scan progress and pushes snapshots to a sink.
// The sink is invoked synchronously under the tracker's lock, so it must
// stay cheap; persisting a snapshot is fine, blocking I/O chains are not.
type Tracker struct {
	mu       sync.Mutex
	progress domain.ScanProgress
	sink     func(domain.ScanProgress)
}

// NewTracker starts a tracker in the discovering phase.
func NewTracker(libraryID string, sink func(domain.ScanProgress)) *Tracker {
	return &Tracker{
		progress: domain.ScanProgress{
			LibraryID: libraryID,
			Phase:     domain.PhaseDiscovering,
			StartedAt: time.Now().UTC(),
		},
		sink: sink,
	}
}

// SetPhase advances to the next phase and resets per-phase position.
func (t *Tracker) SetPhase(phase domain.ScanPhase) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.progress.Phase = phase
	t.progress.Current = 0
	t.progress.Total = 0
	t.progress.CurrentFile = ""
	t.notify()
}

// SetTotal sets the item count for the current phase.
func (t *Tracker) SetTotal(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.progress.Total = total
	t.notify()
}

// File records one processed file.
func (t *Tracker) File(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.progress.Current++
	t.progress.CurrentFile = path
	t.progress.Counters.Files++
	t.notify()
}

// Step records one processed item in a non-file phase.
func (t *Tracker) Step() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.progress.Current++
	t.notify()
}

// Add mutates the counters in place.
func (t *Tracker) Add(fn func(*domain.ScanCounters)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fn(&t.progress.Counters)
	t.notify()
}

// Finish marks the run done and stamps the finish time.
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.progress.Phase = domain.PhaseDone
	t.progress.CurrentFile = ""
	t.progress.FinishedAt = time.Now().UTC()
	t.notify()
}

// Snapshot returns a copy of the current progress.
func (t *Tracker) Snapshot() domain.ScanProgress {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.progress
}

func (t *Tracker) notify() {
	if t.sink != nil {
		t.sink(t.progress)
	}
}
