// Package jobs persists scan jobs in Badger and runs them one at a time.
// A library never has more than one queued-or-running job; re-requesting a
// scan while one is pending returns the existing job.
package jobs

import (
	"time"

	"github.com/1899nils/Spherix-sub000/internal/domain"
)

// Status is the lifecycle state of a job.
type Status string

// Job statuses. Jobs move queued -> running -> done/failed with no retries.
const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Active reports whether the job still holds its library's scan slot.
func (s Status) Active() bool {
	return s == StatusQueued || s == StatusRunning
}

// Job is one persisted scan run for a library.
type Job struct {
	ID         string              `json:"id"`
	LibraryID  string              `json:"library_id"`
	Status     Status              `json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
	StartedAt  time.Time           `json:"started_at,omitzero"`
	FinishedAt time.Time           `json:"finished_at,omitzero"`
	Progress   domain.ScanProgress `json:"progress"`
	Error      string              `json:"error,omitempty"`
}
