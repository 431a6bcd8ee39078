package domain

import "time"

// ScanPhase identifies where a scan run currently is. Phases run strictly
// in order with no re-entry.
type ScanPhase string

// Scan phases, in execution order.
const (
	PhaseDiscovering ScanPhase = "discovering"
	PhaseScanning    ScanPhase = "scanning"
	PhaseCleanup     ScanPhase = "cleanup"
	PhaseMatching    ScanPhase = "matching"
	PhaseDone        ScanPhase = "done"
)

// ScanCounters aggregates per-run outcomes. Callers receive these instead
// of an exception for any per-item failure.
type ScanCounters struct {
	Files            int `json:"files"`
	NewTracks        int `json:"new_tracks"`
	UpdatedTracks    int `json:"updated_tracks"`
	RemovedTracks    int `json:"removed_tracks"`
	RestoredTracks   int `json:"restored_tracks"`
	MatchedAlbums    int `json:"matched_albums"`
	AutoLinkedAlbums int `json:"auto_linked_albums"`
	Errors           int `json:"errors"`
}

// ScanProgress is the ephemeral state of one scan run.
type ScanProgress struct {
	LibraryID   string       `json:"library_id"`
	Phase       ScanPhase    `json:"phase"`
	Current     int          `json:"current"`
	Total       int          `json:"total"`
	CurrentFile string       `json:"current_file,omitempty"`
	Counters    ScanCounters `json:"counters"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at,omitzero"`
}
