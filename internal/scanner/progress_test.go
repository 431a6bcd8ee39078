package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/1899nils/Spherix-sub000/internal/domain"
)

func TestTrackerPhases(t *testing.T) {
	var snapshots []domain.ScanProgress
	tr := NewTracker("lib_1", func(p domain.ScanProgress) {
		snapshots = append(snapshots, p)
	})

	p := tr.Snapshot()
	assert.Equal(t, domain.PhaseDiscovering, p.Phase)
	assert.False(t, p.StartedAt.IsZero())

	tr.SetPhase(domain.PhaseScanning)
	tr.SetTotal(2)
	tr.File("/music/a.mp3")
	tr.File("/music/b.mp3")
	tr.Add(func(c *domain.ScanCounters) { c.NewTracks += 2 })

	p = tr.Snapshot()
	assert.Equal(t, 2, p.Current)
	assert.Equal(t, 2, p.Total)
	assert.Equal(t, "/music/b.mp3", p.CurrentFile)
	assert.Equal(t, 2, p.Counters.Files)
	assert.Equal(t, 2, p.Counters.NewTracks)

	tr.SetPhase(domain.PhaseCleanup)
	p = tr.Snapshot()
	assert.Equal(t, 0, p.Current)
	assert.Empty(t, p.CurrentFile)

	tr.Finish()
	p = tr.Snapshot()
	assert.Equal(t, domain.PhaseDone, p.Phase)
	assert.False(t, p.FinishedAt.IsZero())

	// Every mutation reported a snapshot to the sink.
	assert.NotEmpty(t, snapshots)
	assert.Equal(t, domain.PhaseDone, snapshots[len(snapshots)-1].Phase)
}

func TestTrackerNilSink(t *testing.T) {
	tr := NewTracker("lib_1", nil)
	tr.SetPhase(domain.PhaseScanning)
	tr.File("/music/a.mp3")
	tr.Finish()

	p := tr.Snapshot()
	assert.Equal(t, 1, p.Counters.Files)
}
