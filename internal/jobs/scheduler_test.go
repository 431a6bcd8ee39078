package jobs

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1899nils/Spherix-sub000/internal/domain"
	"github.com/1899nils/Spherix-sub000/internal/errors"
	"github.com/1899nils/Spherix-sub000/internal/logger"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	log := logger.New(logger.Config{Level: slog.LevelError, Writer: os.Stderr})
	jlog, err := OpenLog(t.TempDir(), log)
	require.NoError(t, err)
	t.Cleanup(func() { jlog.Close() })
	return jlog
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: slog.LevelError, Writer: os.Stderr})
}

// stubRunner blocks each scan until released, so tests can observe the
// queued/running window deterministically.
type stubRunner struct {
	started chan string
	release chan struct{}
	err     error
}

func newStubRunner() *stubRunner {
	return &stubRunner{
		started: make(chan string, 8),
		release: make(chan struct{}),
	}
}

func (r *stubRunner) Scan(ctx context.Context, libraryID string, onProgress func(domain.ScanProgress)) (domain.ScanProgress, error) {
	r.started <- libraryID

	progress := domain.ScanProgress{
		LibraryID: libraryID,
		Phase:     domain.PhaseScanning,
		Counters:  domain.ScanCounters{Files: 3},
	}
	if onProgress != nil {
		onProgress(progress)
	}

	select {
	case <-r.release:
	case <-ctx.Done():
		return progress, ctx.Err()
	}

	progress.Phase = domain.PhaseDone
	return progress, r.err
}

func waitForStatus(t *testing.T, s *Scheduler, jobID string, want Status) *Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := s.Job(context.Background(), jobID)
		require.NoError(t, err)
		if job.Status == want {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %s", jobID, want)
	return nil
}

func TestLogRoundTrip(t *testing.T) {
	jlog := newTestLog(t)
	ctx := context.Background()

	job := &Job{
		ID:        "job_1",
		LibraryID: "lib_1",
		Status:    StatusQueued,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, jlog.Put(ctx, job))

	got, err := jlog.Get(ctx, "job_1")
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, got.Status)
	assert.Equal(t, "lib_1", got.LibraryID)

	_, err = jlog.Get(ctx, "job_missing")
	assert.True(t, stderrors.Is(err, errors.ErrNotFound))
}

func TestLogListByLibrary(t *testing.T) {
	jlog := newTestLog(t)
	ctx := context.Background()

	for _, j := range []*Job{
		{ID: "job_a", LibraryID: "lib_1", Status: StatusDone},
		{ID: "job_b", LibraryID: "lib_1", Status: StatusFailed},
		{ID: "job_c", LibraryID: "lib_2", Status: StatusDone},
	} {
		require.NoError(t, jlog.Put(ctx, j))
	}

	jobs, err := jlog.ListByLibrary(ctx, "lib_1")
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	jobs, err = jlog.ListByLibrary(ctx, "lib_3")
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestSchedulerDeduplicatesPerLibrary(t *testing.T) {
	runner := newStubRunner()
	s := NewScheduler(runner, newTestLog(t), testLogger())
	s.Start(context.Background())
	defer s.Stop()

	ctx := context.Background()

	first, err := s.Enqueue(ctx, "lib_1")
	require.NoError(t, err)

	<-runner.started

	// While lib_1 is running, a second request returns the same job.
	again, err := s.Enqueue(ctx, "lib_1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	// A different library gets its own job.
	other, err := s.Enqueue(ctx, "lib_2")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)

	close(runner.release)
	<-runner.started // lib_2 starts once lib_1 finished

	waitForStatus(t, s, first.ID, StatusDone)
	waitForStatus(t, s, other.ID, StatusDone)

	// The slot frees right after the final status write, so poll briefly.
	assert.Eventually(t, func() bool {
		fresh, err := s.Enqueue(ctx, "lib_1")
		return err == nil && fresh.ID != first.ID
	}, 5*time.Second, 10*time.Millisecond)
}

func TestSchedulerRecordsProgressAndOutcome(t *testing.T) {
	runner := newStubRunner()
	s := NewScheduler(runner, newTestLog(t), testLogger())
	s.Start(context.Background())
	defer s.Stop()

	ctx := context.Background()
	job, err := s.Enqueue(ctx, "lib_1")
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, job.Status)

	<-runner.started
	waitForStatus(t, s, job.ID, StatusRunning)

	close(runner.release)
	done := waitForStatus(t, s, job.ID, StatusDone)

	assert.Equal(t, domain.PhaseDone, done.Progress.Phase)
	assert.Equal(t, 3, done.Progress.Counters.Files)
	assert.False(t, done.StartedAt.IsZero())
	assert.False(t, done.FinishedAt.IsZero())
	assert.Empty(t, done.Error)
}

func TestSchedulerRecordsFailure(t *testing.T) {
	runner := newStubRunner()
	runner.err = stderrors.New("walk failed")
	s := NewScheduler(runner, newTestLog(t), testLogger())
	s.Start(context.Background())
	defer s.Stop()

	job, err := s.Enqueue(context.Background(), "lib_1")
	require.NoError(t, err)

	<-runner.started
	close(runner.release)

	failed := waitForStatus(t, s, job.ID, StatusFailed)
	assert.Equal(t, "walk failed", failed.Error)

	// A failed job releases the slot; no retry happens on its own.
	assert.Eventually(t, func() bool {
		fresh, err := s.Enqueue(context.Background(), "lib_1")
		return err == nil && fresh.ID != job.ID
	}, 5*time.Second, 10*time.Millisecond)
}

func TestSchedulerRejectsWhenQueueFull(t *testing.T) {
	runner := newStubRunner()
	s := NewScheduler(runner, newTestLog(t), testLogger())
	// No Start: nothing drains the queue, so it fills up.

	ctx := context.Background()
	for i := 0; i < queueDepth; i++ {
		_, err := s.Enqueue(ctx, fmt.Sprintf("lib_%d", i))
		require.NoError(t, err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.Enqueue(ctx, "lib_overflow")
		done <- err
	}()

	// The overflow request must fail fast, not block on the queue.
	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a full queue")
	}

	// The rejection is journaled and the slot released, so the library
	// can be requested again once the queue drains.
	jobs, err := s.jlog.ListByLibrary(ctx, "lib_overflow")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, StatusFailed, jobs[0].Status)
	assert.Equal(t, "scan queue full", jobs[0].Error)

	s.mu.Lock()
	_, held := s.active["lib_overflow"]
	s.mu.Unlock()
	assert.False(t, held)
}
