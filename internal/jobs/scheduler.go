package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/1899nils/Spherix-sub000/internal/domain"
	"github.com/1899nils/Spherix-sub000/internal/errors"
	"github.com/1899nils/Spherix-sub000/internal/id"
	"github.com/1899nils/Spherix-sub000/internal/logger"
)

// ScanRunner executes one scan for a library, reporting progress as it goes.
type ScanRunner interface {
	Scan(ctx context.Context, libraryID string, onProgress func(domain.ScanProgress)) (domain.ScanProgress, error)
}

// Scheduler serializes scans: a single worker, one scan at a time, and at
// most one queued-or-running job per library. Failed jobs are not retried;
// the next RequestScan starts fresh.
type Scheduler struct {
	runner ScanRunner
	jlog   *Log
	log    *logger.Logger

	mu     sync.Mutex
	active map[string]string // libraryID -> job ID holding the scan slot
	queue  chan string       // job IDs

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// queueDepth bounds how many scan requests can wait. With per-library
// dedup this only needs room for one job per library.
const queueDepth = 64

// NewScheduler creates a scheduler; call Start before enqueuing.
func NewScheduler(runner ScanRunner, jlog *Log, log *logger.Logger) *Scheduler {
	return &Scheduler{
		runner: runner,
		jlog:   jlog,
		log:    log,
		active: make(map[string]string),
		queue:  make(chan string, queueDepth),
	}
}

// Start launches the worker goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run(ctx)
}

// Stop cancels the running scan (if any) and waits for the worker to exit.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// Enqueue requests a scan for a library. If a job for the library is
// already queued or running, that job is returned instead of a new one.
func (s *Scheduler) Enqueue(ctx context.Context, libraryID string) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if jobID, ok := s.active[libraryID]; ok {
		return s.jlog.Get(ctx, jobID)
	}

	job := &Job{
		ID:        id.MustGenerate(id.PrefixJob),
		LibraryID: libraryID,
		Status:    StatusQueued,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.jlog.Put(ctx, job); err != nil {
		return nil, err
	}

	// Fail fast on a full queue instead of blocking every caller on s.mu.
	select {
	case s.queue <- job.ID:
	default:
		job.Status = StatusFailed
		job.Error = "scan queue full"
		job.FinishedAt = time.Now().UTC()
		if err := s.jlog.Put(ctx, job); err != nil {
			s.log.Error("failed to persist rejected job", "job_id", job.ID, "error", err)
		}
		return nil, errors.Internal("scan queue full")
	}
	s.active[libraryID] = job.ID

	s.log.Info("scan queued", "job_id", job.ID, "library_id", libraryID)
	return job, nil
}

// Job returns the persisted state of a job.
func (s *Scheduler) Job(ctx context.Context, jobID string) (*Job, error) {
	return s.jlog.Get(ctx, jobID)
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case jobID := <-s.queue:
			s.execute(ctx, jobID)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, jobID string) {
	job, err := s.jlog.Get(ctx, jobID)
	if err != nil {
		s.log.Error("dequeued unknown job", "job_id", jobID, "error", err)
		return
	}

	defer func() {
		s.mu.Lock()
		if s.active[job.LibraryID] == job.ID {
			delete(s.active, job.LibraryID)
		}
		s.mu.Unlock()
	}()

	job.Status = StatusRunning
	job.StartedAt = time.Now().UTC()
	if err := s.jlog.Put(ctx, job); err != nil {
		s.log.Error("failed to persist job start", "job_id", job.ID, "error", err)
	}

	progress, scanErr := s.runner.Scan(ctx, job.LibraryID, func(p domain.ScanProgress) {
		job.Progress = p
		// Progress snapshots are advisory; a lost write is harmless.
		if err := s.jlog.Put(ctx, job); err != nil {
			s.log.Warn("failed to persist job progress", "job_id", job.ID, "error", err)
		}
	})

	job.Progress = progress
	job.FinishedAt = time.Now().UTC()
	if scanErr != nil {
		job.Status = StatusFailed
		job.Error = scanErr.Error()
		s.log.Error("scan failed", "job_id", job.ID, "library_id", job.LibraryID, "error", scanErr)
	} else {
		job.Status = StatusDone
		s.log.Info("scan finished",
			"job_id", job.ID,
			"library_id", job.LibraryID,
			"files", progress.Counters.Files,
			"errors", progress.Counters.Errors,
		)
	}

	if err := s.jlog.Put(ctx, job); err != nil {
		s.log.Error("failed to persist job result", "job_id", job.ID, "error", err)
	}
}
