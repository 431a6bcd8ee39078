// Package service is the business layer gluing libraries, scans, and the
// job scheduler together for the command-line front end.
package service

import (
	"context"
	"os"
	"time"

	"github.com/1899nils/Spherix-sub000/internal/domain"
	"github.com/1899nils/Spherix-sub000/internal/errors"
	"github.com/1899nils/Spherix-sub000/internal/id"
	"github.com/1899nils/Spherix-sub000/internal/jobs"
	"github.com/1899nils/Spherix-sub000/internal/logger"
	"github.com/1899nils/Spherix-sub000/internal/store"
)

// LibraryService orchestrates library operations.
type LibraryService struct {
	store     *store.Store
	scheduler *jobs.Scheduler
	log       *logger.Logger
}

// NewLibraryService creates a new library service.
func NewLibraryService(st *store.Store, scheduler *jobs.Scheduler, log *logger.Logger) *LibraryService {
	return &LibraryService{
		store:     st,
		scheduler: scheduler,
		log:       log,
	}
}

// CreateLibrary registers a library rooted at rootPath. The path must
// exist and be a directory.
func (s *LibraryService) CreateLibrary(ctx context.Context, name, rootPath string) (*domain.Library, error) {
	if name == "" {
		return nil, errors.Validation("library name is required")
	}
	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, errors.Validation("library root does not exist: " + rootPath)
	}
	if !info.IsDir() {
		return nil, errors.Validation("library root is not a directory: " + rootPath)
	}

	now := time.Now().UTC()
	lib := &domain.Library{
		ID:        id.MustGenerate(id.PrefixLibrary),
		Name:      name,
		RootPath:  rootPath,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateLibrary(ctx, lib); err != nil {
		return nil, err
	}

	s.log.Info("library created", "library_id", lib.ID, "name", name, "root", rootPath)
	return lib, nil
}

// GetLibrary returns a library by id.
func (s *LibraryService) GetLibrary(ctx context.Context, libraryID string) (*domain.Library, error) {
	return s.store.GetLibrary(ctx, libraryID)
}

// ListLibraries returns all registered libraries.
func (s *LibraryService) ListLibraries(ctx context.Context) ([]*domain.Library, error) {
	return s.store.ListLibraries(ctx)
}

// DeleteLibrary removes a library registration. Track rows are flagged
// missing instead of deleted, matching the engine's non-destructive rule.
func (s *LibraryService) DeleteLibrary(ctx context.Context, libraryID string) error {
	if err := s.store.DeleteLibrary(ctx, libraryID); err != nil {
		return err
	}
	s.log.Info("library deleted", "library_id", libraryID)
	return nil
}

// RequestScan queues a scan for the library. If one is already queued or
// running, the existing job is returned.
func (s *LibraryService) RequestScan(ctx context.Context, libraryID string) (*jobs.Job, error) {
	if _, err := s.store.GetLibrary(ctx, libraryID); err != nil {
		return nil, err
	}
	return s.scheduler.Enqueue(ctx, libraryID)
}

// ScanStatus returns the persisted state of a scan job.
func (s *LibraryService) ScanStatus(ctx context.Context, jobID string) (*jobs.Job, error) {
	return s.scheduler.Job(ctx, jobID)
}
