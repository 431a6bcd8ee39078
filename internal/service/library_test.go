package service

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1899nils/Spherix-sub000/internal/domain"
	"github.com/1899nils/Spherix-sub000/internal/errors"
	"github.com/1899nils/Spherix-sub000/internal/jobs"
	"github.com/1899nils/Spherix-sub000/internal/logger"
	"github.com/1899nils/Spherix-sub000/internal/store"
)

type noopRunner struct{}

func (noopRunner) Scan(ctx context.Context, libraryID string, onProgress func(domain.ScanProgress)) (domain.ScanProgress, error) {
	return domain.ScanProgress{LibraryID: libraryID, Phase: domain.PhaseDone}, nil
}

func newTestService(t *testing.T) *LibraryService {
	t.Helper()

	log := logger.New(logger.Config{Level: slog.LevelError, Writer: os.Stderr})

	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := store.Open(dbPath, log.Logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	jlog, err := jobs.OpenLog(t.TempDir(), log)
	require.NoError(t, err)
	t.Cleanup(func() { jlog.Close() })

	scheduler := jobs.NewScheduler(noopRunner{}, jlog, log)
	scheduler.Start(context.Background())
	t.Cleanup(scheduler.Stop)

	return NewLibraryService(st, scheduler, log)
}

func TestCreateLibraryValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	root := t.TempDir()

	_, err := svc.CreateLibrary(ctx, "", root)
	assert.True(t, stderrors.Is(err, errors.ErrValidation))

	_, err = svc.CreateLibrary(ctx, "Music", filepath.Join(root, "nope"))
	assert.True(t, stderrors.Is(err, errors.ErrValidation))

	file := filepath.Join(root, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = svc.CreateLibrary(ctx, "Music", file)
	assert.True(t, stderrors.Is(err, errors.ErrValidation))
}

func TestLibraryLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	root := t.TempDir()

	lib, err := svc.CreateLibrary(ctx, "Music", root)
	require.NoError(t, err)
	assert.NotEmpty(t, lib.ID)

	got, err := svc.GetLibrary(ctx, lib.ID)
	require.NoError(t, err)
	assert.Equal(t, root, got.RootPath)

	libs, err := svc.ListLibraries(ctx)
	require.NoError(t, err)
	assert.Len(t, libs, 1)

	require.NoError(t, svc.DeleteLibrary(ctx, lib.ID))

	_, err = svc.GetLibrary(ctx, lib.ID)
	assert.True(t, stderrors.Is(err, errors.ErrNotFound))
}

func TestRequestScan(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.RequestScan(ctx, "lib_missing")
	assert.True(t, stderrors.Is(err, errors.ErrNotFound))

	lib, err := svc.CreateLibrary(ctx, "Music", t.TempDir())
	require.NoError(t, err)

	job, err := svc.RequestScan(ctx, lib.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)

	status, err := svc.ScanStatus(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, status.ID)
}
