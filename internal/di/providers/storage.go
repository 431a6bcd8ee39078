package providers

import (
	"github.com/samber/do/v2"

	"github.com/1899nils/Spherix-sub000/internal/config"
	"github.com/1899nils/Spherix-sub000/internal/covers"
	"github.com/1899nils/Spherix-sub000/internal/jobs"
	"github.com/1899nils/Spherix-sub000/internal/logger"
	"github.com/1899nils/Spherix-sub000/internal/search"
	"github.com/1899nils/Spherix-sub000/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the relational mirror.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := store.Open(cfg.DatabasePath(), log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("database initialized", "path", cfg.DatabasePath())
	return &StoreHandle{Store: db}, nil
}

// JobLogHandle wraps the job journal with shutdown capability.
type JobLogHandle struct {
	*jobs.Log
}

// Shutdown implements do.Shutdownable.
func (h *JobLogHandle) Shutdown() error {
	return h.Close()
}

// ProvideJobLog provides the persisted job journal.
func ProvideJobLog(i do.Injector) (*JobLogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	jlog, err := jobs.OpenLog(cfg.JobsPath(), log)
	if err != nil {
		return nil, err
	}
	return &JobLogHandle{Log: jlog}, nil
}

// ProvideCoverStorage provides the cover art directory.
func ProvideCoverStorage(i do.Injector) (*covers.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return covers.NewStorage(cfg.CoversPath())
}

// ProvideCoverDownloader provides the cover downloader.
func ProvideCoverDownloader(i do.Injector) (*covers.Downloader, error) {
	storage := do.MustInvoke[*covers.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)
	return covers.NewDownloader(storage, log), nil
}

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the full-text search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewIndex(search.Options{
		DataPath: cfg.Data.BasePath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &SearchIndexHandle{Index: index}, nil
}
