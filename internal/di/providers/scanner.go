package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/1899nils/Spherix-sub000/internal/jobs"
	"github.com/1899nils/Spherix-sub000/internal/linker"
	"github.com/1899nils/Spherix-sub000/internal/logger"
	"github.com/1899nils/Spherix-sub000/internal/metadata/extract"
	"github.com/1899nils/Spherix-sub000/internal/scanner"
	"github.com/1899nils/Spherix-sub000/internal/service"
)

// ProvideScanner provides the scan orchestrator.
func ProvideScanner(i do.Injector) (*scanner.Scanner, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	extractor := do.MustInvoke[*extract.Extractor](i)
	albumLinker := do.MustInvoke[*linker.Linker](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return scanner.New(storeHandle.Store, extractor, albumLinker, searchHandle.Index, log), nil
}

// SchedulerHandle wraps the scheduler with its worker lifecycle.
type SchedulerHandle struct {
	*jobs.Scheduler
}

// Shutdown implements do.Shutdownable.
func (h *SchedulerHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideScheduler provides the scan job scheduler with its worker running.
func ProvideScheduler(i do.Injector) (*SchedulerHandle, error) {
	runner := do.MustInvoke[*scanner.Scanner](i)
	jlogHandle := do.MustInvoke[*JobLogHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	sched := jobs.NewScheduler(runner, jlogHandle.Log, log)
	sched.Start(context.Background())

	return &SchedulerHandle{Scheduler: sched}, nil
}

// ProvideLibraryService provides the library service.
func ProvideLibraryService(i do.Injector) (*service.LibraryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	schedHandle := do.MustInvoke[*SchedulerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLibraryService(storeHandle.Store, schedHandle.Scheduler, log), nil
}
