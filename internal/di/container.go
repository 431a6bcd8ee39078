// Package di provides dependency injection configuration for Spherix.
package di

import (
	"github.com/samber/do/v2"

	"github.com/1899nils/Spherix-sub000/internal/covers"
	"github.com/1899nils/Spherix-sub000/internal/di/providers"
	"github.com/1899nils/Spherix-sub000/internal/linker"
	"github.com/1899nils/Spherix-sub000/internal/metadata/extract"
	"github.com/1899nils/Spherix-sub000/internal/metadata/mbz"
	"github.com/1899nils/Spherix-sub000/internal/scanner"
	"github.com/1899nils/Spherix-sub000/internal/service"
	"github.com/1899nils/Spherix-sub000/internal/tags"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideJobLog)
	do.Provide(injector, providers.ProvideCoverStorage)
	do.Provide(injector, providers.ProvideCoverDownloader)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Metadata layer
	do.Provide(injector, providers.ProvideExtractor)
	do.Provide(injector, providers.ProvideCatalogClient)
	do.Provide(injector, providers.ProvideTagWriter)
	do.Provide(injector, providers.ProvideLinker)

	// Engine
	do.Provide(injector, providers.ProvideScanner)
	do.Provide(injector, providers.ProvideScheduler)
	do.Provide(injector, providers.ProvideLibraryService)

	return injector
}

// Bootstrap eagerly initializes all services so startup failures surface
// immediately instead of on first use.
func Bootstrap(injector *do.RootScope) error {
	invocations := []func() error{
		func() error { _, err := do.Invoke[*providers.StoreHandle](injector); return err },
		func() error { _, err := do.Invoke[*providers.JobLogHandle](injector); return err },
		func() error { _, err := do.Invoke[*covers.Storage](injector); return err },
		func() error { _, err := do.Invoke[*covers.Downloader](injector); return err },
		func() error { _, err := do.Invoke[*providers.SearchIndexHandle](injector); return err },
		func() error { _, err := do.Invoke[*extract.Extractor](injector); return err },
		func() error { _, err := do.Invoke[*mbz.Client](injector); return err },
		func() error { _, err := do.Invoke[*tags.Writer](injector); return err },
		func() error { _, err := do.Invoke[*linker.Linker](injector); return err },
		func() error { _, err := do.Invoke[*scanner.Scanner](injector); return err },
		func() error { _, err := do.Invoke[*providers.SchedulerHandle](injector); return err },
		func() error { _, err := do.Invoke[*service.LibraryService](injector); return err },
	}

	for _, invoke := range invocations {
		if err := invoke(); err != nil {
			return err
		}
	}
	return nil
}
