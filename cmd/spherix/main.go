// Package main is the entry point for the Spherix library sync engine.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/1899nils/Spherix-sub000/internal/config"
	"github.com/1899nils/Spherix-sub000/internal/di"
	"github.com/1899nils/Spherix-sub000/internal/domain"
	"github.com/1899nils/Spherix-sub000/internal/logger"
	"github.com/1899nils/Spherix-sub000/internal/service"
)

func main() {
	injector := di.NewContainer()

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)
	cfg := do.MustInvoke[*config.Config](injector)
	libraries := do.MustInvoke[*service.LibraryService](injector)

	ctx := context.Background()

	lib, err := ensureLibrary(ctx, libraries, cfg)
	if err != nil {
		log.Fatal("library setup failed", "error", err)
	}

	if lib != nil && cfg.Scanner.ScanOnStart {
		job, err := libraries.RequestScan(ctx, lib.ID)
		if err != nil {
			log.Error("failed to queue startup scan", "library_id", lib.ID, "error", err)
		} else {
			log.Info("startup scan queued", "job_id", job.ID, "library_id", lib.ID)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	// The DI container shuts services down in reverse dependency order:
	// scheduler first (stops the running scan), then stores and indexes.
	if err := injector.Shutdown(); err != nil {
		log.Error("shutdown error", "error", err)
	}
}

// ensureLibrary registers the configured music path on first start.
// Returns nil when no music path is configured.
func ensureLibrary(ctx context.Context, libraries *service.LibraryService, cfg *config.Config) (*domain.Library, error) {
	if cfg.Library.MusicPath == "" {
		return nil, nil
	}

	existing, err := libraries.ListLibraries(ctx)
	if err != nil {
		return nil, err
	}
	for _, lib := range existing {
		if lib.RootPath == cfg.Library.MusicPath {
			return lib, nil
		}
	}

	return libraries.CreateLibrary(ctx, cfg.Library.Name, cfg.Library.MusicPath)
}
