package providers

import (
	"github.com/samber/do/v2"

	"github.com/1899nils/Spherix-sub000/internal/config"
	"github.com/1899nils/Spherix-sub000/internal/covers"
	"github.com/1899nils/Spherix-sub000/internal/linker"
	"github.com/1899nils/Spherix-sub000/internal/logger"
	"github.com/1899nils/Spherix-sub000/internal/metadata/extract"
	"github.com/1899nils/Spherix-sub000/internal/metadata/mbz"
	"github.com/1899nils/Spherix-sub000/internal/tags"
)

// ProvideExtractor provides the tag extractor.
func ProvideExtractor(i do.Injector) (*extract.Extractor, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return extract.New(log.Logger), nil
}

// ProvideCatalogClient provides the rate-limited MusicBrainz client.
func ProvideCatalogClient(i do.Injector) (*mbz.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return mbz.NewClient(mbz.Options{
		BaseURL:         cfg.Catalog.BaseURL,
		CoverBaseURL:    cfg.Catalog.CoverBaseURL,
		RequestInterval: cfg.Catalog.RequestInterval,
	}, log.Logger), nil
}

// ProvideTagWriter provides the file tag rewriter.
func ProvideTagWriter(i do.Injector) (*tags.Writer, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return tags.NewWriter(log), nil
}

// ProvideLinker provides the album auto-linker.
func ProvideLinker(i do.Injector) (*linker.Linker, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	catalog := do.MustInvoke[*mbz.Client](i)
	storage := do.MustInvoke[*covers.Storage](i)
	downloader := do.MustInvoke[*covers.Downloader](i)
	tagWriter := do.MustInvoke[*tags.Writer](i)

	return linker.New(linker.Options{
		Store:      storeHandle.Store,
		Catalog:    catalog,
		Downloader: downloader,
		Storage:    storage,
		TagWriter:  tagWriter,
		Threshold:  cfg.Catalog.AutoLinkThreshold,
		Logger:     log,
	}), nil
}
