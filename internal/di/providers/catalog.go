package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfmark/shelfmark-server/internal/catalog"
	"github.com/shelfmark/shelfmark-server/internal/config"
	"github.com/shelfmark/shelfmark-server/internal/logger"
)

// ProvideCatalogClient provides the Open Library client.
func ProvideCatalogClient(i do.Injector) (*catalog.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	opts := []catalog.Option{
		catalog.WithPolicy(catalog.Policy{
			Timeout: cfg.Catalog.Timeout,
			Retries: cfg.Catalog.Retries,
			Backoff: cfg.Catalog.Backoff,
		}),
	}
	if cfg.Catalog.BaseURL != "" {
		opts = append(opts, catalog.WithBaseURL(cfg.Catalog.BaseURL))
	}

	return catalog.NewClient(log.WithComponent("catalog").Logger, opts...), nil
}
