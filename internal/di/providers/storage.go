package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/shelfmark/shelfmark-server/internal/config"
	"github.com/shelfmark/shelfmark-server/internal/logger"
	"github.com/shelfmark/shelfmark-server/internal/media/images"
)

// ProvidePictureStorage provides the profile picture store.
func ProvidePictureStorage(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	pictures, err := images.NewStorage(cfg.MediaPath())
	if err != nil {
		return nil, fmt.Errorf("picture storage: %w", err)
	}

	log.Info("Picture storage initialized", "path", cfg.MediaPath())

	return pictures, nil
}
