package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/osse101/liveops/internal/config"
	"github.com/osse101/liveops/internal/recurring"
	"github.com/osse101/liveops/internal/validation"
)

// LoadCatalog reads the recurring event catalog, validated against its schema
func LoadCatalog(cfg *config.Config) (recurring.Catalog, error) {
	catalog, err := recurring.LoadCatalog(cfg.CatalogPath, validation.NewSchemaValidator())
	if err != nil {
		return recurring.Catalog{}, fmt.Errorf("%s: %w", ErrMsgFailedCatalog, err)
	}
	slog.Info(LogMsgCatalogLoaded, "path", cfg.CatalogPath)
	return catalog, nil
}
