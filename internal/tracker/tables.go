package tracker

import (
	"context"
	"degreetrack/internal/config"
	"degreetrack/internal/course"
	"degreetrack/internal/logging"
	"degreetrack/internal/requirements"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Tables are the static inputs of the engine.
type Tables struct {
	Catalog     *course.Catalog
	Registry    *requirements.Registry
	Equivalency *requirements.Equivalency
}

// LoadTables loads the catalog, registry and equivalency table
// concurrently. Empty paths select the embedded defaults.
func LoadTables(ctx context.Context, cfg config.TrackerConfig, workspace string) (*Tables, error) {
	timer := logging.StartTimer(logging.CategoryBoot, "LoadTables")
	defer timer.Stop()

	var t Tables
	eg, _ := errgroup.WithContext(ctx)

	eg.Go(func() error {
		var err error
		if p := config.ResolvePath(workspace, cfg.CatalogPath); p != "" {
			t.Catalog, err = course.LoadCatalogFile(p)
		} else {
			t.Catalog, err = course.DefaultCatalog()
		}
		if err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		if p := config.ResolvePath(workspace, cfg.RegistryPath); p != "" {
			t.Registry, err = requirements.LoadRegistryFile(p)
		} else {
			t.Registry, err = requirements.DefaultRegistry()
		}
		if err != nil {
			return fmt.Errorf("registry: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		if p := config.ResolvePath(workspace, cfg.EquivalencyPath); p != "" {
			t.Equivalency, err = requirements.LoadEquivalencyFile(p)
		} else {
			t.Equivalency, err = requirements.DefaultEquivalency()
		}
		if err != nil {
			return fmt.Errorf("equivalency: %w", err)
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		logging.BootWarn("LoadTables failed: %v", err)
		return nil, err
	}
	logging.Boot("Loaded %d catalog entries, %d majors", t.Catalog.Len(), len(t.Registry.Majors()))
	return &t, nil
}
