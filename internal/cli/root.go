package cli

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/seleniumkit/geckoget/internal/cache"
	"github.com/seleniumkit/geckoget/internal/config"
	"github.com/seleniumkit/geckoget/internal/registry"
	"github.com/seleniumkit/geckoget/internal/state"
)

const fetchTimeout = 1 * time.Hour

func Execute() error {
	rootCmd := &cobra.Command{
		Use:   "geckoget",
		Short: "Install and manage GeckoDriver for browser automation",
	}
	rootCmd.AddCommand(
		newInstallCmd(),
		newUninstallCmd(),
		newListCmd(),
		newCheckCmd(),
		newClearCmd(),
		newVersionCmd(),
	)
	return rootCmd.Execute()
}

type deps struct {
	cfg      *config.Config
	cache    *cache.DiskCache
	state    *state.SQLiteState
	registry *registry.GitHubRegistry
}

func loadDeps() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	c, err := cache.New(cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	st, err := state.NewSQLite(cfg.DBFile, filepath.Join(cfg.DataDir, "installed.json"))
	if err != nil {
		return nil, err
	}

	return &deps{
		cfg:      cfg,
		cache:    c,
		state:    st,
		registry: registry.New(cfg.CacheDir),
	}, nil
}

func (d *deps) close() {
	d.state.Close()
}
