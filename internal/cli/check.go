package cli

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/seleniumkit/geckoget/internal/domain"
	"github.com/seleniumkit/geckoget/internal/fetcher"
	"github.com/seleniumkit/geckoget/internal/release"
)

func newCheckCmd() *cobra.Command {
	var version string
	var list bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check release availability for all platforms",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDeps()
			if err != nil {
				return err
			}
			defer d.close()

			ctx := cmd.Context()

			if list {
				versions, err := d.registry.Releases(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Available releases:\n\n")
				for _, v := range versions {
					fmt.Printf(" %s\n", bold(v))
				}
				return nil
			}

			ver := version
			if ver == "" {
				ver = d.cfg.Version
			}
			if ver == "latest" {
				stop := withSpinner(ctx, "Resolving latest release...")
				ver, err = d.registry.Latest(ctx)
				stop()
				if err != nil {
					return fmt.Errorf("resolving latest release: %w", err)
				}
			}

			f := fetcher.NewQuiet(fetchTimeout)
			sizes := make(map[domain.Platform]int64)
			failures := make(map[domain.Platform]error)
			mu := &sync.Mutex{}

			g, gctx := errgroup.WithContext(ctx)
			for _, p := range domain.Platforms() {
				p := p
				g.Go(func() error {
					rel := release.Resolve(d.cfg.BaseURL, ver, p)
					size, err := f.Stat(gctx, rel)
					mu.Lock()
					if err != nil {
						failures[p] = err
					} else {
						sizes[p] = size
					}
					mu.Unlock()
					return nil
				})
			}
			_ = g.Wait()

			fmt.Printf("geckodriver %s:\n\n", bold(ver))
			for _, p := range domain.Platforms() {
				if err, ok := failures[p]; ok {
					fmt.Printf(" %s %-8s %v\n", red("✗"), p, err)
					continue
				}
				fmt.Printf(" %s %-8s %s  %s\n",
					green("✓"), p, formatSize(sizes[p]), dim(release.URL(d.cfg.BaseURL, ver, p)))
			}

			if len(failures) > 0 {
				return fmt.Errorf("%d platform(s) unavailable", len(failures))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&version, "version", "v", "", "Driver version to check (or \"latest\")")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List available release versions")
	return cmd
}
