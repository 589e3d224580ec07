package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seleniumkit/geckoget/internal/extractor"
	"github.com/seleniumkit/geckoget/internal/fetcher"
	"github.com/seleniumkit/geckoget/internal/installer"
)

func newInstallCmd() *cobra.Command {
	var version string
	var target string
	var sha256 string
	var direct bool
	var force bool

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Download geckodriver and place it in the target directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDeps()
			if err != nil {
				return err
			}
			defer d.close()

			if target == "" {
				target, err = d.cfg.ResolveTargetDir()
				if err != nil {
					return err
				}
			}

			ver := version
			if ver == "" {
				ver = d.cfg.Version
			}
			if ver == "latest" {
				stop := withSpinner(cmd.Context(), "Resolving latest release...")
				ver, err = d.registry.Latest(cmd.Context())
				stop()
				if err != nil {
					return fmt.Errorf("resolving latest release: %w", err)
				}
			}

			if installed, drv, _ := d.state.IsInstalled(target); installed && !force {
				if drv.Version == ver {
					fmt.Printf("%s geckodriver %s already installed in %s\n",
						yellow("!"), bold(drv.Version), target)
					return nil
				}
			}

			inst, err := installer.New(
				fetcher.New(fetchTimeout),
				d.cache,
				extractor.New(),
				d.state,
				installer.Options{
					TargetDir:     target,
					Version:       ver,
					BaseURL:       d.cfg.BaseURL,
					SHA256:        sha256,
					DirectExtract: direct,
				},
			)
			if err != nil {
				return err
			}

			drv, err := inst.Install(cmd.Context())
			if err != nil {
				fmt.Printf("%s geckodriver %s: %v\n", red("✗"), ver, err)
				return fmt.Errorf("install failed")
			}

			fmt.Printf("%s %s%s%s\n  %s %s\n  %s %s\n",
				green("✓"), bold("geckodriver"), bold("-"), bold(drv.Version),
				cyan("path:"), drv.Path,
				cyan("from:"), dim(inst.Release().URL))
			return nil
		},
	}

	cmd.Flags().StringVarP(&version, "version", "v", "", "Driver version to install (or \"latest\")")
	cmd.Flags().StringVarP(&target, "target", "t", "", "Target directory (defaults to GECKODRIVER_PATH)")
	cmd.Flags().StringVar(&sha256, "sha256", "", "Expected SHA256 checksum of the archive")
	cmd.Flags().BoolVar(&direct, "direct", false, "Extract straight into the target directory, no staging")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Reinstall even if already present")
	return cmd
}
