package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seleniumkit/geckoget/internal/extractor"
	"github.com/seleniumkit/geckoget/internal/fetcher"
	"github.com/seleniumkit/geckoget/internal/installer"
)

func newUninstallCmd() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the installed geckodriver binary",
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

			inst, err := installer.New(
				fetcher.New(fetchTimeout),
				d.cache,
				extractor.New(),
				d.state,
				installer.Options{TargetDir: target, Version: d.cfg.Version, BaseURL: d.cfg.BaseURL},
			)
			if err != nil {
				return err
			}

			drv, err := inst.Uninstall(cmd.Context())
			if err != nil {
				fmt.Printf("%s %v\n", red("✗"), err)
				return fmt.Errorf("uninstall failed")
			}

			fmt.Printf("%s %s%s%s removed from %s\n",
				green("✓"), bold("geckodriver"), bold("-"), bold(drv.Version), target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "Target directory (defaults to GECKODRIVER_PATH)")
	return cmd
}
