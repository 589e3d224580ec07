package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed drivers",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDeps()
			if err != nil {
				return err
			}
			defer d.close()

			manifest, err := d.state.Load()
			if err != nil {
				return err
			}

			if len(manifest.Drivers) == 0 {
				fmt.Printf("\n%s No drivers installed\n", dim("○"))
				return nil
			}

			latest, _ := d.registry.Latest(cmd.Context())

			dirs := make([]string, 0, len(manifest.Drivers))
			for dir := range manifest.Drivers {
				dirs = append(dirs, dir)
			}
			sort.Strings(dirs)

			fmt.Printf("Installed drivers:\n\n")
			for _, dir := range dirs {
				drv := manifest.Drivers[dir]
				line := fmt.Sprintf(" %s  %s", bold(fmt.Sprintf("geckodriver-%s", drv.Version)), dim(dir))
				if latest != "" && latest != drv.Version {
					line += fmt.Sprintf("  %s", yellow(fmt.Sprintf("↑ %s", latest)))
				}
				fmt.Println(line)
			}

			return nil
		},
	}
}
