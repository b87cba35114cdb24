package main

import (
	"fmt"
	"os"

	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:     "open <path>",
	Aliases: []string{"o"},
	Short:   "Open a container or asset's filesystem path in the OS file manager",
	Long: `open hands path to the OS's default file manager/application the way
"xdg-open"/"open"/"start" would — container directories open in the file
manager, asset files open in whatever application is registered for
their type.

open does not resolve stale paths itself — if a watched container or
asset may have moved, resolve it first with "syre query --container"
or the "final_path" MCP tool.`,
	Example: `  syre open /home/user/projects/demo
  syre open /home/user/projects/demo/data/sample/raw.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return open.Run(path)
}
