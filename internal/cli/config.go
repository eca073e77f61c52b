package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tacogips/stackzip/internal/app"
)

// configCmd groups configuration subcommands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage stackzip configuration",
}

// configInitCmd writes the default configuration file
var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration file",
	Long: `Write the default configuration as YAML.

Without a path the file is written to ~/.config/stackzip/config.yaml.
Every setting can also be overridden with a STACKZIP_* environment
variable, e.g. STACKZIP_SERVER_PORT=9000.

Examples:
  stackzip config init
  stackzip config init ./stackzip.yaml
  stackzip config init --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, FlagForce, "f", false, "Overwrite an existing configuration file")
	configCmd.AddCommand(configInitCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	if configInitForce {
		printWarning("Force mode enabled - existing configuration will be replaced")
	}

	written, err := app.InitConfig(app.InitConfigOptions{Path: path, Force: configInitForce})
	if err != nil {
		printErrorMsg(fmt.Sprintf("Configuration init failed: %v", err))
		return err
	}
	printSuccess("Created: " + written)
	return nil
}
