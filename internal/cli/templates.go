package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tacogips/stackzip/internal/template/model"
)

// templatesCmd lists the allow-listed templates
var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List available templates",
	Long: `List the template names that can be requested.

Examples:
  stackzip templates
  stackzip templates --json`,
	Args: cobra.NoArgs,
	RunE: runTemplates,
}

var templatesJSON bool

func init() {
	templatesCmd.Flags().BoolVar(&templatesJSON, "json", false, "Output as JSON")
}

func runTemplates(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	names := model.NewCatalog(cfg.Templates.Available).Names()

	if templatesJSON {
		data, err := json.Marshal(map[string][]string{"templates": names})
		if err != nil {
			return fmt.Errorf("failed to marshal templates: %w", err)
		}
		fmt.Fprintln(stdout, string(data))
		return nil
	}

	printHeader("Available templates")
	for _, name := range names {
		printInfo("  " + name)
	}
	return nil
}
