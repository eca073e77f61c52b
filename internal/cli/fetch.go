package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tacogips/stackzip/internal/app"
	"github.com/tacogips/stackzip/internal/debug"
	"github.com/tacogips/stackzip/internal/progress"
)

// fetchCmd builds an archive locally
var fetchCmd = &cobra.Command{
	Use:   "fetch [template...]",
	Short: "Build a template archive locally",
	Long: `Fetch the template repository and write the requested templates to a ZIP
file, or extract them into a directory with --extract.

Template names may be given as separate arguments or comma separated.
Without names on an interactive terminal, a selection prompt is shown.

Examples:
  stackzip fetch react
  stackzip fetch react express -o stack.zip
  stackzip fetch react,nestjs --extract ./my-app
  stackzip fetch`,
	RunE: runFetch,
}

var (
	fetchOutput  string
	fetchExtract string
	fetchForce   bool
	fetchVerbose bool
)

func init() {
	fetchCmd.Flags().StringVarP(&fetchOutput, FlagOutput, "o", "", DescOutput)
	fetchCmd.Flags().StringVar(&fetchExtract, FlagExtract, "", DescExtract)
	fetchCmd.Flags().BoolVarP(&fetchForce, FlagForce, "f", false, DescForce)
	fetchCmd.Flags().BoolVarP(&fetchVerbose, FlagVerbose, "v", false, DescVerbose)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pipeline, err := app.NewPipelineFromConfig(cfg, nil)
	if err != nil {
		return err
	}

	names := ParseTemplateArgs(args)
	if len(names) == 0 {
		if !isInteractive() {
			return fmt.Errorf("no templates given (available: %v)", pipeline.Catalog().Names())
		}
		names, err = PromptForTemplates(pipeline.Catalog().Names())
		if err != nil {
			return err
		}
	}

	verbose := fetchVerbose || cfg.Output.Verbose
	reporter := progress.NewReporter("cli", progress.ObserverFunc(func(e progress.Event) {
		printVerbose(verbose, fmt.Sprintf("%3d%% %-10s %s", e.Percent, e.Phase, e.Message))
	}))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	printProgress(fmt.Sprintf("Fetching %v", names))
	prepared, err := pipeline.Prepare(ctx, names, reporter)
	if err != nil {
		return err
	}

	if fetchExtract != "" {
		return extractPrepared(pipeline, prepared, fetchExtract, cfg.Templates.PreserveExecutable)
	}
	return writeArchive(ctx, pipeline, prepared)
}

func extractPrepared(pipeline *app.Pipeline, prepared *app.Prepared, dir string, preserveExecutable bool) error {
	result, err := pipeline.Extract(prepared, app.ExtractOptions{
		Dir:                dir,
		Overwrite:          fetchForce,
		PreserveExecutable: preserveExecutable,
	})
	if err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("Extracted %d files to %s", result.FilesCreated+result.FilesOverwritten, dir))
	if result.FilesSkipped > 0 {
		printWarning(fmt.Sprintf("Skipped %d existing files (use --force to overwrite)", result.FilesSkipped))
	}
	return nil
}

func writeArchive(ctx context.Context, pipeline *app.Pipeline, prepared *app.Prepared) error {
	path := fetchOutput
	if path == "" {
		path = prepared.Filename
	}
	if err := ValidateOutputPath(path); err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !fetchForce {
		if !isInteractive() {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		ok, err := promptOverwrite(path)
		if err != nil {
			return err
		}
		if !ok {
			printInfo("Aborted")
			return nil
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	// Write to a temporary sibling so a failed build never leaves a
	// truncated archive at path.
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}
	stats, streamErr := pipeline.Stream(ctx, prepared, f)
	closeErr := f.Close()
	if streamErr != nil || closeErr != nil {
		_ = os.Remove(tmp)
		if streamErr != nil {
			return streamErr
		}
		return fmt.Errorf("failed to close %s: %w", tmp, closeErr)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	debug.Debug("[cli] Wrote %s in %s", path, stats.Duration)

	printSuccess(fmt.Sprintf("Wrote %s (%d files, %s)", path, stats.Entries, formatBytes(stats.Bytes)))
	return nil
}
