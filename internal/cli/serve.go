package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tacogips/stackzip/internal/app"
	"github.com/tacogips/stackzip/internal/server"
)

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the template download API",
	Long: `Start the HTTP API until interrupted.

Routes:
  GET  /api/templates                     list templates
  GET  /api/generate-template/{template}  download one template
  POST /api/templates                     download several templates, body {"templates": [...]}
  POST /api/generate-combined             same as POST /api/templates
  GET  /api/progress/{id}                 progress events for requests sent with ?progress={id}
  GET  /health                            liveness

Examples:
  stackzip serve
  stackzip serve --port 9000
  STACKZIP_SOURCE_REF=v1.2.0 stackzip serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveHost string
	servePort int
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, FlagHost, "", DescHost)
	serveCmd.Flags().IntVar(&servePort, FlagPort, 0, DescPort)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed(FlagHost) {
		cfg.Server.Host = serveHost
	}
	if cmd.Flags().Changed(FlagPort) {
		cfg.Server.Port = servePort
	}

	pipeline, err := app.NewPipelineFromConfig(cfg, nil)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if globalDebug || cfg.Output.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	srv := server.NewServer(cfg.Server, cfg.RateLimit, pipeline, server.WithLogger(logger))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("Serving %d templates on %s", pipeline.Catalog().Len(), srv.BaseURL()))
	printInfo("Template source: " + pipeline.Source())

	<-ctx.Done()
	printProgress("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
