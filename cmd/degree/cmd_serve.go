package main

import (
	"context"
	"degreetrack/internal/engine"
	"degreetrack/internal/server"
	"degreetrack/internal/transcript"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Re-import a transcript file whenever it changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the session over HTTP",
	Long: `Starts the HTTP API for the workspace session:

  GET    /state            GET    /catalog/:code   GET /healthz
  POST   /courses          DELETE /courses/:code
  POST   /import           POST   /move            PUT /major
  GET    /exams            POST   /exams/:label    DELETE /exams/:label
  POST   /undo             POST   /reset[?scope=inputs]`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runWatch(cmd *cobra.Command, args []string) error {
	debounce, _ := cmd.Flags().GetDuration("debounce")
	ctx, cancel := signalContext()
	defer cancel()

	tr, closeFn, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	return tr.Watch(ctx, args[0], debounce, func(out engine.Outcome, err error) {
		if err != nil {
			logger.Warn("re-import failed", zap.Error(err))
			fmt.Fprintf(os.Stderr, "import failed: %v\n", transcript.WithRetryHint(err))
			return
		}
		_ = printOutcome(out, nil)
		if rep, err := tr.Status(); err == nil {
			fmt.Printf("GPA %s, %s units\n", rep.GPA, rep.Totals.Units)
		}
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Server.Listen = listen
	}
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	ctx, cancel := signalContext()
	defer cancel()

	tr, closeFn, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	srv := server.New(cfg, tr, logger)
	fmt.Printf("Serving on http://%s\n", cfg.Server.Listen)
	return srv.Run(ctx)
}
