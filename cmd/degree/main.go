package main

import (
	"degreetrack/internal/config"
	"degreetrack/internal/logging"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	workspace  string
	configPath string

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "degree",
	Short: "degree - degree progress tracker",
	Long: `degree tracks progress toward an engineering degree.

Courses enter through manual input, transcript imports and equivalency
exams. Every change re-reconciles requirement slots and the unit and GPA
ledger, and the session is saved after each change.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return loadConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

// loadConfig resolves the workspace, loads .env and the config file, and
// configures file logging.
func loadConfig() error {
	if workspace == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to resolve workspace: %w", err)
		}
		workspace = cwd
	}
	abs, err := filepath.Abs(workspace)
	if err != nil {
		return fmt.Errorf("failed to resolve workspace: %w", err)
	}
	workspace = abs

	if err := config.LoadEnv(workspace); err != nil {
		return err
	}
	path := configPath
	if path == "" {
		path = config.Path(workspace)
	}
	cfg, err = config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := logging.Configure(workspace, cfg.Logging.Settings()); err != nil {
		logger.Warn("file logging disabled", zap.Error(err))
	}
	logging.Boot("degree starting in %s (store=%s, major=%s)", workspace, cfg.Store.Backend, cfg.Tracker.Major)
	logger.Debug("config loaded", zap.String("path", path), zap.String("store", cfg.Store.Backend))
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: <workspace>/.degree/config.yaml)")

	addCmd.Flags().Bool("persist", false, "Keep the course across input resets")
	addCmd.Flags().Float64("units", 0, "Override catalog units")
	examCmd.Flags().Bool("uncheck", false, "Uncheck the exam instead")
	resetCmd.Flags().Bool("inputs", false, "Clear manual input only; the transcript is replayed")
	statusCmd.Flags().Bool("json", false, "Print the report as JSON")
	watchCmd.Flags().Duration("debounce", 0, "Quiet period before re-importing (default 300ms)")
	serveCmd.Flags().String("listen", "", "Listen address (default from config)")

	rootCmd.AddCommand(majorCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(examCmd)
	rootCmd.AddCommand(examsCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
