// Package main implements the varp CLI: manifest/plan validation, hazard
// and wave scheduling, doc/import lint, plan diffing, and a watch mode that
// re-runs lint on file changes.
//
// Command implementations are split across cmd_*.go files:
//
//   - cmd_lint.go     - lintCmd, runLint()
//   - cmd_waves.go    - wavesCmd, runWaves()
//   - cmd_validate.go - validateCmd, runValidate()
//   - cmd_diff.go     - diffCmd, runDiff()
//   - cmd_watch.go    - watchCmd, runWatch()
//   - common.go       - shared workspace/manifest/plan loading helpers
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"varp/internal/logging"
)

var (
	workspace  string
	configPath string
	verbose    bool
	timeout    time.Duration

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "varp",
	Short: "varp - manifest-driven orchestration substrate for coding agents",
	Long: `varp schedules and validates work against a declared component manifest.

It reads a manifest describing a repository's components and their
dependencies, and a plan describing a batch of tasks touching those
components, then derives hazards, execution waves, a critical path, and
lint findings deterministically from that pair of documents.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}

		ws, err := resolveWorkspace(workspace)
		if err != nil {
			return err
		}
		workspace = ws

		cfg, err := loadConfigOrDefault(workspace, configPath)
		if err != nil {
			return err
		}
		if err := logging.Initialize(workspace, cfg.Logging); err != nil {
			fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

func resolveWorkspace(ws string) (string, error) {
	if ws == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve workspace: %w", err)
		}
		return cwd, nil
	}
	abs, err := filepath.Abs(ws)
	if err != nil {
		return "", fmt.Errorf("resolve workspace %q: %w", ws, err)
	}
	return abs, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (default: current directory)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".varp/config.yaml", "Path to config file, relative to workspace")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout for lint runs")

	rootCmd.AddCommand(
		lintCmd,
		wavesCmd,
		validateCmd,
		diffCmd,
		watchCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
