package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"varp/internal/lint"
)

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Check doc freshness, broken links, and import/manifest dependency drift",
	RunE:  runLint,
}

func runLint(cmd *cobra.Command, args []string) error {
	m, err := loadManifest(workspace)
	if err != nil {
		return err
	}
	cfg, err := loadConfigOrDefault(workspace, configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	report, err := lint.Run(ctx, osFs, m, cfg.Scan, nil)
	if err != nil {
		return fmt.Errorf("lint: %w", err)
	}

	for _, issue := range report.Issues {
		fmt.Printf("[%s] %s: %s\n", issue.Severity, issue.Category, issue.Message)
	}
	logger.Info("lint complete",
		zap.Int("warnings", report.WarningCount),
		zap.Int("errors", report.ErrorCount),
		zap.Int("suppressed", report.SuppressedCount),
	)

	if report.ErrorCount > 0 {
		os.Exit(1)
	}
	return nil
}
