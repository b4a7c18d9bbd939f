package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"varp/internal/config"
	"varp/internal/lint"
	"varp/internal/manifest"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the manifest, plan, and component doc trees and re-lint on change",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&planPath, "plan", "plan.yaml", "Path to plan document, relative to workspace")
}

// lintCache invalidates only when the newest mtime observed across watched
// paths actually advances, since editors commonly emit several fsnotify
// events per logical save for one edit.
type lintCache struct {
	newestMtime time.Time
}

func (c *lintCache) shouldRelint(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		// A delete/rename with no stat-able file is still a change worth
		// reacting to.
		return true
	}
	if info.ModTime().After(c.newestMtime) {
		c.newestMtime = info.ModTime()
		return true
	}
	return false
}

func runWatch(cmd *cobra.Command, args []string) error {
	m, err := loadManifest(workspace)
	if err != nil {
		return err
	}
	cfg, err := loadConfigOrDefault(workspace, configPath)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Join(workspace, "manifest.yaml")); err != nil {
		logger.Warn("could not watch manifest.yaml", zap.Error(err))
	}
	if err := watcher.Add(filepath.Join(workspace, planPath)); err != nil {
		logger.Warn("could not watch plan file", zap.String("path", planPath), zap.Error(err))
	}
	for _, c := range m.Components {
		for _, p := range c.Path {
			if err := addWatchRecursive(watcher, p); err != nil {
				logger.Warn("could not watch component path", zap.String("component", c.Name), zap.String("path", p), zap.Error(err))
			}
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	cache := &lintCache{}
	runLintOnce(m, cfg)

	fmt.Printf("watching %d components under %s (ctrl-c to stop)\n", len(m.Components), workspace)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !cache.shouldRelint(event.Name) {
				continue
			}
			runLintOnce(m, cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		case <-sigCh:
			return nil
		}
	}
}

func runLintOnce(m *manifest.Manifest, cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	report, err := lint.Run(ctx, osFs, m, cfg.Scan, nil)
	if err != nil {
		logger.Warn("lint run failed", zap.Error(err))
		return
	}
	fmt.Printf("--- lint report %s (%d warnings, %d errors) ---\n", report.ReportID, report.WarningCount, report.ErrorCount)
	for _, issue := range report.Issues {
		fmt.Printf("[%s] %s: %s\n", issue.Severity, issue.Category, issue.Message)
	}
}

func addWatchRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
