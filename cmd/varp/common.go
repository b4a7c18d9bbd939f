package main

import (
	"path/filepath"

	"github.com/spf13/afero"

	"varp/internal/config"
	"varp/internal/loader"
	"varp/internal/manifest"
	"varp/internal/plan"
)

var osFs = afero.NewOsFs()

func loadConfigOrDefault(ws, relPath string) (*config.Config, error) {
	path := filepath.Join(ws, relPath)
	if ok, _ := afero.Exists(osFs, path); !ok {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(osFs, path)
}

func loadManifest(ws string) (*manifest.Manifest, error) {
	return loader.LoadManifest(osFs, ws, filepath.Join(ws, "manifest.yaml"))
}

func loadPlanAt(ws, relPath string) (plan.Plan, error) {
	return loader.LoadPlan(osFs, filepath.Join(ws, relPath))
}
