package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"varp/internal/criticalpath"
	"varp/internal/hazard"
	"varp/internal/plan"
	"varp/internal/planvalidate"
	"varp/internal/varperr"
	"varp/internal/wave"
)

var wavesCmd = &cobra.Command{
	Use:   "waves",
	Short: "Derive hazards, execution waves, and the critical path for a plan",
	RunE:  runWaves,
}

func init() {
	wavesCmd.Flags().StringVar(&planPath, "plan", "plan.yaml", "Path to plan document, relative to workspace")
}

func runWaves(cmd *cobra.Command, args []string) error {
	m, err := loadManifest(workspace)
	if err != nil {
		return err
	}
	p, err := loadPlanAt(workspace, planPath)
	if err != nil {
		return err
	}

	result := planvalidate.Validate(p, m)
	if !result.Valid {
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "error: %v\n", e)
		}
		os.Exit(1)
	}
	for _, w := range result.Warnings {
		fmt.Printf("warning: %s\n", w)
	}

	refs := plan.RefsOf(p.Tasks)
	hazards := hazard.Detect(refs)

	waveResult, err := wave.Compute(refs)
	if err != nil {
		var ae *varperr.AnalysisError
		if errors.As(err, &ae) {
			fmt.Fprintf(os.Stderr, "error: %s\n", ae.Error())
			os.Exit(1)
		}
		return err
	}

	for i, w := range waveResult.Waves {
		ids := make([]string, 0, len(w.Tasks))
		for _, t := range w.Tasks {
			ids = append(ids, t.ID)
		}
		fmt.Printf("wave %d: %v\n", i+1, ids)
	}

	path := criticalpath.Compute(refs, hazards)
	fmt.Printf("critical path (length %d): %v\n", path.Length, path.TaskIDs)
	fmt.Printf("report id: %s\n", waveResult.ReportID)

	return nil
}
