package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"varp/internal/planvalidate"
)

var planPath string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a plan document against the manifest",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&planPath, "plan", "plan.yaml", "Path to plan document, relative to workspace")
}

func runValidate(cmd *cobra.Command, args []string) error {
	m, err := loadManifest(workspace)
	if err != nil {
		return err
	}
	p, err := loadPlanAt(workspace, planPath)
	if err != nil {
		return err
	}

	result := planvalidate.Validate(p, m)
	for _, w := range result.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "error: %v\n", e)
	}
	if !result.Valid {
		os.Exit(1)
	}
	fmt.Println("plan is valid")
	return nil
}
