package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"varp/internal/planvalidate"
)

var diffCmd = &cobra.Command{
	Use:   "diff <old-plan.yaml> <new-plan.yaml>",
	Short: "Show a structural, order-insensitive diff between two plan revisions",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

func runDiff(cmd *cobra.Command, args []string) error {
	a, err := loadPlanAt(workspace, args[0])
	if err != nil {
		return err
	}
	b, err := loadPlanAt(workspace, args[1])
	if err != nil {
		return err
	}

	d := planvalidate.Diff(a, b)

	for _, c := range d.MetadataChanges {
		fmt.Printf("metadata.%s changed:\n%s\n", c.Field, c.Diff)
	}
	for _, c := range d.ConditionChanges {
		switch {
		case c.Added:
			fmt.Printf("%s %q added\n", c.Section, c.ID)
		case c.Removed:
			fmt.Printf("%s %q removed\n", c.Section, c.ID)
		default:
			for _, f := range c.Fields {
				fmt.Printf("%s %q field %s changed\n", c.Section, c.ID, f.Field)
			}
		}
	}
	for _, c := range d.TaskChanges {
		switch {
		case c.Added:
			fmt.Printf("task %q added\n", c.TaskID)
		case c.Removed:
			fmt.Printf("task %q removed\n", c.TaskID)
		default:
			for _, f := range c.Fields {
				fmt.Printf("task %q field %s changed\n", c.TaskID, f.Field)
			}
		}
	}
	return nil
}
