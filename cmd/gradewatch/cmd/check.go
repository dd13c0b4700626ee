package cmd

import (
	"fmt"
	"gradewatch/cmd/gradewatch/globals"
	"gradewatch/services/monitor"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Runs a single monitoring cycle: fetch, compare with the stored snapshot, store and notify.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		value := globals.Get(ctx)

		target, err := value.Target()
		if err != nil {
			return err
		}
		store, closeStore, err := value.Config.OpenStore()
		if err != nil {
			return err
		}
		defer closeStore()

		m, err := newMonitor(value, target, store)
		if err != nil {
			return err
		}

		result := m.RunOnce(ctx)
		if result.Err != nil {
			return result.Err
		}
		fmt.Printf(
			"%s: %s (%d courses, %d added, %d updated)\n",
			result.ID, result.Outcome, len(result.Grades),
			len(result.Changes.Added), len(result.Changes.Updated),
		)
		if result.Outcome == monitor.OutcomeChanged {
			printGrades(os.Stdout, result.Grades)
		}
		return nil
	},
}
