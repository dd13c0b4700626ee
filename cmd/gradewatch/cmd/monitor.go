package cmd

import (
	"context"
	"errors"
	"fmt"
	"gradewatch/cmd/gradewatch/globals"
	"gradewatch/lib/grades"
	"gradewatch/lib/gradestore"
	"gradewatch/lib/scrapers/eams"
	"gradewatch/lib/telemetry"
	"gradewatch/services/monitor"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

var intervalMinutes int

func init() {
	monitorCmd.Flags().IntVarP(&intervalMinutes, "interval", "i", 0, "minutes between checks, at least 5")
	rootCmd.AddCommand(monitorCmd)
}

// resolveSemester turns a configured semester id or 1-based index into a
// semester using the static catalog, monitors log in again every cycle and
// have no session to discover with up front.
func resolveSemester(choice string) (grades.Semester, error) {
	if strings.TrimSpace(choice) == "" {
		choice = eams.DefaultSemesterID
	}
	return eams.Choose(eams.FallbackSemesters(), choice)
}

func newMonitor(value *globals.Value, target globals.Target, store gradestore.Store) (*monitor.Monitor, error) {
	auth, err := value.Config.Authenticator(value.Verbose)
	if err != nil {
		return nil, err
	}

	semester, err := resolveSemester(target.SemesterID)
	if err != nil {
		return nil, err
	}

	return monitor.New(monitor.Options{
		Identity:        target.Identity,
		Secret:          target.Secret,
		SemesterID:      semester.ID,
		SemesterName:    semester.DisplayName,
		IntervalMinutes: target.IntervalMinutes,
		Authenticator:   auth,
		Store:           store,
		Notifier:        value.Config.Notifier(),
	})
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Checks every configured target on an interval until interrupted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		value := globals.Get(ctx)

		targets := value.Config.AllTargets()
		if len(targets) == 0 {
			return fmt.Errorf("no targets configured")
		}

		store, closeStore, err := value.Config.OpenStore()
		if err != nil {
			return err
		}
		defer closeStore()

		var group monitor.Group
		for _, target := range targets {
			if intervalMinutes != 0 {
				target.IntervalMinutes = intervalMinutes
			}
			m, err := newMonitor(value, target, store)
			if err != nil {
				return fmt.Errorf("target %s: %w", target.Identity, err)
			}
			group.Add(m)
		}

		telemetry.InstrumentPerfStats(ctx)
		slog.Info("press Ctrl+C to stop", "targets", group.Len())

		err = group.Run(ctx)
		if errors.Is(err, context.Canceled) {
			slog.Info("stopped monitoring")
			return nil
		}
		return err
	},
}
