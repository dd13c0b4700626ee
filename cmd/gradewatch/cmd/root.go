package cmd

import (
	"context"
	"fmt"
	"gradewatch/cmd/gradewatch/globals"
	"gradewatch/lib/serviceutil"
	"gradewatch/lib/telemetry"
	"log/slog"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	identity   string
	semester   string
)

var shutdownTelemetry = func() {}

var rootCmd = &cobra.Command{
	Use:   "gradewatch",
	Short: "gradewatch watches the Nankai academic system for new and changed grades.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)

		config, err := globals.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		if identity != "" {
			config.Identity = identity
		}
		if semester != "" {
			config.SemesterID = semester
		}

		t, err := telemetry.SetupFromEnv(cmd.Context(), "gradewatch")
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		shutdownTelemetry = func() {
			err := t.Shutdown(context.Background())
			if err != nil {
				slog.Warn("telemetry shutdown", "err", err)
			}
		}

		cmd.SetContext(globals.Set(cmd.Context(), &globals.Value{
			Config:  config,
			Verbose: verbose,
		}))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		shutdownTelemetry()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json5", "path to the json5 config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&identity, "identity", "", "student id, overrides the config")
	rootCmd.PersistentFlags().StringVarP(&semester, "semester", "s", "", "semester id or catalog index, overrides the config")
}

func Execute() {
	ctx, cancel := serviceutil.SignalContext(context.Background())
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		serviceutil.Fatal("gradewatch", err)
	}
}
