package cmd

import (
	"fmt"
	"gradewatch/cmd/gradewatch/globals"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Logs into the gateway and the academic system to verify the configured credentials.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		value := globals.Get(cmd.Context())
		session, err := value.Session(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s\n", session.Identity())
		return nil
	},
}
