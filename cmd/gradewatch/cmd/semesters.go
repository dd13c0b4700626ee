package cmd

import (
	"gradewatch/cmd/gradewatch/globals"
	"gradewatch/cmd/gradewatch/utils"
	"gradewatch/lib/scrapers/eams"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(semestersCmd)
}

var semestersCmd = &cobra.Command{
	Use:   "semesters",
	Short: "Lists the semesters that can be selected, newest first.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		value := globals.Get(cmd.Context())
		session, err := value.Session(cmd.Context())
		if err != nil {
			return err
		}

		semesters := eams.Catalog{}.Discover(cmd.Context(), session)

		t := utils.NewTable()
		t.AppendHeader(table.Row{"#", "ID", "Semester"})
		for i, s := range semesters {
			t.AppendRow(table.Row{i + 1, s.ID, s.DisplayName})
		}
		t.Render()
		return nil
	},
}
