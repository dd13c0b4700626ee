package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"gradewatch/cmd/gradewatch/globals"
	"gradewatch/cmd/gradewatch/utils"
	"gradewatch/lib/grades"
	"gradewatch/lib/scrapers/eams"
	"gradewatch/lib/scrapers/webvpn"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var gradesJson bool

func init() {
	gradesCmd.Flags().BoolVar(&gradesJson, "json", false, "print the grades as json instead of a table")
	rootCmd.AddCommand(gradesCmd)
}

var gradesCmd = &cobra.Command{
	Use:   "grades",
	Short: "Prints the grades of a semester.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		value := globals.Get(ctx)
		session, err := value.Session(ctx)
		if err != nil {
			return err
		}

		semester, err := eams.Catalog{}.Resolve(ctx, session, value.Config.SemesterID)
		if err != nil {
			return err
		}

		return writeSemesterGrades(ctx, session, semester, gradesJson, os.Stdout)
	},
}

// writeSemesterGrades fetches and prints one semester, a semester without
// published grades is reported rather than treated as a failure.
func writeSemesterGrades(ctx context.Context, session *webvpn.Session, semester grades.Semester, asJson bool, out io.Writer) error {
	page, err := eams.Fetcher{}.FetchRaw(ctx, session, semester.ID)
	if errors.Is(err, eams.ErrNoGradesPublished) {
		fmt.Fprintf(out, "%s: no grades published yet\n", semester.DisplayName)
		return nil
	}
	if err != nil {
		return err
	}
	list, err := eams.Parser{SemesterID: semester.ID}.Parse(ctx, page)
	if err != nil {
		return err
	}

	if asJson {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(list)
	}

	fmt.Fprintln(out, semester.DisplayName)
	printGrades(out, list)
	return nil
}

func printGrades(out io.Writer, list []grades.Grade) {
	t := utils.NewTable()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Code", "Course", "Category", "Credits", "Grade", "GPA", "Scheme"})
	for _, g := range list {
		t.AppendRow(table.Row{
			g.CourseCode,
			g.CourseName,
			g.CourseCategory,
			strconv.FormatFloat(g.Credits, 'f', -1, 64),
			g.RawGradeLabel,
			g.GPAText(),
			g.Scheme,
		})
	}

	summary := grades.Summarize(list)
	footer := table.Row{
		"", fmt.Sprintf("%d courses", summary.Courses), "",
		strconv.FormatFloat(summary.TotalCredits, 'f', -1, 64),
		"", fmt.Sprintf("%.2f", summary.WeightedGPA), "",
	}
	if summary.AverageScore > 0 {
		footer[4] = fmt.Sprintf("avg %.1f", summary.AverageScore)
	}
	t.AppendFooter(footer)
	t.Render()
}
