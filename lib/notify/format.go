package notify

import (
	"fmt"
	"gradewatch/lib/grades"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

func creditsText(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func changesTable(msg Message) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"", "课程", "学分", "成绩", "绩点"})
	for _, g := range msg.Changes.Added {
		t.AppendRow(table.Row{"新增", g.CourseName, creditsText(g.Credits), g.RawGradeLabel, g.GPAText()})
	}
	for _, u := range msg.Changes.Updated {
		t.AppendRow(table.Row{
			"更新",
			u.Current.CourseName,
			creditsText(u.Current.Credits),
			fmt.Sprintf("%s → %s", u.Previous.RawGradeLabel, u.Current.RawGradeLabel),
			fmt.Sprintf("%s → %s", u.Previous.GPAText(), u.Current.GPAText()),
		})
	}
	return t
}

func summaryLine(s grades.Summary) string {
	line := fmt.Sprintf(
		"共%d门课程，总学分%s，加权绩点%.2f",
		s.Courses, creditsText(s.TotalCredits), s.WeightedGPA,
	)
	if s.AverageScore > 0 {
		line += fmt.Sprintf("，百分制平均分%.1f", s.AverageScore)
	}
	return line
}

func heading(msg Message) string {
	name := msg.SemesterName
	if name == "" {
		name = msg.SemesterID
	}
	return fmt.Sprintf("%s (%s)", name, msg.Identity)
}

// RenderText renders the message as a plain text table, for terminals,
// logs and email bodies.
func RenderText(msg Message) string {
	t := changesTable(msg)
	t.SetStyle(table.StyleLight)

	var b strings.Builder
	b.WriteString(heading(msg))
	b.WriteString("\n")
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(summaryLine(msg.Summary))
	if !msg.At.IsZero() {
		b.WriteString("\n")
		b.WriteString(msg.At.Format("2006-01-02 15:04:05"))
	}
	return b.String()
}

// RenderMarkdown renders the message for push services that display
// markdown.
func RenderMarkdown(msg Message) string {
	t := changesTable(msg)

	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n\n", heading(msg))
	b.WriteString(t.RenderMarkdown())
	fmt.Fprintf(&b, "\n\n%s\n", summaryLine(msg.Summary))
	return b.String()
}
