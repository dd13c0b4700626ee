package eams

import (
	"context"
	"fmt"
	"gradewatch/lib/grades"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type row []string

func gradeRow(code, name, credits, primary, secondary string) row {
	return row{"2024-2025 2", code, code + ".01", name, "专业必修", credits, primary, secondary}
}

func renderTable(id string, rows []row) string {
	var b strings.Builder
	b.WriteString(`<html><body><table class="gridtable">`)
	b.WriteString(`<thead><tr><th>学年学期</th><th>课程代码</th><th>课程名称</th><th>学分</th></tr></thead>`)
	if id != "" {
		fmt.Fprintf(&b, `<tbody id="%s">`, id)
	} else {
		b.WriteString(`<tbody>`)
	}
	for _, r := range rows {
		b.WriteString("<tr>")
		for _, cell := range r {
			fmt.Fprintf(&b, "<td>\n\t%s&nbsp;</td>", cell)
		}
		b.WriteString("</tr>")
	}
	b.WriteString(`</tbody></table></body></html>`)
	return b.String()
}

func TestParseSchemes(t *testing.T) {
	page := renderTable("grid21344342991_data", []row{
		gradeRow("MATH101", "高等数学", "5", "A-", "3.7"),
		gradeRow("PE101", "体育", "1", "通过", "--"),
		gradeRow("CS101", "程序设计", "3", "92", "--"),
		gradeRow("ART101", "艺术鉴赏", "2", "缓考", "--"),
		gradeRow("ENG101", "大学英语", "2", "B", "--"),
	})

	list, err := Parser{SemesterID: "4324"}.Parse(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, list, 5)

	require.Equal(t, grades.Grade{
		SemesterID:     "4324",
		SemesterLabel:  "2024-2025 2",
		CourseCode:     "MATH101",
		CourseSequence: "MATH101.01",
		CourseName:     "高等数学",
		CourseCategory: "专业必修",
		Credits:        5,
		Scheme:         grades.SchemeLetter,
		RawGradeLabel:  "A-",
		GPA:            grades.Float(3.7),
	}, list[0])

	require.Equal(t, grades.SchemePassFail, list[1].Scheme)
	require.Nil(t, list[1].GPA)

	require.Equal(t, grades.SchemePercentage, list[2].Scheme)
	require.Equal(t, 4.0, *list[2].GPA)
	require.Equal(t, 92.0, *list[2].Score)

	require.Equal(t, grades.SchemeUnknown, list[3].Scheme)
	require.Equal(t, "缓考", list[3].RawGradeLabel)
	require.Nil(t, list[3].GPA)

	require.Equal(t, grades.SchemeLetter, list[4].Scheme)
	require.Nil(t, list[4].GPA)
}

func TestParseSkipsShortRows(t *testing.T) {
	var rows []row
	for i := 0; i < 10; i++ {
		rows = append(rows, gradeRow(fmt.Sprintf("C%d", i), "课程", "2", "85", "--"))
	}
	rows[2] = rows[2][:5]

	list, err := Parser{}.Parse(context.Background(), renderTable("grid1_data", rows))
	require.NoError(t, err)
	require.Len(t, list, 9)
	for _, g := range list {
		require.NotEqual(t, "C2", g.CourseCode)
	}
	// table order is kept
	require.Equal(t, "C0", list[0].CourseCode)
	require.Equal(t, "C3", list[2].CourseCode)
}

func TestParseSkipsBadCredits(t *testing.T) {
	list, err := Parser{}.Parse(context.Background(), renderTable("grid1_data", []row{
		gradeRow("C1", "课程", "two", "85", "--"),
		gradeRow("C2", "课程", "-1", "85", "--"),
		gradeRow("C3", "课程", "1.5", "85", "--"),
	}))
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, 1.5, list[0].Credits)
}

func TestParseLargestTbodyFallback(t *testing.T) {
	small := renderTable("", []row{gradeRow("X1", "other", "1", "A", "4.0")})
	large := renderTable("", []row{
		gradeRow("C1", "课程", "2", "A", "4.0"),
		gradeRow("C2", "课程", "2", "B", "3.0"),
	})
	list, err := Parser{}.Parse(context.Background(), small + large)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "C1", list[0].CourseCode)
}

func TestParseNoTable(t *testing.T) {
	list, err := Parser{}.Parse(context.Background(), `<html><body><p>暂无成绩</p></body></html>`)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestParseIdempotent(t *testing.T) {
	page := renderTable("grid1_data", []row{
		gradeRow("C1", "课程", "2", "A", "4.0"),
		gradeRow("C2", "课程", "2", "77", "--"),
		gradeRow("C3", "课程", "2", "不合格", "--"),
	})
	parser := Parser{SemesterID: "4262"}
	first, err := parser.Parse(context.Background(), page)
	require.NoError(t, err)
	second, err := parser.Parse(context.Background(), page)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestHasGradeTable(t *testing.T) {
	require.True(t, HasGradeTable(`<tbody id="grid123_data"></tbody>`))
	require.True(t, HasGradeTable(`<th>等级</th><th>绩点</th>`))
	require.True(t, HasGradeTable(`<th>总评成绩</th>`))
	require.True(t, HasGradeTable(`<th>课程名称</th><th>学分</th>`))
	require.True(t, HasGradeTable(`课程 88`))
	require.False(t, HasGradeTable(`<html><body>nothing here</body></html>`))
	require.False(t, HasGradeTable(`课程`))
}

func TestParseSpanJoinsCallerTrace(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		provider.Shutdown(context.Background())
	})

	ctx, parent := provider.Tracer("test").Start(context.Background(), "cycle")
	_, err := Parser{SemesterID: "4324"}.Parse(ctx, renderTable("grid1_data", []row{
		gradeRow("COMP0001", "程序设计", "3", "92", "4.0"),
	}))
	require.NoError(t, err)
	parent.End()

	var found bool
	for _, span := range recorder.Ended() {
		if span.Name() != "Parser.Parse" {
			continue
		}
		found = true
		require.Equal(t, parent.SpanContext().TraceID(), span.SpanContext().TraceID())
		require.Equal(t, parent.SpanContext().SpanID(), span.Parent().SpanID())
	}
	require.True(t, found)
}
