package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"gradewatch/lib/grades"
	"gradewatch/lib/scrapers/eams"
	"gradewatch/lib/scrapers/webvpn"
	"gradewatch/lib/scrapers/webvpn/webvpntest"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveSemester(t *testing.T) {
	testCases := []struct {
		choice string
		id     string
		name   string
	}{
		{"", eams.DefaultSemesterID, "2024-2025 第2学期"},
		{"2", "4344", "2024-2025 第3学期"},
		{"1", "4364", "2025-2026 第1学期"},
		{"4263", "4263", "2023-2024 第1学期"},
		{"4999", "4999", "4999"},
	}
	for _, test := range testCases {
		semester, err := resolveSemester(test.choice)
		require.NoError(t, err, "choice %q", test.choice)
		require.Equal(t, test.id, semester.ID, "choice %q", test.choice)
		require.Equal(t, test.name, semester.DisplayName, "choice %q", test.choice)
	}

	_, err := resolveSemester("99")
	require.Error(t, err)
	_, err = resolveSemester("next")
	require.Error(t, err)
}

func servePage(t *testing.T, page string) *webvpn.Session {
	gateway := webvpntest.New(t, "2112000", "secret")
	endpoints := eams.DefaultEndpoints()
	gateway.Handle(endpoints.Landing, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<div id="semesterBar777Semester"></div>`)
	})
	gateway.Handle(endpoints.DataQuery, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "{}")
	})
	gateway.Handle(endpoints.Search, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, page)
	})

	session, err := gateway.Authenticator().Open(context.Background(), gateway.Identity, gateway.Secret)
	require.NoError(t, err)
	return session
}

const gradePage = `<html><body><table class="gridtable"><tbody id="grid1_data">
<tr><td>2024-2025 2</td><td>COMP0001</td><td>COMP0001.01</td><td>程序设计</td><td>专业必修</td><td>3</td><td>92</td><td>4.0</td></tr>
</tbody></table></body></html>`

func TestWriteSemesterGrades(t *testing.T) {
	semester := grades.NewSemester("4324", "2024-2025", "2")

	var out bytes.Buffer
	err := writeSemesterGrades(context.Background(), servePage(t, gradePage), semester, false, &out)
	require.NoError(t, err)
	require.Contains(t, out.String(), semester.DisplayName)
	require.Contains(t, out.String(), "COMP0001")

	out.Reset()
	err = writeSemesterGrades(context.Background(), servePage(t, gradePage), semester, true, &out)
	require.NoError(t, err)
	var list []grades.Grade
	require.NoError(t, json.Unmarshal(out.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, grades.SchemePercentage, list[0].Scheme)
}

func TestWriteSemesterGradesNonePublished(t *testing.T) {
	semester := grades.NewSemester("4364", "2025-2026", "1")
	session := servePage(t, "<html><body>nothing here</body></html>")

	var out bytes.Buffer
	err := writeSemesterGrades(context.Background(), session, semester, false, &out)
	require.NoError(t, err)
	require.Contains(t, out.String(), "no grades published")
}
