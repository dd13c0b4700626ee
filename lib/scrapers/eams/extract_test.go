package eams

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const calendarResponse = `{yearDom:"<tr><td>...</td></tr>",termDom:"",
semesters:{y0:[{id:123,schoolYear:"2022-2023",name:"1"}],
y2:[{id:4262,schoolYear:"2024-2025",name:"1"},{id:4344,schoolYear:"2024-2025",name:"3"},{id:4324,schoolYear:"2024-2025",name:"2"}],
y1:[{id:4263,schoolYear:"2023-2024",name:"1"},{id:4284,schoolYear:"2023-2024",name:"2"}],
y3:[]},
yearIndex:"2",termIndex:"1",semesterId:"4324"}`

func TestRegexTagExtractor(t *testing.T) {
	tag, ok := RegexTagExtractor{}.ExtractTag(`<div id="semesterBar9876543Semester"></div>`)
	require.True(t, ok)
	require.Equal(t, "semesterBar9876543Semester", tag)

	_, ok = RegexTagExtractor{}.ExtractTag(`<div id="semesterBar"></div>`)
	require.False(t, ok)
}

func TestRegexBlobExtractor(t *testing.T) {
	semesters, err := RegexBlobExtractor{}.ExtractSemesters(calendarResponse)
	require.NoError(t, err)

	ids := make([]string, len(semesters))
	for i, s := range semesters {
		ids[i] = s.ID
	}
	// 123 is not a selectable semester
	require.Equal(t, []string{"4344", "4324", "4262", "4284", "4263"}, ids)
	require.Equal(t, "2024-2025 第3学期", semesters[0].DisplayName)
	require.Equal(t, "3", semesters[0].Term)
	require.Equal(t, "2024-2025", semesters[0].SchoolYear)
}

func TestRegexBlobExtractorFailures(t *testing.T) {
	_, err := RegexBlobExtractor{}.ExtractSemesters(`{"error":"session expired"}`)
	require.Error(t, err)

	_, err = RegexBlobExtractor{}.ExtractSemesters(`semesters:{y0:[{id:123,schoolYear:"2022-2023",name:"1"}]},yearIndex:"0"`)
	require.Error(t, err)
}

func TestFallbackSemesters(t *testing.T) {
	semesters := FallbackSemesters()
	require.Len(t, semesters, 7)
	require.Equal(t, "4364", semesters[0].ID)
	require.Equal(t, "2025-2026 第1学期", semesters[0].DisplayName)
	for _, s := range semesters {
		require.Len(t, s.ID, 4)
	}
}

func TestChoose(t *testing.T) {
	semesters := FallbackSemesters()

	s, err := Choose(semesters, "")
	require.NoError(t, err)
	require.Equal(t, "4364", s.ID)

	s, err = Choose(semesters, "3")
	require.NoError(t, err)
	require.Equal(t, "4324", s.ID)

	s, err = Choose(semesters, "4284")
	require.NoError(t, err)
	require.Equal(t, "2023-2024 第2学期", s.DisplayName)

	s, err = Choose(semesters, "4999")
	require.NoError(t, err)
	require.Equal(t, "4999", s.ID)

	_, err = Choose(semesters, "8")
	require.Error(t, err)
	_, err = Choose(semesters, "spring")
	require.Error(t, err)
	_, err = Choose(nil, "")
	require.Error(t, err)
}
