// Package grades holds the canonical grade model shared by the scraper, the
// snapshot stores and the monitor.
package grades

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

type Scheme string

const (
	SchemePercentage Scheme = "percentage"
	SchemeLetter     Scheme = "letter"
	SchemePassFail   Scheme = "pass_fail"
	SchemeUnknown    Scheme = "unknown"
)

func (s Scheme) Valid() bool {
	switch s {
	case SchemePercentage, SchemeLetter, SchemePassFail, SchemeUnknown:
		return true
	}
	return false
}

// Grade is one row of the grade table in canonical form.
type Grade struct {
	SemesterID     string   `json:"semester_id"`
	SemesterLabel  string   `json:"semester_label"`
	CourseCode     string   `json:"course_code"`
	CourseSequence string   `json:"course_sequence"`
	CourseName     string   `json:"course_name"`
	CourseCategory string   `json:"course_category"`
	Credits        float64  `json:"credits"`
	Scheme         Scheme   `json:"scheme"`
	RawGradeLabel  string   `json:"grade_label"`
	GPA            *float64 `json:"gpa"`
	// Score is only set for the percentage scheme.
	Score *float64 `json:"score,omitempty"`
}

// Float returns a pointer to v, for building optional GPA and score values.
func Float(v float64) *float64 {
	return &v
}

func equalOptional(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// GPAText renders the GPA the way the portal does, with "--" for none.
func (g Grade) GPAText() string {
	if g.GPA == nil {
		return "--"
	}
	return strconv.FormatFloat(*g.GPA, 'f', 1, 64)
}

type Semester struct {
	ID          string `json:"id"`
	SchoolYear  string `json:"school_year"`
	Term        string `json:"term"`
	DisplayName string `json:"display_name"`
}

func NewSemester(id, schoolYear, term string) Semester {
	return Semester{
		ID:          id,
		SchoolYear:  schoolYear,
		Term:        term,
		DisplayName: fmt.Sprintf("%s 第%s学期", schoolYear, term),
	}
}

var semesterIdRegex = regexp.MustCompile(`^\d{4}$`)

// ValidSemesterID reports whether id follows the portal's convention for
// user-selectable semesters: exactly four digits.
func ValidSemesterID(id string) bool {
	return semesterIdRegex.MatchString(id)
}

func termNumber(term string) int {
	n, err := strconv.Atoi(term)
	if err != nil {
		return -1
	}
	return n
}

// SortSemesters orders semesters by school year descending, then by term
// descending.
func SortSemesters(semesters []Semester) {
	sort.SliceStable(semesters, func(i, j int) bool {
		a, b := semesters[i], semesters[j]
		if a.SchoolYear != b.SchoolYear {
			return a.SchoolYear > b.SchoolYear
		}
		return termNumber(a.Term) > termNumber(b.Term)
	})
}
