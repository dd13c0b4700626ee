package eams

import "gradewatch/lib/grades"

// FallbackSemesters is the catalog used whenever discovery fails. It needs
// to be extended by hand each term.
func FallbackSemesters() []grades.Semester {
	return []grades.Semester{
		grades.NewSemester("4364", "2025-2026", "1"),
		grades.NewSemester("4344", "2024-2025", "3"),
		grades.NewSemester("4324", "2024-2025", "2"),
		grades.NewSemester("4262", "2024-2025", "1"),
		grades.NewSemester("4304", "2023-2024", "3"),
		grades.NewSemester("4284", "2023-2024", "2"),
		grades.NewSemester("4263", "2023-2024", "1"),
	}
}

// DefaultSemesterID is used when nothing else selects a semester.
const DefaultSemesterID = "4324"
