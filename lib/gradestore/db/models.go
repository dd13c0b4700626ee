package db

import "database/sql"

type Snapshot struct {
	Identity   string
	SemesterID string
	TakenAt    int64
}

type SnapshotGrade struct {
	Identity       string
	SemesterID     string
	Position       int64
	CourseCode     string
	CourseSequence string
	CourseName     string
	CourseCategory string
	SemesterLabel  string
	Credits        float64
	Scheme         string
	GradeLabel     string
	Gpa            sql.NullFloat64
	Score          sql.NullFloat64
}
