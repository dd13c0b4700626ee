package db

import (
	"context"
	"database/sql"
)

const getSnapshot = `-- name: GetSnapshot :one
select identity, semester_id, taken_at from snapshot
where identity = ? and semester_id = ?
`

type GetSnapshotParams struct {
	Identity   string
	SemesterID string
}

func (q *Queries) GetSnapshot(ctx context.Context, arg GetSnapshotParams) (Snapshot, error) {
	row := q.db.QueryRowContext(ctx, getSnapshot, arg.Identity, arg.SemesterID)
	var i Snapshot
	err := row.Scan(&i.Identity, &i.SemesterID, &i.TakenAt)
	return i, err
}

const getSnapshotGrades = `-- name: GetSnapshotGrades :many
select
    identity, semester_id, position, course_code, course_sequence, course_name,
    course_category, semester_label, credits, scheme, grade_label, gpa, score
from snapshot_grade
where identity = ? and semester_id = ?
order by position
`

type GetSnapshotGradesParams struct {
	Identity   string
	SemesterID string
}

func (q *Queries) GetSnapshotGrades(ctx context.Context, arg GetSnapshotGradesParams) ([]SnapshotGrade, error) {
	rows, err := q.db.QueryContext(ctx, getSnapshotGrades, arg.Identity, arg.SemesterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SnapshotGrade
	for rows.Next() {
		var i SnapshotGrade
		if err := rows.Scan(
			&i.Identity,
			&i.SemesterID,
			&i.Position,
			&i.CourseCode,
			&i.CourseSequence,
			&i.CourseName,
			&i.CourseCategory,
			&i.SemesterLabel,
			&i.Credits,
			&i.Scheme,
			&i.GradeLabel,
			&i.Gpa,
			&i.Score,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteSnapshotGrades = `-- name: DeleteSnapshotGrades :exec
delete from snapshot_grade
where identity = ? and semester_id = ?
`

type DeleteSnapshotGradesParams struct {
	Identity   string
	SemesterID string
}

func (q *Queries) DeleteSnapshotGrades(ctx context.Context, arg DeleteSnapshotGradesParams) error {
	_, err := q.db.ExecContext(ctx, deleteSnapshotGrades, arg.Identity, arg.SemesterID)
	return err
}

const upsertSnapshot = `-- name: UpsertSnapshot :exec
insert into snapshot(identity, semester_id, taken_at)
values (?, ?, ?)
on conflict (identity, semester_id) do update set taken_at = excluded.taken_at
`

type UpsertSnapshotParams struct {
	Identity   string
	SemesterID string
	TakenAt    int64
}

func (q *Queries) UpsertSnapshot(ctx context.Context, arg UpsertSnapshotParams) error {
	_, err := q.db.ExecContext(ctx, upsertSnapshot, arg.Identity, arg.SemesterID, arg.TakenAt)
	return err
}

const createSnapshotGrade = `-- name: CreateSnapshotGrade :exec
insert into snapshot_grade(
    identity, semester_id, position, course_code, course_sequence, course_name,
    course_category, semester_label, credits, scheme, grade_label, gpa, score
) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateSnapshotGradeParams struct {
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

func (q *Queries) CreateSnapshotGrade(ctx context.Context, arg CreateSnapshotGradeParams) error {
	_, err := q.db.ExecContext(ctx, createSnapshotGrade,
		arg.Identity,
		arg.SemesterID,
		arg.Position,
		arg.CourseCode,
		arg.CourseSequence,
		arg.CourseName,
		arg.CourseCategory,
		arg.SemesterLabel,
		arg.Credits,
		arg.Scheme,
		arg.GradeLabel,
		arg.Gpa,
		arg.Score,
	)
	return err
}

const listSnapshots = `-- name: ListSnapshots :many
select identity, semester_id, taken_at from snapshot
order by identity, semester_id
`

func (q *Queries) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	rows, err := q.db.QueryContext(ctx, listSnapshots)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Snapshot
	for rows.Next() {
		var i Snapshot
		if err := rows.Scan(&i.Identity, &i.SemesterID, &i.TakenAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
