package gradestore

import (
	"context"
	"database/sql"
	"errors"
	"gradewatch/lib/grades"
	"gradewatch/lib/gradestore/db"
	"time"

	"go.opentelemetry.io/otel/codes"
)

// SQLStore keeps snapshots in a sqlite or libsql database with the schema
// in db.Schema.
type SQLStore struct {
	db  *sql.DB
	qry *db.Queries
}

func NewSQLStore(database *sql.DB) SQLStore {
	return SQLStore{
		db:  database,
		qry: db.New(database),
	}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return grades.Float(v.Float64)
}

func (s SQLStore) Load(ctx context.Context, target Target) (Snapshot, error) {
	ctx, span := tracer.Start(ctx, "SQLStore.Load")
	defer span.End()

	row, err := s.qry.GetSnapshot(ctx, db.GetSnapshotParams{
		Identity:   target.Identity,
		SemesterID: target.SemesterID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{Target: target}, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get snapshot")
		return Snapshot{}, err
	}

	rows, err := s.qry.GetSnapshotGrades(ctx, db.GetSnapshotGradesParams{
		Identity:   target.Identity,
		SemesterID: target.SemesterID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get snapshot grades")
		return Snapshot{}, err
	}

	list := make([]grades.Grade, len(rows))
	for i, r := range rows {
		list[i] = grades.Grade{
			SemesterID:     r.SemesterID,
			SemesterLabel:  r.SemesterLabel,
			CourseCode:     r.CourseCode,
			CourseSequence: r.CourseSequence,
			CourseName:     r.CourseName,
			CourseCategory: r.CourseCategory,
			Credits:        r.Credits,
			Scheme:         grades.Scheme(r.Scheme),
			RawGradeLabel:  r.GradeLabel,
			GPA:            floatPtr(r.Gpa),
			Score:          floatPtr(r.Score),
		}
	}

	return Snapshot{
		Target:  target,
		TakenAt: time.UnixMilli(row.TakenAt),
		Grades:  list,
	}, nil
}

// Save replaces the target's snapshot in one transaction.
func (s SQLStore) Save(ctx context.Context, snapshot Snapshot) error {
	ctx, span := tracer.Start(ctx, "SQLStore.Save")
	defer span.End()

	err := s.save(ctx, snapshot)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save snapshot")
	}
	return err
}

func (s SQLStore) save(ctx context.Context, snapshot Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	target := snapshot.Target
	err = txqry.DeleteSnapshotGrades(ctx, db.DeleteSnapshotGradesParams{
		Identity:   target.Identity,
		SemesterID: target.SemesterID,
	})
	if err != nil {
		return err
	}

	takenAt := snapshot.TakenAt
	if takenAt.IsZero() {
		takenAt = time.Now()
	}
	err = txqry.UpsertSnapshot(ctx, db.UpsertSnapshotParams{
		Identity:   target.Identity,
		SemesterID: target.SemesterID,
		TakenAt:    takenAt.UnixMilli(),
	})
	if err != nil {
		return err
	}

	for i, g := range snapshot.Grades {
		err = txqry.CreateSnapshotGrade(ctx, db.CreateSnapshotGradeParams{
			Identity:       target.Identity,
			SemesterID:     target.SemesterID,
			Position:       int64(i),
			CourseCode:     g.CourseCode,
			CourseSequence: g.CourseSequence,
			CourseName:     g.CourseName,
			CourseCategory: g.CourseCategory,
			SemesterLabel:  g.SemesterLabel,
			Credits:        g.Credits,
			Scheme:         string(g.Scheme),
			GradeLabel:     g.RawGradeLabel,
			Gpa:            nullFloat(g.GPA),
			Score:          nullFloat(g.Score),
		})
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Targets lists every target with a stored snapshot.
func (s SQLStore) Targets(ctx context.Context) ([]Target, error) {
	rows, err := s.qry.ListSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	targets := make([]Target, len(rows))
	for i, r := range rows {
		targets[i] = Target{Identity: r.Identity, SemesterID: r.SemesterID}
	}
	return targets, nil
}
