// Package gradestore persists the last observed grades of every monitored
// target, so that a restart does not re-announce everything.
package gradestore

import (
	"context"
	"errors"
	"gradewatch/lib/grades"
	"time"
)

// Target identifies one monitored (identity, semester) pair.
type Target struct {
	Identity   string
	SemesterID string
}

type Snapshot struct {
	Target  Target
	TakenAt time.Time
	Grades  []grades.Grade
}

// Empty reports whether nothing was ever stored for the target.
func (s Snapshot) Empty() bool {
	return s.TakenAt.IsZero() && len(s.Grades) == 0
}

var ErrCorruptSnapshot = errors.New("gradestore: corrupt snapshot")

// Store loads and replaces snapshots. Load returns an empty snapshot, not an
// error, when nothing is stored for the target.
type Store interface {
	Load(ctx context.Context, target Target) (Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot) error
}
