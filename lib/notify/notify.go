// Package notify delivers grade change summaries to the student.
package notify

import (
	"context"
	"errors"
	"fmt"
	"gradewatch/lib/grades"
	"gradewatch/lib/telemetry"
	"time"
)

var tracer = telemetry.Tracer("lib/notify")

// Message is one change summary, it is only sent for a non-empty change
// set.
type Message struct {
	Identity     string
	SemesterID   string
	SemesterName string
	At           time.Time
	Changes      grades.ChangeSet
	// Summary covers every grade of the semester, not only the changes.
	Summary grades.Summary
}

// Title follows the wording students already know from earlier versions
// of the notifier.
func (m Message) Title() string {
	added, updated := len(m.Changes.Added), len(m.Changes.Updated)
	switch {
	case added > 0 && updated > 0:
		return fmt.Sprintf("🎓 成绩更新通知 - 新增%d门，更新%d门", added, updated)
	case added > 0:
		return fmt.Sprintf("🎓 新增成绩通知 - %d门课程", added)
	default:
		return fmt.Sprintf("🎓 成绩更新通知 - %d门课程", updated)
	}
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Error is returned by a sink that failed to deliver.
type Error struct {
	Sink string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("notify: %s: %v", e.Sink, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Multi delivers to every sink, one failing sink does not stop the others.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range m {
		err := n.Notify(ctx, msg)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
