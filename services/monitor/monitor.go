// Package monitor polls one student's grades on an interval and announces
// every change.
package monitor

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"gradewatch/lib/grades"
	"gradewatch/lib/gradestore"
	"gradewatch/lib/notify"
	"gradewatch/lib/scrapers/eams"
	"gradewatch/lib/scrapers/webvpn"
	"gradewatch/lib/telemetry"
	"gradewatch/lib/timezone"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = telemetry.Tracer("services/monitor")
	meter  = telemetry.Meter("services/monitor")
)

const (
	MinIntervalMinutes     = 5
	DefaultIntervalMinutes = 30
	// failed cycles are retried after this instead of the interval
	failureBackoff = time.Minute
)

// ClampInterval enforces the minimum polling interval.
func ClampInterval(minutes int) int {
	if minutes < MinIntervalMinutes {
		return MinIntervalMinutes
	}
	return minutes
}

type Options struct {
	Identity     string
	Secret       string
	SemesterID   string
	SemesterName string
	// IntervalMinutes is clamped with ClampInterval.
	IntervalMinutes int

	Authenticator webvpn.Authenticator
	Fetcher       eams.Fetcher
	Store         gradestore.Store
	// Notifier defaults to notify.Log.
	Notifier notify.Notifier

	// After replaces time.After, for tests.
	After func(time.Duration) <-chan time.Time
	// OnCycle is called after every cycle, it must not block.
	OnCycle func(CycleResult)
}

type CycleResult struct {
	ID       ulid.ULID
	Outcome  Outcome
	Grades   []grades.Grade
	Changes  grades.ChangeSet
	Err      error
	Duration time.Duration
}

// Monitor runs the polling cycle of one (identity, semester) target.
type Monitor struct {
	opts    Options
	state   atomic.Int32
	entropy io.Reader

	cycles  metric.Int64Counter
	skipped metric.Int64Counter
	changes metric.Int64Counter
}

func New(opts Options) (*Monitor, error) {
	if opts.Identity == "" || opts.Secret == "" {
		return nil, fmt.Errorf("identity and secret are required")
	}
	if !grades.ValidSemesterID(opts.SemesterID) {
		return nil, fmt.Errorf("invalid semester id %q", opts.SemesterID)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("a snapshot store is required")
	}
	if opts.IntervalMinutes == 0 {
		opts.IntervalMinutes = DefaultIntervalMinutes
	}
	clamped := ClampInterval(opts.IntervalMinutes)
	if clamped != opts.IntervalMinutes {
		slog.Warn("interval below minimum, clamping", "requested", opts.IntervalMinutes, "minutes", clamped)
		opts.IntervalMinutes = clamped
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Log{}
	}
	if opts.After == nil {
		opts.After = time.After
	}

	m := &Monitor{
		opts:    opts,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}

	var err error
	m.cycles, err = meter.Int64Counter("monitor.cycles", metric.WithDescription("Polling cycles run."))
	if err != nil {
		return nil, err
	}
	m.skipped, err = meter.Int64Counter("monitor.skipped_cycles", metric.WithDescription("Cycles that did not persist a snapshot."))
	if err != nil {
		return nil, err
	}
	m.changes, err = meter.Int64Counter("monitor.changes", metric.WithDescription("Added or updated grades detected."))
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Monitor) State() State {
	return State(m.state.Load())
}

func (m *Monitor) setState(s State) {
	m.state.Store(int32(s))
}

func (m *Monitor) Target() gradestore.Target {
	return gradestore.Target{Identity: m.opts.Identity, SemesterID: m.opts.SemesterID}
}

func (m *Monitor) Interval() time.Duration {
	return time.Duration(m.opts.IntervalMinutes) * time.Minute
}

// RunOnce runs a single cycle: a fresh login, fetch and parse, diff against
// the stored snapshot, persist, then notify when something changed.
// Failures are reported in the result, they never panic or stop a caller's
// loop.
func (m *Monitor) RunOnce(ctx context.Context) CycleResult {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), m.entropy)
	ctx, span := tracer.Start(ctx, "Monitor.RunOnce")
	defer span.End()
	span.SetAttributes(
		attribute.String("monitor.cycle", id.String()),
		attribute.String("monitor.identity", m.opts.Identity),
		attribute.String("monitor.semester", m.opts.SemesterID),
	)

	start := time.Now()
	result := m.cycle(ctx, id)
	result.ID = id
	result.Duration = time.Since(start)

	attrs := metric.WithAttributes(
		attribute.String("semester", m.opts.SemesterID),
		attribute.String("outcome", string(result.Outcome)),
	)
	m.cycles.Add(ctx, 1, attrs)
	if result.Outcome.Skipped() {
		m.skipped.Add(ctx, 1, attrs)
	}
	if n := result.Changes.Len(); n > 0 {
		m.changes.Add(ctx, int64(n), attrs)
	}

	logger := slog.With("cycle", id.String(), "semester", m.opts.SemesterID)
	switch result.Outcome {
	case OutcomeFailed:
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, "cycle failed")
		logger.WarnContext(ctx, "cycle skipped", "err", result.Err, "duration", result.Duration)
	case OutcomeNoGrades:
		logger.InfoContext(ctx, "no grades published, skipping this check")
	case OutcomeChanged:
		logger.InfoContext(
			ctx, "grades changed",
			"added", len(result.Changes.Added),
			"updated", len(result.Changes.Updated),
			"courses", len(result.Grades),
		)
	default:
		logger.InfoContext(ctx, "no changes", "courses", len(result.Grades))
	}
	return result
}

func failed(err error) CycleResult {
	return CycleResult{Outcome: OutcomeFailed, Err: err}
}

func (m *Monitor) cycle(ctx context.Context, id ulid.ULID) CycleResult {
	target := m.Target()

	m.setState(Authenticating)
	session, err := m.opts.Authenticator.Open(ctx, m.opts.Identity, m.opts.Secret)
	if err != nil {
		return failed(err)
	}

	m.setState(Fetching)
	fetched, err := m.opts.Fetcher.Fetch(ctx, session, m.opts.SemesterID)
	if errors.Is(err, eams.ErrNoGradesPublished) {
		return CycleResult{Outcome: OutcomeNoGrades}
	}
	if err != nil {
		return failed(err)
	}
	current, err := eams.Parser{SemesterID: m.opts.SemesterID}.Parse(ctx, fetched.Html)
	if err != nil {
		return failed(err)
	}
	if len(current) == 0 {
		return CycleResult{Outcome: OutcomeNoGrades}
	}

	m.setState(Diffing)
	previous, err := m.opts.Store.Load(ctx, target)
	if errors.Is(err, gradestore.ErrCorruptSnapshot) {
		slog.WarnContext(ctx, "stored snapshot unreadable, comparing against nothing", "err", err)
		previous = gradestore.Snapshot{Target: target}
	} else if err != nil {
		return failed(fmt.Errorf("load snapshot: %w", err))
	}
	changes := grades.Diff(previous.Grades, current)

	m.setState(Persisting)
	err = m.opts.Store.Save(ctx, gradestore.Snapshot{
		Target:  target,
		TakenAt: timezone.Now(),
		Grades:  current,
	})
	if err != nil {
		return failed(fmt.Errorf("save snapshot: %w", err))
	}

	result := CycleResult{
		Outcome: OutcomeUnchanged,
		Grades:  current,
		Changes: changes,
	}
	if changes.Empty() {
		return result
	}
	result.Outcome = OutcomeChanged

	m.setState(Notifying)
	err = m.opts.Notifier.Notify(ctx, notify.Message{
		Identity:     m.opts.Identity,
		SemesterID:   m.opts.SemesterID,
		SemesterName: m.opts.SemesterName,
		At:           timezone.Now(),
		Changes:      changes,
		Summary:      grades.Summarize(current),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to notify", "cycle", id.String(), "err", err)
	}
	return result
}

// Run polls until ctx is cancelled, which is the only way it returns.
func (m *Monitor) Run(ctx context.Context) error {
	defer m.setState(Stopped)

	slog.InfoContext(
		ctx, "monitoring grades",
		"identity", m.opts.Identity,
		"semester", m.opts.SemesterID,
		"interval_minutes", m.opts.IntervalMinutes,
	)

	count := 0
	for {
		count++
		slog.DebugContext(ctx, "starting check", "count", count, "at", timezone.Now().Format(time.DateTime))

		result := m.RunOnce(ctx)
		if m.opts.OnCycle != nil {
			m.opts.OnCycle(result)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		wait := m.Interval()
		if result.Outcome == OutcomeFailed {
			wait = failureBackoff
		}
		slog.InfoContext(ctx, "next check", "at", timezone.Now().Add(wait).Format(time.TimeOnly))

		m.setState(Waiting)
		err := m.wait(ctx, wait)
		if err != nil {
			return err
		}
	}
}

// wait sleeps in one minute steps so that cancellation is noticed within a
// minute, logging the remaining time every five minutes.
func (m *Monitor) wait(ctx context.Context, d time.Duration) error {
	minutes := int(d / time.Minute)
	for i := 0; i < minutes; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.opts.After(time.Minute):
		}
		remaining := minutes - i - 1
		if remaining > 0 && remaining%5 == 0 {
			slog.InfoContext(ctx, "waiting for next check", "remaining_minutes", remaining)
		}
	}
	return nil
}
