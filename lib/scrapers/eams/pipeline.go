package eams

import (
	"context"
	"fmt"
	"gradewatch/lib/scrapers/webvpn"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"
)

type StepStatus string

const (
	StepOK       StepStatus = "ok"
	StepFallback StepStatus = "fallback"
	StepFailed   StepStatus = "failed"
)

type StepOutcome struct {
	Name     string
	Status   StepStatus
	Duration time.Duration
	Note     string
}

// Trace records what every step of a fetch did, in order.
type Trace struct {
	SemesterID string
	Steps      []StepOutcome
}

func (t Trace) String() string {
	parts := make([]string, len(t.Steps))
	for i, s := range t.Steps {
		parts[i] = fmt.Sprintf("%s=%s(%s)", s.Name, s.Status, s.Duration.Round(time.Millisecond))
	}
	return strings.Join(parts, " ")
}

func (t Trace) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(t.Steps)+1)
	attrs = append(attrs, slog.String("semester", t.SemesterID))
	for _, s := range t.Steps {
		value := string(s.Status)
		if s.Note != "" {
			value += ": " + s.Note
		}
		attrs = append(attrs, slog.String(s.Name, value))
	}
	return slog.GroupValue(attrs...)
}

// stepResult is what a step reports besides an error.
type stepResult struct {
	status StepStatus
	note   string
}

func ok(note string) stepResult {
	return stepResult{status: StepOK, note: note}
}

type pipelineStep struct {
	name string
	run  func(s *webvpn.Scope) (stepResult, error)
}

// runPipeline executes steps in order inside one scope and stops at the
// first failure, which is returned as a *FetchError.
func runPipeline(ctx context.Context, scope *webvpn.Scope, trace *Trace, steps []pipelineStep) error {
	for _, step := range steps {
		_, span := tracer.Start(ctx, "step:"+step.name)

		start := time.Now()
		result, err := step.run(scope)
		outcome := StepOutcome{
			Name:     step.name,
			Status:   result.status,
			Duration: time.Since(start),
			Note:     result.note,
		}
		if err != nil {
			outcome.Status = StepFailed
			outcome.Note = err.Error()
			span.RecordError(err)
			span.SetStatus(codes.Error, "step failed")
		}
		trace.Steps = append(trace.Steps, outcome)
		span.End()

		if err != nil {
			return &FetchError{Step: step.name, Err: err}
		}
	}
	return nil
}
