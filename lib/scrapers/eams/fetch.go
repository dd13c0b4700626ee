package eams

import (
	"context"
	"errors"
	"fmt"
	"gradewatch/lib/scrapers/webvpn"
	"gradewatch/lib/textutil"
	"gradewatch/lib/timezone"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	StepSelectSemester   = "select-semester"
	StepDiscoverTag      = "discover-tag"
	StepRegisterSemester = "register-semester"
	StepProbeEntity      = "probe-entity"
	StepRenderGrades     = "render-grades"
)

// Fetcher drives the academic system's navigation sequence that ends in the
// rendered grade table of a semester.
type Fetcher struct {
	Endpoints Endpoints
	Tags      TagExtractor
}

type FetchResult struct {
	Html  string
	Trace Trace
}

func checkStatus(res *resty.Response) error {
	if res.IsError() {
		return fmt.Errorf("unexpected status %d", res.StatusCode())
	}
	return nil
}

// FetchRaw returns the grade page markup of a semester.
func (f Fetcher) FetchRaw(ctx context.Context, session *webvpn.Session, semesterID string) (string, error) {
	result, err := f.Fetch(ctx, session, semesterID)
	return result.Html, err
}

// Fetch is FetchRaw that also returns the step trace. The trace is filled
// in even when the fetch fails. ErrNoGradesPublished is returned when the
// page has no grade table.
func (f Fetcher) Fetch(ctx context.Context, session *webvpn.Session, semesterID string) (FetchResult, error) {
	ctx, span := tracer.Start(ctx, "Fetcher.Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("eams.semester_id", semesterID))

	endpoints := f.Endpoints.orDefault()
	tags := f.Tags
	if tags == nil {
		tags = RegexTagExtractor{}
	}
	origin := session.Origin()
	result := FetchResult{Trace: Trace{SemesterID: semesterID}}

	var landing, tag string
	steps := []pipelineStep{
		{
			name: StepSelectSemester,
			run: func(s *webvpn.Scope) (stepResult, error) {
				res, err := s.R().
					SetQueryParams(origin.EamsQuery).
					SetFormData(map[string]string{
						"project.id":  endpoints.ProjectID,
						"semester.id": semesterID,
					}).
					Post(origin.EamsPath(endpoints.Landing))
				if err != nil {
					return stepResult{}, err
				}
				landing = res.String()
				return ok(""), checkStatus(res)
			},
		},
		{
			name: StepDiscoverTag,
			run: func(*webvpn.Scope) (stepResult, error) {
				found, exists := tags.ExtractTag(landing)
				if !exists {
					tag = endpoints.FetchTag
					return stepResult{status: StepFallback, note: tag}, nil
				}
				tag = found
				return ok(tag), nil
			},
		},
		{
			name: StepRegisterSemester,
			run: func(s *webvpn.Scope) (stepResult, error) {
				res, err := s.R().
					SetQueryParams(origin.EamsQuery).
					SetFormData(map[string]string{
						"tagId":    tag,
						"dataType": "semesterCalendar",
						"value":    semesterID,
						"empty":    "false",
					}).
					Post(origin.EamsPath(endpoints.DataQuery))
				if err != nil {
					return stepResult{}, err
				}
				return ok(""), checkStatus(res)
			},
		},
		{
			name: StepProbeEntity,
			run: func(s *webvpn.Scope) (stepResult, error) {
				res, err := s.R().
					SetQueryParams(origin.EamsQuery).
					SetFormData(map[string]string{
						"entityId": endpoints.EntityID,
					}).
					Post(origin.EamsPath(endpoints.DataQuery))
				if err != nil {
					return stepResult{}, err
				}
				return ok(""), checkStatus(res)
			},
		},
		{
			name: StepRenderGrades,
			run: func(s *webvpn.Scope) (stepResult, error) {
				res, err := s.R().
					SetHeaders(map[string]string{
						"Accept":  "text/html, */*; q=0.01",
						"Referer": searchReferer(origin, endpoints, semesterID),
					}).
					SetQueryParams(origin.EamsQuery).
					SetQueryParams(map[string]string{
						"semesterId":  semesterID,
						"projectType": "",
						"_":           strconv.FormatInt(timezone.UnixMilli(), 10),
					}).
					Get(origin.EamsPath(endpoints.Search))
				if err != nil {
					return stepResult{}, err
				}
				result.Html = res.String()
				return ok(fmt.Sprintf("%d bytes", len(res.Body()))), checkStatus(res)
			},
		},
	}

	err := session.Scope(ctx, ajaxProfile(origin, endpoints), func(s *webvpn.Scope) error {
		return runPipeline(ctx, s, &result.Trace, steps)
	})
	slog.DebugContext(ctx, "fetch pipeline finished", "trace", result.Trace)
	if err != nil {
		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			err = &FetchError{Step: "scope", Err: err}
		}
		session.Invalidate()
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return result, err
	}

	if !HasGradeTable(result.Html) {
		span.SetStatus(codes.Error, "no grade table")
		return result, ErrNoGradesPublished
	}
	return result, nil
}

var shortNumberRegex = regexp.MustCompile(`\b\d{1,3}\b`)

// HasGradeTable reports whether a grade page looks like it carries grades,
// for any of the grading schemes.
func HasGradeTable(page string) bool {
	switch {
	case textutil.ContainsAll(page, "tbody", "grid", "_data"):
		return true
	case textutil.ContainsAll(page, "等级", "绩点"):
		return true
	case textutil.ContainsAny(page, "总评成绩", "最终") || textutil.ContainsAll(page, "课程名称", "学分"):
		return true
	case strings.Contains(page, "课程") && shortNumberRegex.MatchString(page):
		return true
	}
	return false
}
