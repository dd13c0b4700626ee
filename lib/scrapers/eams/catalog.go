package eams

import (
	"context"
	"fmt"
	"gradewatch/lib/grades"
	"gradewatch/lib/scrapers/webvpn"
	"gradewatch/lib/telemetry"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("scrapers/eams")

// Catalog discovers the semesters a student can select. The zero value uses
// the default endpoints and the regex extractors.
type Catalog struct {
	Endpoints Endpoints
	Tags      TagExtractor
	Blob      SemesterBlobExtractor
}

func (c Catalog) tags() TagExtractor {
	if c.Tags == nil {
		return RegexTagExtractor{}
	}
	return c.Tags
}

func (c Catalog) blob() SemesterBlobExtractor {
	if c.Blob == nil {
		return RegexBlobExtractor{}
	}
	return c.Blob
}

// Discover asks the academic system for its semester calendar. It never
// fails, any problem is logged and the static catalog is returned instead.
func (c Catalog) Discover(ctx context.Context, session *webvpn.Session) []grades.Semester {
	ctx, span := tracer.Start(ctx, "Catalog.Discover")
	defer span.End()

	semesters, err := c.discover(ctx, session)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "using fallback semesters")
		slog.WarnContext(ctx, "semester discovery failed, using fallback catalog", "err", err)
		return FallbackSemesters()
	}

	span.SetAttributes(attribute.Int("eams.semesters", len(semesters)))
	slog.DebugContext(ctx, "discovered semesters", "count", len(semesters))
	return semesters
}

func (c Catalog) discover(ctx context.Context, session *webvpn.Session) ([]grades.Semester, error) {
	endpoints := c.Endpoints.orDefault()
	origin := session.Origin()

	profile := webvpn.Profile{
		Name: "eams-catalog",
		Headers: map[string]string{
			"X-Requested-With": "XMLHttpRequest",
			"Referer":          origin.EamsUrl(endpoints.Home),
		},
	}

	var body string
	err := session.Scope(ctx, profile, func(s *webvpn.Scope) error {
		res, err := s.R().
			SetQueryParams(origin.EamsQuery).
			Get(origin.EamsPath(endpoints.Landing))
		if err != nil {
			return &DiscoveryError{Step: "landing", Err: err}
		}

		tag, ok := c.tags().ExtractTag(res.String())
		if !ok {
			slog.WarnContext(ctx, "no semester tag on landing page, using default", "tag", endpoints.CatalogTag)
			tag = endpoints.CatalogTag
		}

		s.SetHeaders(map[string]string{"Content-Type": formContentType})
		res, err = s.R().
			SetQueryParams(origin.EamsQuery).
			SetFormData(map[string]string{
				"tagId":    tag,
				"dataType": "semesterCalendar",
				"value":    endpoints.CatalogProbe,
				"empty":    "false",
			}).
			Post(origin.EamsPath(endpoints.DataQuery))
		if err != nil {
			return &DiscoveryError{Step: "calendar", Err: err}
		}
		if res.StatusCode() != http.StatusOK {
			return &DiscoveryError{
				Step: "calendar",
				Err:  fmt.Errorf("unexpected status %d", res.StatusCode()),
			}
		}
		body = res.String()
		return nil
	})
	if err != nil {
		return nil, err
	}

	semesters, err := c.blob().ExtractSemesters(body)
	if err != nil {
		return nil, &DiscoveryError{Step: "extract", Err: err}
	}
	return semesters, nil
}

// Resolve picks a semester by 1-based catalog index or by four digit id,
// an empty choice selects the newest semester.
func (c Catalog) Resolve(ctx context.Context, session *webvpn.Session, choice string) (grades.Semester, error) {
	semesters := c.Discover(ctx, session)
	return Choose(semesters, choice)
}

// Choose is the lookup behind Resolve, it works on an already discovered
// catalog.
func Choose(semesters []grades.Semester, choice string) (grades.Semester, error) {
	choice = strings.TrimSpace(choice)
	if choice == "" {
		if len(semesters) == 0 {
			return grades.Semester{}, fmt.Errorf("semester catalog is empty")
		}
		return semesters[0], nil
	}

	if grades.ValidSemesterID(choice) {
		for _, s := range semesters {
			if s.ID == choice {
				return s, nil
			}
		}
		// not every valid id is listed in the calendar
		return grades.Semester{ID: choice, DisplayName: choice}, nil
	}

	index, err := strconv.Atoi(choice)
	if err != nil {
		return grades.Semester{}, fmt.Errorf("invalid semester choice %q", choice)
	}
	if index < 1 || index > len(semesters) {
		return grades.Semester{}, fmt.Errorf("semester choice %d out of range 1-%d", index, len(semesters))
	}
	return semesters[index-1], nil
}
