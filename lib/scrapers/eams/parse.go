package eams

import (
	"context"
	"fmt"
	"gradewatch/lib/grades"
	"gradewatch/lib/htmlutil"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const minGradeCells = 8

// Parser turns a rendered grade page into canonical grades. Every grade is
// stamped with SemesterID.
type Parser struct {
	SemesterID string
}

func isGradeBody(_ int, s *goquery.Selection) bool {
	id := s.AttrOr("id", "")
	return strings.Contains(id, "grid") && strings.Contains(id, "_data")
}

// gradeBody finds the grade table body, falling back to the tbody with the
// most rows when none has the grid id.
func gradeBody(doc *goquery.Document) *goquery.Selection {
	tbodies := doc.Find("tbody")
	if tbodies.Length() == 0 {
		return nil
	}

	byId := tbodies.FilterFunction(isGradeBody)
	if byId.Length() > 0 {
		return byId.First()
	}

	var best *goquery.Selection
	bestRows := -1
	tbodies.Each(func(_ int, s *goquery.Selection) {
		rows := s.Find("tr").Length()
		if rows > bestRows {
			best = s
			bestRows = rows
		}
	})
	slog.Debug("grade table id not found, using largest tbody", "rows", bestRows)
	return best
}

// Parse returns the grades in table order. It only fails when the markup
// cannot be read at all, unreadable rows are logged and skipped.
func (p Parser) Parse(ctx context.Context, page string) ([]grades.Grade, error) {
	ctx, span := tracer.Start(ctx, "Parser.Parse")
	defer span.End()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("read grade page: %w", err)
	}

	body := gradeBody(doc)
	if body == nil {
		return []grades.Grade{}, nil
	}

	out := []grades.Grade{}
	body.Find("tr").Each(func(i int, row *goquery.Selection) {
		grade, err := p.parseRow(htmlutil.Cells(row))
		if err != nil {
			slog.WarnContext(ctx, "skipping grade row", "err", &ParseError{Row: i + 1, Err: err})
			return
		}
		if grade.Scheme == grades.SchemeUnknown {
			slog.WarnContext(
				ctx, "unrecognized grade format",
				"course", grade.CourseName,
				"grade", grade.RawGradeLabel,
			)
		}
		out = append(out, grade)
	})
	return out, nil
}

func (p Parser) parseRow(cells []string) (grades.Grade, error) {
	if len(cells) < minGradeCells {
		return grades.Grade{}, fmt.Errorf("expected at least %d cells, got %d", minGradeCells, len(cells))
	}

	credits, err := strconv.ParseFloat(cells[5], 64)
	if err != nil {
		return grades.Grade{}, fmt.Errorf("invalid credits %q: %w", cells[5], err)
	}
	if credits < 0 || math.IsNaN(credits) || math.IsInf(credits, 0) {
		return grades.Grade{}, fmt.Errorf("invalid credits %v", credits)
	}

	c := grades.Classify(cells[6], cells[7])
	return grades.Grade{
		SemesterID:     p.SemesterID,
		SemesterLabel:  cells[0],
		CourseCode:     cells[1],
		CourseSequence: cells[2],
		CourseName:     cells[3],
		CourseCategory: cells[4],
		Credits:        credits,
		Scheme:         c.Scheme,
		RawGradeLabel:  c.Label,
		GPA:            c.GPA,
		Score:          c.Score,
	}, nil
}
