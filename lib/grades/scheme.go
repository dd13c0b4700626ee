package grades

import (
	"gradewatch/lib/textutil"
	"math"
	"strconv"
	"strings"
)

var letterGrades = map[string]bool{
	"A": true, "A-": true,
	"B+": true, "B": true, "B-": true,
	"C+": true, "C": true, "C-": true,
	"D": true, "F": true,
}

var passFailTokens = map[string]bool{
	"通过": true, "不通过": true, "合格": true, "不合格": true,
	"pass": true, "fail": true, "qualified": true, "unqualified": true,
}

const gpaPlaceholder = "--"

type gpaStep struct {
	lowerBound float64
	gpa        float64
}

// inclusive lower bounds, highest first
var percentageLadder = []gpaStep{
	{90, 4.0},
	{85, 3.7},
	{82, 3.3},
	{78, 3.0},
	{75, 2.7},
	{72, 2.3},
	{68, 2.0},
	{64, 1.5},
	{60, 1.0},
}

// PercentageToGPA maps a percentage score onto the 4.0 scale.
func PercentageToGPA(score float64) float64 {
	for _, step := range percentageLadder {
		if score >= step.lowerBound {
			return step.gpa
		}
	}
	return 0.0
}

// Classification is the scheme-specific reading of a grade's primary
// (column 6) and secondary (column 7) text.
type Classification struct {
	Scheme Scheme
	Label  string
	GPA    *float64
	Score  *float64
}

// Classify assigns exactly one scheme, by fixed priority: letter, pass/fail,
// percentage, unknown.
func Classify(primary, secondary string) Classification {
	primary = strings.TrimSpace(primary)
	secondary = strings.TrimSpace(secondary)

	if letterGrades[primary] {
		return Classification{
			Scheme: SchemeLetter,
			Label:  primary,
			GPA:    parseSecondaryGPA(secondary),
		}
	}

	if passFailTokens[textutil.NormalizeToken(primary)] {
		return Classification{
			Scheme: SchemePassFail,
			Label:  primary,
		}
	}

	score, err := strconv.ParseFloat(primary, 64)
	if err == nil && !math.IsNaN(score) && !math.IsInf(score, 0) && score >= 0 {
		return Classification{
			Scheme: SchemePercentage,
			Label:  primary,
			GPA:    Float(PercentageToGPA(score)),
			Score:  Float(score),
		}
	}

	return Classification{
		Scheme: SchemeUnknown,
		Label:  primary,
	}
}

func parseSecondaryGPA(text string) *float64 {
	if text == gpaPlaceholder || text == "" {
		return nil
	}
	gpa, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(gpa) || math.IsInf(gpa, 0) {
		return nil
	}
	return Float(gpa)
}
