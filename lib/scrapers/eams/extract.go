package eams

import (
	"fmt"
	"gradewatch/lib/grades"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// TagExtractor finds the semester bar tag id on the grade landing page.
type TagExtractor interface {
	ExtractTag(page string) (string, bool)
}

// SemesterBlobExtractor reads the semester calendar out of a dataQuery
// response, which is a javascript object literal rather than json.
type SemesterBlobExtractor interface {
	ExtractSemesters(body string) ([]grades.Semester, error)
}

var tagRegex = regexp.MustCompile(`semesterBar(\d+)Semester`)

type RegexTagExtractor struct{}

func (RegexTagExtractor) ExtractTag(page string) (string, bool) {
	groups := tagRegex.FindStringSubmatch(page)
	if len(groups) < 2 {
		return "", false
	}
	return fmt.Sprintf("semesterBar%sSemester", groups[1]), true
}

var (
	semestersBlobRegex = regexp.MustCompile(`(?s)semesters:\s*({.*?})\s*,\s*yearIndex`)
	yearBucketRegex    = regexp.MustCompile(`(?s)(y\d+):\s*\[(.*?)\]`)
	semesterEntryRegex = regexp.MustCompile(`\{id:(\d+),schoolYear:"([^"]+)",name:"([^"]+)"\}`)
)

type RegexBlobExtractor struct{}

type yearBucket struct {
	order     int
	semesters []grades.Semester
}

func yearOrder(key string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(key, "y"))
	if err != nil {
		return -1
	}
	return n
}

func termOrder(term string) int {
	n, err := strconv.Atoi(term)
	if err != nil {
		return -1
	}
	return n
}

// ExtractSemesters returns the semesters with four digit ids, year buckets
// newest first and terms within a bucket newest first.
func (RegexBlobExtractor) ExtractSemesters(body string) ([]grades.Semester, error) {
	blob := semestersBlobRegex.FindStringSubmatch(body)
	if len(blob) < 2 {
		return nil, fmt.Errorf("semesters object not found")
	}

	var buckets []yearBucket
	for _, year := range yearBucketRegex.FindAllStringSubmatch(blob[1], -1) {
		bucket := yearBucket{order: yearOrder(year[1])}
		for _, entry := range semesterEntryRegex.FindAllStringSubmatch(year[2], -1) {
			bucket.semesters = append(
				bucket.semesters,
				grades.NewSemester(entry[1], entry[2], entry[3]),
			)
		}
		if len(bucket.semesters) > 0 {
			buckets = append(buckets, bucket)
		}
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].order > buckets[j].order
	})

	var out []grades.Semester
	for _, bucket := range buckets {
		sort.SliceStable(bucket.semesters, func(i, j int) bool {
			return termOrder(bucket.semesters[i].Term) > termOrder(bucket.semesters[j].Term)
		})
		for _, s := range bucket.semesters {
			if grades.ValidSemesterID(s.ID) {
				out = append(out, s)
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no selectable semesters in calendar")
	}
	return out, nil
}
