package eams

import (
	"errors"
	"fmt"
)

// ErrNoGradesPublished means the grade page was fetched but carries no
// grade table, usually because the semester has no grades yet.
var ErrNoGradesPublished = errors.New("eams: no grades published for semester")

// DiscoveryError describes why semester discovery fell back to the static
// catalog. It is logged, never returned.
type DiscoveryError struct {
	Step string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("eams: semester discovery failed at %s: %v", e.Step, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

type FetchError struct {
	Step string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("eams: fetch failed at %s: %v", e.Step, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError describes a grade row that could not be read.
type ParseError struct {
	Row int
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("eams: row %d: %v", e.Row, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
