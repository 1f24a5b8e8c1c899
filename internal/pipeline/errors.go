package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/couchcryptid/threat-level-monitor/internal/domain"
)

// Stage is the step of a source attempt that failed.
type Stage string

const (
	StageFetch Stage = "fetch"
	StageParse Stage = "parse"
)

// ErrNoLevel means a body was retrieved but no canonical level could be parsed from it.
var ErrNoLevel = errors.New("no recognizable threat level")

// AttemptError records why one source did not produce a reading.
type AttemptError struct {
	Source domain.SourceDescriptor
	Stage  Stage
	Err    error
}

func (e *AttemptError) Error() string {
	if e.Stage == StageParse {
		return fmt.Sprintf("%s: %s retrieved but %v", e.Source.Name, describeKind(e.Source.Kind), e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source.Name, e.Err)
}

func (e *AttemptError) Unwrap() error {
	return e.Err
}

// CycleError is the typed failure of an update cycle. Every configured source
// was tried and none produced a reading.
type CycleError struct {
	Attempts []*AttemptError
}

func (e *CycleError) Error() string {
	if len(e.Attempts) == 0 {
		return "update cycle failed: no sources configured"
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.Error()
	}
	return "all sources exhausted: " + strings.Join(parts, "; ")
}

// Unwrap exposes every attempt so errors.Is and errors.As reach the fetch errors.
func (e *CycleError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a
	}
	return errs
}

// Cause returns the error of the last source tried, or nil when none were.
func (e *CycleError) Cause() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1].Err
}

func describeKind(kind domain.SourceKind) string {
	switch kind {
	case domain.SourceStructuredFeed:
		return "feed"
	case domain.SourceUnstructuredPage:
		return "page"
	default:
		return "response"
	}
}
