package errorcase

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingKey reports a query present in one ranking but not the other.
	ErrMissingKey = errors.New("query missing from comparison ranking")
	// ErrResultFileNotFound reports a query without a per-query candidate table.
	ErrResultFileNotFound = errors.New("result table not found")
	// ErrIndexOutOfRange reports a ground-truth rank that does not address a candidate row.
	ErrIndexOutOfRange = errors.New("ground-truth rank out of range")
	// ErrMalformedResult reports a candidate table that cannot be interpreted.
	ErrMalformedResult = errors.New("malformed result table")
	// ErrMissingPitchTrack reports a query without an extracted pitch track.
	ErrMissingPitchTrack = errors.New("query pitch track not found")
	// ErrMissingScoreRecord reports a phrase name absent from the loaded score records.
	ErrMissingScoreRecord = errors.New("score record not found")
	// ErrRender reports a failure inside the rendering collaborator.
	ErrRender = errors.New("render failed")
)

// CaseError ties a failure to the query phrase and file that caused it.
// errors.Is matches both Kind and the wrapped cause.
type CaseError struct {
	Kind   error
	Query  string
	Path   string
	Detail string
	Err    error
}

func (e *CaseError) Error() string {
	var b strings.Builder
	if e.Query != "" {
		fmt.Fprintf(&b, "query %s: ", e.Query)
	}
	b.WriteString(e.Kind.Error())
	if e.Path != "" {
		fmt.Fprintf(&b, " (%s)", e.Path)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *CaseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
