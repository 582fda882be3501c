package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidURL       = errors.New("invalid url")
	ErrInvalidPath      = errors.New("invalid output path")
	ErrNoTarget         = errors.New("no target url set")
	ErrNotProbed        = errors.New("target has not been probed")
	ErrNoOutputDir      = errors.New("no output directory set")
	ErrMalformedHeader  = errors.New("malformed response header")
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

// ProbeError wraps any failure of the capability probe: transport errors,
// timeouts, and malformed headers all surface through it.
type ProbeError struct {
	URL string
	Err error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.URL, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// FetchError wraps a part fetch failure. Status and Body are set when the
// server answered with something other than the expected status code.
type FetchError struct {
	Part   int
	Status int
	Body   string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("part %d: %v: got status %d | %s", e.Part, e.Err, e.Status, e.Body)
	}
	return fmt.Sprintf("part %d: %v", e.Part, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
