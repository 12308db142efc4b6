package gitlog

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedHeader is returned when a revision line lacks the author or date token
	ErrMalformedHeader = errors.New("malformed commit header")
	// ErrInvalidChangeCount is returned when a numstat count is neither a number nor "-"
	ErrInvalidChangeCount = errors.New("invalid change count")
)

// LineError ties a parse failure to the input line that caused it
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
