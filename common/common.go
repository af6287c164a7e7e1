package common

import (
	"errors"
	"fmt"
	"time"
)

// SimpleTimeFormat is the format used for dates in config files and reports
const SimpleTimeFormat = "2006-01-02"

var (
	// ErrNilPointer defines an error for a nil pointer argument
	ErrNilPointer = errors.New("nil pointer")
	// ErrDateUnset is returned when a required date has not been set
	ErrDateUnset = errors.New("date unset")
	// ErrStartAfterEnd is returned when a start date is not before its end date
	ErrStartAfterEnd = errors.New("start date after end date")
)

// StartEndTimeCheck provides some basic checks which occur across the codebase
// ensuring start and end dates are sane
func StartEndTimeCheck(start, end time.Time) error {
	if start.IsZero() {
		return fmt.Errorf("start %w", ErrDateUnset)
	}
	if end.IsZero() {
		return fmt.Errorf("end %w", ErrDateUnset)
	}
	if !start.Before(end) {
		return fmt.Errorf("%w: %v >= %v", ErrStartAfterEnd, start, end)
	}
	return nil
}
