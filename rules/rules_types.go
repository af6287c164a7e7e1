package rules

import (
	"errors"
	"fmt"

	"github.com/tradelens/backtest/indicators"
)

var (
	// ErrNoConditions is returned when a rule set that must trade has no nodes
	ErrNoConditions = errors.New("no conditions set")

	errUnknownComparator = errors.New("unknown comparator")
	errUnknownJoin       = errors.New("unknown join operator")
)

// Comparator relates an indicator value to a threshold
type Comparator string

// Supported comparators. The crosses variants additionally consult the
// previous bar's value
const (
	GreaterThan     Comparator = ">"
	LessThan        Comparator = "<"
	GreaterOrEqual  Comparator = ">="
	LessOrEqual     Comparator = "<="
	Equal           Comparator = "=="
	CrossesAbove    Comparator = "CROSSES_ABOVE"
	CrossesBelow    Comparator = "CROSSES_BELOW"
)

// Join relates a condition to its predecessor in the list. The first
// condition's join is ignored
type Join string

// Join operators
const (
	JoinUnset Join = ""
	And       Join = "AND"
	Or        Join = "OR"
)

// Condition is one node of an entry or exit rule: an indicator reference, a
// comparator and a numeric threshold. Condition kinds form a closed set — an
// unknown indicator or comparator fails validation before any simulation runs
type Condition struct {
	Indicator  indicators.Spec `json:"indicator"`
	Comparator Comparator      `json:"comparator"`
	Threshold  float64         `json:"threshold"`
	Join       Join            `json:"join,omitempty"`
}

// Validate checks the condition's indicator, comparator and join operator
func (c *Condition) Validate() error {
	if err := c.Indicator.Validate(); err != nil {
		return err
	}
	switch c.Comparator {
	case GreaterThan, LessThan, GreaterOrEqual, LessOrEqual, Equal,
		CrossesAbove, CrossesBelow:
	default:
		return fmt.Errorf("%w %q", errUnknownComparator, c.Comparator)
	}
	switch c.Join {
	case JoinUnset, And, Or:
	default:
		return fmt.Errorf("%w %q", errUnknownJoin, c.Join)
	}
	return nil
}

// Warmup returns the number of leading bars on which the condition can never
// fire. Crosses comparators consult the prior bar so they need one extra
func (c *Condition) Warmup() int {
	w := c.Indicator.Warmup()
	if c.Comparator == CrossesAbove || c.Comparator == CrossesBelow {
		w++
	}
	return w
}
