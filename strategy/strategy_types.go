package strategy

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/tradelens/backtest/rules"
)

var (
	// ErrNoEntryRules rejects a strategy that can never open a position
	ErrNoEntryRules = errors.New("strategy has no entry rules")
	// ErrInvalidSizingMode rejects sizing modes outside the supported set
	ErrInvalidSizingMode = errors.New("invalid position sizing mode")
	// ErrInvalidInitialCapital rejects non-positive starting capital
	ErrInvalidInitialCapital = errors.New("initial capital must be positive")

	errInvalidSizeValue    = errors.New("position size value must be positive")
	errInvalidMaxPositions = errors.New("max open positions must be at least one")
	errNegativePercent     = errors.New("percentage cannot be negative")
	errUnknownParameter    = errors.New("unknown optimization parameter")
	errParameterOutOfRange = errors.New("optimization parameter index out of range")
)

// SizingMode determines how share counts derive from capital
type SizingMode string

// Supported sizing modes
const (
	PercentCapital SizingMode = "PERCENT_CAPITAL"
	FixedShares    SizingMode = "FIXED_SHARES"
	FixedDollar    SizingMode = "FIXED_DOLLAR"
)

// Strategy is the immutable configuration of one rule-based trading strategy.
// It is read-only during a run; the optimizer mutates clones, never the
// original
type Strategy struct {
	Name       string
	EntryRules []rules.Condition
	ExitRules  []rules.Condition

	Sizing    SizingMode
	SizeValue decimal.Decimal

	// StopLossPercent and TakeProfitPercent are percentages from the entry
	// fill. Zero disables the level
	StopLossPercent   decimal.Decimal
	TakeProfitPercent decimal.Decimal

	MaxOpenPositions  int
	CommissionPercent decimal.Decimal
	SlippagePercent   decimal.Decimal
	InitialCapital    decimal.Decimal
}
