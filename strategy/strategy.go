// Package strategy defines the immutable strategy value consumed by the
// simulation engine and mutated, via clones, by the walk-forward optimizer
package strategy

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tradelens/backtest/indicators"
	"github.com/tradelens/backtest/rules"
)

// Validate rejects malformed strategies before any simulation starts
func (s *Strategy) Validate() error {
	if len(s.EntryRules) == 0 {
		return ErrNoEntryRules
	}
	switch s.Sizing {
	case PercentCapital, FixedShares, FixedDollar:
	default:
		return fmt.Errorf("%w %q", ErrInvalidSizingMode, s.Sizing)
	}
	if !s.SizeValue.IsPositive() {
		return errInvalidSizeValue
	}
	if !s.InitialCapital.IsPositive() {
		return ErrInvalidInitialCapital
	}
	if s.MaxOpenPositions < 1 {
		return errInvalidMaxPositions
	}
	for _, pct := range []decimal.Decimal{
		s.StopLossPercent, s.TakeProfitPercent, s.CommissionPercent, s.SlippagePercent,
	} {
		if pct.IsNegative() {
			return errNegativePercent
		}
	}
	for x := range s.EntryRules {
		if err := s.EntryRules[x].Validate(); err != nil {
			return fmt.Errorf("entry rule %d: %w", x, err)
		}
	}
	for x := range s.ExitRules {
		if err := s.ExitRules[x].Validate(); err != nil {
			return fmt.Errorf("exit rule %d: %w", x, err)
		}
	}
	return nil
}

// Clone returns a deep copy whose rule slices are independent of the original
func (s *Strategy) Clone() *Strategy {
	c := *s
	c.EntryRules = append(c.EntryRules[:0:0], s.EntryRules...)
	c.ExitRules = append(c.ExitRules[:0:0], s.ExitRules...)
	return &c
}

// ReferencedSpecs returns every distinct indicator spec the strategy's rules
// consult
func (s *Strategy) ReferencedSpecs() []indicators.Spec {
	seen := make(map[indicators.Spec]struct{})
	var specs []indicators.Spec
	add := func(set []rules.Condition) {
		for x := range set {
			spec := set[x].Indicator
			if _, ok := seen[spec]; !ok {
				seen[spec] = struct{}{}
				specs = append(specs, spec)
			}
		}
	}
	add(s.EntryRules)
	add(s.ExitRules)
	return specs
}

// Warmup returns the first bar index at which every referenced rule can fire
func (s *Strategy) Warmup() int {
	warmup := 0
	for x := range s.EntryRules {
		if w := s.EntryRules[x].Warmup(); w > warmup {
			warmup = w
		}
	}
	for x := range s.ExitRules {
		if w := s.ExitRules[x].Warmup(); w > warmup {
			warmup = w
		}
	}
	return warmup
}

// ApplyParameter mutates the strategy with an optimizer candidate value.
// Recognised names: stop_loss_percent, take_profit_percent,
// position_size_value, and entry.<i>.<field> / exit.<i>.<field> where field
// is one of period, fast_period, slow_period, signal_period, threshold
func (s *Strategy) ApplyParameter(name string, value float64) error {
	switch name {
	case "stop_loss_percent":
		s.StopLossPercent = decimal.NewFromFloat(value)
		return nil
	case "take_profit_percent":
		s.TakeProfitPercent = decimal.NewFromFloat(value)
		return nil
	case "position_size_value":
		s.SizeValue = decimal.NewFromFloat(value)
		return nil
	}

	parts := strings.Split(name, ".")
	if len(parts) != 3 {
		return fmt.Errorf("%w %q", errUnknownParameter, name)
	}
	var set []rules.Condition
	switch parts[0] {
	case "entry":
		set = s.EntryRules
	case "exit":
		set = s.ExitRules
	default:
		return fmt.Errorf("%w %q", errUnknownParameter, name)
	}
	idx, err := strconv.Atoi(parts[1])
	if err != nil || idx < 0 || idx >= len(set) {
		return fmt.Errorf("%w %q", errParameterOutOfRange, name)
	}

	cond := &set[idx]
	switch parts[2] {
	case "threshold":
		cond.Threshold = value
	case "period":
		cond.Indicator.Period = roundPeriod(value)
	case "fast_period":
		cond.Indicator.FastPeriod = roundPeriod(value)
	case "slow_period":
		cond.Indicator.SlowPeriod = roundPeriod(value)
	case "signal_period":
		cond.Indicator.SignalPeriod = roundPeriod(value)
	default:
		return fmt.Errorf("%w %q", errUnknownParameter, name)
	}
	return nil
}

func roundPeriod(v float64) int {
	return int(math.Round(v))
}
