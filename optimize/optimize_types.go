package optimize

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradelens/backtest/engine"
	"github.com/tradelens/backtest/portfolio"
	"github.com/tradelens/backtest/statistics"
)

var (
	// ErrInsufficientWindows is returned when the date range cannot fit a
	// single train plus test window
	ErrInsufficientWindows = errors.New("insufficient data for walk-forward optimization")

	errInvalidWindowMonths = errors.New("train and test window months must be at least one")
	errNoRanges            = errors.New("no parameter ranges set")
	errInvalidRange        = errors.New("invalid parameter range")
	errUnknownMetric       = errors.New("unknown optimization metric")
	errAllCandidatesFailed = errors.New("every training candidate failed")
	errInvalidCombinations = errors.New("max combinations must be at least one")
	errNilRun              = errors.New("nil run")
)

// defaultMaxCombinations caps the expanded parameter grid
const defaultMaxCombinations = 100

// Metric selects which summary figure training candidates are ranked by
type Metric string

// Supported optimization metrics
const (
	Sharpe       Metric = "SHARPE"
	Return       Metric = "RETURN"
	ProfitFactor Metric = "PROFIT_FACTOR"
	WinRate      Metric = "WIN_RATE"
)

// Range is an inclusive numeric parameter sweep
type Range struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// Settings configures one walk-forward optimization
type Settings struct {
	TrainMonths int              `json:"train-window-months"`
	TestMonths  int              `json:"test-window-months"`
	Ranges      map[string]Range `json:"parameter-ranges"`
	Metric      Metric           `json:"optimization-metric"`

	// MaxCombinations caps the parameter grid, defaulting to 100.
	// Workers bounds concurrent training evaluations, defaulting to the
	// lesser of GOMAXPROCS-visible CPUs and four
	MaxCombinations int `json:"max-combinations,omitempty"`
	Workers         int `json:"workers,omitempty"`
}

// Validate checks window sizes, ranges and the metric
func (s *Settings) Validate() error {
	if s.TrainMonths < 1 || s.TestMonths < 1 {
		return errInvalidWindowMonths
	}
	if len(s.Ranges) == 0 {
		return errNoRanges
	}
	for name, r := range s.Ranges {
		if r.Step <= 0 || r.Max < r.Min {
			return fmt.Errorf("%w %q: min %v max %v step %v",
				errInvalidRange, name, r.Min, r.Max, r.Step)
		}
	}
	switch s.Metric {
	case Sharpe, Return, ProfitFactor, WinRate:
	default:
		return fmt.Errorf("%w %q", errUnknownMetric, s.Metric)
	}
	if s.MaxCombinations < 0 {
		return errInvalidCombinations
	}
	return nil
}

func (s *Settings) maxCombinations() int {
	if s.MaxCombinations > 0 {
		return s.MaxCombinations
	}
	return defaultMaxCombinations
}

func (s *Settings) workers() int {
	if s.Workers > 0 {
		return s.Workers
	}
	w := runtime.NumCPU()
	if w > 4 {
		w = 4
	}
	return w
}

// window is one train/test pair of date ranges
type window struct {
	trainStart time.Time
	trainEnd   time.Time
	testStart  time.Time
	testEnd    time.Time
}

// Outcome is the full result of a walk-forward optimization: per-window
// selections plus the stitched out-of-sample ledger, curve and summary
type Outcome struct {
	Windows        []engine.WindowResult
	Trades         []*portfolio.Trade
	EquityCurve    []portfolio.EquityPoint
	FinalCapital   decimal.Decimal
	Summary        *statistics.Summary
	MonthlyReturns []statistics.MonthlyReturn
	GridTruncated  bool
}
