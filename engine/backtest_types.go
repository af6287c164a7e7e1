package engine

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelens/backtest/portfolio"
	"github.com/tradelens/backtest/statistics"
	"github.com/tradelens/backtest/strategy"
)

var (
	// ErrRunNotFound is returned when a run id is not registered
	ErrRunNotFound = errors.New("run not found")
	// ErrRunAlreadyExists is returned when registering a duplicate run id
	ErrRunAlreadyExists = errors.New("run already exists")

	errNilRun         = errors.New("nil run")
	errNilStrategyRun = errors.New("nil strategy")
	errNilItem        = errors.New("nil kline item")
	errNoTradableBars = errors.New("no bars at or after trade start")
	errAlreadyStarted = errors.New("run already started")
)

// Status is the lifecycle state of a run
type Status string

// Run lifecycle states
const (
	Pending   Status = "PENDING"
	Running   Status = "RUNNING"
	Completed Status = "COMPLETED"
	Failed    Status = "FAILED"
)

// Options adjusts a single simulation without touching the strategy.
// TradeStart restricts trading and equity recording to bars at or after it,
// while earlier bars still feed indicator warm-up. A positive InitialCapital
// overrides the strategy's starting capital so runs can be chained
type Options struct {
	TradeStart     time.Time
	InitialCapital decimal.Decimal
}

// Result is the raw outcome of one simulation
type Result struct {
	Trades       []*portfolio.Trade
	EquityCurve  []portfolio.EquityPoint
	FinalCapital decimal.Decimal
}

// WindowResult records one walk-forward window: the range it trained and
// tested over, the winning parameters and their in-sample score, and the
// out-of-sample summary
type WindowResult struct {
	Index      int       `json:"index"`
	TrainStart time.Time `json:"train-start"`
	TrainEnd   time.Time `json:"train-end"`
	TestStart  time.Time `json:"test-start"`
	TestEnd    time.Time `json:"test-end"`

	Parameters    map[string]float64  `json:"parameters"`
	TrainingScore float64             `json:"training-score"`
	TestSummary   *statistics.Summary `json:"test-summary"`
}

// Run is the persistent record of one backtest or optimization execution
type Run struct {
	ID       uuid.UUID          `json:"id"`
	Nickname string             `json:"nickname"`
	Strategy *strategy.Strategy `json:"-"`

	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`

	StartedAt  time.Time `json:"started-at"`
	FinishedAt time.Time `json:"finished-at"`

	Metrics        *statistics.Summary        `json:"metrics,omitempty"`
	EquityCurve    []portfolio.EquityPoint    `json:"equity-curve,omitempty"`
	MonthlyReturns []statistics.MonthlyReturn `json:"monthly-returns,omitempty"`
	Trades         []*portfolio.Trade         `json:"trades,omitempty"`

	// Windows is populated for walk-forward optimization runs only
	Windows []WindowResult `json:"windows,omitempty"`

	// GridTruncated is set when the optimizer's parameter grid exceeded its
	// combination cap and was cut short
	GridTruncated bool `json:"grid-truncated,omitempty"`
}
