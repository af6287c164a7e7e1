package config

import (
	"errors"

	"github.com/tradelens/backtest/optimize"
	"github.com/tradelens/backtest/rules"
)

// Data source names accepted in DataSettings.Source
const (
	SourceCSV = "csv"
	SourceAPI = "api"
)

var (
	// ErrNoWalkForwardSettings is returned when an optimization is requested
	// from a config without walk-forward settings
	ErrNoWalkForwardSettings = errors.New("no walk-forward settings in config")

	errSymbolUnset       = errors.New("data settings symbol unset")
	errUnknownDataSource = errors.New("unknown data source")
	errCSVDirUnset       = errors.New("csv data source requires csv-dir")
	errAPIBaseURLUnset   = errors.New("api data source requires api-base-url")
)

// Config is the top level configuration for a backtest or optimization run
type Config struct {
	Nickname    string               `json:"nickname"`
	Data        DataSettings         `json:"data-settings"`
	Strategy    StrategySettings     `json:"strategy-settings"`
	Portfolio   PortfolioSettings    `json:"portfolio-settings"`
	WalkForward *WalkForwardSettings `json:"walk-forward-settings,omitempty"`
}

// DataSettings selects the symbol, date range, bar interval and market-data
// source. Dates use the 2006-01-02 layout and the interval defaults to 1d
type DataSettings struct {
	Symbol    string `json:"symbol"`
	Interval  string `json:"interval,omitempty"`
	StartDate string `json:"start-date"`
	EndDate   string `json:"end-date"`

	Source               string  `json:"source"`
	CSVDir               string  `json:"csv-dir,omitempty"`
	APIBaseURL           string  `json:"api-base-url,omitempty"`
	APIRequestsPerSecond float64 `json:"api-requests-per-second,omitempty"`
}

// StrategySettings holds the rule lists driving entries and exits
type StrategySettings struct {
	Name            string            `json:"name"`
	EntryConditions []rules.Condition `json:"entry-conditions"`
	ExitConditions  []rules.Condition `json:"exit-conditions,omitempty"`
}

// PortfolioSettings holds sizing, protective levels and cost assumptions
type PortfolioSettings struct {
	SizingMode        string  `json:"sizing-mode"`
	SizeValue         float64 `json:"size-value"`
	StopLossPercent   float64 `json:"stop-loss-percent,omitempty"`
	TakeProfitPercent float64 `json:"take-profit-percent,omitempty"`
	MaxOpenPositions  int     `json:"max-open-positions"`
	CommissionPercent float64 `json:"commission-percent,omitempty"`
	SlippagePercent   float64 `json:"slippage-percent,omitempty"`
	InitialCapital    float64 `json:"initial-capital"`
}

// WalkForwardSettings mirrors optimize.Settings in config form
type WalkForwardSettings struct {
	TrainMonths     int                       `json:"train-window-months"`
	TestMonths      int                       `json:"test-window-months"`
	Ranges          map[string]optimize.Range `json:"parameter-ranges"`
	Metric          string                    `json:"optimization-metric"`
	MaxCombinations int                       `json:"max-combinations,omitempty"`
	Workers         int                       `json:"workers,omitempty"`
}
