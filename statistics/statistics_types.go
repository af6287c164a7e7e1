package statistics

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var errNoIntervalsPerYear = errors.New("intervals per year must be positive")

// Summary holds the aggregate performance figures of one run or one stitched
// walk-forward test sequence
type Summary struct {
	TotalReturn        decimal.Decimal `json:"total-return"`
	TotalReturnPercent float64         `json:"total-return-percent"`

	TotalTrades   int     `json:"total-trades"`
	WinningTrades int     `json:"winning-trades"`
	LosingTrades  int     `json:"losing-trades"`
	WinRate       float64 `json:"win-rate"`

	AverageWin  decimal.Decimal `json:"average-win"`
	AverageLoss decimal.Decimal `json:"average-loss"`
	LargestWin  decimal.Decimal `json:"largest-win"`
	LargestLoss decimal.Decimal `json:"largest-loss"`

	ProfitFactor float64 `json:"profit-factor"`
	SharpeRatio  float64 `json:"sharpe-ratio"`

	MaxDrawdown        decimal.Decimal `json:"max-drawdown"`
	MaxDrawdownPercent float64         `json:"max-drawdown-percent"`
}

// MonthlyReturn is the equity change over one calendar month as a percentage
// of the equity entering that month
type MonthlyReturn struct {
	Year          int        `json:"year"`
	Month         time.Month `json:"month"`
	ReturnPercent float64    `json:"return-percent"`
}
