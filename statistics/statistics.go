// Package statistics derives performance figures from completed trades and an
// equity curve. All calculations are pure functions of their inputs.
//
// Degenerate inputs follow fixed conventions so callers never branch on them:
// the profit factor is zero with no losing and no winning trades and equals
// gross profit when there are winners but no losers, and the Sharpe ratio is
// zero when fewer than two returns exist or the return variance is zero
package statistics

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradelens/backtest/portfolio"
)

var hundred = decimal.NewFromInt(100)

// Calculate produces the summary for a run that started with initialCapital.
// intervalsPerYear annualises the Sharpe ratio, e.g. 252 for daily bars
func Calculate(trades []*portfolio.Trade, equity []portfolio.EquityPoint, initialCapital decimal.Decimal, intervalsPerYear float64) (*Summary, error) {
	if intervalsPerYear <= 0 {
		return nil, errNoIntervalsPerYear
	}
	s := &Summary{}
	aggregateTrades(s, trades)

	if len(equity) > 0 && initialCapital.IsPositive() {
		final := equity[len(equity)-1].Equity
		s.TotalReturn = final.Sub(initialCapital)
		s.TotalReturnPercent, _ = s.TotalReturn.Div(initialCapital).Mul(hundred).Float64()
	}
	s.SharpeRatio = sharpeRatio(equity, intervalsPerYear)
	s.MaxDrawdown, s.MaxDrawdownPercent = maxDrawdown(equity, initialCapital)
	return s, nil
}

func aggregateTrades(s *Summary, trades []*portfolio.Trade) {
	var grossProfit, grossLoss decimal.Decimal
	for _, t := range trades {
		s.TotalTrades++
		switch {
		case t.ProfitLoss.IsPositive():
			s.WinningTrades++
			grossProfit = grossProfit.Add(t.ProfitLoss)
			if t.ProfitLoss.GreaterThan(s.LargestWin) {
				s.LargestWin = t.ProfitLoss
			}
		case t.ProfitLoss.IsNegative():
			s.LosingTrades++
			grossLoss = grossLoss.Add(t.ProfitLoss.Abs())
			if t.ProfitLoss.LessThan(s.LargestLoss) {
				s.LargestLoss = t.ProfitLoss
			}
		}
	}
	if s.TotalTrades > 0 {
		s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades)
	}
	if s.WinningTrades > 0 {
		s.AverageWin = grossProfit.Div(decimal.NewFromInt(int64(s.WinningTrades)))
	}
	if s.LosingTrades > 0 {
		s.AverageLoss = grossLoss.Div(decimal.NewFromInt(int64(s.LosingTrades))).Neg()
	}
	switch {
	case grossLoss.IsPositive():
		s.ProfitFactor, _ = grossProfit.Div(grossLoss).Float64()
	case grossProfit.IsPositive():
		s.ProfitFactor, _ = grossProfit.Float64()
	}
}

// sharpeRatio annualises mean over sample standard deviation of the per-bar
// equity returns
func sharpeRatio(equity []portfolio.EquityPoint, intervalsPerYear float64) float64 {
	returns := periodReturns(equity)
	if len(returns) < 2 {
		return 0
	}
	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)
	if variance == 0 {
		return 0
	}
	return mean / math.Sqrt(variance) * math.Sqrt(intervalsPerYear)
}

func periodReturns(equity []portfolio.EquityPoint) []float64 {
	if len(equity) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(equity)-1)
	for x := 1; x < len(equity); x++ {
		prev, _ := equity[x-1].Equity.Float64()
		curr, _ := equity[x].Equity.Float64()
		if prev == 0 {
			continue
		}
		returns = append(returns, (curr-prev)/prev)
	}
	return returns
}

// maxDrawdown returns the largest peak to trough equity decline and the same
// decline as a percentage of its peak. The starting capital seeds the peak so
// a curve that only falls still reports a drawdown
func maxDrawdown(equity []portfolio.EquityPoint, initialCapital decimal.Decimal) (decimal.Decimal, float64) {
	peak := initialCapital
	var maxDD decimal.Decimal
	var maxDDPct float64
	for x := range equity {
		e := equity[x].Equity
		if e.GreaterThan(peak) {
			peak = e
			continue
		}
		dd := peak.Sub(e)
		if dd.GreaterThan(maxDD) {
			maxDD = dd
			if peak.IsPositive() {
				maxDDPct, _ = dd.Div(peak).Mul(hundred).Float64()
			}
		}
	}
	return maxDD, maxDDPct
}

// MonthlyReturns buckets the equity curve by calendar month. Each month's
// return is measured against the last equity value of the preceding month, or
// the starting capital for the first month
func MonthlyReturns(equity []portfolio.EquityPoint, initialCapital decimal.Decimal) []MonthlyReturn {
	if len(equity) == 0 || !initialCapital.IsPositive() {
		return nil
	}
	type key struct {
		year  int
		month time.Month
	}
	last := make(map[key]decimal.Decimal)
	var order []key
	for x := range equity {
		k := key{equity[x].Time.Year(), equity[x].Time.Month()}
		if _, ok := last[k]; !ok {
			order = append(order, k)
		}
		last[k] = equity[x].Equity
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].year != order[j].year {
			return order[i].year < order[j].year
		}
		return order[i].month < order[j].month
	})

	prev := initialCapital
	returns := make([]MonthlyReturn, 0, len(order))
	for _, k := range order {
		e := last[k]
		var pct float64
		if prev.IsPositive() {
			pct, _ = e.Sub(prev).Div(prev).Mul(hundred).Float64()
		}
		returns = append(returns, MonthlyReturn{
			Year:          k.year,
			Month:         k.month,
			ReturnPercent: pct,
		})
		prev = e
	}
	return returns
}
