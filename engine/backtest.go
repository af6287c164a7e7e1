// Package engine drives the bar-by-bar simulation loop. A run is a pure
// function of its strategy and bar sequence: identical inputs always produce
// an identical trade ledger and equity curve
package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/tradelens/backtest/data/kline"
	"github.com/tradelens/backtest/indicators"
	"github.com/tradelens/backtest/log"
	"github.com/tradelens/backtest/portfolio"
	"github.com/tradelens/backtest/rules"
	"github.com/tradelens/backtest/statistics"
	"github.com/tradelens/backtest/strategy"
)

// Execute simulates the strategy over the item's bars. Per bar it marks
// equity at the previous close, processes exits, then entries. Entries fill
// at the bar close, so the final bar takes no new positions and force-closes
// everything still open
func Execute(s *strategy.Strategy, item *kline.Item, opts Options) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errNilItem
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	cache := indicators.NewCache(item)
	if err := cache.Prime(s.ReferencedSpecs()...); err != nil {
		return nil, err
	}

	bars := item.Candles
	start := s.Warmup()
	if !opts.TradeStart.IsZero() {
		idx := item.IndexOfFirstAtOrAfter(opts.TradeStart)
		if idx >= len(bars) {
			return nil, fmt.Errorf("%w %v", errNoTradableBars, opts.TradeStart)
		}
		if idx > start {
			start = idx
		}
	}
	if start >= len(bars) {
		return nil, fmt.Errorf("%w: warmup %d exceeds %d bars",
			indicators.ErrInsufficientData, start, len(bars))
	}

	capital := opts.InitialCapital
	if !capital.IsPositive() {
		capital = s.InitialCapital
	}
	p, err := portfolio.Setup(s, item.Symbol, capital)
	if err != nil {
		return nil, err
	}

	equity := make([]portfolio.EquityPoint, 0, len(bars)-start)
	for i := start; i < len(bars); i++ {
		bar := &bars[i]
		final := i == len(bars)-1

		if !final {
			equity = append(equity, portfolio.EquityPoint{
				Time:   bar.Time,
				Equity: p.MarkToMarket(previousClose(bars, i)),
			})
		}

		p.UpdateExcursions(bar, i)
		exitFired := rules.Evaluate(cache, s.ExitRules, i)
		p.CheckExits(bar, i, exitFired)

		if final {
			p.ForceCloseAll(bar)
			equity = append(equity, portfolio.EquityPoint{
				Time:   bar.Time,
				Equity: p.Capital(),
			})
			break
		}

		if p.OpenCount() < s.MaxOpenPositions &&
			rules.Evaluate(cache, s.EntryRules, i) {
			if err := p.TryOpen(bar, i); err != nil {
				log.Debugf(log.Engine, "%s entry skipped at %v: %v",
					item.Symbol, bar.Time, err)
			}
		}
	}

	trades := p.ClosedTrades()
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].EntryTime.Before(trades[j].EntryTime)
	})
	return &Result{
		Trades:       trades,
		EquityCurve:  equity,
		FinalCapital: p.Capital(),
	}, nil
}

// previousClose is the mark price for bar i. The first simulated bar has no
// completed predecessor so its own open is used
func previousClose(bars []kline.Candle, i int) float64 {
	if i == 0 {
		return bars[i].Open
	}
	return bars[i-1].Close
}

// ExecuteRun performs a plain backtest and records the outcome, including any
// failure, on the run itself
func ExecuteRun(r *Run, item *kline.Item) error {
	if r == nil {
		return errNilRun
	}
	if err := r.Start(); err != nil {
		return err
	}

	intervalsPerYear := kline.OneDay.IntervalsPerYear()
	if item != nil {
		intervalsPerYear = item.Interval.IntervalsPerYear()
	}

	result, err := Execute(r.Strategy, item, Options{})
	if err != nil {
		r.Fail(err)
		return err
	}
	summary, err := statistics.Calculate(
		result.Trades, result.EquityCurve, r.Strategy.InitialCapital, intervalsPerYear)
	if err != nil {
		r.Fail(err)
		return err
	}

	r.Trades = result.Trades
	r.EquityCurve = result.EquityCurve
	r.Metrics = summary
	r.MonthlyReturns = statistics.MonthlyReturns(result.EquityCurve, r.Strategy.InitialCapital)
	r.Complete()
	return nil
}

// Start transitions a pending run to running
func (r *Run) Start() error {
	if r.Status != Pending {
		return fmt.Errorf("%w: status %v", errAlreadyStarted, r.Status)
	}
	r.Status = Running
	r.StartedAt = time.Now()
	log.Infof(log.Engine, "run %v %q started", r.ID, r.Nickname)
	return nil
}

// Complete marks the run finished
func (r *Run) Complete() {
	r.Status = Completed
	r.FinishedAt = time.Now()
	log.Infof(log.Engine, "run %v completed in %v",
		r.ID, r.FinishedAt.Sub(r.StartedAt))
}

// Fail marks the run failed with the error recorded as its message
func (r *Run) Fail(err error) {
	r.Status = Failed
	r.Message = err.Error()
	r.FinishedAt = time.Now()
	log.Errorf(log.Engine, "run %v failed: %v", r.ID, err)
}
