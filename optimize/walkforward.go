// Package optimize implements walk-forward optimization: a rolling sequence
// of in-sample parameter searches each followed by a single out-of-sample
// test, with capital carried across test windows so the stitched equity curve
// reads as one continuous account
package optimize

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tradelens/backtest/data/kline"
	"github.com/tradelens/backtest/engine"
	"github.com/tradelens/backtest/log"
	"github.com/tradelens/backtest/statistics"
	"github.com/tradelens/backtest/strategy"
)

// Run performs the full walk-forward sequence over the item's bars. Training
// candidates within a window are evaluated concurrently; windows themselves
// run strictly in order because each test inherits the capital of the last.
// Cancellation is honoured at window boundaries only
func Run(ctx context.Context, s *strategy.Strategy, item *kline.Item, settings Settings) (*Outcome, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, kline.ErrNoCandles
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	grid, truncated := expandGrid(settings.Ranges, settings.maxCombinations())
	if truncated {
		log.Warnf(log.Optimizer,
			"parameter grid truncated to %d of its full combination space",
			len(grid))
	}

	start := item.Candles[0].Time
	end := item.Candles[len(item.Candles)-1].Time
	windows := generateWindows(start, end, settings.TrainMonths, settings.TestMonths)
	if len(windows) == 0 {
		return nil, ErrInsufficientWindows
	}
	log.Infof(log.Optimizer, "%d windows, %d candidates per window, metric %v",
		len(windows), len(grid), settings.Metric)

	outcome := &Outcome{GridTruncated: truncated}
	capital := s.InitialCapital
	intervalsPerYear := item.Interval.IntervalsPerYear()

	for wi := range windows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w := &windows[wi]

		trainItem := item.Slice(w.trainStart, w.trainEnd)
		best, score, err := train(s, trainItem, grid, settings, intervalsPerYear)
		if err != nil {
			return nil, fmt.Errorf("window %d: %w", wi, err)
		}
		log.Infof(log.Optimizer, "window %d selected %v score %.4f",
			wi, best, score)

		chosen := s.Clone()
		if err = applyCandidate(chosen, best); err != nil {
			return nil, fmt.Errorf("window %d: %w", wi, err)
		}
		testItem := item.SliceWithLead(
			w.testStart, w.testEnd.AddDate(0, 0, 1), chosen.Warmup())
		windowCapital := capital
		result, err := engine.Execute(chosen, testItem, engine.Options{
			TradeStart:     w.testStart,
			InitialCapital: windowCapital,
		})
		if err != nil {
			return nil, fmt.Errorf("window %d test: %w", wi, err)
		}
		capital = result.FinalCapital

		testSummary, err := statistics.Calculate(
			result.Trades, result.EquityCurve, windowCapital, intervalsPerYear)
		if err != nil {
			return nil, fmt.Errorf("window %d test: %w", wi, err)
		}
		outcome.Trades = append(outcome.Trades, result.Trades...)
		outcome.EquityCurve = append(outcome.EquityCurve, result.EquityCurve...)
		outcome.Windows = append(outcome.Windows, engine.WindowResult{
			Index:         wi,
			TrainStart:    w.trainStart,
			TrainEnd:      w.trainEnd,
			TestStart:     w.testStart,
			TestEnd:       w.testEnd,
			Parameters:    best,
			TrainingScore: score,
			TestSummary:   testSummary,
		})
	}

	outcome.FinalCapital = capital
	summary, err := statistics.Calculate(
		outcome.Trades, outcome.EquityCurve, s.InitialCapital, intervalsPerYear)
	if err != nil {
		return nil, err
	}
	outcome.Summary = summary
	outcome.MonthlyReturns = statistics.MonthlyReturns(outcome.EquityCurve, s.InitialCapital)
	return outcome, nil
}

// generateWindows rolls train/test pairs across [start, end]. The cursor
// advances by the test span so test windows tile the range without overlap.
// The final test window is clipped to end; generation stops once a test
// window would start at or past end
func generateWindows(start, end time.Time, trainMonths, testMonths int) []window {
	var windows []window
	cursor := start
	for {
		trainEnd := cursor.AddDate(0, trainMonths, 0)
		testStart := trainEnd.AddDate(0, 0, 1)
		if !testStart.Before(end) {
			return windows
		}
		testEnd := trainEnd.AddDate(0, testMonths, 0)
		if testEnd.After(end) {
			testEnd = end
		}
		windows = append(windows, window{
			trainStart: cursor,
			trainEnd:   trainEnd,
			testStart:  testStart,
			testEnd:    testEnd,
		})
		cursor = cursor.AddDate(0, testMonths, 0)
	}
}

// train scores every candidate over the training range on a bounded worker
// pool and returns the winner. Results are collected by generation index so
// ties always resolve to the earliest generated candidate no matter the
// completion order. Candidates that fail to simulate are skipped
func train(s *strategy.Strategy, trainItem *kline.Item, grid []map[string]float64, settings Settings, intervalsPerYear float64) (map[string]float64, float64, error) {
	scores := make([]float64, len(grid))
	valid := make([]bool, len(grid))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < settings.workers(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				score, err := evaluate(s, trainItem, grid[idx], settings.Metric, intervalsPerYear)
				if err != nil {
					log.Debugf(log.Optimizer, "candidate %d %v failed: %v",
						idx, grid[idx], err)
					continue
				}
				scores[idx] = score
				valid[idx] = true
			}
		}()
	}
	for idx := range grid {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	bestIdx := -1
	for idx := range grid {
		if !valid[idx] {
			continue
		}
		if bestIdx == -1 || scores[idx] > scores[bestIdx] {
			bestIdx = idx
		}
	}
	if bestIdx == -1 {
		return nil, 0, errAllCandidatesFailed
	}
	return grid[bestIdx], scores[bestIdx], nil
}

// evaluate runs one candidate over the training range and extracts the
// configured metric
func evaluate(s *strategy.Strategy, trainItem *kline.Item, params map[string]float64, metric Metric, intervalsPerYear float64) (float64, error) {
	candidate := s.Clone()
	if err := applyCandidate(candidate, params); err != nil {
		return 0, err
	}
	result, err := engine.Execute(candidate, trainItem, engine.Options{})
	if err != nil {
		return 0, err
	}
	summary, err := statistics.Calculate(
		result.Trades, result.EquityCurve, candidate.InitialCapital, intervalsPerYear)
	if err != nil {
		return 0, err
	}
	return metricValue(summary, metric)
}

// applyCandidate writes parameters in sorted name order so validation errors
// are reported deterministically
func applyCandidate(s *strategy.Strategy, params map[string]float64) error {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := s.ApplyParameter(name, params[name]); err != nil {
			return err
		}
	}
	return s.Validate()
}

func metricValue(summary *statistics.Summary, metric Metric) (float64, error) {
	switch metric {
	case Sharpe:
		return summary.SharpeRatio, nil
	case Return:
		return summary.TotalReturnPercent, nil
	case ProfitFactor:
		return summary.ProfitFactor, nil
	case WinRate:
		return summary.WinRate, nil
	default:
		return 0, fmt.Errorf("%w %q", errUnknownMetric, metric)
	}
}

// ExecuteRun performs a walk-forward optimization and records the outcome,
// including any failure, on the run itself
func ExecuteRun(ctx context.Context, r *engine.Run, item *kline.Item, settings Settings) error {
	if r == nil {
		return errNilRun
	}
	if err := r.Start(); err != nil {
		return err
	}
	outcome, err := Run(ctx, r.Strategy, item, settings)
	if err != nil {
		r.Fail(err)
		return err
	}
	r.Trades = outcome.Trades
	r.EquityCurve = outcome.EquityCurve
	r.Metrics = outcome.Summary
	r.MonthlyReturns = outcome.MonthlyReturns
	r.Windows = outcome.Windows
	r.GridTruncated = outcome.GridTruncated
	r.Complete()
	return nil
}
