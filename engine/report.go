package engine

import (
	"fmt"

	"github.com/tradelens/backtest/log"
)

// PrintResults outputs the run's calculated statistics to the command line
func (r *Run) PrintResults() {
	sep := fmt.Sprintf("%v |\t", r.Nickname)
	header := fmt.Sprintf("------------------Results for %v------------------------------------------", r.Nickname)
	log.Infof(log.Engine, "%s", header[:61])
	log.Infof(log.Engine, "%s Run ID: %v", sep, r.ID)
	log.Infof(log.Engine, "%s Status: %v", sep, r.Status)
	if r.Message != "" {
		log.Infof(log.Engine, "%s Message: %v", sep, r.Message)
	}
	if r.Metrics == nil {
		return
	}

	log.Infof(log.Engine, "%s Total return: $%v (%.2f%%)",
		sep, r.Metrics.TotalReturn.Round(2), r.Metrics.TotalReturnPercent)
	log.Infof(log.Engine, "%s Total trades: %d", sep, r.Metrics.TotalTrades)
	log.Infof(log.Engine, "%s Winning trades: %d", sep, r.Metrics.WinningTrades)
	log.Infof(log.Engine, "%s Losing trades: %d", sep, r.Metrics.LosingTrades)
	log.Infof(log.Engine, "%s Win rate: %.2f%%", sep, r.Metrics.WinRate*100)
	log.Infof(log.Engine, "%s Average win: $%v", sep, r.Metrics.AverageWin.Round(2))
	log.Infof(log.Engine, "%s Average loss: $%v", sep, r.Metrics.AverageLoss.Round(2))
	log.Infof(log.Engine, "%s Largest win: $%v", sep, r.Metrics.LargestWin.Round(2))
	log.Infof(log.Engine, "%s Largest loss: $%v", sep, r.Metrics.LargestLoss.Round(2))
	log.Infof(log.Engine, "%s Profit factor: %.4f", sep, r.Metrics.ProfitFactor)
	log.Infof(log.Engine, "%s Sharpe ratio: %.4f", sep, r.Metrics.SharpeRatio)
	log.Infof(log.Engine, "%s Max drawdown: $%v (%.2f%%)",
		sep, r.Metrics.MaxDrawdown.Round(2), r.Metrics.MaxDrawdownPercent)

	if len(r.MonthlyReturns) > 0 {
		log.Info(log.Engine, "------------------Monthly returns----------------------------")
		for x := range r.MonthlyReturns {
			log.Infof(log.Engine, "%s %d %v: %.2f%%",
				sep,
				r.MonthlyReturns[x].Year,
				r.MonthlyReturns[x].Month,
				r.MonthlyReturns[x].ReturnPercent)
		}
	}

	if len(r.Windows) > 0 {
		log.Info(log.Engine, "------------------Walk-forward windows-----------------------")
		if r.GridTruncated {
			log.Warn(log.Engine, "parameter grid exceeded the combination cap and was truncated")
		}
		for x := range r.Windows {
			w := &r.Windows[x]
			log.Infof(log.Engine, "%s Window %d train %v -> %v test %v -> %v",
				sep, w.Index,
				w.TrainStart.Format("2006-01-02"), w.TrainEnd.Format("2006-01-02"),
				w.TestStart.Format("2006-01-02"), w.TestEnd.Format("2006-01-02"))
			log.Infof(log.Engine, "%s   Parameters: %v score %.4f",
				sep, w.Parameters, w.TrainingScore)
			if w.TestSummary != nil {
				log.Infof(log.Engine, "%s   Test return: $%v trades: %d",
					sep, w.TestSummary.TotalReturn.Round(2), w.TestSummary.TotalTrades)
			}
		}
	}
}
