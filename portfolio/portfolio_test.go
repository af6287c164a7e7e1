package portfolio

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradelens/backtest/common"
	"github.com/tradelens/backtest/data/kline"
	"github.com/tradelens/backtest/strategy"
)

func testSettings() *strategy.Strategy {
	return &strategy.Strategy{
		Sizing:           strategy.FixedShares,
		SizeValue:        decimal.NewFromInt(10),
		MaxOpenPositions: 1,
		InitialCapital:   decimal.NewFromInt(10000),
	}
}

func bar(day int, open, high, low, close float64) *kline.Candle {
	return &kline.Candle{
		Time:   time.Date(2023, 1, 2+day, 0, 0, 0, 0, time.UTC),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: 100,
	}
}

func mustOpen(t *testing.T, p *Portfolio, c *kline.Candle, idx int) {
	t.Helper()
	require.NoError(t, p.TryOpen(c, idx))
}

func TestSetup(t *testing.T) {
	t.Parallel()
	_, err := Setup(nil, "AAPL", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, common.ErrNilPointer)

	_, err = Setup(testSettings(), "AAPL", decimal.Zero)
	assert.ErrorIs(t, err, strategy.ErrInvalidInitialCapital)

	p, err := Setup(testSettings(), "AAPL", decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.True(t, p.Capital().Equal(decimal.NewFromInt(500)))
}

func TestTryOpenSizing(t *testing.T) {
	t.Parallel()
	c := bar(0, 10, 11, 9, 10)

	s := testSettings()
	s.Sizing = strategy.PercentCapital
	s.SizeValue = decimal.NewFromInt(50)
	p, err := Setup(s, "AAPL", decimal.NewFromInt(1000))
	require.NoError(t, err)
	mustOpen(t, p, c, 0)
	// 50% of 1000 at 10 a share
	assert.True(t, p.open[0].shares.Equal(decimal.NewFromInt(50)), "got %v", p.open[0].shares)
	assert.True(t, p.Capital().Equal(decimal.NewFromInt(500)))

	s = testSettings()
	s.Sizing = strategy.FixedDollar
	s.SizeValue = decimal.NewFromInt(500)
	p, err = Setup(s, "AAPL", decimal.NewFromInt(1000))
	require.NoError(t, err)
	mustOpen(t, p, bar(0, 9, 10, 8, 9), 0)
	// 500 / 9 floors to 55 whole shares
	assert.True(t, p.open[0].shares.Equal(decimal.NewFromInt(55)), "got %v", p.open[0].shares)

	s = testSettings()
	p, err = Setup(s, "AAPL", decimal.NewFromInt(1000))
	require.NoError(t, err)
	mustOpen(t, p, c, 0)
	assert.True(t, p.open[0].shares.Equal(decimal.NewFromInt(10)))
}

func TestTryOpenRejections(t *testing.T) {
	t.Parallel()
	s := testSettings()
	p, err := Setup(s, "AAPL", decimal.NewFromInt(10000))
	require.NoError(t, err)
	c := bar(0, 10, 11, 9, 10)

	mustOpen(t, p, c, 0)
	assert.ErrorIs(t, p.TryOpen(c, 0), ErrAtCapacity)

	s = testSettings()
	s.SizeValue = decimal.NewFromInt(5000)
	p, err = Setup(s, "AAPL", decimal.NewFromInt(10000))
	require.NoError(t, err)
	assert.ErrorIs(t, p.TryOpen(c, 0), errInsufficientCapital)

	s = testSettings()
	s.Sizing = strategy.FixedDollar
	s.SizeValue = decimal.NewFromInt(5)
	p, err = Setup(s, "AAPL", decimal.NewFromInt(10000))
	require.NoError(t, err)
	assert.ErrorIs(t, p.TryOpen(c, 0), errZeroShares)
}

func TestTryOpenCosts(t *testing.T) {
	t.Parallel()
	s := testSettings()
	s.SlippagePercent = decimal.NewFromInt(1)
	s.CommissionPercent = decimal.NewFromInt(1)
	p, err := Setup(s, "AAPL", decimal.NewFromInt(10000))
	require.NoError(t, err)

	mustOpen(t, p, bar(0, 100, 101, 99, 100), 0)
	pos := p.open[0]
	assert.True(t, pos.entryPrice.Equal(decimal.NewFromInt(101)), "1%% slippage on a 100 close")
	// notional 1010, commission 10.10
	assert.True(t, pos.entryCommission.Equal(decimal.RequireFromString("10.1")))
	assert.True(t, p.Capital().Equal(decimal.RequireFromString("8979.9")))
}

func TestProtectiveLevels(t *testing.T) {
	t.Parallel()
	s := testSettings()
	s.StopLossPercent = decimal.NewFromInt(5)
	s.TakeProfitPercent = decimal.NewFromInt(10)
	p, err := Setup(s, "AAPL", decimal.NewFromInt(10000))
	require.NoError(t, err)

	mustOpen(t, p, bar(0, 100, 101, 99, 100), 0)
	pos := p.open[0]
	assert.True(t, pos.stop.Equal(decimal.NewFromInt(95)))
	assert.True(t, pos.target.Equal(decimal.NewFromInt(110)))
}

func TestCheckExitsStopBeforeTarget(t *testing.T) {
	t.Parallel()
	s := testSettings()
	s.StopLossPercent = decimal.NewFromInt(5)
	s.TakeProfitPercent = decimal.NewFromInt(5)
	p, err := Setup(s, "AAPL", decimal.NewFromInt(10000))
	require.NoError(t, err)
	mustOpen(t, p, bar(0, 100, 101, 99, 100), 0)

	// both levels inside the bar's range: the stop wins
	p.CheckExits(bar(1, 100, 106, 94, 100), 1, false)
	require.Equal(t, 0, p.OpenCount())
	trades := p.ClosedTrades()
	require.Len(t, trades, 1)
	assert.Equal(t, StopLoss, trades[0].Reason)
	assert.True(t, trades[0].ExitPrice.Equal(decimal.NewFromInt(95)))
	assert.True(t, trades[0].ProfitLoss.Equal(decimal.NewFromInt(-50)))
}

func TestCheckExitsGapThroughStop(t *testing.T) {
	t.Parallel()
	s := testSettings()
	s.StopLossPercent = decimal.NewFromInt(5)
	p, err := Setup(s, "AAPL", decimal.NewFromInt(10000))
	require.NoError(t, err)
	mustOpen(t, p, bar(0, 100, 101, 99, 100), 0)

	// opens below the stop: fill at the open, not the level
	p.CheckExits(bar(1, 90, 92, 88, 91), 1, false)
	trades := p.ClosedTrades()
	require.Len(t, trades, 1)
	assert.Equal(t, StopLoss, trades[0].Reason)
	assert.True(t, trades[0].ExitPrice.Equal(decimal.NewFromInt(90)))
}

func TestCheckExitsTakeProfit(t *testing.T) {
	t.Parallel()
	s := testSettings()
	s.TakeProfitPercent = decimal.NewFromInt(10)
	p, err := Setup(s, "AAPL", decimal.NewFromInt(10000))
	require.NoError(t, err)
	mustOpen(t, p, bar(0, 100, 101, 99, 100), 0)

	p.CheckExits(bar(1, 105, 108, 104, 107), 1, false)
	assert.Equal(t, 1, p.OpenCount(), "target untouched")

	p.CheckExits(bar(2, 108, 112, 107, 111), 2, false)
	trades := p.ClosedTrades()
	require.Len(t, trades, 1)
	assert.Equal(t, TakeProfit, trades[0].Reason)
	assert.True(t, trades[0].ExitPrice.Equal(decimal.NewFromInt(110)))
	assert.True(t, trades[0].ProfitLoss.Equal(decimal.NewFromInt(100)))
}

func TestCheckExitsRuleExit(t *testing.T) {
	t.Parallel()
	p, err := Setup(testSettings(), "AAPL", decimal.NewFromInt(10000))
	require.NoError(t, err)
	mustOpen(t, p, bar(0, 100, 101, 99, 100), 0)

	// exits are not eligible on the entry bar
	p.CheckExits(bar(0, 100, 101, 99, 100), 0, true)
	assert.Equal(t, 1, p.OpenCount())

	p.CheckExits(bar(1, 101, 103, 100, 102), 1, true)
	trades := p.ClosedTrades()
	require.Len(t, trades, 1)
	assert.Equal(t, RuleExit, trades[0].Reason)
	assert.True(t, trades[0].ExitPrice.Equal(decimal.NewFromInt(102)))
	assert.True(t, trades[0].ExitTime.After(trades[0].EntryTime))
}

func TestForceCloseAll(t *testing.T) {
	t.Parallel()
	p, err := Setup(testSettings(), "AAPL", decimal.NewFromInt(10000))
	require.NoError(t, err)
	mustOpen(t, p, bar(0, 100, 101, 99, 100), 0)

	p.ForceCloseAll(bar(1, 101, 103, 100, 102))
	assert.Equal(t, 0, p.OpenCount())
	trades := p.ClosedTrades()
	require.Len(t, trades, 1)
	assert.Equal(t, EndOfData, trades[0].Reason)
	assert.True(t, p.Capital().Equal(decimal.NewFromInt(10020)))
}

func TestExcursions(t *testing.T) {
	t.Parallel()
	p, err := Setup(testSettings(), "AAPL", decimal.NewFromInt(10000))
	require.NoError(t, err)
	mustOpen(t, p, bar(0, 100, 120, 80, 100), 0)

	// the entry bar's range is ignored
	p.UpdateExcursions(bar(0, 100, 120, 80, 100), 0)
	p.UpdateExcursions(bar(1, 100, 104, 97, 103), 1)
	p.UpdateExcursions(bar(2, 103, 106, 101, 105), 2)
	p.ForceCloseAll(bar(2, 103, 106, 101, 105))

	trades := p.ClosedTrades()
	require.Len(t, trades, 1)
	assert.True(t, trades[0].MAE.Equal(decimal.NewFromInt(3)), "got %v", trades[0].MAE)
	assert.True(t, trades[0].MFE.Equal(decimal.NewFromInt(6)), "got %v", trades[0].MFE)
}

func TestTradeRecord(t *testing.T) {
	t.Parallel()
	s := testSettings()
	s.StopLossPercent = decimal.NewFromInt(5)
	s.TakeProfitPercent = decimal.NewFromInt(10)
	s.SlippagePercent = decimal.NewFromInt(1)
	p, err := Setup(s, "AAPL", decimal.NewFromInt(10000))
	require.NoError(t, err)

	mustOpen(t, p, bar(0, 100, 101, 99, 100), 0)
	p.ForceCloseAll(bar(1, 101, 103, 100, 102))

	trades := p.ClosedTrades()
	require.Len(t, trades, 1)
	tr := trades[0]
	assert.Equal(t, Long, tr.Direction)
	assert.True(t, tr.StopLevel.Equal(decimal.RequireFromString("95.95")), "got %v", tr.StopLevel)
	assert.True(t, tr.TargetLevel.Equal(decimal.RequireFromString("111.1")), "got %v", tr.TargetLevel)
	// 10 a share lost entering at 101 versus the 100 close, 10.2 exiting
	// at 100.98 versus the 102 close
	assert.True(t, tr.Slippage.Equal(decimal.RequireFromString("20.2")), "got %v", tr.Slippage)

	p, err = Setup(testSettings(), "AAPL", decimal.NewFromInt(10000))
	require.NoError(t, err)
	mustOpen(t, p, bar(0, 100, 101, 99, 100), 0)
	p.ForceCloseAll(bar(1, 101, 103, 100, 102))
	trades = p.ClosedTrades()
	require.Len(t, trades, 1)
	assert.True(t, trades[0].StopLevel.IsZero(), "disabled stop stays zero")
	assert.True(t, trades[0].TargetLevel.IsZero(), "disabled target stays zero")
	assert.True(t, trades[0].Slippage.IsZero())
}

func TestMarkToMarket(t *testing.T) {
	t.Parallel()
	p, err := Setup(testSettings(), "AAPL", decimal.NewFromInt(10000))
	require.NoError(t, err)
	assert.True(t, p.MarkToMarket(123).Equal(decimal.NewFromInt(10000)))

	mustOpen(t, p, bar(0, 100, 101, 99, 100), 0)
	// 9000 cash plus 10 shares at 105
	assert.True(t, p.MarkToMarket(105).Equal(decimal.NewFromInt(10050)))
}
