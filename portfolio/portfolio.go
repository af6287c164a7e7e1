// Package portfolio tracks capital, open holdings and completed trades for a
// single simulation run. It is a pure cash model: buying debits capital for
// notional plus commission, selling credits proceeds minus commission
package portfolio

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradelens/backtest/common"
	"github.com/tradelens/backtest/data/kline"
	"github.com/tradelens/backtest/strategy"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Portfolio is the stateful ledger of one run. It is not safe for concurrent
// use; each run owns its own instance
type Portfolio struct {
	symbol string

	sizing            strategy.SizingMode
	sizeValue         decimal.Decimal
	stopPercent       decimal.Decimal
	targetPercent     decimal.Decimal
	maxOpen           int
	commissionPercent decimal.Decimal
	slippagePercent   decimal.Decimal

	capital decimal.Decimal
	open    []*position
	closed  []*Trade
}

// Setup creates a portfolio from strategy settings with the supplied starting
// capital, which may differ from the strategy's own when runs are chained
func Setup(s *strategy.Strategy, symbol string, initialCapital decimal.Decimal) (*Portfolio, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: strategy", common.ErrNilPointer)
	}
	if !initialCapital.IsPositive() {
		return nil, strategy.ErrInvalidInitialCapital
	}
	return &Portfolio{
		symbol:            symbol,
		sizing:            s.Sizing,
		sizeValue:         s.SizeValue,
		stopPercent:       s.StopLossPercent,
		targetPercent:     s.TakeProfitPercent,
		maxOpen:           s.MaxOpenPositions,
		commissionPercent: s.CommissionPercent,
		slippagePercent:   s.SlippagePercent,
		capital:           initialCapital,
	}, nil
}

// TryOpen opens a long position at the candle's close plus slippage. Shares
// are floored to whole units and the full cost must be covered by free capital
func (p *Portfolio) TryOpen(c *kline.Candle, idx int) error {
	if len(p.open) >= p.maxOpen {
		return ErrAtCapacity
	}
	fill := decimal.NewFromFloat(c.Close).
		Mul(one.Add(p.slippagePercent.Div(hundred)))

	var shares decimal.Decimal
	switch p.sizing {
	case strategy.PercentCapital:
		shares = p.capital.Mul(p.sizeValue).Div(hundred).Div(fill).Floor()
	case strategy.FixedDollar:
		shares = p.sizeValue.Div(fill).Floor()
	case strategy.FixedShares:
		shares = p.sizeValue.Floor()
	default:
		return strategy.ErrInvalidSizingMode
	}
	if !shares.IsPositive() {
		return errZeroShares
	}

	notional := shares.Mul(fill)
	commission := notional.Mul(p.commissionPercent).Div(hundred)
	cost := notional.Add(commission)
	if cost.GreaterThan(p.capital) {
		return errInsufficientCapital
	}
	p.capital = p.capital.Sub(cost)

	pos := &position{
		entryTime:       c.Time,
		entryIndex:      idx,
		entryPrice:      fill,
		shares:          shares,
		entryCommission: commission,
		entrySlippage:   shares.Mul(fill.Sub(decimal.NewFromFloat(c.Close))),
		lowestLow:       fill,
		highestHigh:     fill,
	}
	if p.stopPercent.IsPositive() {
		pos.stop = fill.Mul(one.Sub(p.stopPercent.Div(hundred)))
	}
	if p.targetPercent.IsPositive() {
		pos.target = fill.Mul(one.Add(p.targetPercent.Div(hundred)))
	}
	p.open = append(p.open, pos)
	return nil
}

// UpdateExcursions extends each open position's price extremes with the
// candle's range. The entry bar is excluded so excursions measure only the
// holding period after the fill
func (p *Portfolio) UpdateExcursions(c *kline.Candle, idx int) {
	low := decimal.NewFromFloat(c.Low)
	high := decimal.NewFromFloat(c.High)
	for _, pos := range p.open {
		if pos.entryIndex == idx {
			continue
		}
		if low.LessThan(pos.lowestLow) {
			pos.lowestLow = low
		}
		if high.GreaterThan(pos.highestHigh) {
			pos.highestHigh = high
		}
	}
}

// CheckExits closes positions whose stop, target or exit rule triggered on
// this candle. The stop-loss is evaluated first; when price gaps through a
// level the fill is the candle's open rather than the level itself. Positions
// opened on this candle are not eligible until the next bar
func (p *Portfolio) CheckExits(c *kline.Candle, idx int, ruleExitFired bool) {
	if len(p.open) == 0 {
		return
	}
	open := decimal.NewFromFloat(c.Open)
	low := decimal.NewFromFloat(c.Low)
	high := decimal.NewFromFloat(c.High)
	close := decimal.NewFromFloat(c.Close)

	survivors := p.open[:0]
	for _, pos := range p.open {
		if pos.entryIndex == idx {
			survivors = append(survivors, pos)
			continue
		}
		switch {
		case pos.stop.IsPositive() && low.LessThanOrEqual(pos.stop):
			price := pos.stop
			if open.LessThanOrEqual(pos.stop) {
				price = open
			}
			p.closePosition(pos, price, c.Time, StopLoss)
		case pos.target.IsPositive() && high.GreaterThanOrEqual(pos.target):
			price := pos.target
			if open.GreaterThanOrEqual(pos.target) {
				price = open
			}
			p.closePosition(pos, price, c.Time, TakeProfit)
		case ruleExitFired:
			p.closePosition(pos, close, c.Time, RuleExit)
		default:
			survivors = append(survivors, pos)
		}
	}
	p.open = survivors
}

// ForceCloseAll liquidates every open position at the candle's close. Used on
// the final bar so every trade has a recorded outcome
func (p *Portfolio) ForceCloseAll(c *kline.Candle) {
	close := decimal.NewFromFloat(c.Close)
	for _, pos := range p.open {
		p.closePosition(pos, close, c.Time, EndOfData)
	}
	p.open = p.open[:0]
}

func (p *Portfolio) closePosition(pos *position, rawPrice decimal.Decimal, t time.Time, reason ExitReason) {
	fill := rawPrice.Mul(one.Sub(p.slippagePercent.Div(hundred)))
	proceeds := pos.shares.Mul(fill)
	commission := proceeds.Mul(p.commissionPercent).Div(hundred)
	p.capital = p.capital.Add(proceeds).Sub(commission)

	pnl := proceeds.Sub(commission).
		Sub(pos.shares.Mul(pos.entryPrice)).
		Sub(pos.entryCommission)

	mae := pos.entryPrice.Sub(pos.lowestLow)
	if mae.IsNegative() {
		mae = decimal.Zero
	}
	mfe := pos.highestHigh.Sub(pos.entryPrice)
	if mfe.IsNegative() {
		mfe = decimal.Zero
	}

	p.closed = append(p.closed, &Trade{
		Symbol:      p.symbol,
		Direction:   Long,
		EntryTime:   pos.entryTime,
		ExitTime:    t,
		EntryPrice:  pos.entryPrice,
		ExitPrice:   fill,
		Shares:      pos.shares,
		ProfitLoss:  pnl,
		Commission:  pos.entryCommission.Add(commission),
		Reason:      reason,
		StopLevel:   pos.stop,
		TargetLevel: pos.target,
		Slippage:    pos.entrySlippage.Add(pos.shares.Mul(rawPrice.Sub(fill))),
		MAE:         mae,
		MFE:         mfe,
	})
}

// MarkToMarket returns free capital plus every open holding valued at the
// supplied price
func (p *Portfolio) MarkToMarket(price float64) decimal.Decimal {
	equity := p.capital
	if len(p.open) == 0 {
		return equity
	}
	mark := decimal.NewFromFloat(price)
	for _, pos := range p.open {
		equity = equity.Add(pos.shares.Mul(mark))
	}
	return equity
}

// Capital returns free cash excluding the value of open holdings
func (p *Portfolio) Capital() decimal.Decimal {
	return p.capital
}

// OpenCount returns the number of open positions
func (p *Portfolio) OpenCount() int {
	return len(p.open)
}

// ClosedTrades returns completed trades in close order
func (p *Portfolio) ClosedTrades() []*Trade {
	return p.closed
}
