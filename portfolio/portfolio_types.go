package portfolio

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrAtCapacity is returned when opening would exceed max open positions
	ErrAtCapacity = errors.New("portfolio at maximum open positions")

	errInsufficientCapital = errors.New("insufficient capital for position")
	errZeroShares          = errors.New("position size rounds to zero shares")
)

// Direction is the side of a trade. The engine is long-only
type Direction string

// Trade directions
const (
	Long Direction = "LONG"
)

// ExitReason records why a position was closed. Stop-loss outranks take-profit
// when both levels are touched within one bar
type ExitReason string

// Exit reasons
const (
	StopLoss   ExitReason = "STOP_LOSS"
	TakeProfit ExitReason = "TAKE_PROFIT"
	RuleExit   ExitReason = "RULE_EXIT"
	EndOfData  ExitReason = "END_OF_DATA"
)

// Trade is one completed round trip. Prices are fills after slippage,
// ProfitLoss is net of both commissions
type Trade struct {
	Symbol     string          `json:"symbol"`
	Direction  Direction       `json:"direction"`
	EntryTime  time.Time       `json:"entry-time"`
	ExitTime   time.Time       `json:"exit-time"`
	EntryPrice decimal.Decimal `json:"entry-price"`
	ExitPrice  decimal.Decimal `json:"exit-price"`
	Shares     decimal.Decimal `json:"shares"`
	ProfitLoss decimal.Decimal `json:"profit-loss"`
	Commission decimal.Decimal `json:"commission"`
	Reason     ExitReason      `json:"exit-reason"`

	// StopLevel and TargetLevel are the protective price levels the position
	// carried, zero when disabled. Slippage is the total value given up to
	// entry and exit slippage across the round trip
	StopLevel   decimal.Decimal `json:"stop-level"`
	TargetLevel decimal.Decimal `json:"target-level"`
	Slippage    decimal.Decimal `json:"slippage"`

	// MAE and MFE are the worst and best price excursions from the entry
	// fill over the holding period, in price units, never negative
	MAE decimal.Decimal `json:"max-adverse-excursion"`
	MFE decimal.Decimal `json:"max-favourable-excursion"`
}

// EquityPoint is one sample of total account value. The equity curve is the
// ordered series of these, one per simulated bar
type EquityPoint struct {
	Time   time.Time       `json:"time"`
	Equity decimal.Decimal `json:"equity"`
}

// position is one open holding awaiting an exit
type position struct {
	entryTime       time.Time
	entryIndex      int
	entryPrice      decimal.Decimal
	shares          decimal.Decimal
	entryCommission decimal.Decimal
	entrySlippage   decimal.Decimal

	// stop and target are absolute price levels, zero when disabled
	stop   decimal.Decimal
	target decimal.Decimal

	lowestLow   decimal.Decimal
	highestHigh decimal.Decimal
}
