package kline

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoCandles is returned when a requested range contains no bars
	ErrNoCandles = errors.New("no candles in range")
	// ErrUnsupportedInterval is returned for intervals the engine cannot simulate
	ErrUnsupportedInterval = errors.New("unsupported interval")

	errSymbolUnset       = errors.New("symbol unset")
	errCandlesOutOfOrder = errors.New("candles out of chronological order")
	errInvalidCandle     = errors.New("invalid candle")
)

// Interval is the fixed observation period of a candle
type Interval time.Duration

// Supported intervals. Daily bars are the application default
const (
	OneHour Interval = Interval(time.Hour)
	OneDay  Interval = Interval(24 * time.Hour)
	OneWeek Interval = 7 * OneDay
)

// Candle is one OHLCV observation for a fixed time interval
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Item holds an ordered candle series for one symbol
type Item struct {
	Symbol   string
	Interval Interval
	Candles  []Candle
}

// OHLC is a column-wise projection of an Item for technical analysis usage
type OHLC struct {
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64
}

// Provider supplies ordered OHLCV candles for a symbol and date range. Gaps
// such as holidays or missing data are absent candles, not errors
type Provider interface {
	Candles(ctx context.Context, symbol string, interval Interval, start, end time.Time) (*Item, error)
}
