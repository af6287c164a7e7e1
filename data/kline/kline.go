package kline

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Duration returns the interval as a time.Duration
func (i Interval) Duration() time.Duration {
	return time.Duration(i)
}

// String returns the short name for the interval
func (i Interval) String() string {
	switch i {
	case OneHour:
		return "1h"
	case OneDay:
		return "1d"
	case OneWeek:
		return "1w"
	default:
		return i.Duration().String()
	}
}

// IntervalsPerYear returns the number of tradeable intervals in a year,
// used to annualise per-interval return statistics. Daily bars use the 252
// trading day convention
func (i Interval) IntervalsPerYear() float64 {
	switch i {
	case OneHour:
		// 6.5 trading hours per session
		return 252 * 6.5
	case OneWeek:
		return 52
	default:
		return 252
	}
}

// IntervalFromString converts a config interval name to an Interval
func IntervalFromString(s string) (Interval, error) {
	switch strings.ToLower(s) {
	case "1h", "hour":
		return OneHour, nil
	case "", "1d", "day", "daily":
		return OneDay, nil
	case "1w", "week", "weekly":
		return OneWeek, nil
	default:
		return 0, fmt.Errorf("%w %q", ErrUnsupportedInterval, s)
	}
}

// Validate ensures the item can be simulated: a symbol is set, candles exist,
// are strictly ordered and carry sane prices
func (i *Item) Validate() error {
	if i.Symbol == "" {
		return errSymbolUnset
	}
	if len(i.Candles) == 0 {
		return fmt.Errorf("%s %w", i.Symbol, ErrNoCandles)
	}
	for x := range i.Candles {
		c := &i.Candles[x]
		if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
			return fmt.Errorf("%w at %v: non-positive price", errInvalidCandle, c.Time)
		}
		if c.High < c.Low {
			return fmt.Errorf("%w at %v: high below low", errInvalidCandle, c.Time)
		}
		if x > 0 && !i.Candles[x-1].Time.Before(c.Time) {
			return fmt.Errorf("%w at %v", errCandlesOutOfOrder, c.Time)
		}
	}
	return nil
}

// SortCandlesByTime sorts candles chronologically
func (i *Item) SortCandlesByTime() {
	sort.Slice(i.Candles, func(x, y int) bool {
		return i.Candles[x].Time.Before(i.Candles[y].Time)
	})
}

// RemoveDuplicates removes any duplicate candles, keeping the first seen for
// each timestamp. The series must already be sorted
func (i *Item) RemoveDuplicates() {
	lookup := make(map[int64]struct{}, len(i.Candles))
	keep := i.Candles[:0]
	for x := range i.Candles {
		ts := i.Candles[x].Time.Unix()
		if _, ok := lookup[ts]; ok {
			continue
		}
		lookup[ts] = struct{}{}
		keep = append(keep, i.Candles[x])
	}
	i.Candles = keep
}

// IndexOfFirstAtOrAfter returns the index of the first candle at or after t,
// or len(candles) when every candle precedes t
func (i *Item) IndexOfFirstAtOrAfter(t time.Time) int {
	return sort.Search(len(i.Candles), func(x int) bool {
		return !i.Candles[x].Time.Before(t)
	})
}

// Slice returns a shallow copy holding candles within [start, end)
func (i *Item) Slice(start, end time.Time) *Item {
	from := i.IndexOfFirstAtOrAfter(start)
	to := i.IndexOfFirstAtOrAfter(end)
	return &Item{
		Symbol:   i.Symbol,
		Interval: i.Interval,
		Candles:  i.Candles[from:to],
	}
}

// SliceWithLead returns candles within [start, end) preceded by up to lead
// additional candles of context, used to warm indicators up before the first
// tradeable bar
func (i *Item) SliceWithLead(start, end time.Time, lead int) *Item {
	from := i.IndexOfFirstAtOrAfter(start)
	to := i.IndexOfFirstAtOrAfter(end)
	if lead > from {
		lead = from
	}
	return &Item{
		Symbol:   i.Symbol,
		Interval: i.Interval,
		Candles:  i.Candles[from-lead : to],
	}
}

// GetOHLC returns the entire series as a friendly type for technical analysis
// usage
func (i *Item) GetOHLC() *OHLC {
	ohlc := &OHLC{
		Open:   make([]float64, len(i.Candles)),
		High:   make([]float64, len(i.Candles)),
		Low:    make([]float64, len(i.Candles)),
		Close:  make([]float64, len(i.Candles)),
		Volume: make([]float64, len(i.Candles)),
	}
	for x := range i.Candles {
		ohlc.Open[x] = i.Candles[x].Open
		ohlc.High[x] = i.Candles[x].High
		ohlc.Low[x] = i.Candles[x].Low
		ohlc.Close[x] = i.Candles[x].Close
		ohlc.Volume[x] = i.Candles[x].Volume
	}
	return ohlc
}
