package indicators

import (
	"fmt"

	"github.com/tradelens/backtest/data/kline"
)

// Cache holds computed indicator series for a single simulation run. Each run
// owns its own cache, so concurrently evaluated candidates never share or
// corrupt each other's series. Identical specs referenced by both entry and
// exit rules are computed once
type Cache struct {
	ohlc   *kline.OHLC
	length int
	series map[Spec][]float64
}

// NewCache prepares a cache over the item's bars
func NewCache(item *kline.Item) *Cache {
	return &Cache{
		ohlc:   item.GetOHLC(),
		length: len(item.Candles),
		series: make(map[Spec][]float64),
	}
}

// Prime validates and computes every spec up front so data shortfalls surface
// before the simulation loop starts
func (c *Cache) Prime(specs ...Spec) error {
	for x := range specs {
		if err := specs[x].Validate(); err != nil {
			return err
		}
		if specs[x].Warmup() >= c.length {
			return fmt.Errorf("%w: %v needs %d bars, have %d",
				ErrInsufficientData, specs[x], specs[x].Warmup()+1, c.length)
		}
		c.get(specs[x])
	}
	return nil
}

// Value returns the spec's value at the bar index. The second return is false
// when the value is undefined or the index is out of range
func (c *Cache) Value(s Spec, idx int) (float64, bool) {
	if idx < 0 || idx >= c.length {
		return 0, false
	}
	v := c.get(s)[idx]
	if !Defined(v) {
		return 0, false
	}
	return v, true
}

func (c *Cache) get(s Spec) []float64 {
	key := s
	if values, ok := c.series[key]; ok {
		return values
	}
	values := s.series(c.ohlc)
	c.series[key] = values
	return values
}
