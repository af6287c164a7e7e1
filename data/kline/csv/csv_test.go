package csv

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradelens/backtest/data/kline"
)

const fileContents = `date,open,high,low,close,volume
2023-01-03,130.28,130.90,124.17,125.07,112117500
2023-01-04,126.89,128.66,125.08,126.36,89113600
2023-01-05,127.13,127.77,124.76,125.02,80962700
2023-01-06,126.01,130.29,124.89,129.62,87754700
2023-01-06,126.01,130.29,124.89,129.62,87754700
`

func writeFixture(t *testing.T) *Provider {
	t.Helper()
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "AAPL.csv"), []byte(fileContents), 0o644)
	require.NoError(t, err)
	return &Provider{Dir: dir}
}

func TestCandles(t *testing.T) {
	t.Parallel()
	p := writeFixture(t)
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)

	item, err := p.Candles(context.Background(), "aapl", kline.OneDay, start, end)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", item.Symbol)
	require.Len(t, item.Candles, 4)
	assert.Equal(t, 125.07, item.Candles[0].Close)
	assert.Equal(t, time.Date(2023, 1, 6, 0, 0, 0, 0, time.UTC), item.Candles[3].Time)
	require.NoError(t, item.Validate())
}

func TestCandlesRangeFilter(t *testing.T) {
	t.Parallel()
	p := writeFixture(t)
	start := time.Date(2023, 1, 4, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 1, 6, 0, 0, 0, 0, time.UTC)

	item, err := p.Candles(context.Background(), "AAPL", kline.OneDay, start, end)
	require.NoError(t, err)
	require.Len(t, item.Candles, 2)
	assert.Equal(t, 126.36, item.Candles[0].Close)
}

func TestCandlesErrors(t *testing.T) {
	t.Parallel()
	p := writeFixture(t)
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)

	_, err := (&Provider{}).Candles(context.Background(), "AAPL", kline.OneDay, start, end)
	assert.ErrorIs(t, err, errNoDir)

	_, err = p.Candles(context.Background(), "MSFT", kline.OneDay, start, end)
	assert.Error(t, err)

	_, err = p.Candles(context.Background(), "AAPL", kline.OneDay, end, start)
	assert.Error(t, err)

	// range with no rows
	_, err = p.Candles(context.Background(), "AAPL", kline.OneDay,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, kline.ErrNoCandles)
}
