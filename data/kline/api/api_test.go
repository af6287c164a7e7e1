package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradelens/backtest/data/kline"
)

func testServer(t *testing.T, status int, candles []kline.Candle) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/candles", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode(candles))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCandles(t *testing.T) {
	t.Parallel()
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	candles := []kline.Candle{
		{Time: start.AddDate(0, 0, 1), Open: 101, High: 102, Low: 100, Close: 101.5, Volume: 1000},
		{Time: start, Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 1200},
		{Time: start, Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 1200},
	}
	server := testServer(t, http.StatusOK, candles)

	p := NewProvider(server.URL, time.Second, 10)
	item, err := p.Candles(context.Background(), "aapl", kline.OneDay, start, end)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", item.Symbol)
	require.Len(t, item.Candles, 2)
	assert.Equal(t, start, item.Candles[0].Time)
	require.NoError(t, item.Validate())
}

func TestCandlesErrors(t *testing.T) {
	t.Parallel()
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	_, err := (&Provider{}).Candles(context.Background(), "AAPL", kline.OneDay, start, end)
	assert.ErrorIs(t, err, errBaseURLUnset)

	server := testServer(t, http.StatusInternalServerError, nil)
	p := NewProvider(server.URL, time.Second, 10)
	_, err = p.Candles(context.Background(), "AAPL", kline.OneDay, start, end)
	assert.ErrorIs(t, err, errBadStatus)

	empty := testServer(t, http.StatusOK, nil)
	p = NewProvider(empty.URL, 0, 0)
	_, err = p.Candles(context.Background(), "AAPL", kline.OneDay, start, end)
	assert.ErrorIs(t, err, kline.ErrNoCandles)
}
