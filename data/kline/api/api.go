// Package api loads candle data from the trading-analysis platform's
// market data service over HTTP
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tradelens/backtest/common"
	"github.com/tradelens/backtest/data/kline"
	"github.com/tradelens/backtest/log"
)

const defaultTimeout = 30 * time.Second

var (
	errBaseURLUnset = errors.New("base URL unset")
	errBadStatus    = errors.New("unexpected response status")
)

// Provider requests candles from a remote market data endpoint. Requests are
// paced by a rate limiter so a large walk-forward run cannot hammer the
// upstream service
type Provider struct {
	BaseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewProvider returns a provider limited to the supplied number of requests
// per interval. Non-positive limits disable rate limiting
func NewProvider(baseURL string, interval time.Duration, requests int) *Provider {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if interval > 0 && requests > 0 {
		rps := float64(requests) / interval.Seconds()
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &Provider{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
		limiter: limiter,
	}
}

// Candles requests the symbol's candles for the range from the data service
func (p *Provider) Candles(ctx context.Context, symbol string, interval kline.Interval, start, end time.Time) (*kline.Item, error) {
	if p == nil || p.BaseURL == "" {
		return nil, errBaseURLUnset
	}
	if symbol == "" {
		return nil, errors.New("symbol unset")
	}
	if err := common.StartEndTimeCheck(start, end); err != nil {
		return nil, err
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	vals := url.Values{}
	vals.Set("symbol", strings.ToUpper(symbol))
	vals.Set("interval", interval.String())
	vals.Set("start", start.UTC().Format(time.RFC3339))
	vals.Set("end", end.UTC().Format(time.RFC3339))
	endpoint := p.BaseURL + "/candles?" + vals.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, err
	}
	log.Debugf(log.Data, "requesting candles %v", endpoint)
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w %v requesting %v", errBadStatus, resp.StatusCode, endpoint)
	}

	var candles []kline.Candle
	if err = json.NewDecoder(resp.Body).Decode(&candles); err != nil {
		return nil, fmt.Errorf("could not decode candle response: %w", err)
	}
	item := &kline.Item{
		Symbol:   strings.ToUpper(symbol),
		Interval: interval,
		Candles:  candles,
	}
	item.SortCandlesByTime()
	item.RemoveDuplicates()
	if len(item.Candles) == 0 {
		return nil, fmt.Errorf("%v %w", symbol, kline.ErrNoCandles)
	}
	return item, nil
}
