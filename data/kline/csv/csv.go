// Package csv loads candle data from local comma separated value files,
// one file per symbol named <symbol>.csv with rows of
// date,open,high,low,close,volume
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tradelens/backtest/common"
	"github.com/tradelens/backtest/data/kline"
	"github.com/tradelens/backtest/log"
)

var errNoDir = errors.New("no candle directory set")

// Provider loads candles from a directory of CSV files
type Provider struct {
	Dir string
}

// Candles reads the symbol's file and returns candles within the range
func (p *Provider) Candles(_ context.Context, symbol string, interval kline.Interval, start, end time.Time) (*kline.Item, error) {
	if p.Dir == "" {
		return nil, errNoDir
	}
	if symbol == "" {
		return nil, errors.New("symbol unset")
	}
	if err := common.StartEndTimeCheck(start, end); err != nil {
		return nil, err
	}

	path := filepath.Join(p.Dir, strings.ToUpper(symbol)+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open candle data for %v: %w", symbol, err)
	}
	defer f.Close()

	item := &kline.Item{
		Symbol:   strings.ToUpper(symbol),
		Interval: interval,
	}
	reader := csv.NewReader(f)
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%v row %d: %w", path, row, err)
		}
		if len(record) < 6 {
			return nil, fmt.Errorf("%v row %d: expected 6 columns, have %d", path, row, len(record))
		}
		if row == 1 && isHeader(record) {
			continue
		}
		c, err := parseCandle(record)
		if err != nil {
			return nil, fmt.Errorf("%v row %d: %w", path, row, err)
		}
		if c.Time.Before(start) || !c.Time.Before(end) {
			continue
		}
		item.Candles = append(item.Candles, c)
	}

	item.SortCandlesByTime()
	item.RemoveDuplicates()
	if len(item.Candles) == 0 {
		return nil, fmt.Errorf("%v %v to %v %w",
			symbol, start.Format(common.SimpleTimeFormat), end.Format(common.SimpleTimeFormat), kline.ErrNoCandles)
	}
	log.Debugf(log.Data, "loaded %d candles for %v from %v", len(item.Candles), symbol, path)
	return item, nil
}

func isHeader(record []string) bool {
	_, err := strconv.ParseFloat(record[1], 64)
	return err != nil
}

func parseCandle(record []string) (kline.Candle, error) {
	t, err := parseTime(record[0])
	if err != nil {
		return kline.Candle{}, err
	}
	fields := make([]float64, 5)
	for x := 0; x < 5; x++ {
		fields[x], err = strconv.ParseFloat(strings.TrimSpace(record[x+1]), 64)
		if err != nil {
			return kline.Candle{}, err
		}
	}
	return kline.Candle{
		Time:   t,
		Open:   fields[0],
		High:   fields[1],
		Low:    fields[2],
		Close:  fields[3],
		Volume: fields[4],
	}, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(common.SimpleTimeFormat, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	unix, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable candle time %q", s)
	}
	return time.Unix(unix, 0).UTC(), nil
}
