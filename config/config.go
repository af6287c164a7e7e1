// Package config reads and validates JSON run configuration and builds the
// domain values the engine consumes from it
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradelens/backtest/common"
	"github.com/tradelens/backtest/data/kline"
	"github.com/tradelens/backtest/data/kline/api"
	"github.com/tradelens/backtest/data/kline/csv"
	"github.com/tradelens/backtest/optimize"
	"github.com/tradelens/backtest/strategy"
)

// ReadConfigFromFile reads, parses and validates a config file
func ReadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadConfig(data)
}

// LoadConfig parses and validates raw config JSON
func LoadConfig(data []byte) (*Config, error) {
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks every section so a run cannot start from a half-usable
// config
func (c *Config) Validate() error {
	if err := c.Data.validate(); err != nil {
		return err
	}
	if _, err := c.BuildStrategy(); err != nil {
		return err
	}
	if c.WalkForward != nil {
		settings, err := c.OptimizeSettings()
		if err != nil {
			return err
		}
		if err = settings.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (d *DataSettings) validate() error {
	if d.Symbol == "" {
		return errSymbolUnset
	}
	if _, err := d.interval(); err != nil {
		return err
	}
	start, end, err := d.dateRange()
	if err != nil {
		return err
	}
	if err = common.StartEndTimeCheck(start, end); err != nil {
		return err
	}
	switch d.Source {
	case SourceCSV:
		if d.CSVDir == "" {
			return errCSVDirUnset
		}
	case SourceAPI:
		if d.APIBaseURL == "" {
			return errAPIBaseURLUnset
		}
	default:
		return fmt.Errorf("%w %q", errUnknownDataSource, d.Source)
	}
	return nil
}

func (d *DataSettings) interval() (kline.Interval, error) {
	if d.Interval == "" {
		return kline.OneDay, nil
	}
	return kline.IntervalFromString(d.Interval)
}

func (d *DataSettings) dateRange() (start, end time.Time, err error) {
	start, err = time.Parse(common.SimpleTimeFormat, d.StartDate)
	if err != nil {
		return start, end, fmt.Errorf("start-date: %w", err)
	}
	end, err = time.Parse(common.SimpleTimeFormat, d.EndDate)
	if err != nil {
		return start, end, fmt.Errorf("end-date: %w", err)
	}
	return start, end, nil
}

// Interval returns the configured bar interval, defaulting to daily
func (c *Config) Interval() (kline.Interval, error) {
	return c.Data.interval()
}

// DateRange returns the configured start and end dates
func (c *Config) DateRange() (time.Time, time.Time, error) {
	return c.Data.dateRange()
}

// DataProvider builds the market-data provider named by the data settings
func (c *Config) DataProvider() (kline.Provider, error) {
	switch c.Data.Source {
	case SourceCSV:
		if c.Data.CSVDir == "" {
			return nil, errCSVDirUnset
		}
		return &csv.Provider{Dir: c.Data.CSVDir}, nil
	case SourceAPI:
		if c.Data.APIBaseURL == "" {
			return nil, errAPIBaseURLUnset
		}
		requests := int(c.Data.APIRequestsPerSecond)
		return api.NewProvider(c.Data.APIBaseURL, time.Second, requests), nil
	default:
		return nil, fmt.Errorf("%w %q", errUnknownDataSource, c.Data.Source)
	}
}

// BuildStrategy converts the strategy and portfolio sections into a validated
// strategy value
func (c *Config) BuildStrategy() (*strategy.Strategy, error) {
	s := &strategy.Strategy{
		Name:              c.Strategy.Name,
		EntryRules:        c.Strategy.EntryConditions,
		ExitRules:         c.Strategy.ExitConditions,
		Sizing:            strategy.SizingMode(c.Portfolio.SizingMode),
		SizeValue:         decimal.NewFromFloat(c.Portfolio.SizeValue),
		StopLossPercent:   decimal.NewFromFloat(c.Portfolio.StopLossPercent),
		TakeProfitPercent: decimal.NewFromFloat(c.Portfolio.TakeProfitPercent),
		MaxOpenPositions:  c.Portfolio.MaxOpenPositions,
		CommissionPercent: decimal.NewFromFloat(c.Portfolio.CommissionPercent),
		SlippagePercent:   decimal.NewFromFloat(c.Portfolio.SlippagePercent),
		InitialCapital:    decimal.NewFromFloat(c.Portfolio.InitialCapital),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// OptimizeSettings converts the walk-forward section for the optimizer
func (c *Config) OptimizeSettings() (optimize.Settings, error) {
	if c.WalkForward == nil {
		return optimize.Settings{}, ErrNoWalkForwardSettings
	}
	return optimize.Settings{
		TrainMonths:     c.WalkForward.TrainMonths,
		TestMonths:      c.WalkForward.TestMonths,
		Ranges:          c.WalkForward.Ranges,
		Metric:          optimize.Metric(c.WalkForward.Metric),
		MaxCombinations: c.WalkForward.MaxCombinations,
		Workers:         c.WalkForward.Workers,
	}, nil
}
