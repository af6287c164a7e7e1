package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tradelens/backtest/config"
	"github.com/tradelens/backtest/data/kline"
	"github.com/tradelens/backtest/engine"
	"github.com/tradelens/backtest/log"
	"github.com/tradelens/backtest/optimize"
)

var (
	configFlag = &cli.StringFlag{
		Name:     "config",
		Aliases:  []string{"c"},
		Usage:    "path to a run configuration file",
		Required: true,
	}
	verboseFlag = &cli.BoolFlag{
		Name:  "verbose",
		Usage: "enable debug logging",
	}
)

func main() {
	app := &cli.App{
		Name:  "backtest",
		Usage: "deterministic strategy backtesting and walk-forward optimization",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "run a single backtest from a config file",
				Flags:  []cli.Flag{configFlag, verboseFlag},
				Action: runBacktest,
			},
			{
				Name:   "optimize",
				Usage:  "run a walk-forward optimization from a config file",
				Flags:  []cli.Flag{configFlag, verboseFlag},
				Action: runOptimization,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(c *cli.Context) (*config.Config, *engine.Run, *kline.Item, error) {
	if c.Bool("verbose") {
		log.SetGlobalLevels(log.Levels{Debug: true, Info: true, Warn: true, Error: true})
	}
	cfg, err := config.ReadConfigFromFile(c.String("config"))
	if err != nil {
		return nil, nil, nil, err
	}
	strat, err := cfg.BuildStrategy()
	if err != nil {
		return nil, nil, nil, err
	}

	provider, err := cfg.DataProvider()
	if err != nil {
		return nil, nil, nil, err
	}
	interval, err := cfg.Interval()
	if err != nil {
		return nil, nil, nil, err
	}
	start, end, err := cfg.DateRange()
	if err != nil {
		return nil, nil, nil, err
	}
	item, err := provider.Candles(c.Context, cfg.Data.Symbol, interval, start, end)
	if err != nil {
		return nil, nil, nil, err
	}

	manager := engine.NewRunManager()
	run, err := manager.NewRun(cfg.Nickname, strat)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, run, item, nil
}

func runBacktest(c *cli.Context) error {
	_, run, item, err := setup(c)
	if err != nil {
		return err
	}
	if err = engine.ExecuteRun(run, item); err != nil {
		return err
	}
	run.PrintResults()
	return nil
}

func runOptimization(c *cli.Context) error {
	cfg, run, item, err := setup(c)
	if err != nil {
		return err
	}
	settings, err := cfg.OptimizeSettings()
	if err != nil {
		return err
	}
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if err = optimize.ExecuteRun(ctx, run, item, settings); err != nil {
		return err
	}
	run.PrintResults()
	return nil
}
