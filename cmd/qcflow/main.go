package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"

	"github.com/ghalamif/QCFlow"
	"github.com/ghalamif/QCFlow/internal/adapters/observability"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "run":
		err = runCommand(os.Args[2:])
	case "validate":
		err = validateCommand(os.Args[2:])
	case "show":
		err = showCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		log.Fatalf("qcflow %s: %v", cmd, err)
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "./data/config.yaml", "Path to monitoring configuration file")
	input := fs.String("input", "", "Histogram JSON file (instant mode)")
	from := fs.String("from", "", "Start of the cumulative window, RFC3339 (inclusive)")
	to := fs.String("to", "", "End of the cumulative window, RFC3339 (exclusive)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := qcflow.LoadConfig(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m, err := qcflow.NewMonitor(ctx, cfg, qcflow.WithLogger(logger))
	if err != nil {
		return err
	}

	var results []qcflow.Result
	var runErr error
	if cfg.HistType == qcflow.HistCumulative {
		var start, end time.Time
		if start, err = parseTime(*from); err == nil {
			end, err = parseTime(*to)
		}
		if err != nil {
			m.Close()
			return err
		}
		var res qcflow.Result
		res, runErr = m.Cumulate(ctx, start, end)
		results = append(results, res)
	} else {
		if *input == "" {
			m.Close()
			return errors.New("-input is required in instant mode")
		}
		src, err := qcflow.OpenJSONSource(*input, cfg.Metric)
		if err != nil {
			m.Close()
			return err
		}
		defer src.Close()
		results, runErr = m.ObserveAll(ctx, src)
	}

	for _, res := range results {
		for _, d := range res.Diagnostics {
			logger.Info("diagnostic", "metric", cfg.Metric, "detail", d.Error())
		}
		logger.Info("point processed",
			"metric", cfg.Metric,
			"point", qcflow.FormatPoint(res.Point),
			"decision", res.Decision.State.String(),
			"alarm_ref", res.AlarmRef,
		)
	}

	pushErr := m.PushMetrics(ctx)
	return errors.Join(runErr, pushErr, m.Close())
}

func validateCommand(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", "./data/config.yaml", "Path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := qcflow.LoadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.AlarmProblems(); err != nil {
		fmt.Printf("config %s loads, but alarms will be skipped: %v\n", *cfgPath, err)
		return nil
	}
	fmt.Printf("config %s looks good\n", *cfgPath)
	return nil
}

func showCommand(args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	cfgPath := fs.String("config", "./data/config.yaml", "Path to monitoring configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := qcflow.LoadConfig(*cfgPath)
	if err != nil {
		return err
	}
	ctx := context.Background()
	m, err := qcflow.NewMonitor(ctx, cfg, qcflow.WithLogger(logr.Discard()))
	if err != nil {
		return err
	}
	defer m.Close()

	series, err := m.Series(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("# %s (%d points)\n", cfg.Metric, series.Len())
	for _, p := range series.Points {
		fmt.Println(qcflow.FormatPoint(p))
	}
	for _, w := range series.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %v\n", w)
	}
	return nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func printUsage() {
	fmt.Printf(`QCFlow CLI

Usage:
  qcflow <command> [flags]

Commands:
  run        Summarize histograms (instant) or aggregate a window (cumulative), then evaluate alarms
  validate   Load and validate a config file and report missing alarm settings
  show       Print the persisted series of the configured metric

Examples:
  qcflow run -config ./data/config.yaml -input ./data/histograms.json
  qcflow run -config ./data/cumulative.yaml -from 2026-10-01T00:00:00Z -to 2026-11-01T00:00:00Z
  qcflow validate -config ./data/config.yaml
  qcflow show -config ./data/config.yaml
`)
}
