/*
main.go - stockctl entry point

PURPOSE:
  Command-line front end for the feed stock engine. Opens the SQLite
  store, wires the recording and dashboard services, and runs one of the
  subcommands.

COMMANDS:
  overview   Farm-wide stock dashboard: per-item health, low-stock list,
             total inventory value, recent activity
  item       One item in depth: state, trend, runway, charts, audit trail
  seed       Install the default catalog and, with -demo, a sample ledger

COMMAND-LINE FLAGS:
  -db       SQLite database path (default: feedstock.db)
            Use ":memory:" for an in-memory database
  -catalog  Optional JSON catalog file applied before the command runs
  -asof     Evaluation date, YYYY-MM-DD (default: today)
  -window   Consumption-trend window in days (default: 30)
  -format   Output format: text or json (default: text)
  -verbose  Debug logging

EXAMPLES:
  # Seed a fresh database with the default catalog and demo data
  ./stockctl -db=./data/feedstock.db seed -demo

  # Farm-wide overview as of a past date
  ./stockctl -db=./data/feedstock.db -asof=2026-06-30 overview

  # One item as JSON
  ./stockctl -db=./data/feedstock.db -format=json item wheat-straw

SEE ALSO:
  - fodder/service.go: Recording service
  - dashboard/service.go: Views this CLI renders
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/dairyops/feedstock/dashboard"
	"github.com/dairyops/feedstock/factory"
	"github.com/dairyops/feedstock/fodder"
	"github.com/dairyops/feedstock/inventory"
	"github.com/dairyops/feedstock/store/sqlite"
)

func main() {
	dbPath := flag.String("db", "feedstock.db", "SQLite database path")
	catalogFile := flag.String("catalog", "", "JSON catalog file to apply before running")
	asOfFlag := flag.String("asof", "", "evaluation date (YYYY-MM-DD, default today)")
	window := flag.Int("window", dashboard.DefaultTrendWindowDays, "consumption-trend window in days")
	format := flag.String("format", "text", "output format: text or json")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	asOf := inventory.Today()
	if *asOfFlag != "" {
		asOf, err = inventory.ParseDate(*asOfFlag)
		if err != nil {
			fatal(logger, "invalid -asof date", err)
		}
	}
	if *format != "text" && *format != "json" {
		fatal(logger, "invalid -format", fmt.Errorf("want text or json, got %q", *format))
	}

	st, err := sqlite.New(*dbPath)
	if err != nil {
		fatal(logger, "failed to open database", err)
	}
	defer st.Close()

	app := &app{
		store:     st,
		service:   fodder.NewService(st.Catalog(), st, st, logger),
		dashboard: dashboard.NewService(st.Catalog(), st, logger),
		logger:    logger,
		asOf:      asOf,
		format:    *format,
	}
	app.dashboard.WindowDays = *window

	if *catalogFile != "" {
		if err := app.applyCatalogFile(*catalogFile); err != nil {
			fatal(logger, "failed to apply catalog file", err)
		}
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case "overview":
		err = app.runOverview()
	case "item":
		if len(args) < 2 {
			fatal(logger, "item requires an item type id", fmt.Errorf("usage: stockctl item <id>"))
		}
		err = app.runItem(inventory.ItemTypeID(args[1]))
	case "seed":
		demo := len(args) > 1 && args[1] == "-demo"
		err = app.runSeed(demo)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fatal(logger, "command failed", err)
	}
}

// exitCode maps a command failure to a shell exit status: 2 for bad
// input, 3 for a missing record, 1 for anything else.
func exitCode(err error) int {
	switch {
	case inventory.IsClientError(err):
		return 2
	case inventory.IsNotFound(err):
		return 3
	default:
		return 1
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func (a *app) applyCatalogFile(path string) error {
	items, err := factory.NewItemTypeFactory().LoadCatalogFile(path)
	if err != nil {
		return err
	}
	for _, it := range items {
		if err := a.service.SaveItemType(ctxBackground(), it); err != nil {
			return fmt.Errorf("item %s: %w", it.ID, err)
		}
	}
	a.logger.Info("catalog file applied", zap.String("path", path), zap.Int("items", len(items)))
	return nil
}

func fatal(logger *zap.Logger, msg string, err error) {
	logger.Error(msg, zap.Error(err))
	logger.Sync()
	os.Exit(exitCode(err))
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: stockctl [flags] <command>

commands:
  overview          farm-wide stock dashboard
  item <id>         one item in depth
  seed [-demo]      install default catalog (and demo ledger)

flags:`)
	flag.PrintDefaults()
}
