package main

import (
	"context"
	"fmt"
	"io"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"capitalGainsTracker/config"
	"capitalGainsTracker/internal/adapters/logger"
	"capitalGainsTracker/internal/adapters/sqlite"
	"capitalGainsTracker/internal/app"
	"capitalGainsTracker/internal/domain"
	"capitalGainsTracker/internal/ports"
	"capitalGainsTracker/internal/simulator"
	"capitalGainsTracker/internal/trace"
	"capitalGainsTracker/internal/utils"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger, syncLogger := newLogger(cfg)
	defer syncLogger()
	appLogger.Debug(context.Background(), "Logger initialized", map[string]interface{}{
		"level": cfg.LogLevel.String(), "format": cfg.LogFormat,
	})

	// 3. Initialize Tracing
	if err := trace.Init(cfg.TracingEnabled); err != nil {
		log.Fatalf("FATAL: Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := trace.Shutdown(context.Background()); err != nil {
			appLogger.Error(context.Background(), err, "Error shutting down tracer")
		}
	}()

	// 4. Initialize Results Archive (optional)
	var repo ports.RunRepository
	if cfg.DBPath != "" {
		sqliteRepo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize results archive: %v", err)
		}
		defer func() {
			if err := sqliteRepo.Close(); err != nil {
				appLogger.Error(context.Background(), err, "Error closing results archive")
			}
		}()
		repo = sqliteRepo
	}

	// 5. Load Market Profile
	profile, err := config.LoadMarketProfile(cfg.MarketProfilePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to load market profile: %v", err)
	}

	// 6. Initialize Application Service
	svc, err := app.NewService(cfg, appLogger, repo, profile)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize service: %v", err)
	}

	// 7. Run the CLI
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := newApp(svc).RunContext(ctx, os.Args); err != nil {
		appLogger.Error(ctx, err, "Command failed")
		fmt.Fprintf(os.Stderr, "capgains: %v\n", err)
		stop()
		syncLogger()
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) (ports.Logger, func()) {
	if cfg.LogFormat == "json" {
		zl := logger.NewZapLogger(cfg.LogLevel)
		return zl, func() { _ = zl.Sync() }
	}
	return logger.NewStdLogger(cfg.LogLevel), func() {}
}

func newApp(svc *app.Service) *cli.App {
	cliApp := cli.NewApp()
	cliApp.Name = "capgains"
	cliApp.Usage = "replay stock transactions against cost basis strategies"
	cliApp.Commands = []*cli.Command{
		runCommand(svc),
		generateCommand(svc),
		compareCommand(svc),
	}
	return cliApp
}

func runCommand(svc *app.Service) *cli.Command {
	var (
		file, buy, sell string
		display         bool
	)
	return &cli.Command{
		Name:  "run",
		Usage: "replay a transaction file with one buy/sell strategy pair",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Value: "-", Usage: "transaction file, - for stdin", Destination: &file},
			&cli.StringFlag{Name: "buy", Usage: "buy strategy (name or 1-5), defaults to BUY_STRATEGY", Destination: &buy},
			&cli.StringFlag{Name: "sell", Usage: "sell strategy (name or 1-5), defaults to SELL_STRATEGY", Destination: &sell},
			&cli.BoolFlag{Name: "display", Usage: "dump the ledger on Display lines and print sale receipts", Destination: &display},
		},
		Action: func(c *cli.Context) error {
			opts := app.ReplayOptions{Display: display}
			if buy != "" {
				s, ok := domain.ParseBuyStrategy(buy)
				if !ok {
					return fmt.Errorf("buy strategy %q: %w", buy, ports.ErrInvalidStrategy)
				}
				opts.BuyStrategy = s
			}
			if sell != "" {
				s, ok := domain.ParseSellStrategy(sell)
				if !ok {
					return fmt.Errorf("sell strategy %q: %w", sell, ports.ErrInvalidStrategy)
				}
				opts.SellStrategy = s
			}
			txs, err := readTransactions(file)
			if err != nil {
				return err
			}
			_, err = svc.Replay(c.Context, txs, opts, c.App.Writer)
			return err
		},
	}
}

func generateCommand(svc *app.Service) *cli.Command {
	var (
		count   int
		symbols string
		seed    uint64
		holding bool
	)
	return &cli.Command{
		Name:  "generate",
		Usage: "print a synthetic transaction log",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Usage: "number of transactions, defaults to GENERATOR_TRANSACTIONS", Destination: &count},
			&cli.StringFlag{Name: "symbols", Usage: "comma separated symbols, defaults to GENERATOR_SYMBOLS", Destination: &symbols},
			&cli.Uint64Flag{Name: "seed", Usage: "random seed, defaults to RANDOM_SEED", Destination: &seed},
			&cli.BoolFlag{Name: "holdings", Usage: "print the expected final holdings to stderr", Destination: &holding},
		},
		Action: func(c *cli.Context) error {
			opts := app.GenerateOptions{Count: count, Seed: seed}
			for _, sym := range strings.Split(symbols, ",") {
				if sym = strings.ToUpper(strings.TrimSpace(sym)); sym != "" {
					opts.Symbols = append(opts.Symbols, sym)
				}
			}
			txs, held, err := svc.Generate(opts)
			if err != nil {
				return err
			}
			for _, tx := range txs {
				fmt.Fprintln(c.App.Writer, simulator.FormatLine(tx))
			}
			if holding {
				for _, sym := range slices.Sorted(maps.Keys(held)) {
					fmt.Fprintf(c.App.ErrWriter, "%s: %d shares\n", sym, held[sym])
				}
			}
			return nil
		},
	}
}

func compareCommand(svc *app.Service) *cli.Command {
	var file, csvPath string
	return &cli.Command{
		Name:  "compare",
		Usage: "replay a transaction file under all 25 strategy pairs",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Value: "-", Usage: "transaction file, - for stdin", Destination: &file},
			&cli.StringFlag{Name: "csv", Usage: "also write the results to this CSV file", Destination: &csvPath},
		},
		Action: func(c *cli.Context) error {
			txs, err := readTransactions(file)
			if err != nil {
				return err
			}
			results, err := svc.Compare(c.Context, txs, c.App.Writer)
			if err != nil {
				return err
			}
			if csvPath != "" {
				if err := utils.WriteRunResultsToCSV(results, csvPath); err != nil {
					return fmt.Errorf("failed to write %s: %w", csvPath, err)
				}
			}
			return nil
		},
	}
}

func readTransactions(path string) ([]domain.Transaction, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open transactions: %w", err)
		}
		defer f.Close()
		r = f
	}
	return simulator.ParseTransactions(r)
}
