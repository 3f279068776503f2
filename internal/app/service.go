package app

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"capitalGainsTracker/config"
	"capitalGainsTracker/internal/analytics"
	"capitalGainsTracker/internal/domain"
	"capitalGainsTracker/internal/ledger"
	"capitalGainsTracker/internal/ports"
	"capitalGainsTracker/internal/simulator"
)

// Service wires configuration, the ledger, the simulator and the optional
// results archive behind the CLI commands.
type Service struct {
	cfg     *config.Config
	logger  ports.Logger
	repo    ports.RunRepository // nil when the archive is disabled
	profile *config.MarketProfile
}

// NewService creates a new application service instance. repo may be nil.
func NewService(cfg *config.Config, logger ports.Logger, repo ports.RunRepository, profile *config.MarketProfile) (*Service, error) {
	if cfg == nil || logger == nil {
		return nil, fmt.Errorf("missing required dependencies for Service: %w", ports.ErrConfigurationError)
	}
	if !cfg.BuyStrategy.Valid() || !cfg.SellStrategy.Valid() {
		return nil, fmt.Errorf("configured strategies %d/%d: %w", int(cfg.BuyStrategy), int(cfg.SellStrategy), ports.ErrInvalidStrategy)
	}
	if profile == nil {
		profile = config.DefaultMarketProfile()
	}
	return &Service{cfg: cfg, logger: logger, repo: repo, profile: profile}, nil
}

func (s *Service) randomSource(offset uint64) ledger.RandomSource {
	if s.cfg.UseSystemEntropy {
		return ledger.NewEntropySource()
	}
	return ledger.NewSeededSource(s.cfg.RandomSeed + offset)
}

// ReplayOptions selects the strategies and output of a replay. Zero
// strategies fall back to the configured ones.
type ReplayOptions struct {
	BuyStrategy  domain.BuyStrategy
	SellStrategy domain.SellStrategy
	Display      bool // Dump the ledger on Display lines and print sale receipts
}

// Replay runs txs through one ledger and writes the summary to out.
func (s *Service) Replay(ctx context.Context, txs []domain.Transaction, opts ReplayOptions, out io.Writer) (*domain.RunResult, error) {
	if opts.BuyStrategy == 0 {
		opts.BuyStrategy = s.cfg.BuyStrategy
	}
	if opts.SellStrategy == 0 {
		opts.SellStrategy = s.cfg.SellStrategy
	}

	started := time.Now()
	l := ledger.New(ledger.Config{Logger: s.logger, Random: s.randomSource(0)})
	trader, err := simulator.NewTrader(simulator.TraderConfig{
		Ledger:         l,
		BuyStrategy:    opts.BuyStrategy,
		SellStrategy:   opts.SellStrategy,
		InitialBalance: s.cfg.InitialBalance,
		Logger:         s.logger,
	})
	if err != nil {
		return nil, err
	}

	var display io.Writer
	if opts.Display {
		display = out
	}
	s.logger.Info(ctx, "Replaying transactions", map[string]interface{}{
		"transactions": len(txs), "settings": trader.Settings(),
	})
	if err := trader.Run(ctx, txs, display); err != nil {
		s.logger.Error(ctx, err, "Replay failed", map[string]interface{}{"settings": trader.Settings()})
		return nil, err
	}

	res := trader.Result()
	res.ID = uuid.New().String()
	res.StartedAt = started

	if opts.Display {
		for _, sale := range res.Sales {
			fmt.Fprintln(out, sale.String())
		}
	}
	if err := writeSummary(out, l, &res); err != nil {
		return nil, err
	}
	if err := s.archive(ctx, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func writeSummary(out io.Writer, l *ledger.CostBasisLedger, res *domain.RunResult) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, l.String())
	fmt.Fprintf(w, "Strategies:\t%s\n", simulator.SettingsString(res.BuyStrategy, res.SellStrategy))
	fmt.Fprintf(w, "Sales:\t%d (%d rejected)\n", res.SaleCount, res.RejectedSales)
	fmt.Fprintf(w, "Profit:\t%.2f\n", res.Profit)
	fmt.Fprintf(w, "Revenue:\t%.2f\n", res.Revenue)
	if len(res.Sales) > 0 {
		m := analytics.AnalyzePerformance(res.Sales)
		fmt.Fprintf(w, "Win rate:\t%.1f%%\n", m.WinRate*100)
		fmt.Fprintf(w, "Max drawdown:\t%.2f\n", m.MaxDrawdown)
	}
	fmt.Fprintf(w, "Balance:\t%.2f -> %.2f\n", res.InitialBalance, res.FinalBalance)
	fmt.Fprintf(w, "Time:\tbuy %s, sell %s\n", res.BuyTime, res.SellTime)
	return w.Flush()
}

// GenerateOptions overrides the configured generator settings when non-zero.
type GenerateOptions struct {
	Count   int
	Symbols []string
	Seed    uint64
}

// Generate produces a synthetic transaction log and its expected holdings.
func (s *Service) Generate(opts GenerateOptions) ([]domain.Transaction, map[string]int, error) {
	cfg := simulator.GeneratorConfig{
		Symbols:      s.cfg.GeneratorSymbols,
		Transactions: s.cfg.GeneratorTransactions,
		MinQuantity:  s.cfg.GeneratorMinQuantity,
		MaxQuantity:  s.cfg.GeneratorMaxQuantity,
		Profile:      s.profile,
	}
	if opts.Count > 0 {
		cfg.Transactions = opts.Count
	}
	if len(opts.Symbols) > 0 {
		cfg.Symbols = opts.Symbols
	}
	rng := s.randomSource(0)
	if opts.Seed != 0 {
		rng = ledger.NewSeededSource(opts.Seed)
	}
	return simulator.Generate(rng, cfg)
}

// Compare runs every strategy pair over txs, prints a table ordered by
// (buy, sell) and archives each run.
func (s *Service) Compare(ctx context.Context, txs []domain.Transaction, out io.Writer) ([]domain.RunResult, error) {
	results, err := simulator.RunMatrix(ctx, txs, simulator.MatrixOptions{
		InitialBalance: s.cfg.InitialBalance,
		Seed:           s.cfg.RandomSeed,
		UseEntropy:     s.cfg.UseSystemEntropy,
		Logger:         s.logger,
	})
	if err != nil {
		return results, err
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Buy\tSell\tSales\tProfit\tRevenue\tBalance\tBuyTime\tSellTime\t")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%.2f\t%.2f\t%s\t%s\t\n",
			r.BuyStrategy, r.SellStrategy, r.SaleCount, r.Profit, r.Revenue, r.FinalBalance,
			r.BuyTime.Round(time.Microsecond), r.SellTime.Round(time.Microsecond))
	}
	if err := w.Flush(); err != nil {
		return results, err
	}
	if ranked := analytics.RankRuns(results); len(ranked) > 0 {
		best, worst := ranked[0], ranked[len(ranked)-1]
		fmt.Fprintf(out, "\nBest: %s (%.2f)\nWorst: %s (%.2f)\n",
			simulator.SettingsString(best.BuyStrategy, best.SellStrategy), best.Profit,
			simulator.SettingsString(worst.BuyStrategy, worst.SellStrategy), worst.Profit)
	}

	for i := range results {
		if err := s.archive(ctx, &results[i]); err != nil {
			return results, err
		}
	}
	return results, nil
}

func (s *Service) archive(ctx context.Context, res *domain.RunResult) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.SaveRun(ctx, res); err != nil {
		s.logger.Error(ctx, err, "Failed to archive run", map[string]interface{}{"runID": res.ID})
		return fmt.Errorf("archive run %s: %w", res.ID, err)
	}
	return nil
}
