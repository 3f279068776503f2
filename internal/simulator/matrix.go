package simulator

import (
	"context"
	"fmt"
	"maps"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"capitalGainsTracker/internal/domain"
	"capitalGainsTracker/internal/ledger"
	"capitalGainsTracker/internal/ports"
)

// MatrixOptions configures a strategy comparison.
type MatrixOptions struct {
	InitialBalance float64
	Seed           uint64 // Pair i draws from NewSeededSource(Seed + i)
	UseEntropy     bool
	Logger         ports.Logger
	Workers        int // Defaults to GOMAXPROCS
}

// StrategyPair is one buy/sell combination.
type StrategyPair struct {
	Buy  domain.BuyStrategy
	Sell domain.SellStrategy
}

// StrategyPairs returns every buy/sell combination in setting order.
func StrategyPairs() []StrategyPair {
	var pairs []StrategyPair
	for _, b := range domain.AllBuyStrategies() {
		for _, s := range domain.AllSellStrategies() {
			pairs = append(pairs, StrategyPair{Buy: b, Sell: s})
		}
	}
	return pairs
}

// RunMatrix replays txs once per buy/sell strategy pair, each on its own
// ledger, and returns the results ordered by (buy, sell). It fails with
// ports.ErrInconsistentHolding if the runs end with different share counts.
func RunMatrix(ctx context.Context, txs []domain.Transaction, opts MatrixOptions) ([]domain.RunResult, error) {
	if opts.Logger == nil {
		opts.Logger = ports.NopLogger{}
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	pairs := StrategyPairs()
	results := make([]domain.RunResult, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, pair := range pairs {
		g.Go(func() error {
			buy, sell := pair.Buy, pair.Sell
			var rng ledger.RandomSource
			if opts.UseEntropy {
				rng = ledger.NewEntropySource()
			} else {
				rng = ledger.NewSeededSource(opts.Seed + uint64(i))
			}
			res, err := runPair(gctx, txs, buy, sell, rng, opts)
			if err != nil {
				return fmt.Errorf("run %s: %w", SettingsString(buy, sell), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := CheckConservation(results); err != nil {
		opts.Logger.Error(ctx, err, "Strategy runs disagree on final holdings")
		return results, err
	}
	opts.Logger.Info(ctx, "Strategy matrix completed", map[string]interface{}{
		"runs": len(results), "transactions": len(txs),
	})
	return results, nil
}

func runPair(ctx context.Context, txs []domain.Transaction, buy domain.BuyStrategy, sell domain.SellStrategy, rng ledger.RandomSource, opts MatrixOptions) (domain.RunResult, error) {
	started := time.Now()
	l := ledger.New(ledger.Config{Logger: opts.Logger, Random: rng})
	trader, err := NewTrader(TraderConfig{
		Ledger:         l,
		BuyStrategy:    buy,
		SellStrategy:   sell,
		InitialBalance: opts.InitialBalance,
		Logger:         opts.Logger,
	})
	if err != nil {
		return domain.RunResult{}, err
	}
	if err := trader.Run(ctx, txs, nil); err != nil {
		return domain.RunResult{}, err
	}
	res := trader.Result()
	res.ID = uuid.New().String()
	res.StartedAt = started
	return res, nil
}

// CheckConservation verifies that every run ended with the same share count
// per symbol. Lot arrangement may differ between strategies; counts may not.
func CheckConservation(results []domain.RunResult) error {
	if len(results) == 0 {
		return nil
	}
	want := results[0].Shares
	for _, r := range results[1:] {
		if !maps.Equal(want, r.Shares) {
			return fmt.Errorf("%s holds %v, %s holds %v: %w",
				SettingsString(results[0].BuyStrategy, results[0].SellStrategy), want,
				SettingsString(r.BuyStrategy, r.SellStrategy), r.Shares,
				ports.ErrInconsistentHolding)
		}
	}
	return nil
}
