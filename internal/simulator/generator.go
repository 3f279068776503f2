package simulator

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"capitalGainsTracker/config"
	"capitalGainsTracker/internal/domain"
	"capitalGainsTracker/internal/ledger"
	"capitalGainsTracker/internal/ports"
)

// GeneratorConfig controls a synthetic transaction log.
type GeneratorConfig struct {
	Symbols      []string
	Transactions int
	MinQuantity  int
	MaxQuantity  int
	Profile      *config.MarketProfile // Defaults to config.DefaultMarketProfile
}

// Generate produces a transaction log that never sells more than it holds,
// together with the share count each symbol ends with. Replaying the log
// under any strategy pair must leave exactly those counts.
//
// Each step picks a symbol and a quantity uniformly. The step is a buy when
// the quantity exceeds the shares held, otherwise buy or sell with equal
// odds. Prices follow the symbol's model in the market profile, rounded to
// cents and capped at the profile's price cap.
func Generate(rng ledger.RandomSource, cfg GeneratorConfig) ([]domain.Transaction, map[string]int, error) {
	if len(cfg.Symbols) == 0 {
		return nil, nil, fmt.Errorf("no symbols to trade: %w", ports.ErrInvalidRequest)
	}
	if cfg.Transactions < 0 {
		return nil, nil, fmt.Errorf("transaction count %d: %w", cfg.Transactions, ports.ErrInvalidRequest)
	}
	if cfg.MinQuantity < 1 || cfg.MaxQuantity < cfg.MinQuantity {
		return nil, nil, fmt.Errorf("quantity range %d..%d: %w", cfg.MinQuantity, cfg.MaxQuantity, ports.ErrInvalidRequest)
	}
	profile := cfg.Profile
	if profile == nil {
		profile = config.DefaultMarketProfile()
	}

	held := make(map[string]int, len(cfg.Symbols))
	for _, sym := range cfg.Symbols {
		held[sym] = 0
	}
	txs := make([]domain.Transaction, 0, cfg.Transactions)
	for step := 1; step <= cfg.Transactions; step++ {
		symbol := cfg.Symbols[rng.IntN(len(cfg.Symbols))]
		quantity := cfg.MinQuantity + rng.IntN(cfg.MaxQuantity-cfg.MinQuantity+1)
		price := priceAt(rng, profile, symbol, step)

		side := domain.Buy
		if quantity <= held[symbol] && rng.IntN(2) == 1 {
			side = domain.Sell
		}
		if side == domain.Buy {
			held[symbol] += quantity
		} else {
			held[symbol] -= quantity
		}
		txs = append(txs, domain.Transaction{Side: side, Symbol: symbol, Quantity: quantity, Price: price})
	}
	return txs, held, nil
}

func priceAt(rng ledger.RandomSource, profile *config.MarketProfile, symbol string, step int) float64 {
	m := profile.ModelFor(symbol)
	var p float64
	switch m.Model {
	case config.ModelTrend:
		p = (m.Base + float64(step)) * (rng.Float64() + rng.Float64())
	case config.ModelValley:
		p = rng.Float64() * m.Scale * math.Abs(m.Pivot-float64(step)) / m.Pivot
	default:
		lo, hi := math.Ceil(m.Min), math.Floor(m.Max)
		p = lo
		if hi > lo {
			p += float64(rng.IntN(int(hi-lo) + 1))
		}
	}
	price := decimal.NewFromFloat(p).Round(2)
	if limit := decimal.NewFromFloat(profile.PriceCap); price.GreaterThan(limit) {
		price = limit
	}
	return price.InexactFloat64()
}
