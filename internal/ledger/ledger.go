// Package ledger tracks open purchase lots per symbol and resolves sales
// against them under interchangeable cost basis selection strategies.
//
// Every strategy reaches its ordering goal through front/back/rotate
// operations on a LotQueue; none of them index into the queue.
package ledger

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"capitalGainsTracker/internal/domain"
	"capitalGainsTracker/internal/ports"
)

// RandomSource supplies the draws used by the randomized strategies.
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	IntN(n int) int
	Float64() float64
}

// NewSeededSource returns a reproducible source for the randomized strategies.
func NewSeededSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewEntropySource returns a source seeded from the runtime's entropy.
func NewEntropySource() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Config holds the collaborators of a CostBasisLedger.
type Config struct {
	Logger ports.Logger
	Random RandomSource // Defaults to NewSeededSource(1)
}

// CostBasisLedger owns one LotQueue per symbol, in first-buy order.
// It is meant for a single owner; callers serialise access.
type CostBasisLedger struct {
	queues []*LotQueue
	index  map[string]*LotQueue
	logger ports.Logger
	rng    RandomSource
}

var _ ports.Ledger = (*CostBasisLedger)(nil)

// New creates an empty ledger.
func New(cfg Config) *CostBasisLedger {
	if cfg.Logger == nil {
		cfg.Logger = ports.NopLogger{}
	}
	if cfg.Random == nil {
		cfg.Random = NewSeededSource(1)
	}
	return &CostBasisLedger{
		index:  make(map[string]*LotQueue),
		logger: cfg.Logger,
		rng:    cfg.Random,
	}
}

// OpenOrCreateQueue returns the queue for symbol, registering a new one on
// first use.
func (l *CostBasisLedger) OpenOrCreateQueue(symbol string) *LotQueue {
	if q, ok := l.index[symbol]; ok {
		return q
	}
	q := NewLotQueue(symbol)
	l.queues = append(l.queues, q)
	l.index[symbol] = q
	return q
}

// Queue returns the queue for symbol if the symbol has been traded.
func (l *CostBasisLedger) Queue(symbol string) (*LotQueue, bool) {
	q, ok := l.index[symbol]
	return q, ok
}

// Contains reports whether symbol has a queue.
func (l *CostBasisLedger) Contains(symbol string) bool {
	_, ok := l.index[symbol]
	return ok
}

// Symbols returns the traded symbols in first-buy order.
func (l *CostBasisLedger) Symbols() []string {
	symbols := make([]string, 0, len(l.queues))
	for _, q := range l.queues {
		symbols = append(symbols, q.Symbol())
	}
	return symbols
}

// Len returns the number of symbols in the ledger.
func (l *CostBasisLedger) Len() int {
	return len(l.queues)
}

// NumberOfShares returns the lots held for symbol, 0 when unknown.
func (l *CostBasisLedger) NumberOfShares(symbol string) int {
	q, ok := l.index[symbol]
	if !ok {
		return 0
	}
	return q.Len()
}

// Holdings returns the share count of every symbol.
func (l *CostBasisLedger) Holdings() map[string]int {
	holdings := make(map[string]int, len(l.queues))
	for _, q := range l.queues {
		holdings[q.Symbol()] = q.Len()
	}
	return holdings
}

// Buy dispatches to the buy strategy s.
func (l *CostBasisLedger) Buy(ctx context.Context, s domain.BuyStrategy, symbol string, quantity int, price float64) error {
	var err error
	switch s {
	case domain.BuyFifo:
		err = l.BuyFifo(symbol, quantity, price)
	case domain.BuyRandomized:
		err = l.BuyRandomized(symbol, quantity, price)
	case domain.BuyAscendingInsert:
		err = l.BuyAscendingInsert(symbol, quantity, price)
	case domain.BuyMedianSplit:
		err = l.BuyMedianSplit(symbol, quantity, price)
	case domain.BuyEndpointCompare:
		err = l.BuyEndpointCompare(symbol, quantity, price)
	default:
		return fmt.Errorf("buy strategy %d: %w", int(s), ports.ErrInvalidStrategy)
	}
	if err != nil {
		return err
	}
	l.logger.Debug(ctx, "Lots bought", map[string]interface{}{
		"strategy": s.String(), "symbol": symbol, "quantity": quantity, "price": price,
	})
	return nil
}

// Sell dispatches to the sell strategy s.
func (l *CostBasisLedger) Sell(ctx context.Context, s domain.SellStrategy, symbol string, quantity int, price float64) (*domain.SaleOrder, error) {
	var (
		sale *domain.SaleOrder
		err  error
	)
	switch s {
	case domain.SellFifo:
		sale, err = l.SellFifo(ctx, symbol, quantity, price)
	case domain.SellRandomized:
		sale, err = l.SellRandomized(ctx, symbol, quantity, price)
	case domain.SellLowestCostFirst:
		sale, err = l.SellLowestCostFirst(ctx, symbol, quantity, price)
	case domain.SellMedianSplit:
		sale, err = l.SellMedianSplit(ctx, symbol, quantity, price)
	case domain.SellEndpointCompare:
		sale, err = l.SellEndpointCompare(ctx, symbol, quantity, price)
	default:
		return nil, fmt.Errorf("sell strategy %d: %w", int(s), ports.ErrInvalidStrategy)
	}
	if err != nil {
		return nil, err
	}
	l.logger.Debug(ctx, "Sale filled", map[string]interface{}{
		"strategy": s.String(), "symbol": symbol, "quantity": quantity, "price": price, "profit": sale.Profit(),
	})
	return sale, nil
}

// String renders the share totals:
//
//	Total shares:
//	AAPL: 15 shares
func (l *CostBasisLedger) String() string {
	var sb strings.Builder
	sb.WriteString("Total shares:")
	for _, q := range l.queues {
		fmt.Fprintf(&sb, "\n%s: %d shares", q.Symbol(), q.Len())
	}
	return sb.String()
}

// Display writes every queue's lots grouped by cost.
func (l *CostBasisLedger) Display(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "----  Stock Ledger  ----"); err != nil {
		return err
	}
	for _, q := range l.queues {
		if _, err := fmt.Fprintln(w, q.Summary()); err != nil {
			return err
		}
	}
	return nil
}

// SameHoldings reports whether both ledgers hold the same share count for
// the same symbols, regardless of symbol order or lot arrangement.
func (l *CostBasisLedger) SameHoldings(other *CostBasisLedger) bool {
	if other == nil {
		return false
	}
	mine := strings.Split(l.String(), "\n")
	theirs := strings.Split(other.String(), "\n")
	return containsAll(mine, theirs) && containsAll(theirs, mine)
}

func containsAll(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, s := range have {
		set[s] = struct{}{}
	}
	for _, s := range want {
		if _, ok := set[s]; !ok {
			return false
		}
	}
	return true
}
