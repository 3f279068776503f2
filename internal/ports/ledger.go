package ports

import (
	"context"
	"io"

	"capitalGainsTracker/internal/domain"
)

// Ledger is the surface the simulator drives. The cost basis ledger
// implements it; strategies are chosen per call.
type Ledger interface {
	Buy(ctx context.Context, strategy domain.BuyStrategy, symbol string, quantity int, price float64) error
	Sell(ctx context.Context, strategy domain.SellStrategy, symbol string, quantity int, price float64) (*domain.SaleOrder, error)
	NumberOfShares(symbol string) int
	Contains(symbol string) bool
	Symbols() []string
	Display(w io.Writer) error
	String() string
}
