package ports

import (
	"context"

	"capitalGainsTracker/internal/domain"
)

// StrategyProfit aggregates archived runs for one buy/sell strategy pair.
type StrategyProfit struct {
	BuyStrategy   domain.BuyStrategy
	SellStrategy  domain.SellStrategy
	Runs          int
	TotalProfit   float64
	AverageProfit float64
	BestProfit    float64
	WorstProfit   float64
}

// RunRepository archives strategy runs and the sales they produced.
// It stores results only; ledger state itself is never persisted.
type RunRepository interface {
	// SaveRun stores a run together with its sales.
	SaveRun(ctx context.Context, run *domain.RunResult) error
	// FindRuns retrieves all runs, newest first. Sales are not loaded.
	FindRuns(ctx context.Context) ([]*domain.RunResult, error)
	// FindRunByID retrieves one run with its remaining shares.
	// Returns nil, nil if not found.
	FindRunByID(ctx context.Context, id string) (*domain.RunResult, error)
	// FindSalesByRun retrieves the sales of a run in fill order, lots included.
	FindSalesByRun(ctx context.Context, runID string) ([]*domain.SaleOrder, error)
	// ProfitByStrategy aggregates profit per strategy pair.
	ProfitByStrategy(ctx context.Context) ([]StrategyProfit, error)
}
