package simulator

import (
	"context"
	"testing"

	"capitalGainsTracker/internal/domain"
	"capitalGainsTracker/internal/ledger"
	"capitalGainsTracker/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategyPairs(t *testing.T) {
	pairs := StrategyPairs()
	require.Len(t, pairs, 25)
	assert.Equal(t, StrategyPair{Buy: domain.BuyFifo, Sell: domain.SellFifo}, pairs[0])
	assert.Equal(t, StrategyPair{Buy: domain.BuyFifo, Sell: domain.SellEndpointCompare}, pairs[4])
	assert.Equal(t, StrategyPair{Buy: domain.BuyEndpointCompare, Sell: domain.SellEndpointCompare}, pairs[24])
}

func TestRunMatrix_ConservesShares(t *testing.T) {
	txs, held, err := Generate(ledger.NewSeededSource(11), defaultGeneratorConfig(300))
	require.NoError(t, err)

	results, err := RunMatrix(context.Background(), txs, MatrixOptions{InitialBalance: 10000, Seed: 5, Workers: 4})
	require.NoError(t, err)
	require.Len(t, results, 25)

	ids := make(map[string]struct{})
	for i, res := range results {
		pair := StrategyPairs()[i]
		assert.Equal(t, pair.Buy, res.BuyStrategy)
		assert.Equal(t, pair.Sell, res.SellStrategy)
		for sym, n := range held {
			assert.Equal(t, n, res.Shares[sym], "%s: %s", SettingsString(res.BuyStrategy, res.SellStrategy), sym)
		}
		assert.Zero(t, res.RejectedSales)
		assert.Equal(t, len(txs), res.Transactions)
		assert.NotEmpty(t, res.ID)
		assert.False(t, res.StartedAt.IsZero())
		ids[res.ID] = struct{}{}

		// every sale fills, so cash flows match across strategies
		assert.Equal(t, results[0].Revenue, res.Revenue)
		assert.Equal(t, results[0].FinalBalance, res.FinalBalance)
		assert.Equal(t, results[0].SaleCount, res.SaleCount)
	}
	assert.Len(t, ids, 25)
}

func TestRunMatrix_RejectionsCountedPerRun(t *testing.T) {
	txs := []domain.Transaction{
		tx(domain.Buy, "AAPL", 3, 10),
		tx(domain.Sell, "TSLA", 1, 10),
		tx(domain.Sell, "AAPL", 4, 10),
		tx(domain.Sell, "AAPL", 2, 15),
	}
	results, err := RunMatrix(context.Background(), txs, MatrixOptions{})
	require.NoError(t, err)
	for _, res := range results {
		assert.Equal(t, 2, res.RejectedSales)
		assert.Equal(t, 1, res.SaleCount)
		assert.Equal(t, map[string]int{"AAPL": 1}, res.Shares)
		assert.Equal(t, 10.0, res.Profit)
	}
}

func TestRunMatrix_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunMatrix(ctx, []domain.Transaction{tx(domain.Buy, "AAPL", 1, 1)}, MatrixOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckConservation(t *testing.T) {
	assert.NoError(t, CheckConservation(nil))
	assert.NoError(t, CheckConservation([]domain.RunResult{
		{Shares: map[string]int{"AAPL": 2}},
		{Shares: map[string]int{"AAPL": 2}},
	}))

	err := CheckConservation([]domain.RunResult{
		{BuyStrategy: domain.BuyFifo, SellStrategy: domain.SellFifo, Shares: map[string]int{"AAPL": 2}},
		{BuyStrategy: domain.BuyRandomized, SellStrategy: domain.SellFifo, Shares: map[string]int{"AAPL": 3}},
	})
	assert.ErrorIs(t, err, ports.ErrInconsistentHolding)
	assert.Contains(t, err.Error(), "randomized, fifo")
}
