package ledger

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"slices"
	"testing"

	"capitalGainsTracker/internal/domain"
	"capitalGainsTracker/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger and records warnings for assertions.
type mockLogger struct {
	warnings []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.warnings = append(m.warnings, msg)
}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func newTestLedger(seed uint64) (*CostBasisLedger, *mockLogger) {
	log := &mockLogger{}
	return New(Config{Logger: log, Random: NewSeededSource(seed)}), log
}

func mustQueue(t *testing.T, l *CostBasisLedger, symbol string) *LotQueue {
	t.Helper()
	q, ok := l.Queue(symbol)
	require.True(t, ok, "queue for %s", symbol)
	return q
}

func costs(sale *domain.SaleOrder) []float64 {
	out := make([]float64, 0, len(sale.Lots))
	for _, lot := range sale.Lots {
		out = append(out, lot.Cost)
	}
	return out
}

func TestLedger_OpenOrCreateQueue(t *testing.T) {
	l, _ := newTestLedger(1)
	a := l.OpenOrCreateQueue("AAPL")
	b := l.OpenOrCreateQueue("MSFT")
	assert.Same(t, a, l.OpenOrCreateQueue("AAPL"))
	assert.NotSame(t, a, b)
	assert.Equal(t, []string{"AAPL", "MSFT"}, l.Symbols())
	assert.Equal(t, 2, l.Len())
	assert.True(t, l.Contains("MSFT"))
	assert.False(t, l.Contains("NVDA"))
}

func TestLedger_NumberOfShares(t *testing.T) {
	l, _ := newTestLedger(1)
	assert.Equal(t, 0, l.NumberOfShares("AAPL"))

	require.NoError(t, l.BuyFifo("AAPL", 10, 45))
	require.NoError(t, l.BuyFifo("AAPL", 5, 50))
	assert.Equal(t, 15, l.NumberOfShares("AAPL"))

	// a zero-quantity buy registers the symbol without lots
	require.NoError(t, l.BuyFifo("MSFT", 0, 10))
	assert.True(t, l.Contains("MSFT"))
	assert.Equal(t, 0, l.NumberOfShares("MSFT"))

	err := l.BuyFifo("NVDA", -1, 10)
	assert.ErrorIs(t, err, ports.ErrInvalidQuantity)
	assert.False(t, l.Contains("NVDA"))
}

func TestLedger_BuyRejectsNonFinitePrice(t *testing.T) {
	tests := []struct {
		name  string
		price float64
	}{
		{name: "positive infinity", price: math.Inf(1)},
		{name: "negative infinity", price: math.Inf(-1)},
		{name: "NaN", price: math.NaN()},
	}
	for _, tt := range tests {
		for _, s := range domain.AllBuyStrategies() {
			t.Run(fmt.Sprintf("%s/%s", tt.name, s), func(t *testing.T) {
				l, _ := newTestLedger(1)
				require.NoError(t, l.BuyFifo("AAPL", 2, 5))

				err := l.Buy(context.Background(), s, "AAPL", 1, tt.price)
				assert.ErrorIs(t, err, ports.ErrInvalidPrice)
				assert.Equal(t, []float64{5, 5}, mustQueue(t, l, "AAPL").Costs())

				err = l.Buy(context.Background(), s, "MSFT", 1, tt.price)
				assert.ErrorIs(t, err, ports.ErrInvalidPrice)
				assert.False(t, l.Contains("MSFT"))
			})
		}
	}

	// every sell strategy still terminates on the finite lots that remain
	for _, s := range domain.AllSellStrategies() {
		l, _ := newTestLedger(1)
		require.NoError(t, l.BuyFifo("AAPL", 1, 5))
		_ = l.BuyFifo("AAPL", 1, math.Inf(1))
		_ = l.BuyFifo("AAPL", 1, math.Inf(-1))
		sale, err := l.Sell(context.Background(), s, "AAPL", 1, 10)
		require.NoError(t, err, s.String())
		assert.Equal(t, []float64{5}, costs(sale), s.String())
	}
}

func TestLedger_SellLowestCostFirstScenario(t *testing.T) {
	l, _ := newTestLedger(1)
	ctx := context.Background()
	require.NoError(t, l.Buy(ctx, domain.BuyFifo, "AAPL", 10, 45))
	require.NoError(t, l.Buy(ctx, domain.BuyFifo, "AAPL", 5, 50))

	sale, err := l.SellLowestCostFirst(ctx, "AAPL", 10, 60)
	require.NoError(t, err)
	require.True(t, sale.IsFilled())
	assert.Equal(t, slices.Repeat([]float64{45}, 10), costs(sale))
	assert.InDelta(t, 150.0, sale.Profit(), 1e-9)
	assert.Equal(t, 5, l.NumberOfShares("AAPL"))
}

func TestLedger_SellLowestCostFirstPicksCheapestAcrossQueue(t *testing.T) {
	l, _ := newTestLedger(1)
	ctx := context.Background()
	for _, c := range []float64{50, 30, 40, 30, 20, 60} {
		require.NoError(t, l.BuyFifo("AAPL", 1, c))
	}
	sale, err := l.SellLowestCostFirst(ctx, "AAPL", 4, 100)
	require.NoError(t, err)
	assert.Equal(t, []float64{20, 30, 30, 40}, costs(sale))
	assert.ElementsMatch(t, []float64{50, 60}, mustQueue(t, l, "AAPL").Costs())

	// remaining quantity equals holding: everything goes
	sale, err = l.SellLowestCostFirst(ctx, "AAPL", 2, 100)
	require.NoError(t, err)
	assert.ElementsMatch(t, []float64{50, 60}, costs(sale))
	assert.Equal(t, 0, l.NumberOfShares("AAPL"))
}

func TestLedger_SellRejections(t *testing.T) {
	tests := []struct {
		name     string
		symbol   string
		quantity int
		price    float64
		wantErr  error
	}{
		{name: "insufficient shares", symbol: "AAPL", quantity: 100, price: 10, wantErr: ports.ErrInsufficientShares},
		{name: "unknown symbol", symbol: "TSLA", quantity: 1, price: 10, wantErr: ports.ErrUnknownSymbol},
		{name: "negative quantity", symbol: "AAPL", quantity: -2, price: 10, wantErr: ports.ErrInvalidQuantity},
		{name: "infinite price", symbol: "AAPL", quantity: 1, price: math.Inf(1), wantErr: ports.ErrInvalidPrice},
		{name: "NaN price", symbol: "AAPL", quantity: 1, price: math.NaN(), wantErr: ports.ErrInvalidPrice},
	}
	for _, tt := range tests {
		for _, s := range domain.AllSellStrategies() {
			t.Run(fmt.Sprintf("%s/%s", tt.name, s), func(t *testing.T) {
				l, log := newTestLedger(1)
				require.NoError(t, l.BuyFifo("AAPL", 10, 10))
				before := mustQueue(t, l, "AAPL").Costs()

				sale, err := l.Sell(context.Background(), s, tt.symbol, tt.quantity, tt.price)
				assert.Nil(t, sale)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Len(t, log.warnings, 1)
				assert.Equal(t, 10, l.NumberOfShares("AAPL"))
				assert.Equal(t, before, mustQueue(t, l, "AAPL").Costs())
			})
		}
	}
}

func TestLedger_SellEndpointCompare(t *testing.T) {
	l, _ := newTestLedger(1)
	require.NoError(t, l.BuyFifo("AAPL", 1, 50))
	require.NoError(t, l.BuyFifo("AAPL", 1, 40))

	sale, err := l.SellEndpointCompare(context.Background(), "AAPL", 1, 55)
	require.NoError(t, err)
	assert.Equal(t, []float64{40}, costs(sale))
	assert.Equal(t, []float64{50}, mustQueue(t, l, "AAPL").Costs())
}

func TestLedger_SellMedianSplit(t *testing.T) {
	l, _ := newTestLedger(1)
	for _, c := range []float64{90, 10, 80, 20, 70} {
		require.NoError(t, l.BuyFifo("AAPL", 1, c))
	}
	// midpoint of 10..90 is 50: only 10 and 20 qualify in the first pass
	sale, err := l.SellMedianSplit(context.Background(), "AAPL", 2, 100)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20}, costs(sale))
	assert.ElementsMatch(t, []float64{90, 80, 70}, mustQueue(t, l, "AAPL").Costs())

	// second sale needs more passes: 70..90 midpoint 80
	sale, err = l.SellMedianSplit(context.Background(), "AAPL", 3, 100)
	require.NoError(t, err)
	assert.ElementsMatch(t, []float64{70, 80, 90}, costs(sale))
	assert.Equal(t, 0, l.NumberOfShares("AAPL"))
}

func TestLedger_SellFifoAndRandomized(t *testing.T) {
	l, _ := newTestLedger(7)
	for _, c := range []float64{1, 2, 3, 4, 5} {
		require.NoError(t, l.BuyFifo("AAPL", 1, c))
	}
	sale, err := l.SellFifo(context.Background(), "AAPL", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, costs(sale))

	sale, err = l.SellRandomized(context.Background(), "AAPL", 3, 10)
	require.NoError(t, err)
	assert.True(t, sale.IsFilled())
	assert.ElementsMatch(t, []float64{3, 4, 5}, costs(sale))
}

func TestLedger_BuyMedianSplit(t *testing.T) {
	l, _ := newTestLedger(1)
	require.NoError(t, l.BuyMedianSplit("AAPL", 1, 3))
	for _, c := range []float64{1, 5} {
		require.NoError(t, l.BuyFifo("AAPL", 1, c))
	}
	// queue 3,1,5 has median 3
	require.NoError(t, l.BuyMedianSplit("AAPL", 2, 3))
	require.NoError(t, l.BuyMedianSplit("AAPL", 1, 2))
	assert.Equal(t, []float64{2, 3, 1, 5, 3, 3}, mustQueue(t, l, "AAPL").Costs())
}

func TestLedger_BuyEndpointCompare(t *testing.T) {
	l, _ := newTestLedger(1)
	require.NoError(t, l.BuyEndpointCompare("AAPL", 1, 50))
	require.NoError(t, l.BuyEndpointCompare("AAPL", 2, 40))
	require.NoError(t, l.BuyEndpointCompare("AAPL", 1, 60))
	require.NoError(t, l.BuyEndpointCompare("AAPL", 1, 55))
	assert.Equal(t, []float64{55, 40, 40, 50, 60}, mustQueue(t, l, "AAPL").Costs())
}

func TestLedger_BuyAscendingInsertKeepsOrder(t *testing.T) {
	l, _ := newTestLedger(1)
	rng := NewSeededSource(99)
	for i := 0; i < 60; i++ {
		price := float64(rng.IntN(20))
		require.NoError(t, l.BuyAscendingInsert("AAPL", 1+rng.IntN(3), price))
		got := mustQueue(t, l, "AAPL").Costs()
		require.True(t, slices.IsSorted(got), "step %d: %v", i, got)
	}

	// selling from the front of an ascending queue keeps it ascending
	_, err := l.SellFifo(context.Background(), "AAPL", 10, 30)
	require.NoError(t, err)
	require.NoError(t, l.BuyAscendingInsert("AAPL", 3, 7.5))
	assert.True(t, slices.IsSorted(mustQueue(t, l, "AAPL").Costs()))
}

func TestLedger_BuyRandomizedIsReproducible(t *testing.T) {
	run := func() []float64 {
		l, _ := newTestLedger(42)
		for i, c := range []float64{10, 20, 30, 40} {
			require.NoError(t, l.BuyRandomized("AAPL", i+1, c))
		}
		return mustQueue(t, l, "AAPL").Costs()
	}
	first := run()
	assert.Len(t, first, 10)
	assert.Equal(t, first, run())
}

func TestLedger_InvalidStrategy(t *testing.T) {
	l, _ := newTestLedger(1)
	err := l.Buy(context.Background(), domain.BuyStrategy(0), "AAPL", 1, 1)
	assert.ErrorIs(t, err, ports.ErrInvalidStrategy)
	_, err = l.Sell(context.Background(), domain.SellStrategy(6), "AAPL", 1, 1)
	assert.ErrorIs(t, err, ports.ErrInvalidStrategy)
}

type trade struct {
	side     domain.Side
	symbol   string
	quantity int
	price    float64
}

var conservationTrades = []trade{
	{domain.Buy, "AAPL", 10, 45},
	{domain.Buy, "MSFT", 4, 300},
	{domain.Buy, "AAPL", 5, 50},
	{domain.Sell, "AAPL", 7, 60},
	{domain.Buy, "AAPL", 6, 42.5},
	{domain.Sell, "MSFT", 2, 310},
	{domain.Sell, "AAPL", 3, 55},
	{domain.Buy, "NVDA", 8, 120},
	{domain.Buy, "MSFT", 3, 290},
	{domain.Sell, "NVDA", 8, 130},
	{domain.Sell, "AAPL", 100, 70}, // rejected
	{domain.Sell, "TSLA", 1, 70},   // rejected
	{domain.Buy, "AAPL", 2, 44},
	{domain.Sell, "AAPL", 13, 61},
}

func TestLedger_ConservationAcrossStrategyPairs(t *testing.T) {
	want := map[string]int{"AAPL": 0, "MSFT": 5, "NVDA": 0}
	for _, bs := range domain.AllBuyStrategies() {
		for _, ss := range domain.AllSellStrategies() {
			t.Run(fmt.Sprintf("%s_%s", bs, ss), func(t *testing.T) {
				l, _ := newTestLedger(3)
				ctx := context.Background()
				sold := 0
				for _, tr := range conservationTrades {
					if tr.side == domain.Buy {
						require.NoError(t, l.Buy(ctx, bs, tr.symbol, tr.quantity, tr.price))
						continue
					}
					sale, err := l.Sell(ctx, ss, tr.symbol, tr.quantity, tr.price)
					if err != nil {
						continue
					}
					require.True(t, sale.IsFilled())
					for _, lot := range sale.Lots {
						assert.Equal(t, tr.symbol, lot.Symbol)
					}
					sold += sale.Filled()
				}
				assert.Equal(t, want, l.Holdings())
				assert.Equal(t, 7+2+3+8+13, sold)
			})
		}
	}
}

func TestLedger_LotMultisetIsPreserved(t *testing.T) {
	// strategies reorder lots but never drop or duplicate them
	for _, bs := range domain.AllBuyStrategies() {
		l, _ := newTestLedger(11)
		var bought []float64
		for i, c := range []float64{5, 3, 8, 3, 1, 9, 4} {
			require.NoError(t, l.Buy(context.Background(), bs, "AAPL", i%3+1, c))
			bought = append(bought, slices.Repeat([]float64{c}, i%3+1)...)
		}
		assert.ElementsMatch(t, bought, mustQueue(t, l, "AAPL").Costs(), bs.String())
	}
}

func TestLedger_StringAndDisplay(t *testing.T) {
	l, _ := newTestLedger(1)
	require.NoError(t, l.BuyFifo("AAPL", 2, 45))
	require.NoError(t, l.BuyFifo("AAPL", 1, 50))
	require.NoError(t, l.BuyFifo("MSFT", 1, 300))
	_, err := l.SellFifo(context.Background(), "MSFT", 1, 310)
	require.NoError(t, err)

	assert.Equal(t, "Total shares:\nAAPL: 3 shares\nMSFT: 0 shares", l.String())

	var buf bytes.Buffer
	require.NoError(t, l.Display(&buf))
	assert.Equal(t, "----  Stock Ledger  ----\nAAPL: 45 (2 shares)   50 (1 shares)\nMSFT: None\n", buf.String())
}

func TestLedger_SameHoldings(t *testing.T) {
	a, _ := newTestLedger(1)
	b, _ := newTestLedger(1)
	require.NoError(t, a.BuyFifo("AAPL", 2, 45))
	require.NoError(t, a.BuyFifo("MSFT", 1, 300))
	require.NoError(t, b.BuyEndpointCompare("MSFT", 1, 290))
	require.NoError(t, b.BuyEndpointCompare("AAPL", 2, 40))
	assert.True(t, a.SameHoldings(b))

	require.NoError(t, b.BuyFifo("AAPL", 1, 40))
	assert.False(t, a.SameHoldings(b))
	assert.False(t, a.SameHoldings(nil))
}
