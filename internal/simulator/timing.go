package simulator

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"capitalGainsTracker/internal/domain"
	"capitalGainsTracker/internal/ports"
	"capitalGainsTracker/internal/trace"
)

// timedLedger wraps a ledger, opening a span per strategy call and
// accumulating the time spent in buys and sells.
type timedLedger struct {
	ledger   ports.Ledger
	buyTime  time.Duration
	sellTime time.Duration
}

func (t *timedLedger) Buy(ctx context.Context, s domain.BuyStrategy, symbol string, quantity int, price float64) error {
	ctx, span := trace.StartSpan(ctx, "ledger.Buy",
		attribute.String("strategy", s.String()),
		attribute.String("symbol", symbol),
		attribute.Int("quantity", quantity),
	)
	defer span.End()

	start := time.Now()
	err := t.ledger.Buy(ctx, s, symbol, quantity, price)
	t.buyTime += time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (t *timedLedger) Sell(ctx context.Context, s domain.SellStrategy, symbol string, quantity int, price float64) (*domain.SaleOrder, error) {
	ctx, span := trace.StartSpan(ctx, "ledger.Sell",
		attribute.String("strategy", s.String()),
		attribute.String("symbol", symbol),
		attribute.Int("quantity", quantity),
	)
	defer span.End()

	start := time.Now()
	sale, err := t.ledger.Sell(ctx, s, symbol, quantity, price)
	t.sellTime += time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Float64("profit", sale.Profit()))
	return sale, nil
}
