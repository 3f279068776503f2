package ledger

import (
	"context"
	"fmt"

	"capitalGainsTracker/internal/domain"
	"capitalGainsTracker/internal/ports"
)

// openSale validates a sale before any lot is touched. A sale either fills
// completely or is rejected here.
func (l *CostBasisLedger) openSale(ctx context.Context, symbol string, quantity int, price float64) (*domain.SaleOrder, *LotQueue, error) {
	fields := map[string]interface{}{"symbol": symbol, "quantity": quantity, "price": price}
	if quantity < 0 {
		err := fmt.Errorf("sell %d shares of %s: %w", quantity, symbol, ports.ErrInvalidQuantity)
		l.logger.Warn(ctx, "Sale rejected: negative quantity", fields)
		return nil, nil, err
	}
	if !isFinite(price) {
		err := fmt.Errorf("sell %d shares of %s at %v: %w", quantity, symbol, price, ports.ErrInvalidPrice)
		l.logger.Warn(ctx, "Sale rejected: price is not a finite number", fields)
		return nil, nil, err
	}
	q, ok := l.index[symbol]
	if !ok {
		err := fmt.Errorf("sell %d shares of %s: %w", quantity, symbol, ports.ErrUnknownSymbol)
		l.logger.Warn(ctx, "Sale rejected: stock symbol not found", fields)
		return nil, nil, err
	}
	held := q.Len()
	if quantity > held {
		fields["held"] = held
		err := fmt.Errorf("sell %d shares of %s, %d held: %w", quantity, symbol, held, ports.ErrInsufficientShares)
		l.logger.Warn(ctx, "Sale rejected: cannot fill quantity", fields)
		return nil, nil, err
	}
	return domain.NewSaleOrder(symbol, quantity, price), q, nil
}

func fillFromFront(sale *domain.SaleOrder, q *LotQueue) error {
	lot, err := q.RemoveFrontLot()
	if err != nil {
		return fmt.Errorf("fill sale %s: %w", sale.ID, err)
	}
	sale.AddFilledLot(lot)
	return nil
}

// SellFifo fills the sale from the front. O(quantity).
func (l *CostBasisLedger) SellFifo(ctx context.Context, symbol string, quantity int, price float64) (*domain.SaleOrder, error) {
	sale, q, err := l.openSale(ctx, symbol, quantity, price)
	if err != nil {
		return nil, err
	}
	for !sale.IsFilled() {
		if err := fillFromFront(sale, q); err != nil {
			return nil, err
		}
	}
	return sale, nil
}

// SellRandomized rotates a random 1..2N-1 steps before each pop, N being
// the holding when the sale opened. O(quantity·N).
func (l *CostBasisLedger) SellRandomized(ctx context.Context, symbol string, quantity int, price float64) (*domain.SaleOrder, error) {
	sale, q, err := l.openSale(ctx, symbol, quantity, price)
	if err != nil {
		return nil, err
	}
	held := q.Len()
	for !sale.IsFilled() {
		steps := l.rng.IntN(2*held-1) + 1
		for s := 0; s < steps; s++ {
			q.RotateForward()
		}
		if err := fillFromFront(sale, q); err != nil {
			return nil, err
		}
	}
	return sale, nil
}

// SellLowestCostFirst aligns the cheapest lot at the front and drains every
// front lot tied at that cost, rescanning until filled. When the sale needs
// every remaining lot the scan is skipped and the queue is drained as is.
// O(N²) worst case.
func (l *CostBasisLedger) SellLowestCostFirst(ctx context.Context, symbol string, quantity int, price float64) (*domain.SaleOrder, error) {
	sale, q, err := l.openSale(ctx, symbol, quantity, price)
	if err != nil {
		return nil, err
	}
	held := q.Len()
	for !sale.IsFilled() {
		if sale.Remaining() == held {
			for !sale.IsFilled() {
				if err := fillFromFront(sale, q); err != nil {
					return nil, err
				}
			}
			break
		}
		lowest, err := q.AlignFrontToMinimum()
		if err != nil {
			return nil, err
		}
		for !sale.IsFilled() {
			front, err := q.PeekFront()
			if err != nil || front.Cost != lowest {
				break
			}
			if err := fillFromFront(sale, q); err != nil {
				return nil, err
			}
			held--
		}
	}
	return sale, nil
}

// SellMedianSplit makes passes over the queue; each pass computes the range
// midpoint and pops any front lot at or below it, rotating past the rest.
// The cheapest lot is always at or below the midpoint, so every pass sells.
func (l *CostBasisLedger) SellMedianSplit(ctx context.Context, symbol string, quantity int, price float64) (*domain.SaleOrder, error) {
	sale, q, err := l.openSale(ctx, symbol, quantity, price)
	if err != nil {
		return nil, err
	}
	for !sale.IsFilled() {
		median, err := q.EstimateMedianRange()
		if err != nil {
			return nil, err
		}
		n := q.Len()
		for j := 0; j < n && !sale.IsFilled(); j++ {
			front, err := q.PeekFront()
			if err != nil {
				return nil, err
			}
			if front.Cost <= median {
				if err := fillFromFront(sale, q); err != nil {
					return nil, err
				}
			} else {
				q.RotateForward()
			}
		}
	}
	return sale, nil
}

// SellEndpointCompare sells the cheaper of the front and back lots each
// step, rotating the back lot to the front when it is cheaper. O(quantity).
func (l *CostBasisLedger) SellEndpointCompare(ctx context.Context, symbol string, quantity int, price float64) (*domain.SaleOrder, error) {
	sale, q, err := l.openSale(ctx, symbol, quantity, price)
	if err != nil {
		return nil, err
	}
	for !sale.IsFilled() {
		front, err := q.PeekFront()
		if err != nil {
			return nil, err
		}
		back, err := q.PeekBack()
		if err != nil {
			return nil, err
		}
		if front.Cost > back.Cost {
			q.RotateBackward()
		}
		if err := fillFromFront(sale, q); err != nil {
			return nil, err
		}
	}
	return sale, nil
}
