package ledger

import (
	"fmt"
	"math"

	"capitalGainsTracker/internal/domain"
	"capitalGainsTracker/internal/ports"
)

// openForBuy validates quantity and price and returns the symbol's queue.
// A zero quantity still registers the symbol.
func (l *CostBasisLedger) openForBuy(symbol string, quantity int, price float64) (*LotQueue, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("buy %d shares of %s: %w", quantity, symbol, ports.ErrInvalidQuantity)
	}
	if !isFinite(price) {
		return nil, fmt.Errorf("buy %d shares of %s at %v: %w", quantity, symbol, price, ports.ErrInvalidPrice)
	}
	return l.OpenOrCreateQueue(symbol), nil
}

func isFinite(price float64) bool {
	return !math.IsInf(price, 0) && !math.IsNaN(price)
}

func appendBack(q *LotQueue, lot domain.Lot, quantity int) {
	for i := 0; i < quantity; i++ {
		q.AddToBack(lot)
	}
}

func appendFront(q *LotQueue, lot domain.Lot, quantity int) {
	for i := 0; i < quantity; i++ {
		q.AddToFront(lot)
	}
}

// BuyFifo appends every lot to the back. O(quantity).
func (l *CostBasisLedger) BuyFifo(symbol string, quantity int, price float64) error {
	q, err := l.openForBuy(symbol, quantity, price)
	if err != nil {
		return err
	}
	appendBack(q, domain.Lot{Symbol: symbol, Cost: price}, quantity)
	return nil
}

// BuyRandomized places each lot after rotating a uniform 0..length steps,
// then picks the front or the back with equal odds. O(quantity·N).
func (l *CostBasisLedger) BuyRandomized(symbol string, quantity int, price float64) error {
	q, err := l.openForBuy(symbol, quantity, price)
	if err != nil {
		return err
	}
	lot := domain.Lot{Symbol: symbol, Cost: price}
	n := q.Len()
	for i := 0; i < quantity; i++ {
		steps := l.rng.IntN(n + 1)
		for s := 0; s < steps; s++ {
			q.RotateForward()
		}
		if l.rng.Float64() >= 0.5 {
			q.AddToBack(lot)
		} else {
			q.AddToFront(lot)
		}
		n++
	}
	return nil
}

// BuyAscendingInsert keeps the queue in ascending cost order: it positions
// the queue so the batch fits between back and front, appends the batch,
// then re-anchors the cheapest lot at the front. O(N + quantity).
//
// A cost above or below every held lot has no between-slot; the queue is
// then re-anchored first so the batch lands at the wrap point.
func (l *CostBasisLedger) BuyAscendingInsert(symbol string, quantity int, price float64) error {
	q, err := l.openForBuy(symbol, quantity, price)
	if err != nil {
		return err
	}
	if !q.PositionForAscendingInsert(price) {
		q.RestoreAscendingAlignment()
	}
	appendBack(q, domain.Lot{Symbol: symbol, Cost: price}, quantity)
	q.RestoreAscendingAlignment()
	return nil
}

// BuyMedianSplit appends the batch to the back when price is at or above
// the exact median cost, otherwise prepends it. O(N²).
func (l *CostBasisLedger) BuyMedianSplit(symbol string, quantity int, price float64) error {
	q, err := l.openForBuy(symbol, quantity, price)
	if err != nil {
		return err
	}
	lot := domain.Lot{Symbol: symbol, Cost: price}
	if q.IsEmpty() {
		appendBack(q, lot, quantity)
		return nil
	}
	median, err := q.EstimateMedianExact()
	if err != nil {
		return err
	}
	if price >= median {
		appendBack(q, lot, quantity)
	} else {
		appendFront(q, lot, quantity)
	}
	return nil
}

// BuyEndpointCompare appends the batch to the back when price is at or
// above the current back cost, otherwise prepends it. O(quantity).
func (l *CostBasisLedger) BuyEndpointCompare(symbol string, quantity int, price float64) error {
	q, err := l.openForBuy(symbol, quantity, price)
	if err != nil {
		return err
	}
	lot := domain.Lot{Symbol: symbol, Cost: price}
	if q.IsEmpty() {
		appendBack(q, lot, quantity)
		return nil
	}
	back, err := q.PeekBack()
	if err != nil {
		return err
	}
	if price >= back.Cost {
		appendBack(q, lot, quantity)
	} else {
		appendFront(q, lot, quantity)
	}
	return nil
}
