package ledger

import (
	"fmt"
	"math"
	"strings"

	"capitalGainsTracker/internal/deque"
	"capitalGainsTracker/internal/domain"
	"capitalGainsTracker/internal/ports"
)

// LotQueue holds the open lots of one symbol in a rotating deque.
//
// Selection strategies walk the queue with rotations only. Ascending cost
// order is a transient state established by PositionForAscendingInsert,
// RestoreAscendingAlignment and AlignFrontToMinimum; nothing else keeps it.
type LotQueue struct {
	symbol string
	lots   *deque.Deque[domain.Lot]
}

// NewLotQueue creates an empty queue for symbol.
func NewLotQueue(symbol string) *LotQueue {
	return &LotQueue{symbol: symbol, lots: deque.New[domain.Lot]()}
}

// Symbol returns the symbol every lot in the queue shares.
func (q *LotQueue) Symbol() string {
	return q.symbol
}

// AddToBack appends lot. Lots of another symbol are ignored.
func (q *LotQueue) AddToBack(lot domain.Lot) {
	if lot.Symbol == q.symbol {
		q.lots.PushBack(lot)
	}
}

// AddToFront prepends lot. Lots of another symbol are ignored.
func (q *LotQueue) AddToFront(lot domain.Lot) {
	if lot.Symbol == q.symbol {
		q.lots.PushFront(lot)
	}
}

// RemoveFrontLot pops the front lot.
func (q *LotQueue) RemoveFrontLot() (domain.Lot, error) {
	lot, err := q.lots.PopFront()
	if err != nil {
		return lot, fmt.Errorf("remove lot from %s queue: %w", q.symbol, err)
	}
	return lot, nil
}

// PeekFront returns the front lot.
func (q *LotQueue) PeekFront() (domain.Lot, error) {
	lot, err := q.lots.PeekFront()
	if err != nil {
		return lot, fmt.Errorf("peek front of %s queue: %w", q.symbol, err)
	}
	return lot, nil
}

// PeekBack returns the back lot.
func (q *LotQueue) PeekBack() (domain.Lot, error) {
	lot, err := q.lots.PeekBack()
	if err != nil {
		return lot, fmt.Errorf("peek back of %s queue: %w", q.symbol, err)
	}
	return lot, nil
}

// RotateForward moves the front lot to the back.
func (q *LotQueue) RotateForward() {
	q.lots.RotateForward()
}

// RotateBackward moves the back lot to the front.
func (q *LotQueue) RotateBackward() {
	q.lots.RotateBackward()
}

// Len returns the number of lots. O(N).
func (q *LotQueue) Len() int {
	return q.lots.Len()
}

// IsEmpty reports whether the queue holds no lots.
func (q *LotQueue) IsEmpty() bool {
	return q.lots.IsEmpty()
}

// frontCost and backCost must only be called on a non-empty queue.
func (q *LotQueue) frontCost() float64 {
	lot, _ := q.lots.PeekFront()
	return lot.Cost
}

func (q *LotQueue) backCost() float64 {
	lot, _ := q.lots.PeekBack()
	return lot.Cost
}

// PositionForAscendingInsert rotates forward, at most once per lot, until
// front.cost >= cost >= back.cost. Appending to the back then keeps a
// cyclically ascending queue ascending. It reports whether such a slot was
// found; an empty queue always has one. When no slot exists the queue ends
// where it started.
func (q *LotQueue) PositionForAscendingInsert(cost float64) bool {
	n := q.Len()
	if n == 0 {
		return true
	}
	for i := 0; i < n; i++ {
		if q.frontCost() >= cost && cost >= q.backCost() {
			return true
		}
		q.RotateForward()
	}
	return false
}

// RestoreAscendingAlignment rotates forward until front.cost < back.cost,
// which puts the start of a cyclically ascending queue at the front. A queue
// whose costs all tie is rotated one full cycle and left as it was.
func (q *LotQueue) RestoreAscendingAlignment() {
	n := q.Len()
	for i := 0; i < n; i++ {
		if q.frontCost() < q.backCost() {
			return
		}
		q.RotateForward()
	}
}

// AlignFrontToMinimum scans one full cycle for the first lowest-cost lot,
// then rotates it to the front along the shorter direction. It returns the
// minimum cost.
func (q *LotQueue) AlignFrontToMinimum() (float64, error) {
	n := q.Len()
	if n == 0 {
		return 0, fmt.Errorf("minimum of %s queue: %w", q.symbol, deque.ErrEmpty)
	}
	minCost, offset := q.frontCost(), 0
	for i := 1; i < n; i++ {
		q.RotateForward()
		if c := q.frontCost(); c < minCost {
			minCost, offset = c, i
		}
	}
	q.RotateForward()

	if offset <= n-offset {
		for i := 0; i < offset; i++ {
			q.RotateForward()
		}
	} else {
		for i := 0; i < n-offset; i++ {
			q.RotateBackward()
		}
	}
	return minCost, nil
}

// EstimateMedianExact finds the true median cost without sorting. For each
// rotation offset it counts, over one further cycle, the lots cheaper than,
// dearer than and equal to the lot at that offset; the first offset where
// |lesser - greater| <= equal is the median. O(N²). The queue ends in its
// original alignment.
func (q *LotQueue) EstimateMedianExact() (float64, error) {
	n := q.Len()
	if n == 0 {
		return 0, fmt.Errorf("median of %s queue: %w", q.symbol, deque.ErrEmpty)
	}
	for i := 0; i < n; i++ {
		candidate := q.frontCost()
		if math.IsNaN(candidate) {
			q.RotateForward()
			continue
		}
		var lesser, greater, equal int
		for j := 0; j < n; j++ {
			switch c := q.frontCost(); {
			case c < candidate:
				lesser++
			case c > candidate:
				greater++
			default:
				equal++
			}
			q.RotateForward()
		}
		if abs(lesser-greater) <= equal {
			for k := i; k < n; k++ {
				q.RotateForward()
			}
			return candidate, nil
		}
		q.RotateForward()
	}
	// every lot is NaN
	return 0, fmt.Errorf("median of %s queue: no lot splits the costs: %w", q.symbol, ports.ErrInvalidPrice)
}

// EstimateMedianRange returns (max-min)/2 + min in a single O(N) pass. The
// value need not be the cost of any lot. The queue ends in its original
// alignment.
func (q *LotQueue) EstimateMedianRange() (float64, error) {
	n := q.Len()
	if n == 0 {
		return 0, fmt.Errorf("median range of %s queue: %w", q.symbol, deque.ErrEmpty)
	}
	lo, hi := q.frontCost(), q.frontCost()
	for i := 0; i < n; i++ {
		q.RotateForward()
		lo = min(lo, q.frontCost())
		hi = max(hi, q.frontCost())
	}
	return (hi-lo)/2 + lo, nil
}

// Costs returns the lot costs front to back. It reads by rotating one full
// cycle, so the queue ends where it started.
func (q *LotQueue) Costs() []float64 {
	n := q.Len()
	costs := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		costs = append(costs, q.frontCost())
		q.RotateForward()
	}
	return costs
}

// Equal reports whether other holds the same symbol and the same lots under
// some rotation.
func (q *LotQueue) Equal(other *LotQueue) bool {
	if other == nil || q.symbol != other.symbol {
		return false
	}
	return deque.Equal(q.lots, other.lots)
}

// Summary renders "AAPL: 45 (10 shares)   50 (5 shares)" with costs grouped
// in the order they first appear from the front, or "AAPL: None" when empty.
func (q *LotQueue) Summary() string {
	if q.IsEmpty() {
		return q.symbol + ": None"
	}
	var order []float64
	counts := make(map[float64]int)
	for _, c := range q.Costs() {
		if _, seen := counts[c]; !seen {
			order = append(order, c)
		}
		counts[c]++
	}
	parts := make([]string, 0, len(order))
	for _, c := range order {
		parts = append(parts, fmt.Sprintf("%v (%d shares)", c, counts[c]))
	}
	return q.symbol + ": " + strings.Join(parts, "   ")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
