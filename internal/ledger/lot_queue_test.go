package ledger

import (
	"math"
	"testing"

	"capitalGainsTracker/internal/deque"
	"capitalGainsTracker/internal/domain"
	"capitalGainsTracker/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queueOf(symbol string, costs ...float64) *LotQueue {
	q := NewLotQueue(symbol)
	for _, c := range costs {
		q.AddToBack(domain.Lot{Symbol: symbol, Cost: c})
	}
	return q
}

func TestLotQueue_IgnoresOtherSymbols(t *testing.T) {
	q := NewLotQueue("AAPL")
	q.AddToBack(domain.Lot{Symbol: "MSFT", Cost: 10})
	q.AddToFront(domain.Lot{Symbol: "MSFT", Cost: 10})
	assert.True(t, q.IsEmpty())

	q.AddToBack(domain.Lot{Symbol: "AAPL", Cost: 10})
	q.AddToFront(domain.Lot{Symbol: "AAPL", Cost: 5})
	assert.Equal(t, []float64{5, 10}, q.Costs())
}

func TestLotQueue_RemoveFrontLot(t *testing.T) {
	q := queueOf("AAPL", 1, 2)
	lot, err := q.RemoveFrontLot()
	require.NoError(t, err)
	assert.Equal(t, domain.Lot{Symbol: "AAPL", Cost: 1}, lot)

	_, err = q.RemoveFrontLot()
	require.NoError(t, err)

	_, err = q.RemoveFrontLot()
	assert.ErrorIs(t, err, deque.ErrEmpty)
	_, err = q.PeekFront()
	assert.ErrorIs(t, err, deque.ErrEmpty)
	_, err = q.PeekBack()
	assert.ErrorIs(t, err, deque.ErrEmpty)
}

func TestLotQueue_PositionForAscendingInsert(t *testing.T) {
	tests := []struct {
		name      string
		costs     []float64
		cost      float64
		wantFound bool
		want      []float64 // order after appending cost to the back
	}{
		{name: "empty", cost: 5, wantFound: true, want: []float64{5}},
		{name: "between", costs: []float64{1, 2, 4}, cost: 3, wantFound: true, want: []float64{4, 1, 2, 3}},
		{name: "tie with existing", costs: []float64{1, 2, 3}, cost: 2, wantFound: true, want: []float64{2, 3, 1, 2}},
		{name: "above all", costs: []float64{1, 2, 3}, cost: 9, wantFound: false, want: []float64{1, 2, 3, 9}},
		{name: "below all", costs: []float64{1, 2, 3}, cost: 0, wantFound: false, want: []float64{1, 2, 3, 0}},
		{name: "single equal", costs: []float64{4}, cost: 4, wantFound: true, want: []float64{4, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := queueOf("AAPL", tt.costs...)
			assert.Equal(t, tt.wantFound, q.PositionForAscendingInsert(tt.cost))
			q.AddToBack(domain.Lot{Symbol: "AAPL", Cost: tt.cost})
			assert.Equal(t, tt.want, q.Costs())
		})
	}
}

func TestLotQueue_RestoreAscendingAlignment(t *testing.T) {
	tests := []struct {
		name  string
		costs []float64
		want  []float64
	}{
		{name: "already aligned", costs: []float64{1, 2, 3}, want: []float64{1, 2, 3}},
		{name: "rotated", costs: []float64{3, 4, 1, 2}, want: []float64{1, 2, 3, 4}},
		{name: "duplicates across wrap", costs: []float64{2, 3, 1, 2}, want: []float64{1, 2, 2, 3}},
		{name: "all equal", costs: []float64{5, 5, 5}, want: []float64{5, 5, 5}},
		{name: "empty", want: []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := queueOf("AAPL", tt.costs...)
			q.RestoreAscendingAlignment()
			assert.Equal(t, tt.want, q.Costs())
		})
	}
}

func TestLotQueue_AlignFrontToMinimum(t *testing.T) {
	tests := []struct {
		name    string
		costs   []float64
		wantMin float64
		want    []float64
	}{
		{name: "minimum at front", costs: []float64{1, 5, 3}, wantMin: 1, want: []float64{1, 5, 3}},
		{name: "minimum near front", costs: []float64{4, 2, 5, 6, 7}, wantMin: 2, want: []float64{2, 5, 6, 7, 4}},
		{name: "minimum near back", costs: []float64{4, 5, 6, 1, 7}, wantMin: 1, want: []float64{1, 7, 4, 5, 6}},
		{name: "first of ties", costs: []float64{3, 1, 2, 1}, wantMin: 1, want: []float64{1, 2, 1, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := queueOf("AAPL", tt.costs...)
			got, err := q.AlignFrontToMinimum()
			require.NoError(t, err)
			assert.Equal(t, tt.wantMin, got)
			assert.Equal(t, tt.want, q.Costs())
		})
	}

	_, err := NewLotQueue("AAPL").AlignFrontToMinimum()
	assert.ErrorIs(t, err, deque.ErrEmpty)
}

func TestLotQueue_EstimateMedianExact(t *testing.T) {
	q := queueOf("AAPL", 4, 1, 5, 3, 2)
	before := q.Costs()
	median, err := q.EstimateMedianExact()
	require.NoError(t, err)
	assert.Equal(t, 3.0, median)
	assert.Equal(t, before, q.Costs(), "median search must leave the alignment unchanged")

	q = queueOf("AAPL", 1, 1, 2, 2)
	median, err = q.EstimateMedianExact()
	require.NoError(t, err)
	var lesser, greater, equal int
	for _, c := range q.Costs() {
		switch {
		case c < median:
			lesser++
		case c > median:
			greater++
		default:
			equal++
		}
	}
	assert.LessOrEqual(t, abs(lesser-greater), equal)

	q = queueOf("AAPL", 7)
	median, err = q.EstimateMedianExact()
	require.NoError(t, err)
	assert.Equal(t, 7.0, median)

	_, err = NewLotQueue("AAPL").EstimateMedianExact()
	assert.ErrorIs(t, err, deque.ErrEmpty)

	q = queueOf("AAPL", math.NaN(), 1, 2)
	median, err = q.EstimateMedianExact()
	require.NoError(t, err)
	assert.Equal(t, 1.0, median)

	_, err = queueOf("AAPL", math.NaN(), math.NaN()).EstimateMedianExact()
	assert.ErrorIs(t, err, ports.ErrInvalidPrice)
}

func TestLotQueue_EstimateMedianRange(t *testing.T) {
	q := queueOf("AAPL", 10, 40, 20)
	before := q.Costs()
	median, err := q.EstimateMedianRange()
	require.NoError(t, err)
	assert.Equal(t, 25.0, median)
	assert.Equal(t, before, q.Costs())

	_, err = NewLotQueue("AAPL").EstimateMedianRange()
	assert.ErrorIs(t, err, deque.ErrEmpty)
}

func TestLotQueue_Equal(t *testing.T) {
	assert.True(t, queueOf("AAPL", 1, 2, 3).Equal(queueOf("AAPL", 2, 3, 1)))
	assert.False(t, queueOf("AAPL", 1, 2, 3).Equal(queueOf("MSFT", 1, 2, 3)))
	assert.False(t, queueOf("AAPL", 1, 2, 3).Equal(queueOf("AAPL", 1, 3, 2)))
	assert.False(t, queueOf("AAPL").Equal(nil))
}

func TestLotQueue_Summary(t *testing.T) {
	assert.Equal(t, "AAPL: None", NewLotQueue("AAPL").Summary())
	assert.Equal(t, "AAPL: 45 (2 shares)   50.5 (1 shares)", queueOf("AAPL", 45, 50.5, 45).Summary())
}
