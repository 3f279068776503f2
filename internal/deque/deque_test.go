package deque

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snapshot walks the deque with a full rotation cycle and restores it.
func snapshot[T any](d *Deque[T]) []T {
	n := d.Len()
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		v, _ := d.PeekFront()
		out = append(out, v)
		d.RotateForward()
	}
	return out
}

func TestDeque_PushPop(t *testing.T) {
	d := New[int]()
	assert.True(t, d.IsEmpty())
	assert.Equal(t, 0, d.Len())

	d.PushBack(2)
	d.PushBack(3)
	d.PushFront(1)
	assert.Equal(t, 3, d.Len())
	assert.Equal(t, []int{1, 2, 3}, snapshot(d))

	v, err := d.PopFront()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = d.PopBack()
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = d.PopBack()
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.True(t, d.IsEmpty())
}

func TestDeque_EmptyFailures(t *testing.T) {
	var d Deque[string]

	_, err := d.PopFront()
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = d.PopBack()
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = d.PeekFront()
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = d.PeekBack()
	assert.ErrorIs(t, err, ErrEmpty)

	// rotations on an empty deque are no-ops
	d.RotateForward()
	d.RotateBackward()
	assert.True(t, d.IsEmpty())
}

func TestDeque_IgnoresAbsentValues(t *testing.T) {
	d := New[*int]()
	d.PushBack(nil)
	d.PushFront(nil)
	assert.True(t, d.IsEmpty())

	x := 7
	d.PushBack(&x)
	assert.Equal(t, 1, d.Len())

	var e error
	errs := New[error]()
	errs.PushBack(e)
	assert.True(t, errs.IsEmpty())
}

func TestDeque_Rotation(t *testing.T) {
	d := New(1, 2, 3, 4)

	d.RotateForward()
	front, _ := d.PeekFront()
	back, _ := d.PeekBack()
	assert.Equal(t, 2, front)
	assert.Equal(t, 1, back)

	d.RotateBackward()
	d.RotateBackward()
	front, _ = d.PeekFront()
	back, _ = d.PeekBack()
	assert.Equal(t, 4, front)
	assert.Equal(t, 3, back)
	assert.Equal(t, 4, d.Len())
}

func TestDeque_RotationClosure(t *testing.T) {
	for n := 1; n <= 8; n++ {
		values := make([]int, n)
		for i := range values {
			values[i] = i * 10
		}
		d := New(values...)
		for i := 0; i < n; i++ {
			d.RotateForward()
		}
		assert.Equal(t, values, snapshot(d), "forward closure n=%d", n)

		for i := 0; i < n; i++ {
			d.RotateBackward()
		}
		assert.Equal(t, values, snapshot(d), "backward closure n=%d", n)
	}
}

func TestDeque_LinkInvariant(t *testing.T) {
	d := New(1, 2, 3, 4, 5)
	d.RotateForward()
	_, _ = d.PopFront()
	d.PushFront(9)
	d.RotateBackward()
	_, _ = d.PopBack()
	d.PushBack(8)

	n := d.Len()
	steps := 0
	for h := d.front; h != d.back; h = d.at(h).next {
		steps++
	}
	assert.Equal(t, n-1, steps)

	steps = 0
	for h := d.back; h != d.front; h = d.at(h).prev {
		steps++
	}
	assert.Equal(t, n-1, steps)
	assert.Equal(t, handle(0), d.at(d.front).prev)
	assert.Equal(t, handle(0), d.at(d.back).next)
}

func TestDeque_ReusesReleasedNodes(t *testing.T) {
	d := New(1, 2, 3)
	_, _ = d.PopFront()
	_, _ = d.PopFront()
	d.PushBack(4)
	d.PushBack(5)
	assert.Len(t, d.nodes, 3)
	assert.Equal(t, []int{3, 4, 5}, snapshot(d))
}

func TestDeque_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b []int
		want bool
	}{
		{name: "both empty", want: true},
		{name: "identical", a: []int{1, 2, 3}, b: []int{1, 2, 3}, want: true},
		{name: "rotated", a: []int{1, 2, 3}, b: []int{3, 1, 2}, want: true},
		{name: "reversed", a: []int{1, 2, 3}, b: []int{3, 2, 1}, want: false},
		{name: "different length", a: []int{1, 2}, b: []int{1, 2, 1}, want: false},
		{name: "duplicates rotated", a: []int{1, 1, 2}, b: []int{1, 2, 1}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := New(tt.a...), New(tt.b...)
			assert.Equal(t, tt.want, Equal(a, b))
			assert.Equal(t, tt.want, Equal(b, a))
			// equality never disturbs either deque
			if len(tt.a) > 0 {
				assert.Equal(t, tt.a, snapshot(a))
			}
		})
	}
}

func TestDeque_Drain(t *testing.T) {
	d := New("a", "b", "c", "d")

	var got []string
	for v := range d.Drain() {
		got = append(got, v)
		if v == "b" {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 2, d.Len())

	rest := slices.Collect(d.Drain())
	assert.Equal(t, []string{"c", "d"}, rest)
	assert.True(t, d.IsEmpty())
}

func TestDeque_String(t *testing.T) {
	assert.Equal(t, "Deque: 1, 2, 3", New(1, 2, 3).String())
	assert.Equal(t, "Deque: ", New[int]().String())
}
