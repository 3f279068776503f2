// Package deque provides a rotating double-ended queue.
//
// Nodes live in an arena and link to each other by handle rather than by
// pointer. There is no fixed first position: front and back are roles that
// move under RotateForward and RotateBackward, and the deque deliberately
// offers no indexing.
package deque

import (
	"errors"
	"fmt"
	"iter"
	"reflect"
	"strings"
)

// ErrEmpty is returned when popping or peeking an empty deque.
var ErrEmpty = errors.New("deque is empty")

// handle addresses a node in the arena. The zero handle means "no node".
type handle int

type node[T any] struct {
	value T
	prev  handle
	next  handle
}

// Deque is a doubly-linked deque backed by a node arena.
// The zero value is an empty deque ready to use. A Deque is not safe for
// concurrent use.
type Deque[T any] struct {
	nodes []node[T]
	free  []handle
	front handle
	back  handle
}

// New returns a deque holding values in front-to-back order.
func New[T any](values ...T) *Deque[T] {
	d := &Deque[T]{}
	for _, v := range values {
		d.PushBack(v)
	}
	return d
}

func (d *Deque[T]) at(h handle) *node[T] {
	return &d.nodes[h-1]
}

func (d *Deque[T]) alloc(v T) handle {
	if n := len(d.free); n > 0 {
		h := d.free[n-1]
		d.free = d.free[:n-1]
		d.nodes[h-1] = node[T]{value: v}
		return h
	}
	d.nodes = append(d.nodes, node[T]{value: v})
	return handle(len(d.nodes))
}

func (d *Deque[T]) release(h handle) {
	d.nodes[h-1] = node[T]{}
	d.free = append(d.free, h)
}

// PushBack appends v at the back. Nil pointers, interfaces, maps, slices,
// funcs and channels are ignored.
func (d *Deque[T]) PushBack(v T) {
	if isAbsent(v) {
		return
	}
	h := d.alloc(v)
	if d.back == 0 {
		d.front, d.back = h, h
		return
	}
	d.at(h).prev = d.back
	d.at(d.back).next = h
	d.back = h
}

// PushFront prepends v at the front. Absent values are ignored as in PushBack.
func (d *Deque[T]) PushFront(v T) {
	if isAbsent(v) {
		return
	}
	h := d.alloc(v)
	if d.front == 0 {
		d.front, d.back = h, h
		return
	}
	d.at(h).next = d.front
	d.at(d.front).prev = h
	d.front = h
}

// PopFront removes and returns the front value.
func (d *Deque[T]) PopFront() (T, error) {
	var zero T
	if d.front == 0 {
		return zero, ErrEmpty
	}
	h := d.front
	v := d.at(h).value
	d.front = d.at(h).next
	if d.front == 0 {
		d.back = 0
	} else {
		d.at(d.front).prev = 0
	}
	d.release(h)
	return v, nil
}

// PopBack removes and returns the back value.
func (d *Deque[T]) PopBack() (T, error) {
	var zero T
	if d.back == 0 {
		return zero, ErrEmpty
	}
	h := d.back
	v := d.at(h).value
	d.back = d.at(h).prev
	if d.back == 0 {
		d.front = 0
	} else {
		d.at(d.back).next = 0
	}
	d.release(h)
	return v, nil
}

// PeekFront returns the front value without removing it.
func (d *Deque[T]) PeekFront() (T, error) {
	var zero T
	if d.front == 0 {
		return zero, ErrEmpty
	}
	return d.at(d.front).value, nil
}

// PeekBack returns the back value without removing it.
func (d *Deque[T]) PeekBack() (T, error) {
	var zero T
	if d.back == 0 {
		return zero, ErrEmpty
	}
	return d.at(d.back).value, nil
}

// RotateForward moves the front node to the back.
func (d *Deque[T]) RotateForward() {
	if d.front == d.back {
		return
	}
	h := d.front
	d.front = d.at(h).next
	d.at(d.front).prev = 0
	d.at(h).next = 0
	d.at(h).prev = d.back
	d.at(d.back).next = h
	d.back = h
}

// RotateBackward moves the back node to the front.
func (d *Deque[T]) RotateBackward() {
	if d.front == d.back {
		return
	}
	h := d.back
	d.back = d.at(h).prev
	d.at(d.back).next = 0
	d.at(h).prev = 0
	d.at(h).next = d.front
	d.at(d.front).prev = h
	d.front = h
}

// Len walks the chain and counts its nodes. It is O(N); callers that need
// the length repeatedly should keep their own copy.
func (d *Deque[T]) Len() int {
	n := 0
	for h := d.front; h != 0; h = d.at(h).next {
		n++
	}
	return n
}

// IsEmpty reports whether the deque holds no values.
func (d *Deque[T]) IsEmpty() bool {
	return d.front == 0
}

// Clear drops every value and releases the arena.
func (d *Deque[T]) Clear() {
	d.nodes = nil
	d.free = nil
	d.front, d.back = 0, 0
}

// Drain returns a sequence that pops the front on every step. Values yielded
// are gone from the deque; stopping early leaves the rest in place.
func (d *Deque[T]) Drain() iter.Seq[T] {
	return func(yield func(T) bool) {
		for !d.IsEmpty() {
			v, _ := d.PopFront()
			if !yield(v) {
				return
			}
		}
	}
}

// EqualFunc reports whether some rotation of d matches other element by
// element over the whole cycle. Neither deque is modified.
func (d *Deque[T]) EqualFunc(other *Deque[T], eq func(a, b T) bool) bool {
	if other == nil {
		return false
	}
	n := d.Len()
	if n != other.Len() {
		return false
	}
	if n == 0 {
		return true
	}
	for start := d.front; start != 0; start = d.at(start).next {
		if d.matchesFrom(start, other, eq) {
			return true
		}
	}
	return false
}

func (d *Deque[T]) matchesFrom(start handle, other *Deque[T], eq func(a, b T) bool) bool {
	h := start
	for o := other.front; o != 0; o = other.at(o).next {
		if !eq(d.at(h).value, other.at(o).value) {
			return false
		}
		h = d.at(h).next
		if h == 0 {
			h = d.front
		}
	}
	return true
}

// Equal is EqualFunc with == as the element comparison.
func Equal[T comparable](a, b *Deque[T]) bool {
	return a.EqualFunc(b, func(x, y T) bool { return x == y })
}

// String renders the values front to back.
func (d *Deque[T]) String() string {
	var sb strings.Builder
	sb.WriteString("Deque: ")
	for h := d.front; h != 0; h = d.at(h).next {
		if h != d.front {
			sb.WriteString(", ")
		}
		fmt.Fprint(&sb, d.at(h).value)
	}
	return sb.String()
}

func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
