package reload

import "sync/atomic"

// Holder publishes an immutable value to concurrent readers. Readers always
// observe either the previous value or the fully built replacement, never a
// partially built one.
type Holder[T any] struct {
	p atomic.Pointer[T]
}

// NewHolder returns a Holder publishing v. A nil v is allowed; Load then
// returns nil until the first Swap.
func NewHolder[T any](v *T) *Holder[T] {
	h := &Holder[T]{}
	h.p.Store(v)
	return h
}

// Load returns the currently published value.
func (h *Holder[T]) Load() *T {
	return h.p.Load()
}

// Swap publishes v and returns the previously published value.
func (h *Holder[T]) Swap(v *T) *T {
	return h.p.Swap(v)
}
