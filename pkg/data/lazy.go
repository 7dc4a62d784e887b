package data

import "sync"

// Lazy computes a value on the first call to Get and memoizes both the value
// and the error. It is safe for concurrent use.
type Lazy[T any] struct {
	once sync.Once
	fn   func() (T, error)
	val  T
	err  error
}

// NewLazy returns a Lazy backed by fn.
func NewLazy[T any](fn func() (T, error)) *Lazy[T] {
	return &Lazy[T]{fn: fn}
}

// Get runs fn once and returns its result.
func (l *Lazy[T]) Get() (T, error) {
	l.once.Do(func() {
		l.val, l.err = l.fn()
		l.fn = nil
	})
	return l.val, l.err
}
