package utils

import "sync"

// SlicePool is a pool of reusable slices. Slices handed out by Get always have a length of zero.
type SlicePool[T any] struct {
	pool sync.Pool
}

// NewSlicePool returns a pool whose fresh slices are pre-allocated with the given capacity.
func NewSlicePool[T any](capacity int) *SlicePool[T] {
	p := &SlicePool[T]{}
	p.pool.New = func() any {
		s := make([]T, 0, capacity)
		return &s
	}
	return p
}

// Get retrieves a slice from the pool.
func (p *SlicePool[T]) Get() *[]T {
	list := p.pool.Get().(*[]T)
	*list = (*list)[:0]
	return list
}

// Put returns a slice to the pool. Elements are zeroed so that pooled slices do not keep values alive.
func (p *SlicePool[T]) Put(list *[]T) {
	if list == nil {
		return
	}
	clear(*list)
	*list = (*list)[:0]
	p.pool.Put(list)
}
