package native

import "sync"

// HandleTable maps handles to Go values, arena style. Handles start at 1 and are
// never reused within one table, so a stale handle cannot alias a newer object.
type HandleTable[T any] struct {
	mu    sync.Mutex
	next  uintptr
	items map[Handle]T
}

func NewHandleTable[T any]() *HandleTable[T] {
	return &HandleTable[T]{items: make(map[Handle]T)}
}

// Insert stores v and returns its new handle.
func (t *HandleTable[T]) Insert(v T) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	h := Handle(t.next)
	t.items[h] = v
	return h
}

func (t *HandleTable[T]) Lookup(h Handle) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.items[h]
	return v, ok
}

// Remove deletes h and returns the value it referred to.
func (t *HandleTable[T]) Remove(h Handle) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.items[h]
	if ok {
		delete(t.items, h)
	}
	return v, ok
}

// Len returns the number of live handles.
func (t *HandleTable[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}
