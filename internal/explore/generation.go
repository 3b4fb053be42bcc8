package explore

import "sync"

// Latest holds the result of the most recent recomputation. Each
// recomputation takes a generation from Begin; a result is kept only if no
// newer recomputation has begun by the time it is committed.
type Latest[T any] struct {
	mu        sync.Mutex
	current   uint64
	committed uint64
	value     T
}

// Begin starts a recomputation and returns its generation.
func (l *Latest[T]) Begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current++
	return l.current
}

// Current returns the newest generation handed out.
func (l *Latest[T]) Current() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Commit stores v if gen is still the newest generation and reports whether
// it did. Stale results are discarded.
func (l *Latest[T]) Commit(gen uint64, v T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.current {
		return false
	}
	l.value = v
	l.committed = gen
	return true
}

// Value returns the last committed value and its generation (0 if none).
func (l *Latest[T]) Value() (T, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.committed
}
