package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithCapacity bounds the number of cards kept. A value <= 0 disables the bound.
func WithCapacity(capacity int) Option {
	return func(s *MemoryStore) {
		s.capacity = capacity
	}
}

// WithEvictionHook registers fn to be called, outside the store lock, with the
// id of every card evicted to make room.
func WithEvictionHook(fn func(id string)) Option {
	return func(s *MemoryStore) {
		s.onEvict = fn
	}
}
