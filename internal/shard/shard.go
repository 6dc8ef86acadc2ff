// Package shard serializes writes against a single store shard.
//
// The store's correctness argument (insert-with-retry id allocation,
// read-modify-write patching in non-SQL backends) assumes exactly one
// logical writer per shard. That discipline is made explicit here rather
// than assumed of the storage layer.
package shard

import "sync"

// Serializer admits one mutating operation at a time against a shard.
// Read-only operations may bypass it.
type Serializer struct {
	mu sync.Mutex
}

// New creates a Serializer for a single shard
func New() *Serializer {
	return &Serializer{}
}

// Do runs fn to completion while holding the shard's write slot
func (s *Serializer) Do(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}
