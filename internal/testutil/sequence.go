package testutil

import (
	"sync"

	"github.com/myurch/mock-rel/internal/ir"
)

// IDSequence hands out integer ids from a fixed starting point, ignoring
// table contents. Installed as a model's IDResolver it makes id assignment
// independent of which rows earlier steps left behind.
//
// Unlike store.NextID, IDSequence can be reset for test reuse.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type IDSequence struct {
	mu    sync.Mutex
	start int64
	next  int64
}

// NewIDSequence creates a sequence whose first id is start.
func NewIDSequence(start int64) *IDSequence {
	return &IDSequence{start: start, next: start}
}

// Next returns the next id and advances the sequence.
func (s *IDSequence) Next() ir.IRInt {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	return ir.IRInt(id)
}

// Peek returns the id Next would return, without advancing.
func (s *IDSequence) Peek() ir.IRInt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ir.IRInt(s.next)
}

// Reset rewinds the sequence to its starting id.
func (s *IDSequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next = s.start
}

// Resolver adapts the sequence into an IDResolver.
func (s *IDSequence) Resolver() ir.IDResolverFunc {
	return func(ir.State, string, ir.Row) ir.IRValue {
		return s.Next()
	}
}
