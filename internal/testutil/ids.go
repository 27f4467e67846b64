package testutil

import (
	"fmt"
	"sync"
)

// PrefixedGenerator generates readable, deterministic string ids:
// "<prefix>-0001", "<prefix>-0002", ...
//
// It stands in for store.UUIDv7Generator so that fixtures declaring
// id_strategy "uuid" still produce byte-identical golden output.
//
// Thread-safety: PrefixedGenerator is safe for concurrent use via internal mutex.
type PrefixedGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewPrefixedGenerator creates a generator. An empty prefix becomes "id".
func NewPrefixedGenerator(prefix string) *PrefixedGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &PrefixedGenerator{prefix: prefix}
}

// Generate returns the next id.
func (g *PrefixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
