package store

import (
	"sync"

	"github.com/google/uuid"

	"github.com/myurch/mock-rel/internal/ir"
)

// NextID returns the id the next row of modelName should get.
//
// If the schema gives the model an IDResolver, its result is returned
// verbatim. Otherwise the result is max(integer ids in the table) + 1, or 0
// for an empty or absent table. String ids are ignored by the max.
func NextID(state ir.State, modelName string, data ir.Row, schema ir.Schema) ir.IRValue {
	if model := schema.Model(modelName); model != nil && model.IDResolver != nil {
		return model.IDResolver(state, modelName, data)
	}

	next := ir.IRInt(0)
	for key, row := range state.Table(modelName) {
		id, ok := row[ir.IDField].(ir.IRInt)
		if !ok {
			if id, ok = ir.ParseKey(key).(ir.IRInt); !ok {
				continue
			}
		}
		if id >= next {
			next = id + 1
		}
	}
	return next
}

// IDGenerator produces string ids for models that opt out of sequences.
type IDGenerator interface {
	Generate() string
}

// GeneratedIDResolver adapts gen into an IDResolver. Every call yields a
// fresh IRString id regardless of table contents.
func GeneratedIDResolver(gen IDGenerator) ir.IDResolverFunc {
	return func(ir.State, string, ir.Row) ir.IRValue {
		return ir.IRString(gen.Generate())
	}
}

// UUIDv7Generator generates time-sortable UUIDv7 row ids.
//
// UUIDv7 embeds a timestamp in the most significant bits, so ids sort by
// creation time.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined ids, in order.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
//
//	gen := NewFixedGenerator("a", "b")
//	gen.Generate() // "a"
//	gen.Generate() // "b"
//	gen.Generate() // panic: all ids exhausted
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id.
//
// Panics once every id has been consumed; a fixture that adds more rows than
// it planned for is misconfigured.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
