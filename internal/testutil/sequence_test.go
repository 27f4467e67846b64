package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myurch/mock-rel/internal/ir"
)

func TestIDSequence_StartsAtStart(t *testing.T) {
	seq := NewIDSequence(100)
	assert.Equal(t, ir.IRInt(100), seq.Peek())
	assert.Equal(t, ir.IRInt(100), seq.Next())
	assert.Equal(t, ir.IRInt(101), seq.Next())
	assert.Equal(t, ir.IRInt(102), seq.Peek())
}

func TestIDSequence_Reset(t *testing.T) {
	seq := NewIDSequence(0)
	seq.Next()
	seq.Next()

	seq.Reset()
	assert.Equal(t, ir.IRInt(0), seq.Next())
}

func TestIDSequence_ResolverIgnoresState(t *testing.T) {
	resolve := NewIDSequence(7).Resolver()
	state := ir.State{"Book": {"50": {"id": ir.IRInt(50)}}}

	assert.Equal(t, ir.IRInt(7), resolve(state, "Book", nil))
	assert.Equal(t, ir.IRInt(8), resolve(state, "Book", nil))
}

func TestIDSequence_ThreadSafe(t *testing.T) {
	seq := NewIDSequence(1)
	const numGoroutines = 50
	const callsPerGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	results := make([][]ir.IRInt, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		results[i] = make([]ir.IRInt, callsPerGoroutine)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < callsPerGoroutine; j++ {
				results[idx][j] = seq.Next()
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[ir.IRInt]bool)
	for _, row := range results {
		for _, v := range row {
			require.False(t, seen[v], "duplicate id %d", v)
			seen[v] = true
		}
	}
	assert.Len(t, seen, numGoroutines*callsPerGoroutine)
}
