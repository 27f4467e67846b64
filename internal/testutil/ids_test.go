package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixedGenerator_Sequence(t *testing.T) {
	gen := NewPrefixedGenerator("book")

	assert.Equal(t, "book-0001", gen.Generate())
	assert.Equal(t, "book-0002", gen.Generate())
}

func TestPrefixedGenerator_EmptyPrefixDefault(t *testing.T) {
	assert.Equal(t, "id-0001", NewPrefixedGenerator("").Generate())
}

func TestPrefixedGenerator_Deterministic(t *testing.T) {
	a, b := NewPrefixedGenerator("x"), NewPrefixedGenerator("x")
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Generate(), b.Generate())
	}
}
