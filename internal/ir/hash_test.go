package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateHashDeterminism(t *testing.T) {
	build := func() State {
		return State{
			"Book": Table{
				"0": Row{"id": IRInt(0), "title": IRString("Emma")},
				"1": Row{"id": IRInt(1), "title": IRString("Dune")},
			},
		}
	}

	h1, err := StateHash(build())
	require.NoError(t, err)
	h2, err := StateHash(build())
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64, "SHA-256 hex digest")
}

func TestStateHashChangesWithContent(t *testing.T) {
	a := State{"Book": Table{"0": Row{"id": IRInt(0), "title": IRString("Emma")}}}
	b := State{"Book": Table{"0": Row{"id": IRInt(0), "title": IRString("Dune")}}}

	assert.NotEqual(t, MustStateHash(a), MustStateHash(b))
}

func TestStateHashNilEqualsEmpty(t *testing.T) {
	assert.Equal(t, MustStateHash(nil), MustStateHash(State{}))
}

func TestDomainSeparation(t *testing.T) {
	data := []byte(`{}`)
	assert.NotEqual(t, hashWithDomain(DomainState, data), hashWithDomain(DomainResolved, data))
}

func TestResolvedHash(t *testing.T) {
	h1, err := ResolvedHash(map[string]any{"id": IRInt(1)})
	require.NoError(t, err)
	h2, err := ResolvedHash(map[string]any{"id": IRInt(2)})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)

	_, err = ResolvedHash(3.5)
	require.Error(t, err)
}

func TestMustStateHashAcceptsNilValues(t *testing.T) {
	withNil := State{"Book": Table{"0": Row{"id": IRInt(0), "bad": nil}}}
	// nil values marshal as null, so this state is still canonical.
	assert.NotPanics(t, func() { MustStateHash(withNil) })
}
