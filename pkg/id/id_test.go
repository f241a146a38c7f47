package id

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	id := New()
	assert.Len(t, id, 26, "ULIDs are 26 characters")

	other := New()
	assert.NotEqual(t, id, other)
}

func TestNewIsMonotonic(t *testing.T) {
	t.Parallel()

	ids := make([]string, 100)
	for i := range ids {
		ids[i] = New()
	}

	require.True(t, sort.StringsAreSorted(ids), "sequential IDs sort lexicographically")
}
