package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewULID_SortableAndUnique(t *testing.T) {
	prev := ""
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id, err := NewULID()
		require.NoError(t, err)
		require.Len(t, id, 26)
		require.Greater(t, id, prev)
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
		prev = id
	}
}
