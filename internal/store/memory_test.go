package store

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFavorites(t *testing.T) {
	m := NewMemoryFavorites("A", "B", "A")
	assert.Equal(t, []string{"A", "B"}, m.Load())

	added, _ := m.Add("A")
	assert.False(t, added)
	added, _ = m.Add("C")
	assert.True(t, added)

	removed, _ := m.Remove("B")
	assert.True(t, removed)
	removed, _ = m.Remove("B")
	assert.False(t, removed)

	assert.Equal(t, []string{"A", "C"}, m.Load())

	// Load hands out a copy.
	got := m.Load()
	got[0] = "Z"
	assert.Equal(t, "A", m.Load()[0])
}

func TestMemoryHistory(t *testing.T) {
	m := NewMemoryHistory()
	require.NoError(t, m.Append(obsAt("Paris", 10, 0)))
	require.NoError(t, m.Append(obsAt("Paris", 12.5, 1)))
	assert.Len(t, m.Load(), 2)

	var buf bytes.Buffer
	n, err := m.Export(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, buf.String(), "2024-05-01 12:00:01,Paris,12.5,60,Clouds\n")

	require.NoError(t, m.Clear())
	assert.Empty(t, m.Load())
}
