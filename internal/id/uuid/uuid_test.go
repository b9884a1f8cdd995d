package uuid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	gen := NewUUIDGenerator()

	first, err := gen.NewID()
	require.NoError(t, err)
	assert.Len(t, first, 36)

	second, err := gen.NewID()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
