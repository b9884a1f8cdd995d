package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("Production", func(t *testing.T) {
		logger, err := New(false)
		require.NoError(t, err)
		assert.NotNil(t, logger)
	})

	t.Run("Development", func(t *testing.T) {
		logger, err := New(true)
		require.NoError(t, err)
		assert.NotNil(t, logger)
	})
}

func TestInitLoggerReplacesGlobal(t *testing.T) {
	prev := L
	t.Cleanup(func() { L = prev })

	InitLogger(true)
	assert.NotNil(t, L)
	assert.NotSame(t, prev, L)
}
