package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndGet(t *testing.T) {
	store := New()

	require.NoError(t, store.Save(context.Background(), "covid_data_en", []byte("payload")))
	data, ok := store.Get("covid_data_en")
	require.True(t, ok)
	assert.Equal(t, "payload", string(data))
	assert.Equal(t, 1, store.Len())

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestSaveCopiesData(t *testing.T) {
	store := New()
	payload := []byte("abc")
	require.NoError(t, store.Save(context.Background(), "k", payload))

	payload[0] = 'x'
	data, _ := store.Get("k")
	assert.Equal(t, "abc", string(data))
}

func TestFailWith(t *testing.T) {
	store := New()
	store.FailWith = errors.New("boom")
	assert.Error(t, store.Save(context.Background(), "k", []byte("x")))
	assert.Equal(t, 0, store.Len())
}
