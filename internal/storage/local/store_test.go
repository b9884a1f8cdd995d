// Package local_test tests the local filesystem artifact store.
package local_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outbreakmap/covid-geo-etl/internal/storage/local"
)

func TestNew(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		store, err := local.New(local.Config{BaseDir: t.TempDir()})
		require.NoError(t, err)
		assert.NotNil(t, store)
	})

	t.Run("MissingBaseDir", func(t *testing.T) {
		_, err := local.New(local.Config{})
		assert.Error(t, err)
	})

	t.Run("CreatesBaseDir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "artifacts")
		_, err := local.New(local.Config{BaseDir: dir})
		require.NoError(t, err)
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("BaseDirIsNotADirectory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
		_, err := local.New(local.Config{BaseDir: file})
		assert.Error(t, err)
	})
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	store, err := local.New(local.Config{BaseDir: dir})
	require.NoError(t, err)

	t.Run("ValidSave", func(t *testing.T) {
		payload := []byte(`{"type":"FeatureCollection","features":[]}`)
		require.NoError(t, store.Save(context.Background(), "covid_data_ru", payload))

		written, err := os.ReadFile(filepath.Join(dir, "covid_data_ru.json"))
		require.NoError(t, err)
		assert.Equal(t, payload, written)
	})

	t.Run("OverwritesPreviousArtifact", func(t *testing.T) {
		require.NoError(t, store.Save(context.Background(), "covid_data_en", []byte("old")))
		require.NoError(t, store.Save(context.Background(), "covid_data_en", []byte("new")))

		written, err := os.ReadFile(filepath.Join(dir, "covid_data_en.json"))
		require.NoError(t, err)
		assert.Equal(t, "new", string(written))
	})

	t.Run("EmptyKey", func(t *testing.T) {
		assert.Error(t, store.Save(context.Background(), "  ", []byte("x")))
	})

	t.Run("KeyEscapesBaseDir", func(t *testing.T) {
		assert.Error(t, store.Save(context.Background(), "../escape", []byte("x")))
	})
}

func TestSaveWithDotBaseDir(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.Chdir(t.TempDir()))

	store, err := local.New(local.Config{BaseDir: "."})
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), "covid_data_en", []byte("{}")))

	_, err = os.Stat("covid_data_en.json")
	assert.NoError(t, err)
}
