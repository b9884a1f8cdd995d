package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const populationSheetCSV = `Russia,"145,934,462"
United States of America,"331,002,651"
WORLD,"7,794,798,739"
China,"1,439,323,776"
Nowhere,0
`

func TestPopulationFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(populationSheetCSV))
	}))
	defer srv.Close()

	feed := NewPopulation(srv.URL, time.Second, "test-agent", testRegistry(t), zap.NewNop())
	population, err := feed.Fetch(context.Background())
	require.NoError(t, err)

	// WORLD and Nowhere do not resolve.
	require.Len(t, population, 3)
	assert.Equal(t, 145934462, population["RUS"])
	assert.Equal(t, 331002651, population["USA"])
	assert.Equal(t, 1439323776, population["CHN"])
}

func TestPopulationFetchNoResolvableRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("WORLD,123\n"))
	}))
	defer srv.Close()

	feed := NewPopulation(srv.URL, time.Second, "test-agent", testRegistry(t), zap.NewNop())
	_, err := feed.Fetch(context.Background())
	assert.Error(t, err)
}
