package countries

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const countryListCSV = `Code,English,Russian
RUS,Russia,Россия
USA,United States of America,США
CHN,China,Китай
GBR,United Kingdom,Великобритания
`

func TestParseRegistry(t *testing.T) {
	reg, err := ParseRegistry(strings.NewReader(countryListCSV))
	require.NoError(t, err)

	assert.Equal(t, 4, reg.Len())
	assert.True(t, reg.Has("RUS"))
	assert.False(t, reg.Has("DEU"))

	title, ok := reg.Title("RUS", "ru")
	require.True(t, ok)
	assert.Equal(t, "Россия", title)

	title, ok = reg.Title("USA", "en")
	require.True(t, ok)
	assert.Equal(t, "United States of America", title)
}

func TestParseRegistryEmpty(t *testing.T) {
	_, err := ParseRegistry(strings.NewReader("Code,English,Russian\n"))
	assert.Error(t, err)
}

func TestResolveUsesAliases(t *testing.T) {
	reg, err := ParseRegistry(strings.NewReader(countryListCSV))
	require.NoError(t, err)

	cases := map[string]string{
		"Russia":             "RUS",
		"Russian Federation": "RUS",
		"US":                 "USA",
		"USA":                "USA",
		"Mainland China":     "CHN",
		"UK":                 "GBR",
	}
	for name, want := range cases {
		code, ok := reg.Resolve(name)
		require.True(t, ok, "resolve %q", name)
		assert.Equal(t, want, code)
	}

	_, ok := reg.Resolve("Atlantis")
	assert.False(t, ok)
}

func TestClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(countryListCSV))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, "test-agent")
	reg, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, reg.Len())
}

func TestClientFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, "test-agent")
	_, err := client.Fetch(context.Background())
	assert.Error(t, err)
}
