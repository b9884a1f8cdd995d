package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/outbreakmap/covid-geo-etl/internal/countries"
	"github.com/outbreakmap/covid-geo-etl/internal/dataset"
	"github.com/outbreakmap/covid-geo-etl/internal/geo"
	"github.com/outbreakmap/covid-geo-etl/internal/source"
	"github.com/outbreakmap/covid-geo-etl/internal/storage/memory"
)

const registryCSV = `code,en,ru
RUS,Russia,Россия
ITA,Italy,Италия
USA,USA,США
`

const worldMapJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"ISO_A3": "RUS"},
     "geometry": {"type": "Polygon", "coordinates": [[[30,50],[40,50],[40,60],[30,50]]]}},
    {"type": "Feature", "properties": {"ISO_A3": "ITA"},
     "geometry": {"type": "Polygon", "coordinates": [[[7,44],[13,44],[13,47],[7,44]]]}},
    {"type": "Feature", "properties": {"ISO_A3": "USA"},
     "geometry": {"type": "Polygon", "coordinates": [[[-120,30],[-80,30],[-80,45],[-120,30]]]}}
  ]
}`

type caseFeedFunc func(ctx context.Context) (map[string]source.Record, error)

func (f caseFeedFunc) Fetch(ctx context.Context) (map[string]source.Record, error) { return f(ctx) }

type populationFeedFunc func(ctx context.Context) (map[string]int, error)

func (f populationFeedFunc) Fetch(ctx context.Context) (map[string]int, error) { return f(ctx) }

type registryFeedFunc func(ctx context.Context) (*countries.Registry, error)

func (f registryFeedFunc) Fetch(ctx context.Context) (*countries.Registry, error) { return f(ctx) }

func staticCases(records map[string]source.Record) caseFeedFunc {
	return func(context.Context) (map[string]source.Record, error) { return records, nil }
}

func failingCases(err error) caseFeedFunc {
	return func(context.Context) (map[string]source.Record, error) { return nil, err }
}

func record(code string, confirmed, deaths, recovered int, label string) source.Record {
	return source.Record{
		Code:         code,
		Confirmed:    confirmed,
		Deaths:       deaths,
		Recovered:    recovered,
		Active:       confirmed - deaths - recovered,
		LatestUpdate: "2020/03/30, 10:00:00",
		Source:       source.Attribution{"*": label},
	}
}

func testWorldMap(t *testing.T) *geo.WorldMap {
	t.Helper()
	path := filepath.Join(t.TempDir(), "world-map.json")
	require.NoError(t, os.WriteFile(path, []byte(worldMapJSON), 0o644))
	wm, err := geo.LoadWorldMap(path)
	require.NoError(t, err)
	return wm
}

func testRegistryFeed() registryFeedFunc {
	return func(context.Context) (*countries.Registry, error) {
		return countries.ParseRegistry(strings.NewReader(registryCSV))
	}
}

func testFeeds(t *testing.T) Feeds {
	t.Helper()
	return Feeds{
		Primary: staticCases(map[string]source.Record{
			"RUS": record("RUS", 1836, 9, 66, "feed"),
			"ITA": record("ITA", 101739, 11591, 14620, "feed"),
			"USA": record("USA", 164610, 3170, 5945, "feed"),
		}),
		Daily:   staticCases(nil),
		Scraped: staticCases(nil),
		Population: populationFeedFunc(func(context.Context) (map[string]int, error) {
			return map[string]int{"RUS": 146745098, "ITA": 60317116, "USA": 328239523}, nil
		}),
	}
}

func static(feeds Feeds) FeedFactory {
	return func(*countries.Registry) Feeds { return feeds }
}

func testOptions() Options {
	return Options{
		Locales:   []string{"ru", "en"},
		KeyPrefix: "covid_data_",
		Validate:  dataset.ValidateOptions{MinRecords: 1},
	}
}

func TestRunPersistsEveryLocale(t *testing.T) {
	primary := memory.New()
	fallback := memory.New()
	p := New(testRegistryFeed(), static(testFeeds(t)), testWorldMap(t), primary, fallback, testOptions(),
		clockwork.NewFakeClock(), zap.NewNop())

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Records)
	assert.False(t, result.Degraded)
	assert.Equal(t, "ok", result.Status())
	assert.Equal(t, 2, primary.Len())
	assert.Equal(t, 0, fallback.Len())

	data, ok := primary.Get("covid_data_en")
	require.True(t, ok)
	assert.Equal(t, len(data), result.Artifacts["en"])

	var collection geo.FeatureCollection
	require.NoError(t, json.Unmarshal(data, &collection))
	assert.Equal(t, "FeatureCollection", collection.Type)
	require.Len(t, collection.Features, 3)
	assert.Equal(t, "ITA", collection.Features[0].ID)
}

func TestRunLocalizesTitles(t *testing.T) {
	primary := memory.New()
	p := New(testRegistryFeed(), static(testFeeds(t)), testWorldMap(t), primary, memory.New(), testOptions(),
		clockwork.NewFakeClock(), zap.NewNop())

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	ru, ok := primary.Get("covid_data_ru")
	require.True(t, ok)
	assert.Contains(t, string(ru), "Россия")

	en, ok := primary.Get("covid_data_en")
	require.True(t, ok)
	assert.Contains(t, string(en), "Russia")
	assert.NotContains(t, string(en), "Россия")
}

func TestRunFailsWhenRegistryUnavailable(t *testing.T) {
	registry := registryFeedFunc(func(context.Context) (*countries.Registry, error) {
		return nil, errors.New("boom")
	})
	p := New(registry, static(testFeeds(t)), testWorldMap(t), memory.New(), memory.New(), testOptions(),
		clockwork.NewFakeClock(), zap.NewNop())

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "country registry")
}

func TestRunFailsWhenPrimaryFeedUnavailable(t *testing.T) {
	feeds := testFeeds(t)
	feeds.Primary = failingCases(errors.New("boom"))
	p := New(testRegistryFeed(), static(feeds), testWorldMap(t), memory.New(), memory.New(), testOptions(),
		clockwork.NewFakeClock(), zap.NewNop())

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "primary case feed")
}

func TestRunToleratesOptionalFeedFailures(t *testing.T) {
	feeds := testFeeds(t)
	feeds.Daily = failingCases(errors.New("report not published yet"))
	feeds.Scraped = failingCases(errors.New("blocked"))
	primary := memory.New()
	p := New(testRegistryFeed(), static(feeds), testWorldMap(t), primary, memory.New(), testOptions(),
		clockwork.NewFakeClock(), zap.NewNop())

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Records)
	assert.Equal(t, 2, primary.Len())
}

func TestRunToleratesMissingPopulation(t *testing.T) {
	feeds := testFeeds(t)
	feeds.Population = populationFeedFunc(func(context.Context) (map[string]int, error) {
		return nil, errors.New("boom")
	})
	primary := memory.New()
	p := New(testRegistryFeed(), static(feeds), testWorldMap(t), primary, memory.New(), testOptions(),
		clockwork.NewFakeClock(), zap.NewNop())

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Records)

	data, ok := primary.Get("covid_data_en")
	require.True(t, ok)
	assert.Contains(t, string(data), `"cd":0`)
}

func TestRunAppliesOverrides(t *testing.T) {
	feeds := testFeeds(t)
	feeds.Overrides = staticCases(map[string]source.Record{
		"RUS": record("RUS", 2000, 10, 70, "operator"),
	})
	primary := memory.New()
	p := New(testRegistryFeed(), static(feeds), testWorldMap(t), primary, memory.New(), testOptions(),
		clockwork.NewFakeClock(), zap.NewNop())

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	data, ok := primary.Get("covid_data_en")
	require.True(t, ok)
	assert.Contains(t, string(data), `"confirmed":2000`)
	assert.Contains(t, string(data), `"source":"operator"`)
}

func TestRunAbortsOnValidationFailure(t *testing.T) {
	feeds := testFeeds(t)
	bad := record("RUS", 10, 20, 30, "feed") // deaths+recovered exceed confirmed
	bad.Active = 5
	feeds.Primary = staticCases(map[string]source.Record{
		"RUS": bad,
		"ITA": record("ITA", 101739, 11591, 14620, "feed"),
		"USA": record("USA", 164610, 3170, 5945, "feed"),
	})
	primary := memory.New()
	p := New(testRegistryFeed(), static(feeds), testWorldMap(t), primary, memory.New(), testOptions(),
		clockwork.NewFakeClock(), zap.NewNop())

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate merged data")
	assert.Equal(t, 0, primary.Len())
}

func TestRunFallsBackWhenPrimaryStoreFails(t *testing.T) {
	primary := memory.New()
	primary.FailWith = errors.New("sentinel down")
	fallback := memory.New()
	p := New(testRegistryFeed(), static(testFeeds(t)), testWorldMap(t), primary, fallback, testOptions(),
		clockwork.NewFakeClock(), zap.NewNop())

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Equal(t, "degraded", result.Status())
	assert.Equal(t, 2, fallback.Len())

	_, ok := fallback.Get("covid_data_ru")
	assert.True(t, ok)
}

func TestRunFailsWhenBothStoresFail(t *testing.T) {
	primary := memory.New()
	primary.FailWith = errors.New("sentinel down")
	fallback := memory.New()
	fallback.FailWith = errors.New("disk full")
	p := New(testRegistryFeed(), static(testFeeds(t)), testWorldMap(t), primary, fallback, testOptions(),
		clockwork.NewFakeClock(), zap.NewNop())

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallback store")
}

func TestRunMeasuresElapsedTime(t *testing.T) {
	clock := clockwork.NewFakeClock()
	feeds := testFeeds(t)
	feeds.Daily = caseFeedFunc(func(context.Context) (map[string]source.Record, error) {
		clock.Advance(3 * time.Second)
		return nil, nil
	})
	p := New(testRegistryFeed(), static(feeds), testWorldMap(t), memory.New(), memory.New(), testOptions(),
		clock, zap.NewNop())

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, result.Elapsed)
}
