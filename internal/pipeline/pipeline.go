// Package pipeline executes one fetch-merge-localize-persist pass.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/outbreakmap/covid-geo-etl/internal/countries"
	"github.com/outbreakmap/covid-geo-etl/internal/dataset"
	"github.com/outbreakmap/covid-geo-etl/internal/geo"
	"github.com/outbreakmap/covid-geo-etl/internal/metrics"
	"github.com/outbreakmap/covid-geo-etl/internal/source"
	"github.com/outbreakmap/covid-geo-etl/internal/storage"
)

// CaseFeed returns per-country case records keyed by ISO-A3 code.
type CaseFeed interface {
	Fetch(ctx context.Context) (map[string]source.Record, error)
}

// PopulationFeed returns population figures keyed by ISO-A3 code.
type PopulationFeed interface {
	Fetch(ctx context.Context) (map[string]int, error)
}

// RegistryFeed returns the country registry.
type RegistryFeed interface {
	Fetch(ctx context.Context) (*countries.Registry, error)
}

// Feeds bundles the upstream case and population sources for a run.
// Overrides may be nil when no manual sheet is configured.
type Feeds struct {
	Primary    CaseFeed
	Daily      CaseFeed
	Scraped    CaseFeed
	Overrides  CaseFeed
	Population PopulationFeed
}

// FeedFactory builds the feeds once the country registry is known. Sources
// need the registry to resolve the country names they encounter, and the
// registry itself comes from an upstream sheet, so feed construction is
// deferred until the registry fetch succeeds.
type FeedFactory func(reg *countries.Registry) Feeds

// Options tunes merging, validation, and the output projection.
type Options struct {
	Locales   []string
	KeyPrefix string
	Merge     dataset.MergeOptions
	Validate  dataset.ValidateOptions
}

// Result summarizes a completed run.
type Result struct {
	Records   int
	Artifacts map[string]int // locale -> artifact size in bytes
	Degraded  bool           // primary store failed, fallback used
	Elapsed   time.Duration
}

// Status renders the run outcome for logs and metrics labels.
func (r Result) Status() string {
	if r.Degraded {
		return "degraded"
	}
	return "ok"
}

// Pipeline is the one-shot ETL pass.
type Pipeline struct {
	registry RegistryFeed
	feeds    FeedFactory
	worldMap *geo.WorldMap
	primary  storage.Provider
	fallback storage.Provider
	opts     Options
	clock    clockwork.Clock
	log      *zap.Logger
}

// New assembles a Pipeline.
func New(registry RegistryFeed, feeds FeedFactory, worldMap *geo.WorldMap, primary, fallback storage.Provider, opts Options, clock clockwork.Clock, log *zap.Logger) *Pipeline {
	return &Pipeline{
		registry: registry,
		feeds:    feeds,
		worldMap: worldMap,
		primary:  primary,
		fallback: fallback,
		opts:     opts,
		clock:    clock,
		log:      log,
	}
}

// Run executes one pass. The country registry and the primary case feed are
// required; the remaining feeds degrade to warnings so a single flaky source
// cannot stop the map from updating. A primary-store failure falls back to
// the local store and reports a degraded (but successful) run.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	start := p.clock.Now()

	registry, err := p.registry.Fetch(ctx)
	if err != nil {
		metrics.ObserveSourceFetch("country_list", "error")
		return Result{}, fmt.Errorf("country registry: %w", err)
	}
	metrics.ObserveSourceFetch("country_list", "ok")
	p.log.Info("country registry loaded", zap.Int("countries", registry.Len()))

	feeds := p.feeds(registry)

	primaryRecs, err := feeds.Primary.Fetch(ctx)
	if err != nil {
		metrics.ObserveSourceFetch("arcgis", "error")
		return Result{}, fmt.Errorf("primary case feed: %w", err)
	}
	metrics.ObserveSourceFetch("arcgis", "ok")
	metrics.SetSourceRecords("arcgis", len(primaryRecs))
	p.log.Info("primary case feed fetched", zap.Int("records", len(primaryRecs)))

	daily := p.fetchOptional(ctx, "daily_report", feeds.Daily)
	scraped := p.fetchOptional(ctx, "worldometer", feeds.Scraped)
	overrides := p.fetchOptional(ctx, "manual", feeds.Overrides)

	set := dataset.Merge(primaryRecs, daily, scraped, overrides, registry, p.opts.Merge, p.log)
	metrics.SetMergedRecords(len(set))
	p.log.Info("case data merged", zap.Int("records", len(set)))

	population, err := feeds.Population.Fetch(ctx)
	if err != nil {
		// Without population the artifacts carry zero densities and the map
		// renders without fill; still better than no update at all.
		metrics.ObserveSourceFetch("population", "error")
		p.log.Warn("population feed failed; densities omitted", zap.Error(err))
	} else {
		metrics.ObserveSourceFetch("population", "ok")
		set.JoinPopulation(population)
	}

	if err := set.Validate(registry.Len(), p.opts.Validate); err != nil {
		return Result{}, fmt.Errorf("validate merged data: %w", err)
	}

	artifacts := make(map[string][]byte, len(p.opts.Locales))
	for _, locale := range p.opts.Locales {
		collection := geo.BuildCollection(set, p.worldMap, registry, locale, p.log)
		data, err := json.Marshal(collection)
		if err != nil {
			return Result{}, fmt.Errorf("encode %s collection: %w", locale, err)
		}
		artifacts[locale] = data
		metrics.SetArtifactBytes(locale, len(data))
	}

	result := Result{
		Records:   len(set),
		Artifacts: make(map[string]int, len(artifacts)),
	}
	for locale, data := range artifacts {
		result.Artifacts[locale] = len(data)
	}

	if err := p.persist(ctx, artifacts); err != nil {
		p.log.Warn("primary store failed; writing artifacts to fallback", zap.Error(err))
		result.Degraded = true
		if fbErr := p.persistFallback(ctx, artifacts); fbErr != nil {
			return Result{}, fmt.Errorf("fallback store: %w", fbErr)
		}
	}

	result.Elapsed = p.clock.Now().Sub(start)
	return result, nil
}

// fetchOptional runs a non-critical feed, returning nil records on failure.
func (p *Pipeline) fetchOptional(ctx context.Context, name string, feed CaseFeed) map[string]source.Record {
	if feed == nil {
		p.log.Info("feed not configured", zap.String("feed", name))
		return nil
	}
	records, err := feed.Fetch(ctx)
	if err != nil {
		metrics.ObserveSourceFetch(name, "error")
		p.log.Warn("feed failed; continuing without it", zap.String("feed", name), zap.Error(err))
		return nil
	}
	metrics.ObserveSourceFetch(name, "ok")
	metrics.SetSourceRecords(name, len(records))
	p.log.Info("feed fetched", zap.String("feed", name), zap.Int("records", len(records)))
	return records
}

// persist writes every locale artifact to the primary store.
func (p *Pipeline) persist(ctx context.Context, artifacts map[string][]byte) error {
	for _, locale := range p.opts.Locales {
		key := p.opts.KeyPrefix + locale
		if err := p.primary.Save(ctx, key, artifacts[locale]); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
		p.log.Info("artifact persisted",
			zap.String("key", key),
			zap.Int("bytes", len(artifacts[locale])))
	}
	return nil
}

// persistFallback writes every locale artifact to the fallback store. All
// locales are written, including any that already reached the primary store,
// so the fallback directory is always internally consistent.
func (p *Pipeline) persistFallback(ctx context.Context, artifacts map[string][]byte) error {
	for _, locale := range p.opts.Locales {
		key := p.opts.KeyPrefix + locale
		if err := p.fallback.Save(ctx, key, artifacts[locale]); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
		p.log.Info("artifact persisted to fallback", zap.String("key", key))
	}
	return nil
}
