// Package source implements the upstream data feeds: the ArcGIS feature
// service, the CSSE daily-report CSV, the Worldometer table scrape, and the
// manually curated override sheet. Every fetcher returns per-country records
// keyed by ISO-A3 code; country name reconciliation happens here so the merge
// step only ever sees canonical codes.
package source

import (
	"time"

	"go.uber.org/zap"

	"github.com/outbreakmap/covid-geo-etl/internal/countries"
)

// updateTimeLayout is the timestamp format carried in the `latest_update`
// property, kept as the map front end expects it.
const updateTimeLayout = "2006/01/02, 15:04:05"

// Attribution is a per-locale source label. Feeds with a single label use the
// "*" wildcard entry; the manual sheet supplies one label per locale.
type Attribution map[string]string

// Label builds an Attribution shown identically in every locale.
func Label(s string) Attribution {
	return Attribution{"*": s}
}

// ForLocale returns the label for a locale, falling back to the wildcard
// entry. Locales without a label render as an empty string.
func (a Attribution) ForLocale(locale string) string {
	if v, ok := a[locale]; ok {
		return v
	}
	return a["*"]
}

// Record is one country's case counts as reported by a single source.
type Record struct {
	Code         string
	Confirmed    int
	Deaths       int
	Recovered    int
	Active       int
	LatestUpdate string
	Source       Attribution
}

// buildRecord normalizes a source country name, resolves it against the
// registry, and assembles a Record. Names the registry cannot resolve are
// logged and dropped; sources routinely carry rows for ships, aggregates, and
// territories the map does not render.
func buildRecord(reg *countries.Registry, log *zap.Logger, name string, confirmed, deaths, recovered int, latestUpdate string, src Attribution) (Record, bool) {
	code, ok := reg.Resolve(name)
	if !ok {
		if name != "" {
			log.Debug("country title not resolved",
				zap.String("title", name),
				zap.String("source", src.ForLocale("en")))
		}
		return Record{}, false
	}

	active := confirmed - deaths - recovered
	if active < 0 {
		active = 0
	}

	return Record{
		Code:         code,
		Confirmed:    confirmed,
		Deaths:       deaths,
		Recovered:    recovered,
		Active:       active,
		LatestUpdate: latestUpdate,
		Source:       src,
	}, true
}

// formatUpdateTime renders a timestamp in the wire layout.
func formatUpdateTime(t time.Time) string {
	return t.UTC().Format(updateTimeLayout)
}
