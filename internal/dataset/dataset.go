// Package dataset reconciles the disagreeing upstream feeds into one
// consistent per-country record set and derives the density and map-opacity
// figures the front end renders.
package dataset

import (
	"strings"

	"go.uber.org/zap"

	"github.com/outbreakmap/covid-geo-etl/internal/countries"
	"github.com/outbreakmap/covid-geo-etl/internal/source"
)

// Entry is one country's merged record, including the population-derived
// figures filled in by JoinPopulation.
type Entry struct {
	source.Record

	Population int

	// Densities: confirmed and active per population, deaths and recovered
	// per confirmed cases.
	ConfirmedDensity float64
	DeathsDensity    float64
	RecoveredDensity float64
	ActiveDensity    float64

	// Map fill opacities in [0, 1], bucketed from the densities.
	ConfirmedOpacity float64
	DeathsOpacity    float64
	RecoveredOpacity float64
	ActiveOpacity    float64
}

// Set is the merged record set, keyed by ISO-A3 code.
type Set map[string]*Entry

// MergeOptions tunes source precedence.
type MergeOptions struct {
	// PreferredScrapeCodes lists countries for which the scraped table is
	// trusted over the CSSE feeds: their national reporting runs ahead of
	// what CSSE aggregates.
	PreferredScrapeCodes []string
}

// Merge reconciles the feeds according to their precedence:
//
//  1. The primary (ArcGIS) records form the base.
//  2. Daily-report records only raise counts for countries already present,
//     never lower them; countries missing from the base are added.
//  3. Scraped records fill countries still missing, and replace the record
//     outright for the preferred codes.
//  4. Override records replace unconditionally.
func Merge(primary, daily, scraped, overrides map[string]source.Record, reg *countries.Registry, opts MergeOptions, log *zap.Logger) Set {
	set := make(Set, len(primary))
	for code, rec := range primary {
		entry := &Entry{Record: rec}
		set[code] = entry
	}

	for code, rec := range daily {
		entry, ok := set[code]
		if !ok {
			rec.LatestUpdate = normalizeUpdate(rec.LatestUpdate)
			set[code] = &Entry{Record: rec}
			continue
		}
		raised := false
		if rec.Confirmed > entry.Confirmed {
			entry.Confirmed = rec.Confirmed
			raised = true
		}
		if rec.Deaths > entry.Deaths {
			entry.Deaths = rec.Deaths
			raised = true
		}
		if rec.Recovered > entry.Recovered {
			entry.Recovered = rec.Recovered
			raised = true
		}
		if raised {
			entry.Active = activeCount(entry.Confirmed, entry.Deaths, entry.Recovered)
			entry.LatestUpdate = normalizeUpdate(rec.LatestUpdate)
			entry.Source = rec.Source
		}
	}

	preferred := make(map[string]bool, len(opts.PreferredScrapeCodes))
	for _, code := range opts.PreferredScrapeCodes {
		preferred[code] = true
	}
	for code, rec := range scraped {
		if _, ok := set[code]; ok && !preferred[code] {
			continue
		}
		if !reg.Has(code) {
			log.Warn("scraped country code not in registry", zap.String("code", code))
			continue
		}
		set[code] = &Entry{Record: rec}
	}

	for code, rec := range overrides {
		set[code] = &Entry{Record: rec}
	}

	return set
}

// activeCount recomputes active cases after counts were raised.
func activeCount(confirmed, deaths, recovered int) int {
	active := confirmed - deaths - recovered
	if active < 0 {
		return 0
	}
	return active
}

// normalizeUpdate rewrites ISO-style "2020-03-31T23:43:43" timestamps into
// the space-separated form the rest of the data set uses.
func normalizeUpdate(u string) string {
	return strings.ReplaceAll(u, "T", " ")
}
