// Package geo holds the GeoJSON side of the job: the world map geometry
// index and the projection of the merged data set into one FeatureCollection
// per locale.
package geo

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/outbreakmap/covid-geo-etl/internal/countries"
	"github.com/outbreakmap/covid-geo-etl/internal/dataset"
)

// Properties is the per-country payload the map front end renders. The short
// keys (cd, dd, ...) are part of the wire contract with the front end.
type Properties struct {
	Name         string `json:"name"`
	LatestUpdate string `json:"latest_update"`
	Confirmed    int    `json:"confirmed"`
	Deaths       int    `json:"deaths"`
	Recovered    int    `json:"recovered"`
	Active       int    `json:"active"`
	Population   int    `json:"population"`
	Source       string `json:"source"`

	ConfirmedDensity float64 `json:"cd"`
	DeathsDensity    float64 `json:"dd"`
	RecoveredDensity float64 `json:"rd"`
	ActiveDensity    float64 `json:"ad"`
	ConfirmedOpacity float64 `json:"co"`
	DeathsOpacity    float64 `json:"do"`
	RecoveredOpacity float64 `json:"ro"`
	ActiveOpacity    float64 `json:"ao"`
}

// Feature is a single country outline with its data payload.
type Feature struct {
	Type       string          `json:"type"`
	ID         string          `json:"id"`
	Properties Properties      `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

// FeatureCollection is the artifact persisted per locale.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// WorldMap indexes country outlines by ISO-A3 code. Geometry is carried as an
// opaque raw message; the job never inspects coordinates.
type WorldMap struct {
	shapes map[string]json.RawMessage
}

type worldMapFile struct {
	Features []struct {
		Properties struct {
			ISOA3 string `json:"ISO_A3"`
		} `json:"properties"`
		Geometry json.RawMessage `json:"geometry"`
	} `json:"features"`
}

// LoadWorldMap reads the world map GeoJSON file shipped with the deployment.
func LoadWorldMap(path string) (*WorldMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read world map %s: %w", path, err)
	}

	var file worldMapFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode world map %s: %w", path, err)
	}
	if len(file.Features) == 0 {
		return nil, fmt.Errorf("world map %s: no features", path)
	}

	wm := &WorldMap{shapes: make(map[string]json.RawMessage, len(file.Features))}
	for _, f := range file.Features {
		if f.Properties.ISOA3 != "" {
			wm.shapes[f.Properties.ISOA3] = f.Geometry
		}
	}
	return wm, nil
}

// Len returns the number of indexed outlines.
func (w *WorldMap) Len() int {
	return len(w.shapes)
}

// BuildCollection projects the merged set into a FeatureCollection for one
// locale. Records without an outline or a localized title are logged and
// skipped; records with neither activity nor an update stamp are omitted
// silently. Features are ordered by country code so repeated runs produce
// identical artifacts.
func BuildCollection(set dataset.Set, wm *WorldMap, reg *countries.Registry, locale string, log *zap.Logger) FeatureCollection {
	features := make([]Feature, 0, len(set))

	for code, entry := range set {
		geometry, ok := wm.shapes[code]
		if !ok {
			log.Error("country outline not found", zap.String("code", code))
			continue
		}
		name, ok := reg.Title(code, locale)
		if !ok {
			log.Info("country translation not found",
				zap.String("code", code), zap.String("locale", locale))
			continue
		}
		hasActivity := entry.Confirmed > 0 || entry.Deaths > 0 || entry.Recovered > 0
		if !hasActivity && entry.LatestUpdate == "" {
			continue
		}

		features = append(features, Feature{
			Type: "Feature",
			ID:   code,
			Properties: Properties{
				Name:         name,
				LatestUpdate: entry.LatestUpdate,
				Confirmed:    entry.Confirmed,
				Deaths:       entry.Deaths,
				Recovered:    entry.Recovered,
				Active:       entry.Active,
				Population:   entry.Population,
				Source:       entry.Source.ForLocale(locale),

				ConfirmedDensity: entry.ConfirmedDensity,
				DeathsDensity:    entry.DeathsDensity,
				RecoveredDensity: entry.RecoveredDensity,
				ActiveDensity:    entry.ActiveDensity,
				ConfirmedOpacity: entry.ConfirmedOpacity,
				DeathsOpacity:    entry.DeathsOpacity,
				RecoveredOpacity: entry.RecoveredOpacity,
				ActiveOpacity:    entry.ActiveOpacity,
			},
			Geometry: geometry,
		})
	}

	sort.Slice(features, func(i, j int) bool { return features[i].ID < features[j].ID })

	return FeatureCollection{Type: "FeatureCollection", Features: features}
}
