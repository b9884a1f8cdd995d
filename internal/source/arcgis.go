package source

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/outbreakmap/covid-geo-etl/internal/countries"
)

// csseLabel attributes records originating from either CSSE endpoint
// (the ArcGIS feature service and the GitHub daily reports).
const csseLabel = "JHU CSSE"

// ArcGIS fetches case counts from the CSSE at JHU ArcGIS feature service.
// This is the primary feed: a run aborts when it cannot be read.
type ArcGIS struct {
	http *resty.Client
	url  string
	reg  *countries.Registry
	log  *zap.Logger
}

// NewArcGIS builds the ArcGIS feed client.
func NewArcGIS(url string, timeout time.Duration, userAgent string, reg *countries.Registry, log *zap.Logger) *ArcGIS {
	r := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)
	return &ArcGIS{http: r, url: url, reg: reg, log: log}
}

type arcgisResponse struct {
	Features []struct {
		Attributes struct {
			CountryRegion string `json:"Country_Region"`
			Confirmed     int    `json:"Confirmed"`
			Deaths        int    `json:"Deaths"`
			Recovered     int    `json:"Recovered"`
			LastUpdate    int64  `json:"Last_Update"`
		} `json:"attributes"`
	} `json:"features"`
}

// Fetch queries the feature service and returns records keyed by ISO-A3 code.
func (a *ArcGIS) Fetch(ctx context.Context) (map[string]Record, error) {
	resp, err := a.http.R().SetContext(ctx).Get(a.url)
	if err != nil {
		return nil, fmt.Errorf("fetch arcgis feed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch arcgis feed: status %d", resp.StatusCode())
	}

	// The service serves JSON with a text/plain content type, so the body is
	// decoded manually rather than through the client.
	var payload arcgisResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("decode arcgis feed: %w", err)
	}
	if len(payload.Features) == 0 {
		return nil, fmt.Errorf("arcgis feed: no features in response")
	}

	records := make(map[string]Record, len(payload.Features))
	for _, feature := range payload.Features {
		attrs := feature.Attributes
		updated := formatUpdateTime(time.UnixMilli(attrs.LastUpdate))
		rec, ok := buildRecord(a.reg, a.log, attrs.CountryRegion,
			attrs.Confirmed, attrs.Deaths, attrs.Recovered, updated, Label(csseLabel))
		if ok {
			records[rec.Code] = rec
		}
	}
	return records, nil
}
