package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/outbreakmap/covid-geo-etl/internal/countries"
)

// Manual fetches the manually curated override sheet. The sheet is published
// as CSV with rows:
//
//	country title, confirmed, deaths, recovered, source (ru), latest update, source (en)
//
// Entries here win over every automated feed.
type Manual struct {
	http *resty.Client
	url  string
	reg  *countries.Registry
	log  *zap.Logger
}

// NewManual builds the override sheet client.
func NewManual(url string, timeout time.Duration, userAgent string, reg *countries.Registry, log *zap.Logger) *Manual {
	r := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)
	return &Manual{http: r, url: url, reg: reg, log: log}
}

// Fetch downloads and parses the sheet, returning records keyed by ISO-A3 code.
func (m *Manual) Fetch(ctx context.Context) (map[string]Record, error) {
	resp, err := m.http.R().SetContext(ctx).Get(m.url)
	if err != nil {
		return nil, fmt.Errorf("fetch manual sheet: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch manual sheet: status %d", resp.StatusCode())
	}

	cr := csv.NewReader(strings.NewReader(resp.String()))
	cr.FieldsPerRecord = -1

	records := make(map[string]Record)
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read manual sheet row %d: %w", line, err)
		}
		line++
		if line == 1 {
			continue // header
		}
		if len(row) < 7 {
			m.log.Warn("manual sheet row too short", zap.Int("row", line), zap.Int("fields", len(row)))
			continue
		}

		src := Attribution{"ru": row[4], "en": row[6]}
		rec, ok := buildRecord(m.reg, m.log, row[0],
			ParseCount(row[1]), ParseCount(row[2]), ParseCount(row[3]),
			row[5], src)
		if ok {
			records[rec.Code] = rec
		}
	}
	return records, nil
}
