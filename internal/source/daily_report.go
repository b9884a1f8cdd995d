package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/outbreakmap/covid-geo-etl/internal/countries"
)

// DailyReport fetches the previous day's report CSV from the CSSE GitHub
// repository. CSSE publishes one file per day, named MM-DD-YYYY.csv, and the
// current day's file usually does not exist yet; yesterday's is always asked
// for, which is why the clock is injected.
type DailyReport struct {
	http    *resty.Client
	baseURL string
	reg     *countries.Registry
	clock   clockwork.Clock
	log     *zap.Logger
}

// NewDailyReport builds the daily-report feed client.
func NewDailyReport(baseURL string, timeout time.Duration, userAgent string, reg *countries.Registry, clock clockwork.Clock, log *zap.Logger) *DailyReport {
	r := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)
	return &DailyReport{
		http:    r,
		baseURL: strings.TrimRight(baseURL, "/"),
		reg:     reg,
		clock:   clock,
		log:     log,
	}
}

// reportURL derives the CSV URL for yesterday relative to the injected clock.
func (d *DailyReport) reportURL() string {
	yesterday := d.clock.Now().UTC().AddDate(0, 0, -1)
	return fmt.Sprintf("%s/%s.csv", d.baseURL, yesterday.Format("01-02-2006"))
}

// Fetch downloads and parses the report, returning records keyed by ISO-A3
// code. Columns of interest: 3 country, 4 last update, 7 confirmed, 8 deaths,
// 9 recovered.
func (d *DailyReport) Fetch(ctx context.Context) (map[string]Record, error) {
	url := d.reportURL()
	resp, err := d.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch daily report %s: %w", url, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch daily report %s: status %d", url, resp.StatusCode())
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
			return nil, fmt.Errorf("read daily report row %d: %w", line, err)
		}
		line++
		if line == 1 {
			continue // header
		}
		if len(row) < 10 {
			d.log.Warn("daily report row too short", zap.Int("row", line), zap.Int("fields", len(row)))
			continue
		}

		rec, ok := buildRecord(d.reg, d.log, row[3],
			ParseCount(row[7]), ParseCount(row[8]), ParseCount(row[9]),
			row[4], Label(csseLabel))
		if ok {
			records[rec.Code] = rec
		}
	}
	return records, nil
}
