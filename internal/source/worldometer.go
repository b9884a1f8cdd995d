package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/outbreakmap/covid-geo-etl/internal/countries"
)

const worldometerLabel = "Worldometer"

// countryTableSelector matches the rows of the live counters table on the
// Worldometer coronavirus page.
const countryTableSelector = "table#main_table_countries_today tbody tr"

// Worldometer scrapes the per-country counters table from the Worldometer
// website. The table carries no update timestamp of its own, so rows are
// stamped with the scrape time.
type Worldometer struct {
	url       string
	userAgent string
	timeout   time.Duration
	reg       *countries.Registry
	clock     clockwork.Clock
	log       *zap.Logger
}

// NewWorldometer builds the Worldometer scraper.
func NewWorldometer(url string, timeout time.Duration, userAgent string, reg *countries.Registry, clock clockwork.Clock, log *zap.Logger) *Worldometer {
	return &Worldometer{
		url:       url,
		userAgent: userAgent,
		timeout:   timeout,
		reg:       reg,
		clock:     clock,
		log:       log,
	}
}

// Fetch scrapes the counters table and returns records keyed by ISO-A3 code.
// Cell layout: 1 country, 2 total cases, 4 total deaths, 6 total recovered.
func (w *Worldometer) Fetch(ctx context.Context) (map[string]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scrape worldometer: %w", err)
	}

	stamp := formatUpdateTime(w.clock.Now())
	records := make(map[string]Record)

	c := colly.NewCollector(colly.UserAgent(w.userAgent))
	c.SetRequestTimeout(w.timeout)

	c.OnHTML(countryTableSelector, func(e *colly.HTMLElement) {
		cells := e.DOM.Find("td")
		if cells.Length() < 7 {
			return
		}
		rec, ok := buildRecord(w.reg, w.log, cellText(cells, 1),
			ParseCount(cellText(cells, 2)),
			ParseCount(cellText(cells, 4)),
			ParseCount(cellText(cells, 6)),
			stamp, Label(worldometerLabel))
		if ok {
			records[rec.Code] = rec
		}
	})

	var scrapeErr error
	c.OnError(func(_ *colly.Response, err error) {
		scrapeErr = err
	})

	if err := c.Visit(w.url); err != nil {
		return nil, fmt.Errorf("scrape worldometer: %w", err)
	}
	c.Wait()
	if scrapeErr != nil {
		return nil, fmt.Errorf("scrape worldometer: %w", scrapeErr)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("scrape worldometer: counters table not found or empty")
	}
	return records, nil
}

func cellText(cells *goquery.Selection, i int) string {
	return strings.TrimSpace(cells.Eq(i).Text())
}
