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

// Population fetches the 2020 population estimates sheet (UN data), published
// as CSV rows of `country title, population`.
type Population struct {
	http *resty.Client
	url  string
	reg  *countries.Registry
	log  *zap.Logger
}

// NewPopulation builds the population sheet client.
func NewPopulation(url string, timeout time.Duration, userAgent string, reg *countries.Registry, log *zap.Logger) *Population {
	r := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)
	return &Population{http: r, url: url, reg: reg, log: log}
}

// Fetch downloads and parses the sheet, returning population keyed by ISO-A3
// code. Titles the registry cannot resolve are counted and logged once; the
// UN list includes regional aggregates that never match.
func (p *Population) Fetch(ctx context.Context) (map[string]int, error) {
	resp, err := p.http.R().SetContext(ctx).Get(p.url)
	if err != nil {
		return nil, fmt.Errorf("fetch population sheet: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch population sheet: status %d", resp.StatusCode())
	}

	cr := csv.NewReader(strings.NewReader(resp.String()))
	cr.FieldsPerRecord = -1

	population := make(map[string]int)
	unresolved := 0
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read population sheet row %d: %w", line, err)
		}
		line++
		if len(row) < 2 {
			continue
		}

		code, ok := p.reg.Resolve(row[0])
		if !ok {
			unresolved++
			continue
		}
		if n := ParseCount(row[1]); n > 0 {
			population[code] = n
		}
	}

	if len(population) == 0 {
		return nil, fmt.Errorf("population sheet: no resolvable rows")
	}
	p.log.Info("population sheet parsed",
		zap.Int("matched", len(population)),
		zap.Int("unresolved", unresolved))
	return population, nil
}
