// Package countries resolves the many country naming standards used by
// upstream feeds into ISO-A3 codes with localized titles.
package countries

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Registry indexes the country list sheet both ways: code to localized
// titles, and canonical English title to code.
type Registry struct {
	titles map[string]map[string]string // code -> locale -> title
	codes  map[string]string            // canonical English title -> code
}

// Resolve maps a source-specific country name to its ISO-A3 code.
// The name is normalized through the alias table first.
func (r *Registry) Resolve(name string) (string, bool) {
	code, ok := r.codes[Canonical(name)]
	return code, ok
}

// Has reports whether the registry knows the given ISO-A3 code.
func (r *Registry) Has(code string) bool {
	_, ok := r.titles[code]
	return ok
}

// Titles returns the localized titles for a code. The returned map is shared;
// callers must not mutate it.
func (r *Registry) Titles(code string) map[string]string {
	return r.titles[code]
}

// Title returns the title of a country in the given locale.
func (r *Registry) Title(code, locale string) (string, bool) {
	title, ok := r.titles[code][locale]
	return title, ok
}

// Len returns the number of countries in the registry.
func (r *Registry) Len() int {
	return len(r.titles)
}

// ParseRegistry reads the country list CSV. Rows are
// `code,english_title,russian_title` with a single header row.
func ParseRegistry(reader io.Reader) (*Registry, error) {
	cr := csv.NewReader(reader)
	cr.FieldsPerRecord = -1

	reg := &Registry{
		titles: make(map[string]map[string]string),
		codes:  make(map[string]string),
	}

	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read country list row %d: %w", line, err)
		}
		line++
		if line == 1 || len(row) < 3 {
			continue
		}

		code := strings.TrimSpace(row[0])
		if code == "" {
			continue
		}
		reg.titles[code] = map[string]string{
			"en": row[1],
			"ru": row[2],
		}
		reg.codes[row[1]] = code
	}

	if len(reg.titles) == 0 {
		return nil, fmt.Errorf("country list is empty")
	}
	return reg, nil
}

// Client fetches the published country list sheet.
type Client struct {
	http *resty.Client
	url  string
}

// NewClient builds a country list Client.
func NewClient(url string, timeout time.Duration, userAgent string) *Client {
	r := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)
	return &Client{http: r, url: url}
}

// Fetch downloads and parses the country list.
func (c *Client) Fetch(ctx context.Context) (*Registry, error) {
	resp, err := c.http.R().SetContext(ctx).Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("fetch country list: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch country list: status %d", resp.StatusCode())
	}
	reg, err := ParseRegistry(strings.NewReader(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("parse country list: %w", err)
	}
	return reg, nil
}
