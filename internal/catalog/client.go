// Package catalog is a stateless outbound client against the iTunes Search
// API (the "external music catalog"). It applies the default query
// parameters spec.md names, retries transient failures with exponential
// backoff, reports exhausted transient failures as a TransientFetchError
// (catalog/errors.go), and answers a non-retryable 4xx with an empty result.
package catalog

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/is0692vs/otodoki2/internal/models"
)

const defaultSearchURL = "https://itunes.apple.com/search"

// Params are the search parameters a strategy produces; Entity/Attribute are
// forwarded verbatim when set.
type Params struct {
	Term      string
	Entity    string
	Attribute string
}

// Config controls retry/backoff and the country/language defaults applied
// to every search.
type Config struct {
	Country     string
	Lang        string
	HTTPTimeout time.Duration
	RetryMax    int
	// BaseURL overrides the search endpoint; empty uses the real iTunes
	// Search API. Tests point this at an httptest.Server.
	BaseURL string
}

// Client is a thin, reusable wrapper around a resty client.
type Client struct {
	cfg  Config
	http *resty.Client
}

// New constructs a Client. A fresh resty.Client is created internally for
// each Client; transports are not shared across components.
func New(cfg Config) *Client {
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = 3
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 5 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultSearchURL
	}
	c := resty.New().SetTimeout(cfg.HTTPTimeout)
	return &Client{cfg: cfg, http: c}
}

// Search issues a GET against the catalog search endpoint. limit is clamped
// to 200. On 4xx it returns an empty slice (non-retryable, per spec);
// transient failures (timeout, 5xx) are retried up to cfg.RetryMax times
// with 0.5*2^attempt second backoff before the final error is returned.
func (c *Client) Search(ctx context.Context, params Params, limit int) ([]models.RawRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}

	query := map[string]string{
		"media":   "music",
		"country": c.cfg.Country,
		"lang":    c.cfg.Lang,
		"limit":   fmt.Sprintf("%d", limit),
	}
	if params.Term != "" {
		query["term"] = params.Term
	}
	if params.Entity != "" {
		query["entity"] = params.Entity
	}
	if params.Attribute != "" {
		query["attribute"] = params.Attribute
	}

	var result struct {
		Results []models.RawRecord `json:"results"`
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.RetryMax; attempt++ {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(query).
			SetResult(&result).
			Get(c.cfg.BaseURL)

		if err == nil && !resp.IsError() {
			return result.Results, nil
		}

		status := 0
		if resp != nil {
			status = resp.StatusCode()
		}
		if status == 0 {
			lastErr = &TransientFetchError{Err: err}
		} else if status >= 400 && status < 500 {
			// Non-retryable: the catalog rejected the request outright. Per
			// spec this yields an empty result set, not an error.
			return nil, nil
		} else {
			lastErr = &TransientFetchError{StatusCode: status, Err: fmt.Errorf("server error")}
		}

		if attempt == c.cfg.RetryMax {
			break
		}
		delay := time.Duration(0.5*math.Pow(2, float64(attempt))*1000) * time.Millisecond
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, lastErr
}
