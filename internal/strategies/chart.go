package strategies

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/is0692vs/otodoki2/internal/catalog"
)

// chartFeedURLTemplate is the Apple Marketing Tools "most played" feed,
// parameterized by country and result limit.
const chartFeedURLTemplate = "https://rss.applemarketingtools.com/api/v2/%s/music/most-played/%d/songs.json"

const defaultChartLimit = 50

// ErrNoChartTerms indicates the chart feed returned zero usable track names.
var ErrNoChartTerms = errors.New("strategies: chart feed produced no terms")

type chartFeedEnvelope struct {
	Feed struct {
		Results []struct {
			Name       string `json:"name"`
			ArtistName string `json:"artistName"`
		} `json:"results"`
	} `json:"feed"`
}

// ChartKeyword fetches the current most-played feed for a country and
// extracts artist/title tokens as search terms, deduplicating while
// preserving feed order.
type ChartKeyword struct {
	country string
	limit   int
	http    *resty.Client
	// urlTemplate overrides chartFeedURLTemplate; tests point this at an
	// httptest.Server with %s/%d placeholders still applied.
	urlTemplate string
}

// NewChartKeyword constructs a ChartKeyword strategy. An empty country falls
// back to "jp"; limit<=0 falls back to 50.
func NewChartKeyword(country string, limit int, timeout time.Duration) *ChartKeyword {
	if country == "" {
		country = "jp"
	}
	if limit <= 0 {
		limit = defaultChartLimit
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ChartKeyword{
		country:     country,
		limit:       limit,
		http:        resty.New().SetTimeout(timeout),
		urlTemplate: chartFeedURLTemplate,
	}
}

func (s *ChartKeyword) GenerateParams(ctx context.Context) (Params, error) {
	url := fmt.Sprintf(s.urlTemplate, s.country, s.limit)

	var envelope chartFeedEnvelope
	resp, err := s.http.R().SetContext(ctx).SetResult(&envelope).Get(url)
	if err != nil {
		return Params{}, &catalog.TransientFetchError{Err: err}
	}
	if resp.IsError() {
		if classified := catalog.ClassifyStatus(resp.StatusCode(), resp.String()); classified != nil {
			return Params{}, classified
		}
		return Params{}, &catalog.TransientFetchError{StatusCode: resp.StatusCode(), Err: errors.New("chart feed error")}
	}

	seen := make(map[string]struct{}, len(envelope.Feed.Results)*2)
	terms := make([]string, 0, len(envelope.Feed.Results)*2)
	addTerm := func(term string) {
		if term == "" {
			return
		}
		if _, dup := seen[term]; dup {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	for _, r := range envelope.Feed.Results {
		addTerm(r.ArtistName)
		addTerm(r.Name)
	}

	if len(terms) == 0 {
		return Params{}, ErrNoChartTerms
	}

	p := Params{Terms: terms}
	p.Normalize()
	return p, nil
}
