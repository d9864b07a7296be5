// Package llm is a thin client for a Gemini-compatible text-generation
// endpoint, used by the LLM keyword search strategy to mint fresh search
// terms instead of drawing from a static list.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/is0692vs/otodoki2/internal/catalog"
)

const (
	defaultModel       = "gemini-1.5-flash"
	endpointURLPattern = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"
)

// Config controls the endpoint, credential, and timeout for text generation.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	// BaseURL overrides the endpoint; tests point this at an httptest.Server.
	BaseURL string
}

// Client generates free text from a prompt via the configured model.
type Client struct {
	cfg  Config
	http *resty.Client
}

// New constructs a Client.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf(endpointURLPattern, cfg.Model)
	}
	return &Client{cfg: cfg, http: resty.New().SetTimeout(cfg.Timeout)}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate sends prompt to the model and returns the first candidate's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", errors.New("llm: missing API key")
	}

	req := generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}}
	var resp generateResponse
	r, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.cfg.APIKey).
		SetBody(req).
		SetResult(&resp).
		Post(c.cfg.BaseURL)
	if err != nil {
		return "", &catalog.TransientFetchError{Err: err}
	}
	if r.IsError() {
		if classified := catalog.ClassifyStatus(r.StatusCode(), r.String()); classified != nil {
			return "", classified
		}
		return "", fmt.Errorf("llm: generation request failed with status %d", r.StatusCode())
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("llm: empty generation response")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
