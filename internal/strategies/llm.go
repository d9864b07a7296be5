package strategies

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// generator is the subset of *llm.Client this strategy depends on.
type generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// llmPrompt asks the model for a short burst of diverse Japanese/English
// music search keywords, comma-separated, matching the source's prompt
// shape.
const llmPrompt = `あなたは音楽キュレーターです。日本語または英語で、音楽検索に使える多様なキーワードを5個、カンマ区切りで出力してください。説明は不要です。`

const defaultLLMMinInterval = 2 * time.Second

// LLMKeyword asks a language model to mint fresh search keywords, throttled
// to at most one call per minInterval. A call arriving sooner than that
// blocks until the interval has elapsed rather than failing, per the rate
// limit's "sleep until due" semantics.
type LLMKeyword struct {
	client      generator
	minInterval time.Duration

	mu       sync.Mutex
	lastCall time.Time
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewLLMKeyword constructs an LLMKeyword strategy. minInterval<=0 falls back
// to 2s.
func NewLLMKeyword(client generator, minInterval time.Duration) *LLMKeyword {
	if minInterval <= 0 {
		minInterval = defaultLLMMinInterval
	}
	return &LLMKeyword{
		client:      client,
		minInterval: minInterval,
		now:         time.Now,
		sleep:       ctxSleep,
	}
}

func (s *LLMKeyword) GenerateParams(ctx context.Context) (Params, error) {
	if wait := s.waitDue(); wait > 0 {
		if err := s.sleep(ctx, wait); err != nil {
			return Params{}, err
		}
	}

	s.mu.Lock()
	s.lastCall = s.now()
	s.mu.Unlock()

	text, err := s.client.Generate(ctx, llmPrompt)
	if err != nil {
		return Params{}, err
	}

	terms := splitKeywords(text)
	if len(terms) == 0 {
		return Params{}, errors.New("strategies: llm returned no usable keywords")
	}

	p := Params{Terms: terms}
	p.Normalize()
	return p, nil
}

// waitDue returns how long the caller must wait before the next call is
// allowed, or 0 if it may proceed immediately.
func (s *LLMKeyword) waitDue() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastCall.IsZero() {
		return 0
	}
	elapsed := s.now().Sub(s.lastCall)
	if elapsed >= s.minInterval {
		return 0
	}
	return s.minInterval - elapsed
}

func ctxSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// splitKeywords splits on both the ASCII comma and the full-width comma
// (、/，) the model tends to emit in Japanese responses, trimming whitespace
// and dropping empties.
func splitKeywords(text string) []string {
	text = strings.ReplaceAll(text, "、", ",")
	text = strings.ReplaceAll(text, "，", ",")
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
