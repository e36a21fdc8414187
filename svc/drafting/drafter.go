package drafting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/shipfeed/shipfeed/pkg/logger"
	"github.com/shipfeed/shipfeed/pkg/metrics"
)

type Source string

const (
	SourceProvider Source = "provider"
	SourceFallback Source = "fallback"
)

type Draft struct {
	Markdown string `json:"markdown"`
	Source   Source `json:"source"`
}

const systemPrompt = "You write concise product release notes in markdown with sections: " +
	"Highlights, Improvements, Fixes. Use crisp SaaS language."

type Drafter struct {
	client     *openai.Client
	httpClient *http.Client
	profile    Profile
	timeout    time.Duration
	metrics    *metrics.Metrics
	log        *slog.Logger
}

type Option func(*Drafter)

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Drafter) { d.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Drafter) {
		if l != nil {
			d.log = l
		}
	}
}

// WithHTTPClient replaces the client used for provider calls.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Drafter) {
		if c != nil {
			d.httpClient = c
		}
	}
}

// New builds a Drafter. Without an API key it only ever uses Fallback.
func New(cfg Config, opts ...Option) *Drafter {
	d := &Drafter{
		profile: ProfileByName(cfg.Profile),
		timeout: cfg.Timeout,
		log:     logger.Noop(),
	}
	if d.timeout <= 0 {
		d.timeout = 30 * time.Second
	}
	for _, opt := range opts {
		opt(d)
	}

	if cfg.APIKey != "" {
		oc := openai.DefaultConfig(cfg.APIKey)
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
		if oc.BaseURL == "" {
			oc.BaseURL = DefaultBaseURL
		}
		if d.httpClient != nil {
			oc.HTTPClient = d.httpClient
		}
		d.client = openai.NewClientWithConfig(oc)
	}
	return d
}

func (d *Drafter) Profile() Profile { return d.profile }

// Enabled reports whether a provider is configured.
func (d *Drafter) Enabled() bool { return d.client != nil }

// Draft returns ErrEmptyChanges for blank input. Any provider failure is
// logged and answered with Fallback.
func (d *Drafter) Draft(ctx context.Context, changes string) (Draft, error) {
	changes = strings.TrimSpace(changes)
	if changes == "" {
		return Draft{}, ErrEmptyChanges
	}

	start := time.Now()
	if d.client == nil {
		return d.fallback(changes, start), nil
	}

	markdown, err := d.complete(ctx, changes)
	if err != nil {
		d.log.WarnContext(ctx, "draft provider failed, using fallback",
			logger.Component("drafting"),
			slog.String("model", d.profile.Model),
			logger.Error(err),
		)
		return d.fallback(changes, start), nil
	}

	d.metrics.Draft(string(SourceProvider), time.Since(start))
	return Draft{Markdown: markdown, Source: SourceProvider}, nil
}

func (d *Drafter) fallback(changes string, start time.Time) Draft {
	d.metrics.Draft(string(SourceFallback), time.Since(start))
	return Draft{Markdown: Fallback(changes), Source: SourceFallback}
}

func (d *Drafter) complete(ctx context.Context, changes string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.profile.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Convert these changes into polished release notes:\n" + changes},
		},
		Temperature: d.profile.Temperature,
		MaxTokens:   d.profile.MaxTokens,
	})
	if err != nil {
		return "", errors.Join(ErrProviderFailed, fmt.Errorf("chat completion: %w", err))
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}
