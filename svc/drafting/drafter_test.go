package drafting_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipfeed/shipfeed/pkg/metrics"
	"github.com/shipfeed/shipfeed/svc/drafting"
)

func TestFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		changes string
		bullets string
	}{
		{name: "plain lines", changes: "dark mode\nfaster sync", bullets: "- dark mode\n- faster sync"},
		{name: "markers stripped once", changes: "- dark mode\n* faster sync\n-- odd", bullets: "- dark mode\n- faster sync\n- - odd"},
		{name: "blank lines dropped", changes: "\n  one  \n\n\r\ntwo\n", bullets: "- one\n- two"},
		{name: "marker without space", changes: "-tight", bullets: "- tight"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			want := "## Highlights\n\n" + tt.bullets +
				"\n\n## Notes\n\n- Performance and stability improvements\n- Internal tooling refinements"
			assert.Equal(t, want, drafting.Fallback(tt.changes))
		})
	}
}

func TestProfileByName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		model string
		temp  float32
		max   int
	}{
		{name: "cost", model: "qwen3-4b", temp: 0.35, max: 700},
		{name: "Balanced", model: "llama-3.3-70b", temp: 0.3, max: 900},
		{name: "quality", model: "qwen3-235b-a22b-instruct-2507", temp: 0.25, max: 1200},
		{name: "turbo", model: "qwen3-4b", temp: 0.35, max: 700},
		{name: "", model: "qwen3-4b", temp: 0.35, max: 700},
	}
	for _, tt := range tests {
		p := drafting.ProfileByName(tt.name)
		assert.Equal(t, tt.model, p.Model, tt.name)
		assert.Equal(t, tt.temp, p.Temperature, tt.name)
		assert.Equal(t, tt.max, p.MaxTokens, tt.name)
	}
}

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func chatServer(t *testing.T, status int, content string, got *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"upstream unavailable","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1767225600,
			"model":   "qwen3-4b",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDrafter_Provider(t *testing.T) {
	t.Parallel()
	var req chatRequest
	srv := chatServer(t, http.StatusOK, "  ## Highlights\n\n- Dark mode  ", &req)
	m := metrics.New()

	d := drafting.New(drafting.Config{APIKey: "test-key", BaseURL: srv.URL, Profile: "balanced"}, drafting.WithMetrics(m))
	require.True(t, d.Enabled())

	draft, err := d.Draft(context.Background(), "- dark mode")
	require.NoError(t, err)
	assert.Equal(t, drafting.SourceProvider, draft.Source)
	assert.Equal(t, "## Highlights\n\n- Dark mode", draft.Markdown)

	assert.Equal(t, "llama-3.3-70b", req.Model)
	assert.InDelta(t, 0.3, req.Temperature, 0.0001)
	assert.Equal(t, 900, req.MaxTokens)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "Highlights, Improvements, Fixes")
	assert.Contains(t, req.Messages[1].Content, "- dark mode")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DraftResults.WithLabelValues("provider")))
}

func TestDrafter_FallsBack(t *testing.T) {
	t.Parallel()
	changes := "- dark mode\n- faster sync"

	tests := []struct {
		name string
		cfg  func(t *testing.T) drafting.Config
	}{
		{
			name: "no api key",
			cfg:  func(*testing.T) drafting.Config { return drafting.Config{} },
		},
		{
			name: "provider error status",
			cfg: func(t *testing.T) drafting.Config {
				return drafting.Config{APIKey: "test-key", BaseURL: chatServer(t, http.StatusBadGateway, "", nil).URL}
			},
		},
		{
			name: "empty content",
			cfg: func(t *testing.T) drafting.Config {
				return drafting.Config{APIKey: "test-key", BaseURL: chatServer(t, http.StatusOK, "   ", nil).URL}
			},
		},
		{
			name: "timeout",
			cfg: func(t *testing.T) drafting.Config {
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					select {
					case <-r.Context().Done():
					case <-time.After(2 * time.Second):
					}
				}))
				t.Cleanup(srv.Close)
				return drafting.Config{APIKey: "test-key", BaseURL: srv.URL, Timeout: 50 * time.Millisecond}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := metrics.New()
			d := drafting.New(tt.cfg(t), drafting.WithMetrics(m))

			draft, err := d.Draft(context.Background(), changes)
			require.NoError(t, err)
			assert.Equal(t, drafting.SourceFallback, draft.Source)
			assert.Equal(t, drafting.Fallback(changes), draft.Markdown)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.DraftResults.WithLabelValues("fallback")))
		})
	}
}

func TestDrafter_EmptyChanges(t *testing.T) {
	t.Parallel()
	_, err := drafting.New(drafting.Config{}).Draft(context.Background(), " \n\t ")
	assert.ErrorIs(t, err, drafting.ErrEmptyChanges)
}
