package drafting

import (
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.venice.ai/api/v1"

type Config struct {
	APIKey  string        `env:"DRAFT_API_KEY"`
	BaseURL string        `env:"DRAFT_BASE_URL" envDefault:"https://api.venice.ai/api/v1"`
	Profile string        `env:"DRAFT_MODEL_PROFILE" envDefault:"cost"`
	Timeout time.Duration `env:"DRAFT_TIMEOUT" envDefault:"30s"`
}

// Profile trades draft quality against cost.
type Profile struct {
	Name        string
	Model       string
	Temperature float32
	MaxTokens   int
}

var profiles = map[string]Profile{
	"cost":     {Name: "cost", Model: "qwen3-4b", Temperature: 0.35, MaxTokens: 700},
	"balanced": {Name: "balanced", Model: "llama-3.3-70b", Temperature: 0.3, MaxTokens: 900},
	"quality":  {Name: "quality", Model: "qwen3-235b-a22b-instruct-2507", Temperature: 0.25, MaxTokens: 1200},
}

// ProfileByName is case-insensitive. Unknown names get the cost profile.
func ProfileByName(name string) Profile {
	if p, ok := profiles[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p
	}
	return profiles["cost"]
}
