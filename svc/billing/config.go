package billing

import (
	"fmt"
	"strings"
	"time"
)

// Config selects the payment provider and the billing rules around it.
// Only the section for the selected provider needs to be filled.
type Config struct {
	Provider   string        `env:"BILLING_PROVIDER" envDefault:"stripe"`
	Timezone   string        `env:"BILLING_TIMEZONE" envDefault:"UTC"`
	ProPriceID string        `env:"BILLING_PRO_PRICE_ID"`
	DedupeTTL  time.Duration `env:"BILLING_DEDUPE_TTL" envDefault:"72h"`

	Stripe StripeConfig
	Paddle PaddleConfig
}

// Location returns the time zone that bounds monthly counters.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("billing timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// NewProvider builds the configured payment provider.
func NewProvider(cfg Config) (BillingProvider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "stripe", "":
		return NewStripeProvider(cfg.Stripe), nil
	case "paddle":
		return NewPaddleProvider(cfg.Paddle)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
