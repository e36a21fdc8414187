package billing

import (
	"context"
	"time"
)

// BillingProvider is the payment provider boundary. ParseWebhook must
// verify the signature before reading the payload.
type BillingProvider interface {
	Name() string
	SignatureHeader() string
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*Event, error)
	CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error)
	CreatePortalLink(ctx context.Context, customerID, returnURL string) (*PortalLink, error)
}

type CheckoutRequest struct {
	PriceID    string
	UserID     string
	Email      string
	SuccessURL string
	CancelURL  string
}

type CheckoutLink struct {
	URL       string    `json:"url"`
	SessionID string    `json:"sessionId,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

type PortalLink struct {
	URL string `json:"url"`
}

// EventType is the provider-neutral kind of a webhook event.
type EventType string

const (
	EventCheckoutCompleted    EventType = "checkout_completed"
	EventSubscriptionUpdated  EventType = "subscription_updated"
	EventSubscriptionDeleted  EventType = "subscription_deleted"
	EventInvoicePaymentFailed EventType = "invoice_payment_failed"
	EventIgnored              EventType = "ignored"
)

// Event is a verified webhook normalised across providers.
type Event struct {
	ID             string
	Type           EventType
	ProviderEvent  string
	OccurredAt     time.Time
	Email          string
	CustomerID     string
	SubscriptionID string
	Status         string
}
