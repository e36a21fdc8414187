package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeConfig holds Stripe credentials. Without SecretKey only webhook
// verification works; link creation fails with ErrMissingAPIKey.
type StripeConfig struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
}

// StripeProvider implements BillingProvider on Stripe Checkout and the
// Stripe billing portal.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
	tolerance     time.Duration
}

func NewStripeProvider(cfg StripeConfig) *StripeProvider {
	p := &StripeProvider{webhookSecret: cfg.WebhookSecret, tolerance: webhook.DefaultTolerance}
	if cfg.SecretKey != "" {
		p.api = &client.API{}
		p.api.Init(cfg.SecretKey, nil)
	}
	return p
}

func (p *StripeProvider) Name() string            { return "stripe" }
func (p *StripeProvider) SignatureHeader() string { return "Stripe-Signature" }

func (p *StripeProvider) ParseWebhook(_ context.Context, payload []byte, signature string) (*Event, error) {
	if signature == "" || p.webhookSecret == "" {
		return nil, ErrInvalidSignature
	}

	evt, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret, webhook.ConstructEventOptions{
		Tolerance:                p.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	switch {
	case errors.Is(err, webhook.ErrNotSigned),
		errors.Is(err, webhook.ErrInvalidHeader),
		errors.Is(err, webhook.ErrNoValidSignature),
		errors.Is(err, webhook.ErrTooOld):
		return nil, errors.Join(ErrInvalidSignature, err)
	case err != nil:
		return nil, errors.Join(ErrMalformedPayload, err)
	}

	event := &Event{
		ID:            evt.ID,
		Type:          EventIgnored,
		ProviderEvent: string(evt.Type),
		OccurredAt:    time.Unix(evt.Created, 0).UTC(),
	}
	if evt.Data == nil {
		return event, nil
	}
	raw := evt.Data.Raw

	switch evt.Type {
	case "checkout.session.completed":
		var s struct {
			Customer        stripeRef `json:"customer"`
			Subscription    stripeRef `json:"subscription"`
			CustomerEmail   string    `json:"customer_email"`
			CustomerDetails *struct {
				Email string `json:"email"`
			} `json:"customer_details"`
		}
		if err := decodeObject(raw, &s); err != nil {
			return nil, err
		}
		event.Type = EventCheckoutCompleted
		event.CustomerID = string(s.Customer)
		event.SubscriptionID = string(s.Subscription)
		event.Email = s.CustomerEmail
		if s.CustomerDetails != nil && s.CustomerDetails.Email != "" {
			event.Email = s.CustomerDetails.Email
		}

	case "customer.subscription.updated", "customer.subscription.deleted":
		var s struct {
			ID       string    `json:"id"`
			Status   string    `json:"status"`
			Customer stripeRef `json:"customer"`
		}
		if err := decodeObject(raw, &s); err != nil {
			return nil, err
		}
		event.Type = EventSubscriptionUpdated
		if evt.Type == "customer.subscription.deleted" {
			event.Type = EventSubscriptionDeleted
		}
		event.SubscriptionID = s.ID
		event.Status = s.Status
		event.CustomerID = string(s.Customer)

	case "invoice.payment_failed":
		var inv struct {
			Customer     stripeRef `json:"customer"`
			Subscription stripeRef `json:"subscription"`
			Parent       *struct {
				SubscriptionDetails *struct {
					Subscription stripeRef `json:"subscription"`
				} `json:"subscription_details"`
			} `json:"parent"`
		}
		if err := decodeObject(raw, &inv); err != nil {
			return nil, err
		}
		event.Type = EventInvoicePaymentFailed
		event.CustomerID = string(inv.Customer)
		event.SubscriptionID = string(inv.Subscription)
		if event.SubscriptionID == "" && inv.Parent != nil && inv.Parent.SubscriptionDetails != nil {
			event.SubscriptionID = string(inv.Parent.SubscriptionDetails.Subscription)
		}
	}

	return event, nil
}

func (p *StripeProvider) CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error) {
	if p.api == nil {
		return nil, ErrMissingAPIKey
	}
	if req.PriceID == "" {
		return nil, ErrMissingPriceID
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(req.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.UserID),
	}
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	params.Context = ctx

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, errors.Join(ErrProvider, fmt.Errorf("create stripe checkout session: %w", err))
	}
	if sess.URL == "" {
		return nil, ErrNoCheckoutURL
	}
	return &CheckoutLink{URL: sess.URL, SessionID: sess.ID, ExpiresAt: time.Unix(sess.ExpiresAt, 0).UTC()}, nil
}

func (p *StripeProvider) CreatePortalLink(ctx context.Context, customerID, returnURL string) (*PortalLink, error) {
	if p.api == nil {
		return nil, ErrMissingAPIKey
	}
	if customerID == "" {
		return nil, ErrNoBillingCustomer
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := p.api.BillingPortalSessions.New(params)
	if err != nil {
		return nil, errors.Join(ErrProvider, fmt.Errorf("create stripe portal session: %w", err))
	}
	if sess.URL == "" {
		return nil, ErrNoPortalURL
	}
	return &PortalLink{URL: sess.URL}, nil
}

// stripeRef is an ID field Stripe sends either as a string or, when
// expanded, as an object with an "id".
type stripeRef string

func (r *stripeRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*r = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = stripeRef(strings.TrimSpace(s))
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*r = stripeRef(obj.ID)
	return nil
}

func decodeObject(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Join(ErrMalformedPayload, err)
	}
	return nil
}
