package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
)

// PaddleConfig holds Paddle Billing credentials. Environment is
// "production" or "sandbox".
type PaddleConfig struct {
	APIKey        string `env:"PADDLE_API_KEY"`
	WebhookSecret string `env:"PADDLE_WEBHOOK_SECRET"`
	Environment   string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
}

// PaddleProvider implements BillingProvider on Paddle Billing. Checkout
// transactions carry the user's email in custom_data so the completion
// webhook can be matched back to a user.
type PaddleProvider struct {
	client   *paddle.SDK
	verifier *paddle.WebhookVerifier
}

// NewPaddleProvider fails only on an unknown environment or a client that
// cannot be built. Missing keys surface later as errors from the calls that
// need them.
func NewPaddleProvider(cfg PaddleConfig) (*PaddleProvider, error) {
	p := &PaddleProvider{}
	if cfg.WebhookSecret != "" {
		p.verifier = paddle.NewWebhookVerifier(cfg.WebhookSecret)
	}
	if cfg.APIKey == "" {
		return p, nil
	}

	var err error
	switch strings.ToLower(cfg.Environment) {
	case "sandbox":
		p.client, err = paddle.NewSandbox(cfg.APIKey)
	case "production", "":
		p.client, err = paddle.New(cfg.APIKey)
	default:
		return nil, fmt.Errorf("%w: paddle environment %q", ErrUnknownProvider, cfg.Environment)
	}
	if err != nil {
		return nil, fmt.Errorf("create paddle client: %w", err)
	}
	return p, nil
}

func (p *PaddleProvider) Name() string            { return "paddle" }
func (p *PaddleProvider) SignatureHeader() string { return "Paddle-Signature" }

func (p *PaddleProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*Event, error) {
	if signature == "" || p.verifier == nil {
		return nil, ErrInvalidSignature
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/webhook", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build verification request: %w", err)
	}
	req.Header.Set(p.SignatureHeader(), signature)

	valid, err := p.verifier.Verify(req)
	if err != nil {
		return nil, errors.Join(ErrInvalidSignature, err)
	}
	if !valid {
		return nil, ErrInvalidSignature
	}

	var n struct {
		EventID    string `json:"event_id"`
		EventType  string `json:"event_type"`
		OccurredAt string `json:"occurred_at"`
		Data       struct {
			ID             string         `json:"id"`
			Status         string         `json:"status"`
			CustomerID     string         `json:"customer_id"`
			SubscriptionID string         `json:"subscription_id"`
			CustomData     map[string]any `json:"custom_data"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, errors.Join(ErrMalformedPayload, err)
	}

	event := &Event{
		ID:            n.EventID,
		Type:          EventIgnored,
		ProviderEvent: n.EventType,
		CustomerID:    n.Data.CustomerID,
		Status:        n.Data.Status,
	}
	if ts, err := time.Parse(time.RFC3339Nano, n.OccurredAt); err == nil {
		event.OccurredAt = ts.UTC()
	}

	switch n.EventType {
	case "transaction.completed":
		event.Type = EventCheckoutCompleted
		event.SubscriptionID = n.Data.SubscriptionID
		if email, ok := n.Data.CustomData["email"].(string); ok {
			event.Email = email
		}
	case "transaction.payment_failed":
		event.Type = EventInvoicePaymentFailed
		event.SubscriptionID = n.Data.SubscriptionID
	case "subscription.updated":
		event.Type = EventSubscriptionUpdated
		event.SubscriptionID = n.Data.ID
	case "subscription.canceled":
		event.Type = EventSubscriptionDeleted
		event.SubscriptionID = n.Data.ID
	}
	return event, nil
}

func (p *PaddleProvider) CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error) {
	if p.client == nil {
		return nil, ErrMissingAPIKey
	}
	if req.PriceID == "" {
		return nil, ErrMissingPriceID
	}

	item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
		PriceID:  req.PriceID,
		Quantity: 1,
	})
	txReq := &paddle.CreateTransactionRequest{
		Items: []paddle.CreateTransactionItems{*item},
		CustomData: paddle.CustomData{
			"user_id": req.UserID,
			"email":   req.Email,
		},
	}
	if req.SuccessURL != "" {
		txReq.Checkout = &paddle.TransactionCheckout{URL: paddle.PtrTo(req.SuccessURL)}
	}

	tx, err := p.client.TransactionsClient.CreateTransaction(ctx, txReq)
	if err != nil {
		return nil, errors.Join(ErrProvider, fmt.Errorf("create paddle transaction: %w", err))
	}
	if tx.Checkout == nil || tx.Checkout.URL == nil || *tx.Checkout.URL == "" {
		return nil, ErrNoCheckoutURL
	}
	return &CheckoutLink{URL: *tx.Checkout.URL, SessionID: tx.ID}, nil
}

// CreatePortalLink ignores returnURL; Paddle portal sessions have no
// return target.
func (p *PaddleProvider) CreatePortalLink(ctx context.Context, customerID, _ string) (*PortalLink, error) {
	if p.client == nil {
		return nil, ErrMissingAPIKey
	}
	if customerID == "" {
		return nil, ErrNoBillingCustomer
	}

	sess, err := p.client.CustomerPortalSessionsClient.CreateCustomerPortalSession(ctx, &paddle.CreateCustomerPortalSessionRequest{
		CustomerID: customerID,
	})
	if err != nil {
		return nil, errors.Join(ErrProvider, fmt.Errorf("create paddle portal session: %w", err))
	}
	if sess.URLs.General.Overview == "" {
		return nil, ErrNoPortalURL
	}
	return &PortalLink{URL: sess.URLs.General.Overview}, nil
}
