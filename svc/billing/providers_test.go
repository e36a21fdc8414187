package billing_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/shipfeed/shipfeed/svc/billing"
)

const testWebhookSecret = "whsec_test_secret"

func stripeSign(t *testing.T, body string, secret string, at time.Time) ([]byte, string) {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(body),
		Secret:    secret,
		Timestamp: at,
	})
	return signed.Payload, signed.Header
}

func stripeEvent(eventType, object string) string {
	return fmt.Sprintf(`{"id":"evt_123","object":"event","type":%q,"created":1767225600,"api_version":"2020-08-27","data":{"object":%s}}`, eventType, object)
}

func TestStripeProvider_ParseWebhook(t *testing.T) {
	t.Parallel()
	p := billing.NewStripeProvider(billing.StripeConfig{WebhookSecret: testWebhookSecret})
	now := time.Now()

	tests := []struct {
		name string
		body string
		want billing.Event
	}{
		{
			name: "checkout prefers customer details email",
			body: stripeEvent("checkout.session.completed",
				`{"id":"cs_1","customer":"cus_1","subscription":"sub_1","customer_email":"old@example.com","customer_details":{"email":"buyer@example.com"}}`),
			want: billing.Event{Type: billing.EventCheckoutCompleted, Email: "buyer@example.com", CustomerID: "cus_1", SubscriptionID: "sub_1"},
		},
		{
			name: "checkout falls back to customer email",
			body: stripeEvent("checkout.session.completed",
				`{"id":"cs_1","customer":{"id":"cus_2"},"subscription":null,"customer_email":"buyer@example.com"}`),
			want: billing.Event{Type: billing.EventCheckoutCompleted, Email: "buyer@example.com", CustomerID: "cus_2"},
		},
		{
			name: "subscription updated",
			body: stripeEvent("customer.subscription.updated", `{"id":"sub_1","status":"past_due","customer":"cus_1"}`),
			want: billing.Event{Type: billing.EventSubscriptionUpdated, SubscriptionID: "sub_1", Status: "past_due", CustomerID: "cus_1"},
		},
		{
			name: "subscription deleted",
			body: stripeEvent("customer.subscription.deleted", `{"id":"sub_1","status":"canceled","customer":"cus_1"}`),
			want: billing.Event{Type: billing.EventSubscriptionDeleted, SubscriptionID: "sub_1", Status: "canceled", CustomerID: "cus_1"},
		},
		{
			name: "invoice failed with nested subscription",
			body: stripeEvent("invoice.payment_failed",
				`{"id":"in_1","customer":"cus_1","parent":{"subscription_details":{"subscription":"sub_9"}}}`),
			want: billing.Event{Type: billing.EventInvoicePaymentFailed, SubscriptionID: "sub_9", CustomerID: "cus_1"},
		},
		{
			name: "other events are ignored",
			body: stripeEvent("customer.created", `{"id":"cus_1"}`),
			want: billing.Event{Type: billing.EventIgnored},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			body, header := stripeSign(t, tt.body, testWebhookSecret, now)
			got, err := p.ParseWebhook(context.Background(), body, header)
			require.NoError(t, err)

			assert.Equal(t, "evt_123", got.ID)
			assert.Equal(t, tt.want.Type, got.Type)
			assert.Equal(t, tt.want.Email, got.Email)
			assert.Equal(t, tt.want.CustomerID, got.CustomerID)
			assert.Equal(t, tt.want.SubscriptionID, got.SubscriptionID)
			assert.Equal(t, tt.want.Status, got.Status)
		})
	}
}

func TestStripeProvider_RejectsBadSignatures(t *testing.T) {
	t.Parallel()
	p := billing.NewStripeProvider(billing.StripeConfig{WebhookSecret: testWebhookSecret})
	body := stripeEvent("checkout.session.completed", `{"id":"cs_1"}`)

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()
		payload, header := stripeSign(t, body, "whsec_other", time.Now())
		_, err := p.ParseWebhook(context.Background(), payload, header)
		assert.ErrorIs(t, err, billing.ErrInvalidSignature)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		t.Parallel()
		payload, header := stripeSign(t, body, testWebhookSecret, time.Now().Add(-time.Hour))
		_, err := p.ParseWebhook(context.Background(), payload, header)
		assert.ErrorIs(t, err, billing.ErrInvalidSignature)
	})

	t.Run("tampered body", func(t *testing.T) {
		t.Parallel()
		_, header := stripeSign(t, body, testWebhookSecret, time.Now())
		_, err := p.ParseWebhook(context.Background(), []byte(body+" "), header)
		assert.ErrorIs(t, err, billing.ErrInvalidSignature)
	})

	t.Run("missing header", func(t *testing.T) {
		t.Parallel()
		_, err := p.ParseWebhook(context.Background(), []byte(body), "")
		assert.ErrorIs(t, err, billing.ErrInvalidSignature)
	})

	t.Run("no secret configured", func(t *testing.T) {
		t.Parallel()
		payload, header := stripeSign(t, body, testWebhookSecret, time.Now())
		_, err := billing.NewStripeProvider(billing.StripeConfig{}).ParseWebhook(context.Background(), payload, header)
		assert.ErrorIs(t, err, billing.ErrInvalidSignature)
	})
}

func TestStripeProvider_LinksNeedAPIKey(t *testing.T) {
	t.Parallel()
	p := billing.NewStripeProvider(billing.StripeConfig{})
	_, err := p.CreateCheckoutLink(context.Background(), billing.CheckoutRequest{PriceID: "price_1"})
	assert.ErrorIs(t, err, billing.ErrMissingAPIKey)
	_, err = p.CreatePortalLink(context.Background(), "cus_1", "https://app.example.com/dashboard")
	assert.ErrorIs(t, err, billing.ErrMissingAPIKey)
}

func paddleSign(secret, body string, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + ":" + body))
	return "ts=" + ts + ";h1=" + hex.EncodeToString(mac.Sum(nil))
}

func TestPaddleProvider_ParseWebhook(t *testing.T) {
	t.Parallel()
	p, err := billing.NewPaddleProvider(billing.PaddleConfig{WebhookSecret: testWebhookSecret})
	require.NoError(t, err)

	tests := []struct {
		name string
		body string
		want billing.Event
	}{
		{
			name: "transaction completed",
			body: `{"event_id":"evt_01","event_type":"transaction.completed","occurred_at":"2026-01-01T00:00:00Z",` +
				`"data":{"id":"txn_1","status":"completed","customer_id":"ctm_1","subscription_id":"sub_1","custom_data":{"email":"buyer@example.com"}}}`,
			want: billing.Event{Type: billing.EventCheckoutCompleted, Email: "buyer@example.com", CustomerID: "ctm_1", SubscriptionID: "sub_1", Status: "completed"},
		},
		{
			name: "subscription updated",
			body: `{"event_id":"evt_01","event_type":"subscription.updated","data":{"id":"sub_1","status":"active","customer_id":"ctm_1"}}`,
			want: billing.Event{Type: billing.EventSubscriptionUpdated, CustomerID: "ctm_1", SubscriptionID: "sub_1", Status: "active"},
		},
		{
			name: "subscription canceled",
			body: `{"event_id":"evt_01","event_type":"subscription.canceled","data":{"id":"sub_1","status":"canceled","customer_id":"ctm_1"}}`,
			want: billing.Event{Type: billing.EventSubscriptionDeleted, CustomerID: "ctm_1", SubscriptionID: "sub_1", Status: "canceled"},
		},
		{
			name: "payment failed",
			body: `{"event_id":"evt_01","event_type":"transaction.payment_failed","data":{"id":"txn_1","customer_id":"ctm_1","subscription_id":"sub_1"}}`,
			want: billing.Event{Type: billing.EventInvoicePaymentFailed, CustomerID: "ctm_1", SubscriptionID: "sub_1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := p.ParseWebhook(context.Background(), []byte(tt.body), paddleSign(testWebhookSecret, tt.body, time.Now()))
			require.NoError(t, err)
			assert.Equal(t, "evt_01", got.ID)
			assert.Equal(t, tt.want.Type, got.Type)
			assert.Equal(t, tt.want.Email, got.Email)
			assert.Equal(t, tt.want.CustomerID, got.CustomerID)
			assert.Equal(t, tt.want.SubscriptionID, got.SubscriptionID)
			assert.Equal(t, tt.want.Status, got.Status)
		})
	}
}

func TestPaddleProvider_RejectsBadSignatures(t *testing.T) {
	t.Parallel()
	p, err := billing.NewPaddleProvider(billing.PaddleConfig{WebhookSecret: testWebhookSecret})
	require.NoError(t, err)
	body := `{"event_id":"evt_01","event_type":"subscription.updated","data":{"id":"sub_1"}}`

	for name, sig := range map[string]string{
		"wrong secret": paddleSign("other", body, time.Now()),
		"garbage":      "not-a-signature",
		"empty":        "",
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := p.ParseWebhook(context.Background(), []byte(body), sig)
			assert.ErrorIs(t, err, billing.ErrInvalidSignature)
		})
	}
}

func TestNewProvider(t *testing.T) {
	t.Parallel()

	p, err := billing.NewProvider(billing.Config{})
	require.NoError(t, err)
	assert.Equal(t, "stripe", p.Name())
	assert.Equal(t, "Stripe-Signature", p.SignatureHeader())

	p, err = billing.NewProvider(billing.Config{Provider: "Paddle"})
	require.NoError(t, err)
	assert.Equal(t, "paddle", p.Name())

	_, err = billing.NewProvider(billing.Config{Provider: "lemonsqueezy"})
	assert.ErrorIs(t, err, billing.ErrUnknownProvider)

	_, err = billing.NewProvider(billing.Config{Provider: "paddle", Paddle: billing.PaddleConfig{APIKey: "k", Environment: "staging"}})
	assert.ErrorIs(t, err, billing.ErrUnknownProvider)
}

func TestConfig_Location(t *testing.T) {
	t.Parallel()
	loc, err := billing.Config{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = billing.Config{Timezone: "America/New_York"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())

	_, err = billing.Config{Timezone: "Mars/Olympus"}.Location()
	assert.Error(t, err)
}
