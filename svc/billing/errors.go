package billing

import "errors"

var (
	ErrLimitExceeded   = errors.New("billing: plan limit reached")
	ErrUpgradeRequired = errors.New("billing: feature requires upgrade")
	ErrUnknownAction   = errors.New("billing: unknown action")

	ErrSubscriptionNotFound = errors.New("billing: subscription not found")
	ErrUserNotFound         = errors.New("billing: user not found")
	ErrNoBillingCustomer    = errors.New("billing: no billing customer on record")

	ErrInvalidSignature = errors.New("billing: invalid webhook signature")
	ErrMalformedPayload = errors.New("billing: malformed webhook payload")

	ErrMissingAPIKey        = errors.New("billing: provider API key is required")
	ErrMissingWebhookSecret = errors.New("billing: provider webhook secret is required")
	ErrMissingPriceID       = errors.New("billing: price ID is required")
	ErrUnknownProvider      = errors.New("billing: unknown provider")
	ErrNoCheckoutURL        = errors.New("billing: no checkout URL returned from provider")
	ErrNoPortalURL          = errors.New("billing: no portal URL returned from provider")
	ErrProvider             = errors.New("billing: provider request failed")
)
