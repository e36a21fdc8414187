package api

import (
	"errors"
	"net/http"

	"github.com/shipfeed/shipfeed/handler"
	"github.com/shipfeed/shipfeed/pkg/identity"
	"github.com/shipfeed/shipfeed/pkg/ratelimit"
	"github.com/shipfeed/shipfeed/svc/billing"
	"github.com/shipfeed/shipfeed/svc/changelog"
	"github.com/shipfeed/shipfeed/svc/drafting"
)

var (
	errBillingNotConfigured = handler.HTTPError{Code: http.StatusServiceUnavailable, Key: "billing_not_configured", Message: "Billing is not configured"}
	errBillingProvider      = handler.HTTPError{Code: http.StatusBadGateway, Key: "billing_provider_error", Message: "Billing provider request failed"}
)

// toHTTPError translates domain errors. Unrecognised errors fall through to
// the generic 500.
func toHTTPError(err error) error {
	var deny *billing.DenyError
	switch {
	case errors.Is(err, ratelimit.ErrLimited):
		return handler.HTTPError{Code: http.StatusTooManyRequests, Key: "rate_limited", Message: "Too many requests"}

	case errors.Is(err, identity.ErrUnauthenticated):
		return handler.ErrUnauthorized.WithMessage("Unauthorized")

	case errors.As(err, &deny):
		key := "limit_exceeded"
		if errors.Is(err, billing.ErrUpgradeRequired) {
			key = "upgrade_required"
		}
		return handler.HTTPError{Code: http.StatusForbidden, Key: key, Message: deny.Reason}

	case errors.Is(err, changelog.ErrProjectNotFound):
		return handler.ErrNotFound.WithMessage("Project not found")
	case errors.Is(err, changelog.ErrChangelogNotFound):
		return handler.ErrNotFound.WithMessage("Changelog not found")
	case errors.Is(err, changelog.ErrSubscriberNotFound):
		return handler.ErrNotFound.WithMessage("Subscriber not found")
	case errors.Is(err, changelog.ErrSlugTaken):
		return handler.HTTPError{Code: http.StatusConflict, Key: "slug_taken", Message: "Slug is already taken"}

	case errors.Is(err, billing.ErrInvalidSignature):
		return handler.HTTPError{Code: http.StatusBadRequest, Key: "invalid_signature", Message: "Invalid webhook signature"}
	case errors.Is(err, billing.ErrMalformedPayload):
		return handler.HTTPError{Code: http.StatusBadRequest, Key: "malformed_payload", Message: "Malformed webhook payload"}
	case errors.Is(err, billing.ErrNoBillingCustomer):
		return handler.HTTPError{Code: http.StatusBadRequest, Key: "no_billing_customer", Message: "No billing customer found"}
	case errors.Is(err, billing.ErrMissingAPIKey), errors.Is(err, billing.ErrMissingPriceID):
		return errBillingNotConfigured
	case errors.Is(err, billing.ErrProvider),
		errors.Is(err, billing.ErrNoCheckoutURL),
		errors.Is(err, billing.ErrNoPortalURL):
		return errBillingProvider

	case errors.Is(err, drafting.ErrEmptyChanges):
		return handler.HTTPError{Code: http.StatusBadRequest, Key: "missing_changes", Message: "Missing changes"}
	}
	return nil
}
