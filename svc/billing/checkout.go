package billing

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Checkout starts upgrades and opens the self-service billing portal.
// Both are thin passthroughs to the provider.
type Checkout struct {
	provider BillingProvider
	subs     SubscriptionStore
	priceID  string
	appURL   string
}

// NewCheckout builds success and cancel URLs under appURL.
func NewCheckout(provider BillingProvider, subs SubscriptionStore, priceID, appURL string) *Checkout {
	return &Checkout{
		provider: provider,
		subs:     subs,
		priceID:  priceID,
		appURL:   strings.TrimRight(appURL, "/"),
	}
}

// StartCheckout asks the provider for a hosted checkout page selling the pro
// price. The email is prefilled so the completion webhook can find the user.
func (c *Checkout) StartCheckout(ctx context.Context, userID uuid.UUID, email string) (*CheckoutLink, error) {
	return c.provider.CreateCheckoutLink(ctx, CheckoutRequest{
		PriceID:    c.priceID,
		UserID:     userID.String(),
		Email:      email,
		SuccessURL: c.appURL + "/dashboard?upgraded=1",
		CancelURL:  c.appURL + "/pricing?canceled=1",
	})
}

// OpenPortal needs a customer reference stored by a completed checkout.
func (c *Checkout) OpenPortal(ctx context.Context, userID uuid.UUID) (*PortalLink, error) {
	sub, err := c.subs.GetByUser(ctx, userID)
	if errors.Is(err, ErrSubscriptionNotFound) || (err == nil && sub.CustomerID == "") {
		return nil, ErrNoBillingCustomer
	}
	if err != nil {
		return nil, err
	}
	return c.provider.CreatePortalLink(ctx, sub.CustomerID, c.appURL+"/dashboard")
}
