package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shipfeed/shipfeed/handler"
	"github.com/shipfeed/shipfeed/pkg/identity"
	"github.com/shipfeed/shipfeed/svc/billing"
)

type billingHandler struct {
	entitlements *billing.Entitlements
	checkout     *billing.Checkout
	errorHandler handler.ErrorHandler
}

func (h *billingHandler) Handle() http.Handler {
	r := chi.NewRouter()
	r.Get("/usage", handler.Wrap(h.usage, handler.WithErrorHandler[struct{}](h.errorHandler)))
	r.Post("/checkout", handler.Wrap(h.startCheckout, handler.WithErrorHandler[struct{}](h.errorHandler)))
	r.Post("/portal", handler.Wrap(h.openPortal, handler.WithErrorHandler[struct{}](h.errorHandler)))
	return r
}

func (h *billingHandler) usage(ctx handler.Context, _ struct{}) handler.Response {
	user, err := identity.FromContext(ctx)
	if err != nil {
		return handler.Error(err)
	}
	u, err := h.entitlements.Usage(ctx, user.ID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(u)
}

func (h *billingHandler) startCheckout(ctx handler.Context, _ struct{}) handler.Response {
	user, err := identity.FromContext(ctx)
	if err != nil {
		return handler.Error(err)
	}
	link, err := h.checkout.StartCheckout(ctx, user.ID, user.Email)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(link)
}

func (h *billingHandler) openPortal(ctx handler.Context, _ struct{}) handler.Response {
	user, err := identity.FromContext(ctx)
	if err != nil {
		return handler.Error(err)
	}
	link, err := h.checkout.OpenPortal(ctx, user.ID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(link)
}

// webhookHandler acknowledges every verified delivery, including ones that
// changed nothing, so the provider stops retrying them.
type webhookHandler struct {
	reconciler   *billing.Reconciler
	maxBytes     int64
	errorHandler handler.ErrorHandler
}

func (h *webhookHandler) Handle() http.Handler {
	return handler.Wrap(h.receive, handler.WithErrorHandler[struct{}](h.errorHandler))
}

func (h *webhookHandler) receive(ctx handler.Context, _ struct{}) handler.Response {
	r := ctx.Request()
	body, err := io.ReadAll(http.MaxBytesReader(ctx.ResponseWriter(), r.Body, h.maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return handler.Error(handler.ErrRequestTooLarge)
		}
		return handler.Error(handler.ErrBadRequest.WithMessage("Unreadable request body"))
	}

	if _, err := h.reconciler.HandleWebhook(ctx, body, r.Header.Get(h.reconciler.SignatureHeader())); err != nil {
		return handler.Error(err)
	}
	return handler.RawJSON(http.StatusOK, map[string]bool{"received": true})
}
