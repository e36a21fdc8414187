package api

import (
	"net/http"

	"github.com/shipfeed/shipfeed/handler"
	"github.com/shipfeed/shipfeed/pkg/binder"
	"github.com/shipfeed/shipfeed/pkg/identity"
	"github.com/shipfeed/shipfeed/svc/billing"
	"github.com/shipfeed/shipfeed/svc/drafting"
)

type draftsHandler struct {
	entitlements *billing.Entitlements
	drafter      *drafting.Drafter
	errorHandler handler.ErrorHandler
}

func (h *draftsHandler) Handle() http.Handler {
	return handler.Wrap(h.generate,
		handler.WithBinders[generateDraftRequest](binder.JSON()),
		handler.WithErrorHandler[generateDraftRequest](h.errorHandler),
	)
}

type generateDraftRequest struct {
	Changes string `json:"changes"`
}

// generate checks the plan before looking at the input, so a free user
// learns about the upgrade even with an empty request.
func (h *draftsHandler) generate(ctx handler.Context, req generateDraftRequest) handler.Response {
	user, err := identity.FromContext(ctx)
	if err != nil {
		return handler.Error(err)
	}
	dec, err := h.entitlements.Authorize(ctx, user.ID, billing.ActionUseAIDrafting)
	if err != nil {
		return handler.Error(err)
	}
	if err := dec.Err(); err != nil {
		return handler.Error(err)
	}

	draft, err := h.drafter.Draft(ctx, req.Changes)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(draft)
}
