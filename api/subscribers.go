package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shipfeed/shipfeed/handler"
	"github.com/shipfeed/shipfeed/pkg/binder"
	"github.com/shipfeed/shipfeed/pkg/identity"
	"github.com/shipfeed/shipfeed/svc/changelog"
)

// subscribersHandler serves both the public subscribe/confirm endpoints
// and the owner-only listing and removal.
type subscribersHandler struct {
	svc          *changelog.Service
	requireUser  func(http.Handler) http.Handler
	rateLimit    func(http.Handler) http.Handler
	errorHandler handler.ErrorHandler
}

func (h *subscribersHandler) Handle() http.Handler {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		if h.rateLimit != nil {
			r.Use(h.rateLimit)
		}
		r.Post("/", handler.Wrap(h.subscribe,
			handler.WithBinders[subscribeRequest](binder.JSON()),
			handler.WithErrorHandler[subscribeRequest](h.errorHandler),
		))
		r.Patch("/", handler.Wrap(h.confirm,
			handler.WithBinders[confirmRequest](binder.JSON()),
			handler.WithErrorHandler[confirmRequest](h.errorHandler),
		))
	})
	r.Group(func(r chi.Router) {
		r.Use(h.requireUser)
		r.Get("/", handler.Wrap(h.list,
			handler.WithBinders[listSubscribersRequest](binder.Query()),
			handler.WithErrorHandler[listSubscribersRequest](h.errorHandler),
		))
		r.Delete("/", handler.Wrap(h.unsubscribe,
			handler.WithBinders[unsubscribeRequest](binder.Query()),
			handler.WithErrorHandler[unsubscribeRequest](h.errorHandler),
		))
	})
	return r
}

type subscribeRequest struct {
	ProjectID uuid.UUID `json:"projectId"`
	Email     string    `json:"email"`
}

func (h *subscribersHandler) subscribe(ctx handler.Context, req subscribeRequest) handler.Response {
	sub, err := h.svc.Subscribe(ctx, req.ProjectID, req.Email)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(sub, handler.WithStatus(http.StatusCreated))
}

type confirmRequest struct {
	ProjectID uuid.UUID `json:"projectId"`
	Email     string    `json:"email"`
	Confirmed bool      `json:"confirmed"`
}

func (h *subscribersHandler) confirm(ctx handler.Context, req confirmRequest) handler.Response {
	sub, err := h.svc.SetConfirmed(ctx, req.ProjectID, req.Email, req.Confirmed)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(sub)
}

type listSubscribersRequest struct {
	ProjectID uuid.UUID `query:"projectId"`
}

func (h *subscribersHandler) list(ctx handler.Context, req listSubscribersRequest) handler.Response {
	user, err := identity.FromContext(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if req.ProjectID == uuid.Nil {
		return handler.Error(handler.ErrBadRequest.WithMessage("Missing params"))
	}
	subs, err := h.svc.ListSubscribers(ctx, user.ID, req.ProjectID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(subs)
}

type unsubscribeRequest struct {
	ProjectID uuid.UUID `query:"projectId"`
	Email     string    `query:"email"`
}

func (h *subscribersHandler) unsubscribe(ctx handler.Context, req unsubscribeRequest) handler.Response {
	user, err := identity.FromContext(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if req.ProjectID == uuid.Nil || req.Email == "" {
		return handler.Error(handler.ErrBadRequest.WithMessage("Missing params"))
	}
	if err := h.svc.Unsubscribe(ctx, user.ID, req.ProjectID, req.Email); err != nil {
		return handler.Error(err)
	}
	return handler.Empty()
}
