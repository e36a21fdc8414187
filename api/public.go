package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shipfeed/shipfeed/handler"
	"github.com/shipfeed/shipfeed/pkg/binder"
	"github.com/shipfeed/shipfeed/svc/changelog"
)

type publicHandler struct {
	svc          *changelog.Service
	errorHandler handler.ErrorHandler
}

func (h *publicHandler) Handle() http.Handler {
	r := chi.NewRouter()
	r.Get("/{slug}", handler.Wrap(h.page,
		handler.WithBinders[publicPageRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[publicPageRequest](h.errorHandler),
	))
	return r
}

type publicPageRequest struct {
	Slug string `path:"slug"`
}

func (h *publicHandler) page(ctx handler.Context, req publicPageRequest) handler.Response {
	page, err := h.svc.PublicPage(ctx, req.Slug)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(page)
}
