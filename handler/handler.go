package handler

import (
	"errors"
	"net/http"

	"github.com/shipfeed/shipfeed/pkg/binder"
)

// HandlerFunc handles a decoded request of type R and returns a Response.
//
//	h := handler.HandlerFunc[CreateProjectRequest](
//		func(ctx handler.Context, req CreateProjectRequest) handler.Response {
//			p, err := svc.CreateProject(ctx, user, req.Input())
//			if err != nil {
//				return handler.Error(err)
//			}
//			return handler.JSON(p, handler.WithStatus(http.StatusCreated))
//		},
//	)
type HandlerFunc[R any] func(ctx Context, req R) Response

// Response renders itself to the client.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// Bind decodes part of a request into v.
type Bind func(r *http.Request, v any) error

// ErrorHandler writes a failure that happened outside the handler body:
// binding, rendering, or an Error response.
type ErrorHandler func(ctx Context, err error)

type WrapOption[R any] func(*wrapConfig[R])

type wrapConfig[R any] struct {
	binders      []Bind
	errorHandler ErrorHandler
}

// WithBinders applies binders in order; a binder returning
// binder.ErrNotApplicable is skipped.
func WithBinders[R any](binders ...Bind) WrapOption[R] {
	return func(c *wrapConfig[R]) {
		c.binders = append(c.binders, binders...)
	}
}

func WithErrorHandler[R any](h ErrorHandler) WrapOption[R] {
	return func(c *wrapConfig[R]) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

func defaultErrorHandler(ctx Context, err error) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		http.Error(ctx.ResponseWriter(), httpErr.Key, httpErr.Code)
		return
	}
	http.Error(ctx.ResponseWriter(), http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Wrap adapts a typed handler to net/http.
func Wrap[R any](h HandlerFunc[R], opts ...WrapOption[R]) http.HandlerFunc {
	cfg := &wrapConfig[R]{errorHandler: defaultErrorHandler}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := NewContext(w, r)

		var req R
		for _, bind := range cfg.binders {
			if err := bind(r, &req); err != nil {
				if errors.Is(err, binder.ErrNotApplicable) {
					continue
				}
				cfg.errorHandler(ctx, err)
				return
			}
		}

		resp := h(ctx, req)
		if resp == nil {
			cfg.errorHandler(ctx, ErrNilResponse)
			return
		}
		if er, ok := resp.(errorResponse); ok {
			cfg.errorHandler(ctx, er.err)
			return
		}
		if err := resp.Render(w, r); err != nil {
			cfg.errorHandler(ctx, err)
		}
	}
}
