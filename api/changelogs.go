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

type changelogsHandler struct {
	svc          *changelog.Service
	errorHandler handler.ErrorHandler
}

func (h *changelogsHandler) Handle() http.Handler {
	r := chi.NewRouter()
	r.Get("/", handler.Wrap(h.list,
		handler.WithBinders[listChangelogsRequest](binder.Query()),
		handler.WithErrorHandler[listChangelogsRequest](h.errorHandler),
	))
	r.Post("/", handler.Wrap(h.create,
		handler.WithBinders[createChangelogRequest](binder.JSON()),
		handler.WithErrorHandler[createChangelogRequest](h.errorHandler),
	))
	r.Patch("/{id}", handler.Wrap(h.update,
		handler.WithBinders[updateChangelogRequest](binder.Path(chi.URLParam), binder.JSON()),
		handler.WithErrorHandler[updateChangelogRequest](h.errorHandler),
	))
	r.Delete("/{id}", handler.Wrap(h.delete,
		handler.WithBinders[changelogIDRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[changelogIDRequest](h.errorHandler),
	))
	return r
}

type listChangelogsRequest struct {
	ProjectID *uuid.UUID `query:"projectId"`
}

func (h *changelogsHandler) list(ctx handler.Context, req listChangelogsRequest) handler.Response {
	user, err := identity.FromContext(ctx)
	if err != nil {
		return handler.Error(err)
	}
	entries, err := h.svc.ListChangelogs(ctx, user.ID, req.ProjectID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(entries)
}

type createChangelogRequest struct {
	ProjectID uuid.UUID        `json:"projectId"`
	Title     string           `json:"title"`
	Version   string           `json:"version"`
	Content   string           `json:"content"`
	Status    changelog.Status `json:"status"`
}

func (h *changelogsHandler) create(ctx handler.Context, req createChangelogRequest) handler.Response {
	user, err := identity.FromContext(ctx)
	if err != nil {
		return handler.Error(err)
	}
	c, err := h.svc.CreateChangelog(ctx, user.ID, changelog.CreateChangelogInput{
		ProjectID: req.ProjectID,
		Title:     req.Title,
		Version:   req.Version,
		Content:   req.Content,
		Status:    req.Status,
	})
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(c, handler.WithStatus(http.StatusCreated))
}

type updateChangelogRequest struct {
	ID      uuid.UUID         `path:"id" json:"-"`
	Title   *string           `json:"title"`
	Version *string           `json:"version"`
	Content *string           `json:"content"`
	Status  *changelog.Status `json:"status"`
}

func (h *changelogsHandler) update(ctx handler.Context, req updateChangelogRequest) handler.Response {
	user, err := identity.FromContext(ctx)
	if err != nil {
		return handler.Error(err)
	}
	c, err := h.svc.UpdateChangelog(ctx, user.ID, req.ID, changelog.ChangelogPatch{
		Title:   req.Title,
		Version: req.Version,
		Content: req.Content,
		Status:  req.Status,
	})
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(c)
}

type changelogIDRequest struct {
	ID uuid.UUID `path:"id"`
}

func (h *changelogsHandler) delete(ctx handler.Context, req changelogIDRequest) handler.Response {
	user, err := identity.FromContext(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if err := h.svc.DeleteChangelog(ctx, user.ID, req.ID); err != nil {
		return handler.Error(err)
	}
	return handler.Empty()
}
