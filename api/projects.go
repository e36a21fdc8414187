package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shipfeed/shipfeed/handler"
	"github.com/shipfeed/shipfeed/pkg/binder"
	"github.com/shipfeed/shipfeed/pkg/identity"
	"github.com/shipfeed/shipfeed/svc/changelog"
)

type projectsHandler struct {
	svc          *changelog.Service
	errorHandler handler.ErrorHandler
}

func (h *projectsHandler) Handle() http.Handler {
	r := chi.NewRouter()
	r.Get("/", handler.Wrap(h.list,
		handler.WithErrorHandler[struct{}](h.errorHandler),
	))
	r.Post("/", handler.Wrap(h.create,
		handler.WithBinders[createProjectRequest](binder.JSON()),
		handler.WithErrorHandler[createProjectRequest](h.errorHandler),
	))
	r.Get("/{slug}", handler.Wrap(h.get,
		handler.WithBinders[getProjectRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[getProjectRequest](h.errorHandler),
	))
	return r
}

func (h *projectsHandler) list(ctx handler.Context, _ struct{}) handler.Response {
	user, err := identity.FromContext(ctx)
	if err != nil {
		return handler.Error(err)
	}
	projects, err := h.svc.ListProjects(ctx, user.ID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(projects)
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
	LogoURL     string `json:"logoUrl"`
}

func (h *projectsHandler) create(ctx handler.Context, req createProjectRequest) handler.Response {
	user, err := identity.FromContext(ctx)
	if err != nil {
		return handler.Error(err)
	}
	p, err := h.svc.CreateProject(ctx, user.ID, changelog.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Slug:        req.Slug,
		LogoURL:     req.LogoURL,
	})
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(p, handler.WithStatus(http.StatusCreated))
}

type getProjectRequest struct {
	Slug string `path:"slug"`
}

func (h *projectsHandler) get(ctx handler.Context, req getProjectRequest) handler.Response {
	user, err := identity.FromContext(ctx)
	if err != nil {
		return handler.Error(err)
	}
	p, err := h.svc.GetProject(ctx, user.ID, req.Slug)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(p)
}
