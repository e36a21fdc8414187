// Package handler is a small typed layer over net/http.
//
// A HandlerFunc receives a decoded request struct and returns a Response.
// Wrap turns it into an http.HandlerFunc, running the configured binders
// first and routing every failure through one ErrorHandler so error bodies
// stay uniform:
//
//	r.Post("/api/projects", handler.Wrap(createProject,
//		handler.WithBinders[CreateProjectRequest](binder.JSON()),
//		handler.WithErrorHandler[CreateProjectRequest](errs),
//	))
package handler
