// Package binder decodes HTTP requests into typed request structs.
//
// Binders are composed per route; each one handles its own source:
//
//	handler.Wrap(h, handler.WithBinders[handler.Context, UpdateChangelogRequest](
//		binder.Path(chi.URLParam),
//		binder.JSON(),
//	))
//
// Path and query fields use `path:"name"` and `query:"name"` tags and
// support string, bool, int, uuid.UUID and pointers to them.
package binder
