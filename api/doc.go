// Package api is the HTTP surface of shipfeed.
//
// Router assembles a chi router from the domain services. Authenticated
// routes require a bearer token verified by pkg/identity; every gated
// mutation goes through billing.Entitlements before it touches storage.
// Successful responses use the handler.Envelope shape ({"data": ...}),
// failures the {"error": {...}} shape produced by handler.NewErrorHandler
// with toHTTPError translating domain errors.
package api
