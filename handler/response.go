package handler

import (
	"encoding/json"
	"net/http"
)

// Envelope is the body shape of every API response.
type Envelope struct {
	Data  any          `json:"data,omitempty"`
	Meta  any          `json:"meta,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status int
	body   any
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

type JSONOption func(*jsonResponse)

func WithStatus(status int) JSONOption {
	return func(r *jsonResponse) { r.status = status }
}

func WithMeta(meta any) JSONOption {
	return func(r *jsonResponse) {
		if env, ok := r.body.(Envelope); ok {
			env.Meta = meta
			r.body = env
		}
	}
}

// JSON wraps v in the {"data": ...} envelope.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK, body: Envelope{Data: v}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RawJSON writes v as-is, for endpoints whose body shape is fixed by a
// third party such as webhook acknowledgements.
func RawJSON(status int, v any) Response {
	return jsonResponse{status: status, body: v}
}

type emptyResponse struct{ status int }

func (e emptyResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(e.status)
	return nil
}

// Empty answers 204 No Content.
func Empty() Response { return emptyResponse{status: http.StatusNoContent} }

// errorResponse defers rendering to the configured ErrorHandler.
type errorResponse struct{ err error }

func (e errorResponse) Render(w http.ResponseWriter, r *http.Request) error { return e.err }

// Error hands err to the route's ErrorHandler for classification.
func Error(err error) Response { return errorResponse{err: err} }
