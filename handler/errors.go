package handler

import (
	"errors"
	"net/http"
)

var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError carries a status code and a stable machine key. Message, when
// set, is safe to show to the client.
type HTTPError struct {
	Code    int
	Key     string
	Message string
}

func (e HTTPError) Error() string {
	if e.Message != "" {
		return e.Key + ": " + e.Message
	}
	return e.Key
}

// WithMessage returns a copy of e carrying msg.
func (e HTTPError) WithMessage(msg string) HTTPError {
	e.Message = msg
	return e
}

var (
	ErrBadRequest           = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrUnauthorized         = HTTPError{Code: http.StatusUnauthorized, Key: "unauthorized"}
	ErrForbidden            = HTTPError{Code: http.StatusForbidden, Key: "forbidden"}
	ErrNotFound             = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrConflict             = HTTPError{Code: http.StatusConflict, Key: "conflict"}
	ErrRequestTooLarge      = HTTPError{Code: http.StatusRequestEntityTooLarge, Key: "request_entity_too_large"}
	ErrUnsupportedMediaType = HTTPError{Code: http.StatusUnsupportedMediaType, Key: "unsupported_media_type"}
	ErrUnprocessableEntity  = HTTPError{Code: http.StatusUnprocessableEntity, Key: "unprocessable_entity"}
	ErrInternalServerError  = HTTPError{Code: http.StatusInternalServerError, Key: "internal_server_error"}
	ErrServiceUnavailable   = HTTPError{Code: http.StatusServiceUnavailable, Key: "service_unavailable"}
)
