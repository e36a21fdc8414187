package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/shipfeed/shipfeed/pkg/binder"
	"github.com/shipfeed/shipfeed/pkg/logger"
	"github.com/shipfeed/shipfeed/pkg/validator"
)

const genericMessage = "An error occurred processing your request"

// ErrorMapper translates a domain error into an HTTPError. It returns nil
// when it does not recognise err.
type ErrorMapper func(err error) error

// NewErrorHandler renders errors as JSON envelopes. Client errors are
// logged at warn, server errors at error; internal details of 5xx
// responses never reach the client.
func NewErrorHandler(log *slog.Logger, mappers ...ErrorMapper) ErrorHandler {
	if log == nil {
		log = slog.Default()
	}
	return func(ctx Context, err error) {
		status, detail := Classify(err, mappers...)

		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		r := ctx.Request()
		log.LogAttrs(ctx, level, "request error",
			logger.Error(err),
			logger.Component("error_handler"),
			slog.Int("status_code", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		_ = jsonResponse{status: status, body: Envelope{Error: detail}}.Render(ctx.ResponseWriter(), r)
	}
}

// Classify maps err to a status code and a client-safe error body.
func Classify(err error, mappers ...ErrorMapper) (int, *ErrorDetail) {
	for _, m := range mappers {
		if mapped := m(err); mapped != nil {
			err = mapped
			break
		}
	}

	if ve := validator.ExtractValidationErrors(err); ve != nil {
		return http.StatusUnprocessableEntity, &ErrorDetail{
			Code:    "validation_error",
			Message: "Validation failed",
			Details: ve.Fields(),
		}
	}

	var httpErr HTTPError
	if !errors.As(err, &httpErr) {
		httpErr = bindError(err)
	}

	msg := httpErr.Message
	if msg == "" {
		msg = http.StatusText(httpErr.Code)
	}
	if httpErr.Code >= http.StatusInternalServerError && httpErr.Message == "" {
		msg = genericMessage
	}
	return httpErr.Code, &ErrorDetail{Code: httpErr.Key, Message: msg}
}

func bindError(err error) HTTPError {
	switch {
	case errors.Is(err, binder.ErrBodyTooLarge):
		return ErrRequestTooLarge
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		return ErrUnsupportedMediaType
	case errors.Is(err, binder.ErrFailedToParseJSON),
		errors.Is(err, binder.ErrFailedToParsePath),
		errors.Is(err, binder.ErrFailedToParseQuery):
		return ErrBadRequest.WithMessage("Malformed request")
	default:
		return ErrInternalServerError
	}
}
