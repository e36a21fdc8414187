package binder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// DefaultMaxBodySize caps JSON request bodies at 1 MiB.
const DefaultMaxBodySize int64 = 1 << 20

// JSON decodes an application/json body into v in strict mode.
// Requests without a body (GET, DELETE) are skipped with ErrNotApplicable.
func JSON() func(r *http.Request, v any) error {
	return JSONWithLimit(DefaultMaxBodySize)
}

func JSONWithLimit(limit int64) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
			if r.Method == http.MethodGet || r.Method == http.MethodDelete || r.Method == http.MethodHead {
				return ErrNotApplicable
			}
		}

		ct := r.Header.Get("Content-Type")
		if ct == "" {
			return fmt.Errorf("%w: expected application/json", ErrMissingContentType)
		}
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			return fmt.Errorf("%w: %s", ErrUnsupportedMediaType, ct)
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
		if err != nil {
			return errors.Join(ErrFailedToParseJSON, err)
		}
		if int64(len(body)) > limit {
			return fmt.Errorf("%w: max %d bytes", ErrBodyTooLarge, limit)
		}
		if len(body) == 0 {
			return fmt.Errorf("%w: empty body", ErrFailedToParseJSON)
		}

		dec := json.NewDecoder(bytes.NewReader(body))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return errors.Join(ErrFailedToParseJSON, err)
		}
		if dec.More() {
			return fmt.Errorf("%w: unexpected data after JSON object", ErrFailedToParseJSON)
		}
		return nil
	}
}
