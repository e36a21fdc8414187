package binder

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"

	"github.com/google/uuid"
)

var uuidType = reflect.TypeFor[uuid.UUID]()

// Path fills fields tagged `path:"name"` using extractor, typically chi.URLParam.
func Path(extractor func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindTagged(v, "path", ErrFailedToParsePath, func(name string) (string, bool) {
			val := extractor(r, name)
			return val, val != ""
		})
	}
}

// Query fills fields tagged `query:"name"` from the URL query string.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		q := r.URL.Query()
		return bindTagged(v, "query", ErrFailedToParseQuery, func(name string) (string, bool) {
			if !q.Has(name) {
				return "", false
			}
			return q.Get(name), true
		})
	}
}

func bindTagged(v any, tag string, parseErr error, lookup func(string) (string, bool)) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: target must be a pointer to struct", parseErr)
	}
	rv = rv.Elem()
	rt := rv.Type()

	for i := range rt.NumField() {
		sf := rt.Field(i)
		name := sf.Tag.Get(tag)
		if name == "" || name == "-" || !sf.IsExported() {
			continue
		}
		raw, ok := lookup(name)
		if !ok {
			continue
		}
		if err := setField(rv.Field(i), raw); err != nil {
			return fmt.Errorf("%w: %s: %v", parseErr, name, err)
		}
	}
	return nil
}

func setField(f reflect.Value, raw string) error {
	if f.Kind() == reflect.Pointer {
		ptr := reflect.New(f.Type().Elem())
		if err := setField(ptr.Elem(), raw); err != nil {
			return err
		}
		f.Set(ptr)
		return nil
	}

	if f.Type() == uuidType {
		id, err := uuid.Parse(raw)
		if err != nil {
			return err
		}
		f.Set(reflect.ValueOf(id))
		return nil
	}

	switch f.Kind() {
	case reflect.String:
		f.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		f.SetBool(b)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, f.Type().Bits())
		if err != nil {
			return err
		}
		f.SetInt(n)
	default:
		return fmt.Errorf("unsupported field type %s", f.Type())
	}
	return nil
}
