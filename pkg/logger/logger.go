package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format is the log output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ContextExtractor pulls a request-scoped attribute out of a context.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// Option configures New.
type Option func(*options)

type options struct {
	level      slog.Level
	format     Format
	output     io.Writer
	attrs      []slog.Attr
	extractors []ContextExtractor
}

func WithLevel(l slog.Level) Option {
	return func(o *options) { o.level = l }
}

// WithFormat panics on anything but json or text so a bad deployment fails at boot.
func WithFormat(f Format) Option {
	switch f {
	case FormatJSON, FormatText:
	default:
		panic(fmt.Errorf("logger: invalid format %q", f))
	}
	return func(o *options) { o.format = f }
}

func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.output = w
		}
	}
}

// WithAttr adds static attributes to every record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(o *options) { o.attrs = append(o.attrs, attrs...) }
}

// WithContextExtractors registers extractors evaluated on every log call.
func WithContextExtractors(extractors ...ContextExtractor) Option {
	return func(o *options) {
		for _, ex := range extractors {
			if ex != nil {
				o.extractors = append(o.extractors, ex)
			}
		}
	}
}

// WithEnvironment applies the defaults for an APP_ENV value.
// production and staging log JSON at info; anything else logs text at debug.
func WithEnvironment(env, service string) Option {
	return func(o *options) {
		switch strings.ToLower(env) {
		case "production", "prod", "staging", "stage":
			o.level = slog.LevelInfo
			o.format = FormatJSON
		default:
			env = "development"
			o.level = slog.LevelDebug
			o.format = FormatText
		}
		if service != "" {
			o.attrs = append(o.attrs, slog.String("service", service))
		}
		o.attrs = append(o.attrs, slog.String("env", env))
	}
}

// New builds a slog.Logger. Defaults to JSON at info level on stdout.
func New(opts ...Option) *slog.Logger {
	o := &options{
		level:  slog.LevelInfo,
		format: FormatJSON,
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(o)
	}

	handlerOpts := &slog.HandlerOptions{Level: o.level}

	var h slog.Handler
	if o.format == FormatText {
		h = slog.NewTextHandler(o.output, handlerOpts)
	} else {
		h = slog.NewJSONHandler(o.output, handlerOpts)
	}
	if len(o.attrs) > 0 {
		h = h.WithAttrs(o.attrs)
	}
	if len(o.extractors) > 0 {
		h = &contextHandler{next: h, extractors: o.extractors}
	}

	return slog.New(h)
}

// SetAsDefault installs l as the process-wide slog default.
func SetAsDefault(l *slog.Logger) {
	slog.SetDefault(l)
}

// Noop returns a logger that discards everything. Handy in tests.
func Noop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
