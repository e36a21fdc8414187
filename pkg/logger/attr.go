package logger

import (
	"fmt"
	"log/slog"
)

// Error returns an "error" attribute, or an empty attr for a nil error.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}

func UserID(id any) slog.Attr {
	return slog.String("user_id", fmt.Sprint(id))
}

func ProjectID(id any) slog.Attr {
	return slog.String("project_id", fmt.Sprint(id))
}

func RequestID(id string) slog.Attr {
	return slog.String("request_id", id)
}

// Component names the subsystem emitting the record (e.g. "reconciler").
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event names what happened (e.g. "checkout_completed").
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

func Provider(name string) slog.Attr {
	return slog.String("provider", name)
}
