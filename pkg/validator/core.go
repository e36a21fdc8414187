package validator

import (
	"errors"
	"strings"
)

// ValidationError describes one failed rule. Key is a stable machine code
// clients can switch on; Message is for humans.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Key     string `json:"key"`
}

// ValidationErrors is returned by Apply when at least one rule fails.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(ve))
	for _, err := range ve {
		parts = append(parts, err.Field+": "+err.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (ve ValidationErrors) Has(field string) bool {
	for _, err := range ve {
		if err.Field == field {
			return true
		}
	}
	return false
}

// Fields maps each failing field to its first message.
func (ve ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(ve))
	for _, err := range ve {
		if _, ok := out[err.Field]; !ok {
			out[err.Field] = err.Message
		}
	}
	return out
}

// Rule is a single deferred check.
type Rule struct {
	Check func() bool
	Error ValidationError
}

// Apply runs every rule and collects the failures.
func Apply(rules ...Rule) error {
	var errs ValidationErrors
	for _, rule := range rules {
		if !rule.Check() {
			errs = append(errs, rule.Error)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func ExtractValidationErrors(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}
