package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Required fails on empty or whitespace-only strings.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{Field: field, Message: "field is required", Key: "validation.required"},
	}
}

// MaxLen counts runes, not bytes.
func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= max },
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at most %d characters long", max),
			Key:     "validation.max_length",
		},
	}
}

func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			v := strings.TrimSpace(value)
			if v == "" || len(v) > 254 {
				return false
			}
			addr, err := mail.ParseAddress(v)
			// Reject display-name forms like "Bob <bob@x.io>".
			return err == nil && addr.Address == v && strings.Contains(v[strings.LastIndex(v, "@"):], ".")
		},
		Error: ValidationError{Field: field, Message: "must be a valid email address", Key: "validation.email"},
	}
}

func ValidUUID(field, value string) Rule {
	return Rule{
		Check: func() bool {
			id, err := uuid.Parse(value)
			return err == nil && id != uuid.Nil
		},
		Error: ValidationError{Field: field, Message: "must be a valid UUID", Key: "validation.uuid"},
	}
}

func OneOf[T comparable](field string, value T, options ...T) Rule {
	return Rule{
		Check: func() bool { return slices.Contains(options, value) },
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be one of %v", options),
			Key:     "validation.one_of",
		},
	}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug accepts lowercase ASCII words joined by single hyphens.
func ValidSlug(field, value string) Rule {
	return Rule{
		Check: func() bool { return slugPattern.MatchString(value) },
		Error: ValidationError{
			Field:   field,
			Message: "may contain only lowercase letters, digits and single hyphens",
			Key:     "validation.slug",
		},
	}
}
