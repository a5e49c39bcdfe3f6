package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Column widths of the free-text fields, in characters.
const (
	maxNameLength        = 100
	maxDescriptionLength = 500
)

// Error carries field-specific validation messages.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

func asError(err error, target **Error) bool {
	return errors.As(err, target)
}

// checkName records a problem with a display name. Names are single-line and
// measured in characters, so non-ASCII names get the full column width.
func checkName(errors map[string]string, field, value string) {
	switch {
	case strings.TrimSpace(value) == "":
		errors[field] = field + " is required"
	case utf8.RuneCountInString(value) > maxNameLength:
		errors[field] = fmt.Sprintf("%s must be %d characters or less", field, maxNameLength)
	case strings.ContainsFunc(value, unicode.IsControl):
		errors[field] = field + " cannot contain control characters"
	}
}

// checkDescription records a problem with an optional multi-line description.
func checkDescription(errors map[string]string, value string) {
	if utf8.RuneCountInString(value) > maxDescriptionLength {
		errors["description"] = fmt.Sprintf("description must be %d characters or less", maxDescriptionLength)
	}
}
