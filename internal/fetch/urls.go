package fetch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput covers a missing or malformed url parameter.
var ErrInvalidInput = errors.New("invalid input")

// InvalidURLsError lists the entries that failed validation.
type InvalidURLsError struct {
	URLs []string
}

func (e *InvalidURLsError) Error() string {
	return fmt.Sprintf("invalid urls: %s", strings.Join(e.URLs, ", "))
}

// Unwrap lets callers match ErrInvalidInput.
func (e *InvalidURLsError) Unwrap() error {
	return ErrInvalidInput
}

var validate = validator.New()

// ParseURLList splits a comma-separated list, trimming entries and dropping
// empty ones. An empty result is ErrInvalidInput.
func ParseURLList(raw string) ([]string, error) {
	parts := strings.Split(raw, ",")
	urls := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: parameter 'url' must list at least one url separated by commas", ErrInvalidInput)
	}
	return urls, nil
}

// ValidateURLs checks that every entry is an absolute http or https URL. It
// returns an *InvalidURLsError naming every rejected entry.
func ValidateURLs(urls []string) error {
	var invalid []string
	for _, u := range urls {
		if err := validate.Var(u, "required,http_url"); err != nil {
			invalid = append(invalid, u)
		}
	}
	if len(invalid) > 0 {
		return &InvalidURLsError{URLs: invalid}
	}
	return nil
}
