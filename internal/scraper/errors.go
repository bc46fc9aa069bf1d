package scraper

import (
	"errors"
	"fmt"

	"github.com/moolyamitra/product-scraper/internal/profile"
)

var (
	// ErrNotFound means every candidate in a selector set missed.
	ErrNotFound = errors.New("no selector candidate matched")

	// ErrNoSearchResults means the search-result link could not be resolved.
	ErrNoSearchResults = errors.New("no search results found")

	// ErrCaptchaDetected means the site served an anti-bot interstitial.
	// Fatal for the current job; no retry is attempted.
	ErrCaptchaDetected = errors.New("captcha page detected")

	// ErrMalformedPrice means the price text did not reduce to a number.
	ErrMalformedPrice = errors.New("malformed price text")
)

// ConfigError marks a broken site configuration: an unknown site identifier
// or an empty selector set. Fails the request immediately.
type ConfigError struct {
	Site   string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Site == "" {
		return "site configuration error: " + e.Reason
	}
	return fmt.Sprintf("site configuration error (%s): %s", e.Site, e.Reason)
}

// FieldNotFoundError reports that every fallback selector for a required
// field missed; the scrape aborts without a partial record.
type FieldNotFoundError struct {
	Field profile.Field
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field %q not found on page", e.Field)
}

// IsNotFound reports whether err is any of the "could not find" outcomes
// surfaced to callers as a user-facing not-found condition.
func IsNotFound(err error) bool {
	var fieldErr *FieldNotFoundError
	return errors.Is(err, ErrNoSearchResults) ||
		errors.Is(err, ErrMalformedPrice) ||
		errors.Is(err, ErrNotFound) ||
		errors.As(err, &fieldErr)
}

func isClassified(err error) bool {
	var configErr *ConfigError
	return IsNotFound(err) ||
		errors.Is(err, ErrCaptchaDetected) ||
		errors.As(err, &configErr)
}
