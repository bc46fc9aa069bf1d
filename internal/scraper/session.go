package scraper

import (
	"context"
	"time"

	"github.com/moolyamitra/product-scraper/internal/profile"
)

// Element is one resolved page element. Reads only, no interaction.
type Element interface {
	Text() (string, error)
	Attribute(name string) (string, error)
}

// Session is an active browsing session positioned on some page.
type Session interface {
	Navigate(ctx context.Context, url string) error
	// Find polls for an element matching the locator, waiting at most
	// timeout. A timeout and a locator the query engine rejects both come
	// back as errors.
	Find(ctx context.Context, loc profile.Locator, timeout time.Duration) (Element, error)
	CurrentURL() string
	Content() (string, error)
	Screenshot(path string) error
	Close() error
}

// SessionSource hands out browsing sessions. One session is acquired per
// scrape job and must be released on every exit path.
type SessionSource interface {
	NewSession(ctx context.Context) (Session, error)
}
