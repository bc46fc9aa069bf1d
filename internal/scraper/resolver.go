package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/moolyamitra/product-scraper/internal/profile"
)

// Resolve tries each locator of set in order against the session, waiting at
// most timeout per candidate, and returns the first element found. A
// candidate that times out or is rejected by the query engine counts as a
// miss and the next one is tried; exhaustion yields ErrNotFound and the
// caller decides whether that is fatal. Resolution only reads the page.
//
// Worst-case wall clock is timeout multiplied by the set length.
func Resolve(ctx context.Context, session Session, set profile.SelectorSet, timeout time.Duration, logger *slog.Logger) (Element, error) {
	if len(set) == 0 {
		return nil, &ConfigError{Reason: "empty selector set"}
	}

	for i, loc := range set {
		el, err := session.Find(ctx, loc, timeout)
		if err == nil {
			if i > 0 {
				logger.Debug("fallback selector matched", "locator", loc.String(), "candidate", i+1)
			}
			return el, nil
		}
		logger.Debug("selector candidate missed",
			"locator", loc.String(),
			"candidate", i+1,
			"candidates", len(set),
			"error", err,
		)
	}

	return nil, ErrNotFound
}
