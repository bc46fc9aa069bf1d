package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/moolyamitra/product-scraper/internal/profile"
	"github.com/moolyamitra/product-scraper/internal/scraper"
)

// session adapts one playwright page to the scraper's Session contract.
type session struct {
	page playwright.Page
}

// NewSession opens a fresh page in the shared browser context. Callers own
// the session and must Close it on every exit path.
func (b *Browser) NewSession(ctx context.Context) (scraper.Session, error) {
	page, err := b.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(float64(b.timeout.Milliseconds()))
	return &session{page: page}, nil
}

func (s *session) Navigate(ctx context.Context, url string) error {
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	return nil
}

func (s *session) Find(ctx context.Context, loc profile.Locator, timeout time.Duration) (scraper.Element, error) {
	sel, err := playwrightSelector(loc)
	if err != nil {
		return nil, err
	}

	locator := s.page.Locator(sel).First()
	if err := locator.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	}); err != nil {
		return nil, fmt.Errorf("locator %s: %w", loc, err)
	}

	return &element{locator: locator}, nil
}

func (s *session) CurrentURL() string {
	return s.page.URL()
}

func (s *session) Content() (string, error) {
	return s.page.Content()
}

func (s *session) Screenshot(path string) error {
	_, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}

func (s *session) Close() error {
	return s.page.Close()
}

// playwrightSelector maps a profile locator onto playwright selector syntax.
func playwrightSelector(loc profile.Locator) (string, error) {
	switch loc.Kind {
	case profile.ByID:
		return "#" + loc.Value, nil
	case profile.ByCSS:
		return loc.Value, nil
	case profile.ByXPath:
		return "xpath=" + loc.Value, nil
	default:
		return "", fmt.Errorf("unsupported locator kind %q", loc.Kind)
	}
}

type element struct {
	locator playwright.Locator
}

func (e *element) Text() (string, error) {
	return e.locator.TextContent()
}

func (e *element) Attribute(name string) (string, error) {
	return e.locator.GetAttribute(name)
}
