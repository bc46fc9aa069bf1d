package scraper

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolyamitra/product-scraper/internal/profile"
)

const (
	testSearchURL  = "https://www.amazon.in/s?k=wireless+mouse"
	testProductURL = "https://www.amazon.in/dp/B01MOUSE42X"
)

const testProfilesJSON = `[
  {
    "site": "amazon",
    "base_url": "https://www.amazon.in",
    "search_url_format": "https://www.amazon.in/s?k=%s",
    "query_joiner": "+",
    "captcha_signatures": ["Enter the characters you see below"],
    "product_url_pattern": "/dp/[A-Z0-9]{10}",
    "product_id_pattern": "/dp/([A-Z0-9]{10})",
    "default_category": "Uncategorized",
    "selectors": {
      "link":  [{"kind": "css", "value": "a.result"}],
      "name":  [{"kind": "id", "value": "productTitle"}, {"kind": "css", "value": "span.title"}],
      "price": [{"kind": "css", "value": "span.price"}],
      "image": [{"kind": "id", "value": "landingImage"}]
    }
  }
]`

func testRegistry(t *testing.T) *profile.Registry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.json")
	require.NoError(t, os.WriteFile(path, []byte(testProfilesJSON), 0o644))

	reg, err := profile.NewRegistry(path)
	require.NoError(t, err)
	return reg
}

func testPages() map[string]*fakePage {
	return map[string]*fakePage{
		testSearchURL: {
			content: "<html><title>search results</title></html>",
			elements: map[string]*fakeElement{
				"css=a.result": {attrs: map[string]string{"href": "/dp/B01MOUSE42X"}},
			},
		},
		testProductURL: {
			content: "<html><title>product</title></html>",
			elements: map[string]*fakeElement{
				"id=productTitle": {text: "Logitech Wireless Mouse"},
				"css=span.price":  {text: "₹1,999"},
				"id=landingImage": {attrs: map[string]string{"src": "https://m.media.example/mouse.jpg"}},
			},
		},
	}
}

func newTestService(t *testing.T, session *fakeSession) *Service {
	t.Helper()
	return NewService(&fakeSource{session: session}, testRegistry(t), Options{
		SelectorTimeout: 10 * time.Millisecond,
	}, testLogger)
}

func TestScrapeSearchSuccess(t *testing.T) {
	session := newFakeSession(testPages())
	svc := newTestService(t, session)

	rec, err := svc.ScrapeSearch(context.Background(), "amazon", "wireless mouse")
	require.NoError(t, err)

	assert.Equal(t, "Logitech Wireless Mouse", rec.Name)
	assert.Equal(t, float64(1999), rec.Price)
	assert.Equal(t, "https://m.media.example/mouse.jpg", rec.ImageURL)

	// The relative result link resolves against the site's base URL.
	require.Equal(t, []string{testSearchURL, testProductURL}, session.navCalls)
	assert.True(t, session.closed, "session must be released on success")
}

func TestScrapeSearchAbsoluteLinkPassesThrough(t *testing.T) {
	pages := testPages()
	pages[testSearchURL].elements["css=a.result"] =
		&fakeElement{attrs: map[string]string{"href": testProductURL}}
	session := newFakeSession(pages)
	svc := newTestService(t, session)

	_, err := svc.ScrapeSearch(context.Background(), "amazon", "wireless mouse")
	require.NoError(t, err)
	assert.Equal(t, testProductURL, session.navCalls[1])
}

func TestScrapeSearchUnknownSite(t *testing.T) {
	session := newFakeSession(testPages())
	svc := newTestService(t, session)

	_, err := svc.ScrapeSearch(context.Background(), "ebay", "wireless mouse")

	var configErr *ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, "ebay", configErr.Site)
}

func TestScrapeSearchCaptchaAbortsBeforeFieldResolution(t *testing.T) {
	pages := testPages()
	pages[testSearchURL].content = "<html>Enter the characters you see below</html>"
	session := newFakeSession(pages)
	svc := newTestService(t, session)

	_, err := svc.ScrapeSearch(context.Background(), "amazon", "wireless mouse")

	assert.ErrorIs(t, err, ErrCaptchaDetected)
	assert.Empty(t, session.findCalls, "no selector queries may run on a captcha page")
	assert.True(t, session.closed, "session must be released on captcha abort")
}

func TestScrapeSearchNoResults(t *testing.T) {
	pages := testPages()
	delete(pages[testSearchURL].elements, "css=a.result")
	session := newFakeSession(pages)
	svc := newTestService(t, session)

	_, err := svc.ScrapeSearch(context.Background(), "amazon", "wireless mouse")
	assert.ErrorIs(t, err, ErrNoSearchResults)
}

func TestScrapeSearchFieldMissAbortsRemainingFields(t *testing.T) {
	pages := testPages()
	delete(pages[testProductURL].elements, "css=span.price")
	session := newFakeSession(pages)
	svc := newTestService(t, session)

	_, err := svc.ScrapeSearch(context.Background(), "amazon", "wireless mouse")

	var fieldErr *FieldNotFoundError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, profile.FieldPrice, fieldErr.Field)

	for _, call := range session.findCalls {
		assert.NotEqual(t, "landingImage", call.Value,
			"image resolution must not run after the price miss")
	}
	assert.True(t, session.closed, "session must be released on field miss")
}

func TestScrapeSearchMalformedPrice(t *testing.T) {
	pages := testPages()
	pages[testProductURL].elements["css=span.price"] = &fakeElement{text: "N/A"}
	session := newFakeSession(pages)
	svc := newTestService(t, session)

	_, err := svc.ScrapeSearch(context.Background(), "amazon", "wireless mouse")
	assert.ErrorIs(t, err, ErrMalformedPrice)
}

func TestScrapeProductDirect(t *testing.T) {
	session := newFakeSession(testPages())
	svc := newTestService(t, session)

	rec, err := svc.ScrapeProduct(context.Background(), "amazon", testProductURL)
	require.NoError(t, err)

	assert.Equal(t, "Logitech Wireless Mouse", rec.Name)
	assert.Equal(t, []string{testProductURL}, session.navCalls)
}

func TestScrapeSearchNameFallbackSelector(t *testing.T) {
	pages := testPages()
	delete(pages[testProductURL].elements, "id=productTitle")
	pages[testProductURL].elements["css=span.title"] = &fakeElement{text: "Fallback Mouse"}
	session := newFakeSession(pages)
	svc := newTestService(t, session)

	rec, err := svc.ScrapeSearch(context.Background(), "amazon", "wireless mouse")
	require.NoError(t, err)
	assert.Equal(t, "Fallback Mouse", rec.Name)
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		href string
		want string
	}{
		{name: "relative path", base: "https://www.amazon.in", href: "/dp/XYZ", want: "https://www.amazon.in/dp/XYZ"},
		{name: "absolute unchanged", base: "https://www.amazon.in", href: "https://other.example/dp/XYZ", want: "https://other.example/dp/XYZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveURL(tt.base, tt.href)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
