package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/moolyamitra/product-scraper/internal/profile"
)

type fakeElement struct {
	text  string
	attrs map[string]string
}

func (e *fakeElement) Text() (string, error) {
	return e.text, nil
}

func (e *fakeElement) Attribute(name string) (string, error) {
	v, ok := e.attrs[name]
	if !ok {
		return "", fmt.Errorf("no attribute %q", name)
	}
	return v, nil
}

type fakePage struct {
	content  string
	elements map[string]*fakeElement // keyed by Locator.String()
}

type fakeSession struct {
	pages       map[string]*fakePage // keyed by URL
	currentURL  string
	findCalls   []profile.Locator
	navCalls    []string
	findErrs    map[string]error // forced Find errors, keyed by Locator.String()
	sleepOnMiss bool             // burn the full per-candidate timeout on misses
	screenshots []string
	closed      bool
}

func newFakeSession(pages map[string]*fakePage) *fakeSession {
	return &fakeSession{pages: pages, findErrs: map[string]error{}}
}

// newFakeSessionAt builds a session already positioned on a single page,
// for resolver tests that never navigate.
func newFakeSessionAt(page *fakePage) *fakeSession {
	s := newFakeSession(map[string]*fakePage{"about:blank": page})
	s.currentURL = "about:blank"
	return s
}

func (s *fakeSession) Navigate(ctx context.Context, url string) error {
	if _, ok := s.pages[url]; !ok {
		return fmt.Errorf("no such page %s", url)
	}
	s.currentURL = url
	s.navCalls = append(s.navCalls, url)
	return nil
}

func (s *fakeSession) Find(ctx context.Context, loc profile.Locator, timeout time.Duration) (Element, error) {
	s.findCalls = append(s.findCalls, loc)

	if err, ok := s.findErrs[loc.String()]; ok {
		return nil, err
	}
	if page, ok := s.pages[s.currentURL]; ok {
		if el, ok := page.elements[loc.String()]; ok {
			return el, nil
		}
	}
	if s.sleepOnMiss {
		time.Sleep(timeout)
	}
	return nil, fmt.Errorf("locator %s: timed out", loc)
}

func (s *fakeSession) CurrentURL() string {
	return s.currentURL
}

func (s *fakeSession) Content() (string, error) {
	if page, ok := s.pages[s.currentURL]; ok {
		return page.content, nil
	}
	return "", nil
}

func (s *fakeSession) Screenshot(path string) error {
	s.screenshots = append(s.screenshots, path)
	return nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeSource struct {
	session *fakeSession
}

func (f *fakeSource) NewSession(ctx context.Context) (Session, error) {
	return f.session, nil
}
