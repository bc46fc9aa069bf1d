package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"time"

	"github.com/moolyamitra/product-scraper/internal/models"
	"github.com/moolyamitra/product-scraper/internal/profile"
)

// Options tunes the sequencer. SelectorTimeout applies per selector
// candidate, not cumulatively.
type Options struct {
	SelectorTimeout time.Duration
	ScreenshotDir   string
}

// Service drives a browsing session through the scrape sequence:
// search page -> result link -> product page -> name/price/image.
type Service struct {
	sessions SessionSource
	profiles *profile.Registry
	logger   *slog.Logger
	opts     Options
}

func NewService(sessions SessionSource, profiles *profile.Registry, opts Options, logger *slog.Logger) *Service {
	if opts.SelectorTimeout <= 0 {
		opts.SelectorTimeout = 10 * time.Second
	}
	return &Service{
		sessions: sessions,
		profiles: profiles,
		logger:   logger.With("component", "scraper"),
		opts:     opts,
	}
}

// ScrapeSearch finds the first search result for a free-text query on the
// given site and scrapes its product page.
func (s *Service) ScrapeSearch(ctx context.Context, site, query string) (rec *models.ScrapedRecord, err error) {
	prof, ok := s.profiles.Lookup(site)
	if !ok {
		return nil, &ConfigError{Site: site, Reason: "unknown site"}
	}

	logger := s.logger.With("site", prof.Site, "query", query)

	session, err := s.sessions.NewSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open browsing session: %w", err)
	}
	defer session.Close()
	defer s.captureOnUnexpected(session, logger, &err)

	searchURL := prof.SearchURL(query)
	logger.Info("loading search page", "url", searchURL)
	if err := session.Navigate(ctx, searchURL); err != nil {
		return nil, fmt.Errorf("failed to load search page: %w", err)
	}
	if err := s.checkCaptcha(session, prof); err != nil {
		return nil, err
	}

	linkSet, perr := prof.SelectorsFor(profile.FieldLink)
	if perr != nil {
		return nil, &ConfigError{Site: prof.Site, Reason: perr.Error()}
	}
	linkEl, rerr := Resolve(ctx, session, linkSet, s.opts.SelectorTimeout, logger)
	if rerr != nil {
		if errors.Is(rerr, ErrNotFound) {
			logger.Info("no search results", "url", searchURL)
			return nil, ErrNoSearchResults
		}
		return nil, rerr
	}

	href, herr := linkEl.Attribute("href")
	if herr != nil || href == "" {
		logger.Info("search result link has no href")
		return nil, ErrNoSearchResults
	}
	productURL, uerr := resolveURL(prof.BaseURL, href)
	if uerr != nil {
		return nil, fmt.Errorf("bad product link %q: %w", href, uerr)
	}

	return s.scrapeFields(ctx, session, prof, productURL, logger)
}

// ScrapeProduct scrapes a known product-page URL directly, skipping the
// search step. Used by sitemap batch jobs.
func (s *Service) ScrapeProduct(ctx context.Context, site, productURL string) (rec *models.ScrapedRecord, err error) {
	prof, ok := s.profiles.Lookup(site)
	if !ok {
		return nil, &ConfigError{Site: site, Reason: "unknown site"}
	}

	logger := s.logger.With("site", prof.Site, "url", productURL)

	session, err := s.sessions.NewSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open browsing session: %w", err)
	}
	defer session.Close()
	defer s.captureOnUnexpected(session, logger, &err)

	return s.scrapeFields(ctx, session, prof, productURL, logger)
}

// scrapeFields loads the product page and resolves name, price and image in
// order. The first missing field aborts the rest; no partial record escapes.
func (s *Service) scrapeFields(ctx context.Context, session Session, prof *profile.SiteProfile, productURL string, logger *slog.Logger) (*models.ScrapedRecord, error) {
	logger.Info("loading product page", "url", productURL)
	if err := session.Navigate(ctx, productURL); err != nil {
		return nil, fmt.Errorf("failed to load product page: %w", err)
	}
	if err := s.checkCaptcha(session, prof); err != nil {
		return nil, err
	}

	name, err := s.resolveText(ctx, session, prof, profile.FieldName, logger)
	if err != nil {
		return nil, err
	}

	priceText, err := s.resolveText(ctx, session, prof, profile.FieldPrice, logger)
	if err != nil {
		return nil, err
	}
	price, err := ParsePrice(priceText)
	if err != nil {
		logger.Info("price text did not parse", "text", priceText)
		return nil, err
	}

	imageEl, err := s.resolveField(ctx, session, prof, profile.FieldImage, logger)
	if err != nil {
		return nil, err
	}
	imageURL, aerr := imageEl.Attribute("src")
	if aerr != nil {
		return nil, &FieldNotFoundError{Field: profile.FieldImage}
	}

	rec := &models.ScrapedRecord{
		Name:     name,
		Price:    price,
		ImageURL: imageURL,
	}
	logger.Info("scraped product", "name", rec.Name, "price", rec.Price)
	return rec, nil
}

func (s *Service) resolveField(ctx context.Context, session Session, prof *profile.SiteProfile, field profile.Field, logger *slog.Logger) (Element, error) {
	set, err := prof.SelectorsFor(field)
	if err != nil {
		return nil, &ConfigError{Site: prof.Site, Reason: err.Error()}
	}

	el, rerr := Resolve(ctx, session, set, s.opts.SelectorTimeout, logger.With("field", string(field)))
	if rerr != nil {
		if errors.Is(rerr, ErrNotFound) {
			logger.Info("required field missing", "field", string(field), "url", session.CurrentURL())
			return nil, &FieldNotFoundError{Field: field}
		}
		return nil, rerr
	}
	return el, nil
}

func (s *Service) resolveText(ctx context.Context, session Session, prof *profile.SiteProfile, field profile.Field, logger *slog.Logger) (string, error) {
	el, err := s.resolveField(ctx, session, prof, field, logger)
	if err != nil {
		return "", err
	}
	text, terr := el.Text()
	if terr != nil {
		return "", &FieldNotFoundError{Field: field}
	}
	return text, nil
}

func (s *Service) checkCaptcha(session Session, prof *profile.SiteProfile) error {
	content, err := session.Content()
	if err != nil {
		return fmt.Errorf("failed to read page source: %w", err)
	}
	if IsCaptchaPage(content, prof) {
		return fmt.Errorf("%w at %s", ErrCaptchaDetected, session.CurrentURL())
	}
	return nil
}

// captureOnUnexpected screenshots the page when a scrape fails for a reason
// outside the error taxonomy, as a selector-drift debugging artifact.
func (s *Service) captureOnUnexpected(session Session, logger *slog.Logger, errp *error) {
	err := *errp
	if err == nil || s.opts.ScreenshotDir == "" || isClassified(err) {
		return
	}

	path := filepath.Join(s.opts.ScreenshotDir, fmt.Sprintf("scrape-%d.png", time.Now().UnixNano()))
	if serr := session.Screenshot(path); serr != nil {
		logger.Error("failed to capture error screenshot", "error", serr)
		return
	}
	logger.Error("unexpected scrape failure, screenshot captured", "path", path, "error", err)
}

func resolveURL(base, href string) (string, error) {
	u, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	if u.IsAbs() {
		return href, nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(u).String(), nil
}
