package jobs

import (
	"context"
	"log/slog"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/moolyamitra/product-scraper/internal/events"
	"github.com/moolyamitra/product-scraper/internal/models"
	"github.com/moolyamitra/product-scraper/internal/profile"
	"github.com/moolyamitra/product-scraper/internal/ratelimit"
	"github.com/moolyamitra/product-scraper/internal/scraper"
)

// Scraper scrapes a known product page.
type Scraper interface {
	ScrapeProduct(ctx context.Context, site, productURL string) (*models.ScrapedRecord, error)
}

// Store persists product items.
type Store interface {
	Upsert(ctx context.Context, item *models.ProductItem) error
}

// Publisher announces persisted scrapes.
type Publisher interface {
	PublishProductScraped(ctx context.Context, payload *events.ProductScrapedPayload) error
}

// SitemapSource discovers and reads a site's sitemaps.
type SitemapSource interface {
	Discover(ctx context.Context, baseURL string) ([]string, error)
	FetchURLs(ctx context.Context, sitemapURL string) ([]string, error)
}

// Manager launches fire-and-forget sitemap crawl jobs. A job's outcome is
// observable only through the store and logs; there is no status surface
// and no mid-job cancellation.
type Manager struct {
	profiles  *profile.Registry
	scraper   Scraper
	store     Store
	publisher Publisher
	sitemaps  SitemapSource
	dedup     Deduper
	limiter   ratelimit.RateLimiter
	logger    *slog.Logger
	maxItems  int
}

type ManagerConfig struct {
	// ItemDelay is the fixed pause between successive product scrapes.
	ItemDelay time.Duration
	// MaxItems bounds how many products one job will attempt; 0 means
	// unbounded.
	MaxItems int
}

func NewManager(profiles *profile.Registry, sc Scraper, store Store, publisher Publisher, sitemaps SitemapSource, dedup Deduper, cfg ManagerConfig, logger *slog.Logger) *Manager {
	return &Manager{
		profiles:  profiles,
		scraper:   sc,
		store:     store,
		publisher: publisher,
		sitemaps:  sitemaps,
		dedup:     dedup,
		limiter:   ratelimit.NewFixedRateLimiter(cfg.ItemDelay),
		logger:    logger.With("component", "job_manager"),
		maxItems:  cfg.MaxItems,
	}
}

// LaunchSitemapJob validates the site and starts the crawl in the
// background, returning the job id immediately.
func (m *Manager) LaunchSitemapJob(site string) (string, error) {
	prof, ok := m.profiles.Lookup(site)
	if !ok {
		return "", &scraper.ConfigError{Site: site, Reason: "unknown site"}
	}

	jobID := uuid.New().String()
	go m.run(jobID, prof)
	return jobID, nil
}

// run executes one sitemap job to completion. It is detached from the
// triggering request: server shutdown does not cancel a running job.
func (m *Manager) run(jobID string, prof *profile.SiteProfile) {
	ctx := context.Background()
	logger := m.logger.With("job_id", jobID, "site", prof.Site)
	started := time.Now()
	logger.Info("sitemap job started")

	sitemaps, err := m.sitemaps.Discover(ctx, prof.BaseURL)
	if err != nil {
		logger.Error("sitemap discovery failed", "error", err)
		return
	}

	var scraped, skipped, failed int
crawl:
	for _, sm := range sitemaps {
		urls, err := m.sitemaps.FetchURLs(ctx, sm)
		if err != nil {
			logger.Error("failed to fetch sitemap", "sitemap", sm, "error", err)
			continue
		}
		logger.Info("sitemap fetched", "sitemap", sm, "urls", len(urls))

		for _, u := range urls {
			if !prof.MatchProductURL(u) {
				continue
			}
			if m.maxItems > 0 && scraped+failed >= m.maxItems {
				logger.Info("job item cap reached", "max_items", m.maxItems)
				break crawl
			}

			seen, derr := m.dedup.Seen(ctx, prof.Site, u)
			if derr != nil {
				logger.Warn("dedup check failed", "url", u, "error", derr)
			} else if seen {
				skipped++
				continue
			}

			if err := m.limiter.Wait(ctx); err != nil {
				logger.Error("job interrupted while pacing", "error", err)
				return
			}

			if err := m.scrapeOne(ctx, jobID, prof, u, logger); err != nil {
				failed++
				logger.Error("product scrape failed", "url", u, "error", err)
				continue
			}
			scraped++
		}
	}

	logger.Info("sitemap job finished",
		"scraped", scraped,
		"skipped", skipped,
		"failed", failed,
		"duration", time.Since(started).String(),
	)
}

func (m *Manager) scrapeOne(ctx context.Context, jobID string, prof *profile.SiteProfile, productURL string, logger *slog.Logger) error {
	rec, err := m.scraper.ScrapeProduct(ctx, prof.Site, productURL)
	if err != nil {
		return err
	}

	productID, ok := prof.ProductID(productURL)
	if !ok {
		productID = slugFromURL(productURL)
	}

	siteName := profile.TitleCase(prof.Site)
	item := models.NewProductItem(rec, prof.DefaultCategory, productID, siteName, productURL)
	if err := m.store.Upsert(ctx, item); err != nil {
		return err
	}

	if err := m.dedup.Mark(ctx, prof.Site, productURL); err != nil {
		logger.Warn("failed to mark url visited", "url", productURL, "error", err)
	}

	if m.publisher != nil {
		payload := &events.ProductScrapedPayload{
			JobID:     jobID,
			Site:      prof.Site,
			Category:  item.Category,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     rec.Price,
		}
		if perr := m.publisher.PublishProductScraped(ctx, payload); perr != nil {
			logger.Warn("event publish failed", "product_id", item.ProductID, "error", perr)
		}
	}

	logger.Info("product persisted", "product_id", item.ProductID, "name", item.Name)
	return nil
}

// slugFromURL falls back to the last path segment when the profile's id
// pattern does not match a discovered URL.
func slugFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return path.Base(u.Path)
}
