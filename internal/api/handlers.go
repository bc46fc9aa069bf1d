package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/moolyamitra/product-scraper/internal/events"
	"github.com/moolyamitra/product-scraper/internal/models"
	"github.com/moolyamitra/product-scraper/internal/profile"
	"github.com/moolyamitra/product-scraper/internal/scraper"
)

// ProductScraper runs the search-to-record scrape sequence.
type ProductScraper interface {
	ScrapeSearch(ctx context.Context, site, query string) (*models.ScrapedRecord, error)
}

// ProductStore persists product items.
type ProductStore interface {
	Upsert(ctx context.Context, item *models.ProductItem) error
}

// JobLauncher starts background sitemap jobs.
type JobLauncher interface {
	LaunchSitemapJob(site string) (string, error)
}

// EventPublisher announces persisted scrapes; may be nil.
type EventPublisher interface {
	PublishProductScraped(ctx context.Context, payload *events.ProductScrapedPayload) error
}

type Handlers struct {
	scraper   ProductScraper
	store     ProductStore
	jobs      JobLauncher
	publisher EventPublisher
	logger    *slog.Logger
}

func NewHandlers(sc ProductScraper, store ProductStore, jobs JobLauncher, publisher EventPublisher, logger *slog.Logger) *Handlers {
	return &Handlers{
		scraper:   sc,
		store:     store,
		jobs:      jobs,
		publisher: publisher,
		logger:    logger,
	}
}

// ScrapeRequest asks for one product to be scraped and saved.
type ScrapeRequest struct {
	Query     string `json:"query"`
	Category  string `json:"category"`
	ProductID string `json:"product_id"`
	Site      string `json:"site"`
}

// ScrapeResponse is the envelope for scrape outcomes.
type ScrapeResponse struct {
	Status  string              `json:"status"`
	Message string              `json:"message"`
	Data    *models.ProductItem `json:"data,omitempty"`
}

// ScrapeAndSave handles the synchronous scrape-then-persist flow.
func (h *Handlers) ScrapeAndSave(w http.ResponseWriter, r *http.Request) {
	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		h.respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.Category == "" {
		h.respondError(w, http.StatusBadRequest, "category is required")
		return
	}
	if req.ProductID == "" {
		h.respondError(w, http.StatusBadRequest, "product_id is required")
		return
	}
	if req.Site == "" {
		req.Site = "amazon"
	}

	h.logger.Info("starting scrape", "site", req.Site, "query", req.Query, "product_id", req.ProductID)

	rec, err := h.scraper.ScrapeSearch(r.Context(), req.Site, req.Query)
	if err != nil {
		h.respondScrapeError(w, &req, err)
		return
	}

	siteName := profile.TitleCase(req.Site)
	item := models.NewProductItem(rec, req.Category, req.ProductID, siteName, req.Query)

	if err := h.store.Upsert(r.Context(), item); err != nil {
		h.logger.Error("failed to persist product",
			"site", req.Site, "product_id", req.ProductID, "error", err)
		h.respondJSON(w, http.StatusInternalServerError, ScrapeResponse{
			Status:  "error",
			Message: "Failed to save item to database.",
		})
		return
	}

	if h.publisher != nil {
		payload := &events.ProductScrapedPayload{
			Site:      req.Site,
			Category:  item.Category,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     rec.Price,
		}
		if perr := h.publisher.PublishProductScraped(r.Context(), payload); perr != nil {
			h.logger.Warn("event publish failed", "product_id", item.ProductID, "error", perr)
		}
	}

	h.logger.Info("scrape saved", "product_id", item.ProductID, "name", item.Name)
	h.respondJSON(w, http.StatusOK, ScrapeResponse{
		Status:  "success",
		Message: fmt.Sprintf("Successfully scraped and saved '%s'", rec.Name),
		Data:    item,
	})
}

// respondScrapeError maps the scrape error taxonomy onto HTTP statuses.
// Persistence failures never reach here; they are handled separately so the
// two failure classes stay distinct.
func (h *Handlers) respondScrapeError(w http.ResponseWriter, req *ScrapeRequest, err error) {
	var configErr *scraper.ConfigError

	switch {
	case errors.As(err, &configErr):
		h.logger.Error("scrape rejected by configuration", "site", req.Site, "error", err)
		h.respondError(w, http.StatusBadRequest, configErr.Error())

	case errors.Is(err, scraper.ErrCaptchaDetected):
		h.logger.Warn("scrape blocked by captcha", "site", req.Site, "query", req.Query)
		h.respondError(w, http.StatusBadGateway,
			fmt.Sprintf("Scrape of '%s' was blocked by an anti-bot check.", req.Query))

	case scraper.IsNotFound(err):
		h.logger.Info("product not found", "site", req.Site, "query", req.Query, "reason", err)
		h.respondError(w, http.StatusNotFound,
			fmt.Sprintf("Could not find product details for '%s' on %s.", req.Query, profile.TitleCase(req.Site)))

	default:
		h.logger.Error("scrape failed", "site", req.Site, "query", req.Query, "error", err)
		h.respondError(w, http.StatusInternalServerError, "scrape failed")
	}
}

// SitemapJobRequest asks for a whole-site crawl.
type SitemapJobRequest struct {
	Site string `json:"site"`
}

// SitemapJobResponse acknowledges a launched job. There is no status
// endpoint; progress shows up in the store and logs.
type SitemapJobResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// LaunchSitemapJob handles fire-and-forget batch job creation.
func (h *Handlers) LaunchSitemapJob(w http.ResponseWriter, r *http.Request) {
	var req SitemapJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Site == "" {
		h.respondError(w, http.StatusBadRequest, "site is required")
		return
	}

	jobID, err := h.jobs.LaunchSitemapJob(req.Site)
	if err != nil {
		var configErr *scraper.ConfigError
		if errors.As(err, &configErr) {
			h.respondError(w, http.StatusBadRequest, configErr.Error())
			return
		}
		h.logger.Error("failed to launch job", "site", req.Site, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to launch job")
		return
	}

	h.respondJSON(w, http.StatusAccepted, SitemapJobResponse{
		JobID:   jobID,
		Status:  "accepted",
		Message: fmt.Sprintf("Sitemap crawl of '%s' started", req.Site),
	})
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, ScrapeResponse{Status: "error", Message: message})
}
