package models

import (
	"fmt"
	"time"
)

// ScrapedRecord is the normalized result of one product-page scrape.
// It is assembled once by the scraper and never mutated afterwards.
type ScrapedRecord struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url"`
}

// ProductItem is the document persisted to the store, keyed by
// (Category, ProductID).
type ProductItem struct {
	Category    string             `json:"category"`
	ProductID   string             `json:"product_id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Image       string             `json:"image"`
	Prices      map[string]float64 `json:"prices"`
	Tags        []string           `json:"tags"`
	ScrapedAt   time.Time          `json:"scraped_at"`
}

// NewProductItem combines a scrape result with the request metadata.
// The prices map carries exactly one entry keyed by the display name of
// the site the record came from; merging across sites happens in the store.
func NewProductItem(rec *ScrapedRecord, category, productID, siteName, query string) *ProductItem {
	return &ProductItem{
		Category:    category,
		ProductID:   productID,
		Name:        rec.Name,
		Description: fmt.Sprintf("Scraped data for '%s'.", query),
		Image:       rec.ImageURL,
		Prices:      map[string]float64{siteName: rec.Price},
		Tags:        []string{category, "Scraped", siteName},
		ScrapedAt:   time.Now(),
	}
}

func (p *ProductItem) Validate() []string {
	var errs []string

	if p.Category == "" {
		errs = append(errs, "category is required")
	}
	if p.ProductID == "" {
		errs = append(errs, "product ID is required")
	}
	if p.Name == "" {
		errs = append(errs, "name is required")
	}
	for site, price := range p.Prices {
		if price < 0 {
			errs = append(errs, fmt.Sprintf("negative price for %s", site))
		}
	}

	return errs
}
