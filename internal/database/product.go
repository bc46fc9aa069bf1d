package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/moolyamitra/product-scraper/internal/models"
)

// ErrProductNotFound is returned by Get when no row matches the key.
var ErrProductNotFound = errors.New("product not found")

// PersistError marks a store write failure. It is kept distinct from scrape
// failures so the two are never conflated in logs or responses.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

const productSchema = `
CREATE TABLE IF NOT EXISTS products (
	category    TEXT NOT NULL,
	product_id  TEXT NOT NULL,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	image       TEXT NOT NULL DEFAULT '',
	prices      JSONB NOT NULL DEFAULT '{}',
	tags        TEXT[] NOT NULL DEFAULT '{}',
	scraped_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (category, product_id)
)`

// ProductRepository stores ProductItems keyed by (category, product_id).
type ProductRepository struct {
	db *DB
}

func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, productSchema); err != nil {
		return fmt.Errorf("failed to create products table: %w", err)
	}
	return nil
}

// Upsert writes an item idempotently by its primary key. On conflict the
// scalar fields are replaced and the prices map is merged, so records for
// the same product scraped from different sites accumulate per-site prices.
func (r *ProductRepository) Upsert(ctx context.Context, item *models.ProductItem) error {
	prices, err := json.Marshal(item.Prices)
	if err != nil {
		return &PersistError{Op: "encode prices", Err: err}
	}

	query := `
		INSERT INTO products
			(category, product_id, name, description, image, prices, tags, scraped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (category, product_id) DO UPDATE SET
			name        = EXCLUDED.name,
			description = EXCLUDED.description,
			image       = EXCLUDED.image,
			prices      = products.prices || EXCLUDED.prices,
			tags        = EXCLUDED.tags,
			scraped_at  = EXCLUDED.scraped_at,
			updated_at  = now()
	`

	_, err = r.db.Exec(ctx, query,
		item.Category, item.ProductID, item.Name, item.Description,
		item.Image, prices, item.Tags, item.ScrapedAt)
	if err != nil {
		return &PersistError{Op: "upsert", Err: err}
	}

	return nil
}

// Get retrieves one item by its primary key.
func (r *ProductRepository) Get(ctx context.Context, category, productID string) (*models.ProductItem, error) {
	query := `
		SELECT category, product_id, name, description, image, prices, tags, scraped_at
		FROM products
		WHERE category = $1 AND product_id = $2
	`

	item := &models.ProductItem{}
	var prices []byte
	err := r.db.QueryRow(ctx, query, category, productID).Scan(
		&item.Category, &item.ProductID, &item.Name, &item.Description,
		&item.Image, &prices, &item.Tags, &item.ScrapedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if err := json.Unmarshal(prices, &item.Prices); err != nil {
		return nil, fmt.Errorf("failed to decode prices: %w", err)
	}

	return item, nil
}
