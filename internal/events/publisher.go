package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event
type EventType string

const (
	// EventTypeProductScraped is published after a product is persisted.
	EventTypeProductScraped EventType = "PRODUCT_SCRAPED"
)

// ProductScrapedPayload carries the details of one persisted scrape.
type ProductScrapedPayload struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	JobID     string    `json:"job_id,omitempty"`
	Site      string    `json:"site"`
	Category  string    `json:"category"`
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Source    string    `json:"source"`
}

// StreamClient is the slice of go-redis used for publishing (for testing).
type StreamClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
}

// Publisher publishes scrape events to a Redis stream. Publishing is
// best-effort: a failed publish is the caller's to log, never to fail a
// request over.
type Publisher struct {
	client StreamClient
	stream string
	logger *slog.Logger
}

func NewPublisher(client StreamClient, stream string, logger *slog.Logger) *Publisher {
	return &Publisher{
		client: client,
		stream: stream,
		logger: logger.With("component", "event_publisher"),
	}
}

// PublishProductScraped fills in event metadata and appends the event to
// the configured stream.
func (p *Publisher) PublishProductScraped(ctx context.Context, payload *ProductScrapedPayload) error {
	if payload.EventID == "" {
		payload.EventID = uuid.New().String()
	}
	if payload.EventType == "" {
		payload.EventType = string(EventTypeProductScraped)
	}
	if payload.Timestamp.IsZero() {
		payload.Timestamp = time.Now()
	}
	if payload.Source == "" {
		payload.Source = "scraper"
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"data":         string(data),
			"event_type":   payload.EventType,
			"timestamp":    fmt.Sprintf("%d", payload.Timestamp.UnixNano()),
			"aggregate_id": payload.ProductID,
		},
	}

	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}

	p.logger.Debug("event published",
		"event_id", payload.EventID,
		"stream", p.stream,
		"product_id", payload.ProductID,
	)
	return nil
}
