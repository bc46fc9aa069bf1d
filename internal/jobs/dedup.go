package jobs

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Deduper remembers which product URLs a site's batch jobs have already
// scraped, so repeated jobs do not re-scrape the whole catalog.
type Deduper interface {
	Seen(ctx context.Context, site, url string) (bool, error)
	Mark(ctx context.Context, site, url string) error
}

// RedisDeduper keeps one Redis set of visited product URLs per site.
type RedisDeduper struct {
	client *redis.Client
	prefix string
}

func NewRedisDeduper(client *redis.Client, prefix string) *RedisDeduper {
	if prefix == "" {
		prefix = "scraper:visited:"
	}
	return &RedisDeduper{client: client, prefix: prefix}
}

func (d *RedisDeduper) key(site string) string {
	return d.prefix + site
}

func (d *RedisDeduper) Seen(ctx context.Context, site, url string) (bool, error) {
	seen, err := d.client.SIsMember(ctx, d.key(site), url).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check visited set: %w", err)
	}
	return seen, nil
}

func (d *RedisDeduper) Mark(ctx context.Context, site, url string) error {
	if err := d.client.SAdd(ctx, d.key(site), url).Err(); err != nil {
		return fmt.Errorf("failed to mark url visited: %w", err)
	}
	return nil
}
