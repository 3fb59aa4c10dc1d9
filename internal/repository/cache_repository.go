package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SergeiKhy/shorturl-service/internal/models"
)

type CacheRepository interface {
	Get(ctx context.Context, shortcode string) (*models.ShortURL, error)
	Set(ctx context.Context, shortcode string, url *models.ShortURL, ttl time.Duration) error
	Delete(ctx context.Context, shortcode string) error
}

type cacheRepository struct {
	redis *RedisDB
}

func NewCacheRepository(redis *RedisDB) CacheRepository {
	return &cacheRepository{redis: redis}
}

func (r *cacheRepository) Get(ctx context.Context, shortcode string) (*models.ShortURL, error) {
	data, err := r.redis.Client.Get(ctx, r.key(shortcode)).Bytes()
	if err != nil {
		return nil, err
	}

	var url models.ShortURL
	if err := json.Unmarshal(data, &url); err != nil {
		return nil, fmt.Errorf("failed to unmarshal short url: %w", err)
	}

	return &url, nil
}

// Set кэширует ссылку. TTL всегда ограничен остатком срока жизни,
// поэтому истёкшая ссылка не может быть отдана из кэша.
func (r *cacheRepository) Set(ctx context.Context, shortcode string, url *models.ShortURL, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(url)
	if err != nil {
		return fmt.Errorf("failed to marshal short url: %w", err)
	}

	return r.redis.Client.Set(ctx, r.key(shortcode), data, ttl).Err()
}

func (r *cacheRepository) Delete(ctx context.Context, shortcode string) error {
	return r.redis.Client.Del(ctx, r.key(shortcode)).Err()
}

func (r *cacheRepository) key(shortcode string) string {
	return "shorturl:" + shortcode
}
