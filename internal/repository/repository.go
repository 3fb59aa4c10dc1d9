package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/SergeiKhy/shorturl-service/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Схема создаётся при старте, миграций нет.
// Две таблицы: short_urls и clicks, clicks ссылается на short_urls
// по строке shortcode (без каскадного удаления на уровне БД).
const schema = `
CREATE TABLE IF NOT EXISTS short_urls (
	id BIGSERIAL PRIMARY KEY,
	shortcode TEXT UNIQUE NOT NULL,
	original_url TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	expiry TIMESTAMPTZ NOT NULL,
	clicks BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS clicks (
	id BIGSERIAL PRIMARY KEY,
	shortcode TEXT NOT NULL,
	timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	referrer TEXT NOT NULL DEFAULT 'direct',
	geo_location TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_short_urls_expiry ON short_urls(expiry);
CREATE INDEX IF NOT EXISTS idx_clicks_shortcode ON clicks(shortcode);
`

type PostgresDB struct {
	Pool *pgxpool.Pool
}

func NewPostgresDB(cfg config.DBConfig) (*PostgresDB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DB config: %w", err)
	}

	// Настройка пула соединений
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &PostgresDB{Pool: pool}, nil
}

// Close освобождает пул. Повторный вызов безопасен.
func (db *PostgresDB) Close() {
	db.Pool.Close()
}
