package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/SergeiKhy/shorturl-service/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrShortURLNotFound = errors.New("короткая ссылка не найдена или истекла")
	ErrShortcodeTaken   = errors.New("shortcode уже занят")
)

// uniqueViolation код ошибки PostgreSQL для нарушения unique constraint
const uniqueViolation = "23505"

type ShortURLRepository interface {
	Create(ctx context.Context, url *models.ShortURL) error
	GetActive(ctx context.Context, shortcode string) (*models.ShortURL, error)
	IsAvailable(ctx context.Context, shortcode string) (bool, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type shortURLRepository struct {
	db *PostgresDB
}

func NewShortURLRepository(db *PostgresDB) ShortURLRepository {
	return &shortURLRepository{db: db}
}

func (r *shortURLRepository) Create(ctx context.Context, url *models.ShortURL) error {
	query := `
		INSERT INTO short_urls (shortcode, original_url, created_at, expiry)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, clicks
	`

	err := r.db.Pool.QueryRow(
		ctx,
		query,
		url.Shortcode,
		url.OriginalURL,
		url.CreatedAt,
		url.Expiry,
	).Scan(&url.ID, &url.CreatedAt, &url.Clicks)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrShortcodeTaken
		}
		return fmt.Errorf("failed to create short url: %w", err)
	}

	return nil
}

// GetActive возвращает ссылку только если её expiry ещё не наступил.
// Истёкшая, но ещё не удалённая sweep-ом строка считается отсутствующей.
func (r *shortURLRepository) GetActive(ctx context.Context, shortcode string) (*models.ShortURL, error) {
	query := `
		SELECT id, shortcode, original_url, created_at, expiry, clicks
		FROM short_urls
		WHERE shortcode = $1 AND expiry > NOW()
	`

	url := &models.ShortURL{}
	err := r.db.Pool.QueryRow(ctx, query, shortcode).Scan(
		&url.ID,
		&url.Shortcode,
		&url.OriginalURL,
		&url.CreatedAt,
		&url.Expiry,
		&url.Clicks,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShortURLNotFound
		}
		return nil, fmt.Errorf("failed to get short url: %w", err)
	}

	return url, nil
}

// IsAvailable проверяет, свободен ли shortcode. Проверка по всей таблице,
// истёкшая строка тоже занимает shortcode до момента очистки.
func (r *shortURLRepository) IsAvailable(ctx context.Context, shortcode string) (bool, error) {
	query := `SELECT COUNT(*) FROM short_urls WHERE shortcode = $1`

	var count int64
	if err := r.db.Pool.QueryRow(ctx, query, shortcode).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check shortcode availability: %w", err)
	}

	return count == 0, nil
}

// DeleteExpired удаляет все истёкшие ссылки вместе с их кликами
// в одной транзакции и возвращает количество удалённых ссылок.
func (r *shortURLRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin cleanup transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		DELETE FROM clicks
		WHERE shortcode IN (SELECT shortcode FROM short_urls WHERE expiry <= NOW())
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete orphaned clicks: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM short_urls WHERE expiry <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired urls: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit cleanup transaction: %w", err)
	}

	return result.RowsAffected(), nil
}
