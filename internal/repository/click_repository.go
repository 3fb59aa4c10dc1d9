package repository

import (
	"context"
	"fmt"

	"github.com/SergeiKhy/shorturl-service/internal/models"
)

type ClickRepository interface {
	Add(ctx context.Context, click *models.Click) error
	ListByShortcode(ctx context.Context, shortcode string) ([]models.Click, error)
}

type clickRepository struct {
	db *PostgresDB
}

func NewClickRepository(db *PostgresDB) ClickRepository {
	return &clickRepository{db: db}
}

// Add записывает клик и инкрементирует счётчик родительской ссылки
// в одной транзакции: либо клик записан и посчитан, либо ни то ни другое.
func (r *clickRepository) Add(ctx context.Context, click *models.Click) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin click transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO clicks (shortcode, referrer, geo_location)
		VALUES ($1, $2, $3)
		RETURNING id, timestamp
	`, click.Shortcode, click.Referrer, click.GeoLocation).Scan(&click.ID, &click.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert click: %w", err)
	}

	result, err := tx.Exec(ctx, `
		UPDATE short_urls SET clicks = clicks + 1 WHERE shortcode = $1
	`, click.Shortcode)
	if err != nil {
		return fmt.Errorf("failed to increment click counter: %w", err)
	}
	if result.RowsAffected() == 0 {
		// Родительская строка исчезла между резолвом и записью клика
		return ErrShortURLNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit click transaction: %w", err)
	}

	return nil
}

// ListByShortcode возвращает историю кликов, новые первыми.
func (r *clickRepository) ListByShortcode(ctx context.Context, shortcode string) ([]models.Click, error) {
	query := `
		SELECT id, shortcode, timestamp, referrer, geo_location
		FROM clicks
		WHERE shortcode = $1
		ORDER BY timestamp DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, shortcode)
	if err != nil {
		return nil, fmt.Errorf("failed to list clicks: %w", err)
	}
	defer rows.Close()

	var clicks []models.Click
	for rows.Next() {
		var click models.Click
		if err := rows.Scan(
			&click.ID,
			&click.Shortcode,
			&click.Timestamp,
			&click.Referrer,
			&click.GeoLocation,
		); err != nil {
			return nil, fmt.Errorf("failed to scan click: %w", err)
		}
		clicks = append(clicks, click)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clicks: %w", err)
	}

	return clicks, nil
}
