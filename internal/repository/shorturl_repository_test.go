package repository_test

import (
	"testing"
	"time"

	"github.com/SergeiKhy/shorturl-service/internal/models"
	"github.com/SergeiKhy/shorturl-service/internal/repository"
	"github.com/SergeiKhy/shorturl-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShortURL(code string, expiry time.Time) *models.ShortURL {
	return &models.ShortURL{
		Shortcode:   code,
		OriginalURL: "https://example.com/" + code,
		CreatedAt:   time.Now(),
		Expiry:      expiry,
	}
}

// TestShortURLRepository_CreateAndGet проверяет создание и чтение ссылки
func TestShortURLRepository_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционный тест в коротком режиме")
	}

	db := testutil.SetupPostgres(t)
	repo := repository.NewShortURLRepository(db)
	ctx := t.Context()

	url := newShortURL("abcd1234", time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, url))
	assert.NotZero(t, url.ID)
	assert.Equal(t, int64(0), url.Clicks)

	got, err := repo.GetActive(ctx, "abcd1234")
	require.NoError(t, err)
	assert.Equal(t, url.ID, got.ID)
	assert.Equal(t, "https://example.com/abcd1234", got.OriginalURL)
	assert.Equal(t, int64(0), got.Clicks)
}

// TestShortURLRepository_DuplicateShortcode проверяет маппинг unique violation
func TestShortURLRepository_DuplicateShortcode(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционный тест в коротком режиме")
	}

	db := testutil.SetupPostgres(t)
	repo := repository.NewShortURLRepository(db)
	ctx := t.Context()

	require.NoError(t, repo.Create(ctx, newShortURL("dup1", time.Now().Add(time.Hour))))

	err := repo.Create(ctx, newShortURL("dup1", time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, repository.ErrShortcodeTaken)
}

// TestShortURLRepository_ExpiredNotActive проверяет, что истёкшая строка
// не отдаётся как активная, но продолжает занимать shortcode
func TestShortURLRepository_ExpiredNotActive(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционный тест в коротком режиме")
	}

	db := testutil.SetupPostgres(t)
	repo := repository.NewShortURLRepository(db)
	ctx := t.Context()

	require.NoError(t, repo.Create(ctx, newShortURL("old1", time.Now().Add(-time.Minute))))

	_, err := repo.GetActive(ctx, "old1")
	assert.ErrorIs(t, err, repository.ErrShortURLNotFound)

	available, err := repo.IsAvailable(ctx, "old1")
	require.NoError(t, err)
	assert.False(t, available, "истёкшая строка занимает shortcode до очистки")
}

// TestShortURLRepository_IsAvailable проверяет свободный shortcode
func TestShortURLRepository_IsAvailable(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционный тест в коротком режиме")
	}

	db := testutil.SetupPostgres(t)
	repo := repository.NewShortURLRepository(db)
	ctx := t.Context()

	available, err := repo.IsAvailable(ctx, "free1")
	require.NoError(t, err)
	assert.True(t, available)

	require.NoError(t, repo.Create(ctx, newShortURL("free1", time.Now().Add(time.Hour))))

	available, err = repo.IsAvailable(ctx, "free1")
	require.NoError(t, err)
	assert.False(t, available)
}

// TestShortURLRepository_DeleteExpired проверяет очистку истёкших ссылок
// вместе с их кликами
func TestShortURLRepository_DeleteExpired(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционный тест в коротком режиме")
	}

	db := testutil.SetupPostgres(t)
	repo := repository.NewShortURLRepository(db)
	clickRepo := repository.NewClickRepository(db)
	ctx := t.Context()

	require.NoError(t, repo.Create(ctx, newShortURL("gone1", time.Now().Add(-time.Hour))))
	require.NoError(t, repo.Create(ctx, newShortURL("gone2", time.Now().Add(-time.Minute))))
	require.NoError(t, repo.Create(ctx, newShortURL("alive1", time.Now().Add(time.Hour))))

	// Клики истёкшей ссылки должны удалиться вместе с ней
	require.NoError(t, clickRepo.Add(ctx, &models.Click{Shortcode: "gone1", Referrer: "direct", GeoLocation: "{}"}))

	deleted, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	// shortcode освободился
	available, err := repo.IsAvailable(ctx, "gone1")
	require.NoError(t, err)
	assert.True(t, available)

	clicks, err := clickRepo.ListByShortcode(ctx, "gone1")
	require.NoError(t, err)
	assert.Empty(t, clicks, "клики удаляются каскадно вместе со ссылкой")

	// Живая ссылка не тронута
	_, err = repo.GetActive(ctx, "alive1")
	assert.NoError(t, err)

	// Повторный проход ничего не находит
	deleted, err = repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}
