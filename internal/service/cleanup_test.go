package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/SergeiKhy/shorturl-service/internal/models"
	"github.com/SergeiKhy/shorturl-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCleanupWorker_SweepsOnStart проверяет, что воркер делает первый проход
// сразу при запуске
func TestCleanupWorker_SweepsOnStart(t *testing.T) {
	env := setupTestService()

	env.urlRepo.Seed(&models.ShortURL{
		Shortcode:   "sweepme1",
		OriginalURL: "https://example.com/old",
		CreatedAt:   time.Now().Add(-2 * time.Hour),
		Expiry:      time.Now().Add(-time.Hour),
	})

	worker := service.NewCleanupWorker(env.service, time.Hour, nil)
	worker.Start()
	defer worker.Stop()

	// Первый проход выполняется синхронно с точки зрения горутины воркера,
	// даём ему немного времени
	require.Eventually(t, func() bool {
		available, _ := env.urlRepo.IsAvailable(context.Background(), "sweepme1")
		return available
	}, time.Second, 10*time.Millisecond, "истёкшая ссылка должна быть удалена при старте")
}

// TestCleanupWorker_PeriodicSweep проверяет периодические проходы по тикеру
func TestCleanupWorker_PeriodicSweep(t *testing.T) {
	env := setupTestService()

	worker := service.NewCleanupWorker(env.service, 20*time.Millisecond, nil)
	worker.Start()
	defer worker.Stop()

	// Ссылка истекает уже после старта воркера
	env.urlRepo.Seed(&models.ShortURL{
		Shortcode:   "sweepme2",
		OriginalURL: "https://example.com/old",
		CreatedAt:   time.Now().Add(-time.Hour),
		Expiry:      time.Now().Add(10 * time.Millisecond),
	})

	require.Eventually(t, func() bool {
		available, _ := env.urlRepo.IsAvailable(context.Background(), "sweepme2")
		return available
	}, time.Second, 10*time.Millisecond, "истёкшая ссылка должна быть удалена периодическим проходом")
}

// TestCleanupWorker_StopIsClean проверяет корректную остановку воркера
func TestCleanupWorker_StopIsClean(t *testing.T) {
	env := setupTestService()

	worker := service.NewCleanupWorker(env.service, 10*time.Millisecond, nil)
	worker.Start()

	time.Sleep(30 * time.Millisecond)
	worker.Stop()

	// После Stop новых проходов нет
	env.urlRepo.Seed(&models.ShortURL{
		Shortcode:   "leftover",
		OriginalURL: "https://example.com/old",
		CreatedAt:   time.Now().Add(-time.Hour),
		Expiry:      time.Now().Add(-time.Minute),
	})

	time.Sleep(50 * time.Millisecond)
	available, _ := env.urlRepo.IsAvailable(context.Background(), "leftover")
	assert.False(t, available, "после остановки воркера очистка не должна выполняться")
}
