package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CleanupWorker периодически удаляет истёкшие ссылки.
// Работает независимо от трафика запросов и не держит блокировок:
// удаляются только строки, которые чтение уже считает отсутствующими.
type CleanupWorker struct {
	service  ShortenerService
	interval time.Duration
	logger   *zap.Logger
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewCleanupWorker(service ShortenerService, interval time.Duration, logger *zap.Logger) *CleanupWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CleanupWorker{
		service:  service,
		interval: interval,
		logger:   logger,
	}
}

// Start запускает фоновую очистку
func (w *CleanupWorker) Start() {
	w.ctx, w.cancel = context.WithCancel(context.Background())

	w.logger.Info("Запуск фоновой очистки истёкших ссылок", zap.Duration("interval", w.interval))

	w.wg.Add(1)
	go w.run()
}

// Stop корректно останавливает фоновую очистку
func (w *CleanupWorker) Stop() {
	w.logger.Info("Остановка фоновой очистки...")
	w.cancel()
	w.wg.Wait()
	w.logger.Info("Фоновая очистка остановлена")
}

func (w *CleanupWorker) run() {
	defer w.wg.Done()

	// Первый проход сразу при старте, дальше по тикеру
	w.sweep()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *CleanupWorker) sweep() {
	ctx, cancel := context.WithTimeout(w.ctx, 30*time.Second)
	defer cancel()

	count := w.service.CleanupExpired(ctx)
	if count > 0 {
		w.logger.Info("Удалены истёкшие ссылки", zap.Int64("count", count))
	}
}
