package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SergeiKhy/shorturl-service/internal/models"
	"github.com/SergeiKhy/shorturl-service/internal/repository"
)

// MockShortURLRepository implements repository.ShortURLRepository for testing
type MockShortURLRepository struct {
	mu     sync.RWMutex
	urls   map[string]*models.ShortURL
	nextID int64

	// ForceUnavailable если true, IsAvailable всегда отвечает "занято"
	ForceUnavailable bool
}

func NewMockShortURLRepository() *MockShortURLRepository {
	return &MockShortURLRepository{
		urls:   make(map[string]*models.ShortURL),
		nextID: 1,
	}
}

func (m *MockShortURLRepository) Create(ctx context.Context, url *models.ShortURL) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.urls[url.Shortcode]; exists {
		return repository.ErrShortcodeTaken
	}

	url.ID = m.nextID
	m.nextID++
	stored := *url
	m.urls[url.Shortcode] = &stored
	return nil
}

func (m *MockShortURLRepository) GetActive(ctx context.Context, shortcode string) (*models.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	url, exists := m.urls[shortcode]
	if !exists || url.StatusAt(time.Now()) != models.StatusActive {
		return nil, repository.ErrShortURLNotFound
	}
	copied := *url
	return &copied, nil
}

// IsAvailable как и в реальном репозитории смотрит на все строки,
// включая истёкшие
func (m *MockShortURLRepository) IsAvailable(ctx context.Context, shortcode string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ForceUnavailable {
		return false, nil
	}

	_, exists := m.urls[shortcode]
	return !exists, nil
}

func (m *MockShortURLRepository) DeleteExpired(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var count int64
	for code, url := range m.urls {
		if url.StatusAt(now) == models.StatusExpired {
			delete(m.urls, code)
			count++
		}
	}
	return count, nil
}

// Seed кладёт строку в хранилище напрямую, минуя валидацию
func (m *MockShortURLRepository) Seed(url *models.ShortURL) {
	m.mu.Lock()
	defer m.mu.Unlock()
	url.ID = m.nextID
	m.nextID++
	stored := *url
	m.urls[url.Shortcode] = &stored
}

func (m *MockShortURLRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urls = make(map[string]*models.ShortURL)
	m.nextID = 1
}

// MockClickRepository implements repository.ClickRepository for testing
type MockClickRepository struct {
	mu     sync.RWMutex
	urls   *MockShortURLRepository
	clicks map[string][]models.Click
	nextID int64

	// FailAdd если true, Add возвращает ошибку (для проверки best-effort записи)
	FailAdd bool
}

func NewMockClickRepository(urls *MockShortURLRepository) *MockClickRepository {
	return &MockClickRepository{
		urls:   urls,
		clicks: make(map[string][]models.Click),
		nextID: 1,
	}
}

func (m *MockClickRepository) Add(ctx context.Context, click *models.Click) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailAdd {
		return context.DeadlineExceeded
	}

	// Атомарность insert + increment: без родительской строки клик не записывается
	m.urls.mu.Lock()
	url, exists := m.urls.urls[click.Shortcode]
	if !exists {
		m.urls.mu.Unlock()
		return repository.ErrShortURLNotFound
	}
	url.Clicks++
	m.urls.mu.Unlock()

	click.ID = m.nextID
	m.nextID++
	if click.Timestamp.IsZero() {
		click.Timestamp = time.Now()
	}
	m.clicks[click.Shortcode] = append(m.clicks[click.Shortcode], *click)
	return nil
}

func (m *MockClickRepository) ListByShortcode(ctx context.Context, shortcode string) ([]models.Click, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Click, len(m.clicks[shortcode]))
	copy(out, m.clicks[shortcode])
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (m *MockClickRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clicks = make(map[string][]models.Click)
	m.nextID = 1
}

// MockCacheRepository implements repository.CacheRepository for testing
type MockCacheRepository struct {
	mu    sync.RWMutex
	cache map[string]*models.ShortURL
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		cache: make(map[string]*models.ShortURL),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, shortcode string) (*models.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	url, exists := m.cache[shortcode]
	if !exists {
		return nil, repository.ErrShortURLNotFound
	}
	copied := *url
	return &copied, nil
}

func (m *MockCacheRepository) Set(ctx context.Context, shortcode string, url *models.ShortURL, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *url
	m.cache[shortcode] = &stored
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, shortcode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, shortcode)
	return nil
}

func (m *MockCacheRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = make(map[string]*models.ShortURL)
}
