package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"regexp"
	"time"

	"github.com/SergeiKhy/shorturl-service/internal/models"
	"github.com/SergeiKhy/shorturl-service/internal/repository"
	"github.com/SergeiKhy/shorturl-service/pkg/remotelog"
)

// Ошибки сервиса
var (
	ErrInvalidURL          = errors.New("невалидный URL")
	ErrInvalidShortcode    = errors.New("невалидный формат shortcode")
	ErrGenerationExhausted = errors.New("не удалось сгенерировать свободный shortcode")
)

// Константы сервиса
const (
	defaultValidityMinutes = 30
	maxValidityMinutes     = 525600 // один год
	codeLength             = 8
	maxGenerateAttempts    = 10
	defaultReferrer        = "direct"
	charset                = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// shortcodeRegexp формат клиентского shortcode: буквы и цифры, 4-20 символов
var shortcodeRegexp = regexp.MustCompile(`^[A-Za-z0-9]{4,20}$`)

// ShortenerService бизнес-логика жизненного цикла коротких ссылок
type ShortenerService interface {
	CreateShortURL(ctx context.Context, input *models.CreateShortURLInput) (*models.CreateShortURLResult, error)
	GetOriginalURL(ctx context.Context, shortcode string) (string, error)
	GetStatistics(ctx context.Context, shortcode string) (*models.ShortURLStats, error)
	CleanupExpired(ctx context.Context) int64
}

type shortenerService struct {
	urlRepo   repository.ShortURLRepository
	clickRepo repository.ClickRepository
	cacheRepo repository.CacheRepository
	sink      remotelog.Sink
	baseURL   string
}

func NewShortenerService(
	urlRepo repository.ShortURLRepository,
	clickRepo repository.ClickRepository,
	cacheRepo repository.CacheRepository,
	sink remotelog.Sink,
	baseURL string,
) ShortenerService {
	if sink == nil {
		sink = remotelog.NopSink{}
	}
	return &shortenerService{
		urlRepo:   urlRepo,
		clickRepo: clickRepo,
		cacheRepo: cacheRepo,
		sink:      sink,
		baseURL:   baseURL,
	}
}

// CreateShortURL создаёт новую короткую ссылку
func (s *shortenerService) CreateShortURL(ctx context.Context, input *models.CreateShortURLInput) (*models.CreateShortURLResult, error) {
	s.sink.Log(ctx, remotelog.StackBackend, remotelog.LevelInfo, remotelog.PackageService,
		fmt.Sprintf("Creating short URL for: %s", input.URL))

	if err := validateURL(input.URL); err != nil {
		s.sink.Log(ctx, remotelog.StackBackend, remotelog.LevelError, remotelog.PackageService,
			fmt.Sprintf("Invalid URL provided: %s", input.URL))
		return nil, err
	}

	var shortcode string
	if input.Shortcode != nil && *input.Shortcode != "" {
		shortcode = *input.Shortcode
		if !shortcodeRegexp.MatchString(shortcode) {
			s.sink.Log(ctx, remotelog.StackBackend, remotelog.LevelError, remotelog.PackageService,
				fmt.Sprintf("Invalid shortcode format: %s", shortcode))
			return nil, ErrInvalidShortcode
		}

		available, err := s.urlRepo.IsAvailable(ctx, shortcode)
		if err != nil {
			s.sink.Log(ctx, remotelog.StackBackend, remotelog.LevelError, remotelog.PackageDB, err.Error())
			return nil, err
		}
		if !available {
			s.sink.Log(ctx, remotelog.StackBackend, remotelog.LevelError, remotelog.PackageService,
				fmt.Sprintf("Shortcode already exists: %s", shortcode))
			return nil, repository.ErrShortcodeTaken
		}
	} else {
		code, err := s.generateUniqueShortcode(ctx)
		if err != nil {
			return nil, err
		}
		shortcode = code
		s.sink.Log(ctx, remotelog.StackBackend, remotelog.LevelInfo, remotelog.PackageService,
			fmt.Sprintf("Generated shortcode: %s", shortcode))
	}

	validity := defaultValidityMinutes
	if input.Validity != nil && *input.Validity > 0 {
		validity = *input.Validity
		if validity > maxValidityMinutes {
			validity = maxValidityMinutes
		}
	}

	now := time.Now()
	record := &models.ShortURL{
		Shortcode:   shortcode,
		OriginalURL: input.URL,
		CreatedAt:   now,
		Expiry:      now.Add(time.Duration(validity) * time.Minute),
	}

	if err := s.urlRepo.Create(ctx, record); err != nil {
		// Гонка двух создателей одного shortcode разрешается unique
		// constraint-ом, проигравший получает тот же конфликт
		s.sink.Log(ctx, remotelog.StackBackend, remotelog.LevelError, remotelog.PackageDB,
			fmt.Sprintf("Error creating short URL: %v", err))
		return nil, err
	}

	s.cacheRecord(ctx, record)

	shortLink := s.baseURL + "/" + shortcode
	s.sink.Log(ctx, remotelog.StackBackend, remotelog.LevelInfo, remotelog.PackageService,
		fmt.Sprintf("Short URL created successfully: %s", shortLink))

	return &models.CreateShortURLResult{
		ShortLink: shortLink,
		Expiry:    record.Expiry,
	}, nil
}

// GetOriginalURL возвращает оригинальный URL и записывает клик.
// Клик записывается на каждый успешный резолв, без окна дедупликации.
func (s *shortenerService) GetOriginalURL(ctx context.Context, shortcode string) (string, error) {
	record, err := s.lookup(ctx, shortcode)
	if err != nil {
		if errors.Is(err, repository.ErrShortURLNotFound) {
			s.sink.Log(ctx, remotelog.StackBackend, remotelog.LevelWarn, remotelog.PackageService,
				fmt.Sprintf("Shortcode not found or expired: %s", shortcode))
		}
		return "", err
	}

	click := &models.Click{
		Shortcode:   shortcode,
		Referrer:    defaultReferrer,
		GeoLocation: unknownGeoJSON(),
	}
	if err := s.clickRepo.Add(ctx, click); err != nil {
		// Редирект важнее учёта, ошибку только логируем
		s.sink.Log(ctx, remotelog.StackBackend, remotelog.LevelError, remotelog.PackageDB,
			fmt.Sprintf("Error recording click for %s: %v", shortcode, err))
	}

	s.sink.Log(ctx, remotelog.StackBackend, remotelog.LevelInfo, remotelog.PackageService,
		fmt.Sprintf("Redirecting to original URL: %s", record.OriginalURL))

	return record.OriginalURL, nil
}

// GetStatistics собирает статистику по shortcode с полной историей кликов.
// Читает напрямую из БД: в кэше счётчик кликов устаревает после первого резолва.
func (s *shortenerService) GetStatistics(ctx context.Context, shortcode string) (*models.ShortURLStats, error) {
	record, err := s.urlRepo.GetActive(ctx, shortcode)
	if err != nil {
		if errors.Is(err, repository.ErrShortURLNotFound) {
			s.sink.Log(ctx, remotelog.StackBackend, remotelog.LevelWarn, remotelog.PackageService,
				fmt.Sprintf("Shortcode not found for statistics: %s", shortcode))
		}
		return nil, err
	}

	clicks, err := s.clickRepo.ListByShortcode(ctx, shortcode)
	if err != nil {
		s.sink.Log(ctx, remotelog.StackBackend, remotelog.LevelError, remotelog.PackageDB,
			fmt.Sprintf("Error retrieving click details: %v", err))
		return nil, err
	}

	detail := make([]models.ClickDetail, 0, len(clicks))
	for _, click := range clicks {
		var geo models.GeoLocation
		if err := json.Unmarshal([]byte(click.GeoLocation), &geo); err != nil {
			geo = models.UnknownGeoLocation()
		}
		detail = append(detail, models.ClickDetail{
			Timestamp:   click.Timestamp,
			Referrer:    click.Referrer,
			GeoLocation: geo,
		})
	}

	s.sink.Log(ctx, remotelog.StackBackend, remotelog.LevelInfo, remotelog.PackageService,
		fmt.Sprintf("Statistics retrieved for shortcode: %s, total clicks: %d", shortcode, record.Clicks))

	return &models.ShortURLStats{
		Clicks:       record.Clicks,
		OriginalURL:  record.OriginalURL,
		CreationDate: record.CreatedAt,
		Expiry:       record.Expiry,
		ClicksDetail: detail,
	}, nil
}

// CleanupExpired удаляет истёкшие ссылки. Фоновая задача best-effort:
// ошибки логируются, но не пробрасываются.
func (s *shortenerService) CleanupExpired(ctx context.Context) int64 {
	count, err := s.urlRepo.DeleteExpired(ctx)
	if err != nil {
		s.sink.Log(ctx, remotelog.StackBackend, remotelog.LevelError, remotelog.PackageDB,
			fmt.Sprintf("Cleanup job failed: %v", err))
		return 0
	}

	if count > 0 {
		s.sink.Log(ctx, remotelog.StackBackend, remotelog.LevelInfo, remotelog.PackageService,
			fmt.Sprintf("Cleaned up %d expired URLs", count))
	}

	return count
}

// lookup ищет активную ссылку: сначала кэш, затем БД.
// Попадание из кэша дополнительно проверяется через StatusAt,
// чтобы семантика истечения не зависела от точности TTL.
func (s *shortenerService) lookup(ctx context.Context, shortcode string) (*models.ShortURL, error) {
	if record, err := s.cacheRepo.Get(ctx, shortcode); err == nil {
		if record.StatusAt(time.Now()) == models.StatusActive {
			return record, nil
		}
		return nil, repository.ErrShortURLNotFound
	}

	record, err := s.urlRepo.GetActive(ctx, shortcode)
	if err != nil {
		return nil, err
	}

	s.cacheRecord(ctx, record)

	return record, nil
}

// cacheRecord кэширует ссылку на остаток её срока жизни
func (s *shortenerService) cacheRecord(ctx context.Context, record *models.ShortURL) {
	ttl := time.Until(record.Expiry)
	if err := s.cacheRepo.Set(ctx, record.Shortcode, record, ttl); err != nil {
		s.sink.Log(ctx, remotelog.StackBackend, remotelog.LevelDebug, remotelog.PackageDB,
			fmt.Sprintf("Failed to cache short url %s: %v", record.Shortcode, err))
	}
}

// generateUniqueShortcode генерирует случайный shortcode,
// пробуя до maxGenerateAttempts кандидатов
func (s *shortenerService) generateUniqueShortcode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		candidate, err := randomShortcode()
		if err != nil {
			return "", fmt.Errorf("failed to generate shortcode: %w", err)
		}

		available, err := s.urlRepo.IsAvailable(ctx, candidate)
		if err != nil {
			s.sink.Log(ctx, remotelog.StackBackend, remotelog.LevelError, remotelog.PackageDB, err.Error())
			return "", err
		}
		if available {
			return candidate, nil
		}
	}

	s.sink.Log(ctx, remotelog.StackBackend, remotelog.LevelError, remotelog.PackageService,
		"Failed to generate unique shortcode after maximum attempts")
	return "", ErrGenerationExhausted
}

func randomShortcode() (string, error) {
	result := make([]byte, codeLength)
	for i := 0; i < codeLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[num.Int64()]
	}
	return string(result), nil
}

// validateURL принимает только синтаксически корректные http/https URL
func validateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrInvalidURL
	}
	if parsed.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

func unknownGeoJSON() string {
	data, _ := json.Marshal(models.UnknownGeoLocation())
	return string(data)
}
