package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/SergeiKhy/shortly/internal/models"
	"github.com/SergeiKhy/shortly/internal/repository"
	"go.uber.org/zap"
)

// Ошибки сервиса ссылок
var (
	ErrURLNotFound  = errors.New("url not found")
	ErrNotOwner     = errors.New("you are not the owner of this url")
	ErrCodeConflict = errors.New("failed to generate a unique code")
)

// Константы сервиса
const (
	codeByteLength  = 4 // 4 случайных байта -> 8 hex символов
	maxCodeAttempts = 3
	cacheTTL        = 24 * time.Hour
)

// UrlService интерфейс сервиса коротких ссылок
type UrlService interface {
	Create(ctx context.Context, input *models.CreateUrlInput, ownerID *uint) (string, error)
	FindManyByOwner(ctx context.Context, userID uint) ([]models.Url, error)
	FindAll(ctx context.Context) ([]models.Url, error)
	FindAndTrackVisit(ctx context.Context, code string) (*models.Url, error)
	Update(ctx context.Context, id uint, input *models.UpdateUrlInput, requesterID uint) (*models.Url, error)
	Remove(ctx context.Context, id uint, requesterID uint) error
}

// urlService реализация сервиса ссылок
type urlService struct {
	urlRepo   repository.UrlRepository
	cacheRepo repository.CacheRepository
	logger    *zap.Logger
	baseURL   string
	port      string
}

// NewUrlService создаёт новый экземпляр сервиса
func NewUrlService(
	urlRepo repository.UrlRepository,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
	baseURL, port string,
) UrlService {
	return &urlService{
		urlRepo:   urlRepo,
		cacheRepo: cacheRepo,
		logger:    logger,
		baseURL:   baseURL,
		port:      port,
	}
}

// Create генерирует код, сохраняет ссылку (с опциональным владельцем)
// и возвращает готовую короткую ссылку
func (s *urlService) Create(ctx context.Context, input *models.CreateUrlInput, ownerID *uint) (string, error) {
	var lastErr error

	// Коллизия кода проявляется как нарушение уникального индекса,
	// пробуем с новым кодом ограниченное число раз
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}

		url := &models.Url{
			URL:    input.URL,
			Code:   code,
			UserID: ownerID,
		}

		err = s.urlRepo.Create(ctx, url)
		if err == nil {
			return s.shortURL(code), nil
		}
		if !errors.Is(err, repository.ErrCodeExists) {
			s.logger.Error("Failed to create url", zap.Error(err))
			return "", fmt.Errorf("failed to create url: %w", err)
		}
		lastErr = err
	}

	s.logger.Error("Exhausted code generation attempts", zap.Error(lastErr))
	return "", ErrCodeConflict
}

// FindManyByOwner возвращает все неудалённые ссылки пользователя
func (s *urlService) FindManyByOwner(ctx context.Context, userID uint) ([]models.Url, error) {
	urls, err := s.urlRepo.FindManyByOwner(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to retrieve user urls", zap.Uint("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve user urls: %w", err)
	}
	return urls, nil
}

// FindAll возвращает все неудалённые ссылки (административный листинг)
func (s *urlService) FindAll(ctx context.Context) ([]models.Url, error) {
	urls, err := s.urlRepo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to retrieve urls", zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve urls: %w", err)
	}
	return urls, nil
}

// FindAndTrackVisit ищет ссылку по коду (сначала в кэше), инкрементирует
// счётчик переходов одним UPDATE и возвращает запись для редиректа
func (s *urlService) FindAndTrackVisit(ctx context.Context, code string) (*models.Url, error) {
	url, err := s.cacheRepo.Get(ctx, code)
	if err != nil {
		// Промах кэша - идём в БД
		url, err = s.urlRepo.FindByCode(ctx, code)
		if err != nil {
			if errors.Is(err, repository.ErrURLNotFound) {
				return nil, ErrURLNotFound
			}
			s.logger.Error("Failed to retrieve url", zap.String("code", code), zap.Error(err))
			return nil, fmt.Errorf("failed to retrieve url: %w", err)
		}

		if cacheErr := s.cacheRepo.Set(ctx, code, url, cacheTTL); cacheErr != nil {
			s.logger.Debug("Failed to cache url", zap.String("code", code), zap.Error(cacheErr))
		}
	}

	if err := s.urlRepo.IncrementVisits(ctx, url.ID); err != nil {
		// Запись могла быть удалена между кэшем и инкрементом
		if errors.Is(err, repository.ErrURLNotFound) {
			s.cacheRepo.Delete(ctx, code)
			return nil, ErrURLNotFound
		}
		s.logger.Error("Failed to track visit", zap.String("code", code), zap.Error(err))
		return nil, fmt.Errorf("failed to track visit: %w", err)
	}

	url.VisitQuantity++
	return url, nil
}

// Update применяет патч к ссылке; порядок проверок: not found -> forbidden
func (s *urlService) Update(ctx context.Context, id uint, input *models.UpdateUrlInput, requesterID uint) (*models.Url, error) {
	url, err := s.urlRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrURLNotFound) {
			return nil, ErrURLNotFound
		}
		s.logger.Error("Failed to retrieve url", zap.Uint("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve url: %w", err)
	}

	// Бесхозную ссылку не может редактировать никто
	if url.UserID == nil || *url.UserID != requesterID {
		return nil, ErrNotOwner
	}

	if input.URL != nil {
		url.URL = *input.URL
	}

	if err := s.urlRepo.Update(ctx, url); err != nil {
		s.logger.Error("Failed to update url", zap.Uint("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update url: %w", err)
	}

	// Инвалидация кэша, иначе редирект отдаст старый адрес
	if err := s.cacheRepo.Delete(ctx, url.Code); err != nil {
		s.logger.Debug("Failed to invalidate cache", zap.String("code", url.Code), zap.Error(err))
	}

	return url, nil
}

// Remove мягко удаляет ссылку; те же проверки, что и у Update
func (s *urlService) Remove(ctx context.Context, id uint, requesterID uint) error {
	url, err := s.urlRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrURLNotFound) {
			return ErrURLNotFound
		}
		s.logger.Error("Failed to retrieve url", zap.Uint("id", id), zap.Error(err))
		return fmt.Errorf("failed to retrieve url: %w", err)
	}

	if url.UserID == nil || *url.UserID != requesterID {
		return ErrNotOwner
	}

	if err := s.urlRepo.SoftDelete(ctx, id); err != nil {
		s.logger.Error("Failed to delete url", zap.Uint("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete url: %w", err)
	}

	if err := s.cacheRepo.Delete(ctx, url.Code); err != nil {
		s.logger.Debug("Failed to invalidate cache", zap.String("code", url.Code), zap.Error(err))
	}

	return nil
}

// shortURL собирает короткую ссылку из базового адреса, порта и кода
func (s *urlService) shortURL(code string) string {
	return fmt.Sprintf("%s:%s/%s", s.baseURL, s.port, code)
}

// generateCode генерирует 8 hex символов из 4 криптослучайных байт
func generateCode() (string, error) {
	buf := make([]byte, codeByteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
