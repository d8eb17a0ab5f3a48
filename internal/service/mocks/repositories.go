package mocks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/SergeiKhy/shortly/internal/models"
	"github.com/SergeiKhy/shortly/internal/repository"
)

// MockUrlRepository implements repository.UrlRepository for testing
type MockUrlRepository struct {
	mu     sync.RWMutex
	urls   map[uint]*models.Url
	byCode map[string]uint
	nextID uint

	// FailWith, если задана, возвращается из всех операций
	FailWith error
}

func NewMockUrlRepository() *MockUrlRepository {
	return &MockUrlRepository{
		urls:   make(map[uint]*models.Url),
		byCode: make(map[string]uint),
		nextID: 1,
	}
}

func (m *MockUrlRepository) Create(ctx context.Context, url *models.Url) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return m.FailWith
	}
	if _, exists := m.byCode[url.Code]; exists {
		return repository.ErrCodeExists
	}

	url.ID = m.nextID
	url.CreatedAt = time.Now()
	m.nextID++
	copied := *url
	m.urls[url.ID] = &copied
	m.byCode[url.Code] = url.ID
	return nil
}

func (m *MockUrlRepository) FindByID(ctx context.Context, id uint) (*models.Url, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FailWith != nil {
		return nil, m.FailWith
	}
	url, exists := m.urls[id]
	if !exists {
		return nil, repository.ErrURLNotFound
	}
	copied := *url
	return &copied, nil
}

func (m *MockUrlRepository) FindByCode(ctx context.Context, code string) (*models.Url, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FailWith != nil {
		return nil, m.FailWith
	}
	id, exists := m.byCode[code]
	if !exists {
		return nil, repository.ErrURLNotFound
	}
	copied := *m.urls[id]
	return &copied, nil
}

func (m *MockUrlRepository) FindManyByOwner(ctx context.Context, userID uint) ([]models.Url, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var result []models.Url
	for _, url := range m.urls {
		if url.UserID != nil && *url.UserID == userID {
			result = append(result, *url)
		}
	}
	return result, nil
}

func (m *MockUrlRepository) FindAll(ctx context.Context) ([]models.Url, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var result []models.Url
	for _, url := range m.urls {
		result = append(result, *url)
	}
	return result, nil
}

func (m *MockUrlRepository) Update(ctx context.Context, url *models.Url) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return m.FailWith
	}
	stored, exists := m.urls[url.ID]
	if !exists {
		return repository.ErrURLNotFound
	}
	copied := *url
	// Репозиторий не перезаписывает счётчик переходов
	copied.VisitQuantity = stored.VisitQuantity
	m.urls[url.ID] = &copied
	return nil
}

func (m *MockUrlRepository) IncrementVisits(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return m.FailWith
	}
	url, exists := m.urls[id]
	if !exists {
		return repository.ErrURLNotFound
	}
	url.VisitQuantity++
	return nil
}

func (m *MockUrlRepository) SoftDelete(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return m.FailWith
	}
	url, exists := m.urls[id]
	if !exists {
		return repository.ErrURLNotFound
	}
	delete(m.byCode, url.Code)
	delete(m.urls, id)
	return nil
}

// Visits возвращает текущее значение счётчика для проверок в тестах
func (m *MockUrlRepository) Visits(id uint) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if url, exists := m.urls[id]; exists {
		return url.VisitQuantity
	}
	return 0
}

// MockUserRepository implements repository.UserRepository for testing
type MockUserRepository struct {
	mu      sync.RWMutex
	users   map[uint]*models.User
	byEmail map[string]uint
	nextID  uint
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:   make(map[uint]*models.User),
		byEmail: make(map[string]uint),
		nextID:  1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byEmail[user.Email]; exists {
		return repository.ErrEmailExists
	}

	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.nextID++
	copied := *user
	m.users[user.ID] = &copied
	m.byEmail[user.Email] = user.ID
	return nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, exists := m.byEmail[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	copied := *m.users[id]
	return &copied, nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, exists := m.users[user.ID]
	if !exists {
		return repository.ErrUserNotFound
	}
	if old.Email != user.Email {
		if _, taken := m.byEmail[user.Email]; taken {
			return repository.ErrEmailExists
		}
		delete(m.byEmail, old.Email)
		m.byEmail[user.Email] = user.ID
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *MockUserRepository) SoftDelete(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, exists := m.users[id]
	if !exists {
		return repository.ErrUserNotFound
	}
	delete(m.byEmail, user.Email)
	delete(m.users, id)
	return nil
}

// MockCacheRepository implements repository.CacheRepository for testing
type MockCacheRepository struct {
	mu    sync.RWMutex
	cache map[string]*models.Url
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		cache: make(map[string]*models.Url),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, code string) (*models.Url, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	url, exists := m.cache[code]
	if !exists {
		return nil, errors.New("cache miss")
	}
	copied := *url
	return &copied, nil
}

func (m *MockCacheRepository) Set(ctx context.Context, code string, url *models.Url, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *url
	m.cache[code] = &copied
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, code)
	return nil
}

// Contains проверяет наличие кода в кэше
func (m *MockCacheRepository) Contains(code string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.cache[code]
	return exists
}
