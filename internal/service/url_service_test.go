package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/SergeiKhy/shortly/internal/models"
	"github.com/SergeiKhy/shortly/internal/service"
	"github.com/SergeiKhy/shortly/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupUrlService создаёт тестовое окружение с моковыми репозиториями
func setupUrlService() (service.UrlService, *mocks.MockUrlRepository, *mocks.MockCacheRepository) {
	urlRepo := mocks.NewMockUrlRepository()
	cacheRepo := mocks.NewMockCacheRepository()
	logger, _ := zap.NewDevelopment()
	urlService := service.NewUrlService(urlRepo, cacheRepo, logger, "http://localhost", "8080")
	return urlService, urlRepo, cacheRepo
}

func ptrUint(v uint) *uint { return &v }

// TestUrlService_Create_Anonymous проверяет анонимное создание ссылки
func TestUrlService_Create_Anonymous(t *testing.T) {
	urlService, urlRepo, _ := setupUrlService()

	ctx := context.Background()
	shortURL, err := urlService.Create(ctx, &models.CreateUrlInput{URL: "https://example.org"}, nil)

	require.NoError(t, err)
	assert.Regexp(t, `^http://localhost:8080/[0-9a-f]{8}$`, shortURL)

	// Запись сохранена без владельца
	urls, err := urlRepo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, urls, 1)
	assert.Nil(t, urls[0].UserID)
	assert.Equal(t, "https://example.org", urls[0].URL)
	assert.EqualValues(t, 0, urls[0].VisitQuantity)
}

// TestUrlService_Create_WithOwner проверяет привязку владельца
func TestUrlService_Create_WithOwner(t *testing.T) {
	urlService, urlRepo, _ := setupUrlService()

	ctx := context.Background()
	_, err := urlService.Create(ctx, &models.CreateUrlInput{URL: "https://example.org"}, ptrUint(42))
	require.NoError(t, err)

	urls, err := urlRepo.FindManyByOwner(ctx, 42)
	require.NoError(t, err)
	require.Len(t, urls, 1)
	require.NotNil(t, urls[0].UserID)
	assert.EqualValues(t, 42, *urls[0].UserID)
}

// TestUrlService_Create_UniqueCodes проверяет уникальность и формат кодов
func TestUrlService_Create_UniqueCodes(t *testing.T) {
	urlService, urlRepo, _ := setupUrlService()

	ctx := context.Background()
	for i := 0; i < 100; i++ {
		_, err := urlService.Create(ctx, &models.CreateUrlInput{URL: fmt.Sprintf("https://example.org/%d", i)}, nil)
		require.NoError(t, err)
	}

	urls, err := urlRepo.FindAll(ctx)
	require.NoError(t, err)
	codes := make(map[string]bool)
	for _, u := range urls {
		assert.Len(t, u.Code, 8, "Длина кода должна быть 8 символов")
		assert.NotContains(t, codes, u.Code, "Коды должны быть уникальными")
		codes[u.Code] = true
	}
	assert.Len(t, codes, 100)
}

// TestUrlService_Create_RepositoryFailure проверяет, что сбой хранилища
// оборачивается и не принимается за коллизию кода
func TestUrlService_Create_RepositoryFailure(t *testing.T) {
	urlService, urlRepo, _ := setupUrlService()
	urlRepo.FailWith = errors.New("connection reset")

	ctx := context.Background()
	_, err := urlService.Create(ctx, &models.CreateUrlInput{URL: "https://example.org"}, nil)

	require.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrCodeConflict)
	assert.ErrorContains(t, err, "failed to create url")
}

// TestUrlService_FindAndTrackVisit_RepositoryFailure проверяет, что
// сбой хранилища не выдаётся за промах по коду
func TestUrlService_FindAndTrackVisit_RepositoryFailure(t *testing.T) {
	urlService, urlRepo, _ := setupUrlService()
	urlRepo.FailWith = errors.New("connection reset")

	ctx := context.Background()
	url, err := urlService.FindAndTrackVisit(ctx, "deadbeef")

	require.Error(t, err)
	assert.Nil(t, url)
	assert.NotErrorIs(t, err, service.ErrURLNotFound)
	assert.ErrorContains(t, err, "failed to retrieve url")
}

// TestUrlService_FindAndTrackVisit_Increments проверяет инкремент счётчика
func TestUrlService_FindAndTrackVisit_Increments(t *testing.T) {
	urlService, urlRepo, _ := setupUrlService()

	ctx := context.Background()
	_, err := urlService.Create(ctx, &models.CreateUrlInput{URL: "https://example.org"}, nil)
	require.NoError(t, err)

	urls, err := urlRepo.FindAll(ctx)
	require.NoError(t, err)
	code := urls[0].Code

	// Ровно +1 за каждый вызов, адрес не меняется
	for i := int64(1); i <= 3; i++ {
		url, err := urlService.FindAndTrackVisit(ctx, code)
		require.NoError(t, err)
		assert.Equal(t, "https://example.org", url.URL)
		assert.Equal(t, i, urlRepo.Visits(urls[0].ID))
	}
}

// TestUrlService_FindAndTrackVisit_NotFound проверяет промах по коду
func TestUrlService_FindAndTrackVisit_NotFound(t *testing.T) {
	urlService, _, _ := setupUrlService()

	ctx := context.Background()
	url, err := urlService.FindAndTrackVisit(ctx, "deadbeef")

	assert.ErrorIs(t, err, service.ErrURLNotFound)
	assert.Nil(t, url)
}

// TestUrlService_FindAndTrackVisit_CachesRecord проверяет кэширование после промаха
func TestUrlService_FindAndTrackVisit_CachesRecord(t *testing.T) {
	urlService, urlRepo, cacheRepo := setupUrlService()

	ctx := context.Background()
	_, err := urlService.Create(ctx, &models.CreateUrlInput{URL: "https://example.org"}, nil)
	require.NoError(t, err)

	urls, _ := urlRepo.FindAll(ctx)
	code := urls[0].Code

	assert.False(t, cacheRepo.Contains(code))

	_, err = urlService.FindAndTrackVisit(ctx, code)
	require.NoError(t, err)
	assert.True(t, cacheRepo.Contains(code))

	// Повторный визит идёт через кэш и всё равно инкрементирует счётчик
	_, err = urlService.FindAndTrackVisit(ctx, code)
	require.NoError(t, err)
	assert.EqualValues(t, 2, urlRepo.Visits(urls[0].ID))
}

// TestUrlService_Update_Owner проверяет обновление владельцем
func TestUrlService_Update_Owner(t *testing.T) {
	urlService, urlRepo, _ := setupUrlService()

	ctx := context.Background()
	_, err := urlService.Create(ctx, &models.CreateUrlInput{URL: "https://example.org"}, ptrUint(7))
	require.NoError(t, err)

	urls, _ := urlRepo.FindAll(ctx)
	newTarget := "https://example.org/updated"
	updated, err := urlService.Update(ctx, urls[0].ID, &models.UpdateUrlInput{URL: &newTarget}, 7)

	require.NoError(t, err)
	assert.Equal(t, newTarget, updated.URL)
	assert.Equal(t, urls[0].Code, updated.Code, "Код неизменен после создания")
}

// TestUrlService_Update_PreservesVisitCount проверяет, что обновление
// с устаревшим снимком записи не откатывает счётчик переходов
func TestUrlService_Update_PreservesVisitCount(t *testing.T) {
	urlService, urlRepo, _ := setupUrlService()

	ctx := context.Background()
	_, err := urlService.Create(ctx, &models.CreateUrlInput{URL: "https://example.org"}, ptrUint(7))
	require.NoError(t, err)

	urls, _ := urlRepo.FindAll(ctx)
	stale := urls[0] // снимок до визитов, VisitQuantity == 0

	for i := 0; i < 2; i++ {
		_, err = urlService.FindAndTrackVisit(ctx, stale.Code)
		require.NoError(t, err)
	}
	require.EqualValues(t, 2, urlRepo.Visits(stale.ID))

	// Прямая запись устаревшего снимка не трогает счётчик
	stale.URL = "https://example.org/updated"
	require.NoError(t, urlRepo.Update(ctx, &stale))
	assert.EqualValues(t, 2, urlRepo.Visits(stale.ID))

	// Обновление через сервис тоже сохраняет накопленные визиты
	newTarget := "https://example.org/final"
	updated, err := urlService.Update(ctx, stale.ID, &models.UpdateUrlInput{URL: &newTarget}, 7)
	require.NoError(t, err)
	assert.Equal(t, newTarget, updated.URL)
	assert.EqualValues(t, 2, urlRepo.Visits(stale.ID))
}

// TestUrlService_Update_NotOwner проверяет запрет чужого обновления
func TestUrlService_Update_NotOwner(t *testing.T) {
	urlService, urlRepo, _ := setupUrlService()

	ctx := context.Background()
	_, err := urlService.Create(ctx, &models.CreateUrlInput{URL: "https://example.org"}, ptrUint(7))
	require.NoError(t, err)

	urls, _ := urlRepo.FindAll(ctx)
	newTarget := "https://evil.example"
	_, err = urlService.Update(ctx, urls[0].ID, &models.UpdateUrlInput{URL: &newTarget}, 8)

	assert.ErrorIs(t, err, service.ErrNotOwner)
}

// TestUrlService_Update_OwnerlessForbidden проверяет, что бесхозную ссылку
// не может редактировать никто
func TestUrlService_Update_OwnerlessForbidden(t *testing.T) {
	urlService, urlRepo, _ := setupUrlService()

	ctx := context.Background()
	_, err := urlService.Create(ctx, &models.CreateUrlInput{URL: "https://example.org"}, nil)
	require.NoError(t, err)

	urls, _ := urlRepo.FindAll(ctx)
	newTarget := "https://example.org/other"
	_, err = urlService.Update(ctx, urls[0].ID, &models.UpdateUrlInput{URL: &newTarget}, 7)

	assert.ErrorIs(t, err, service.ErrNotOwner)
}

// TestUrlService_Update_NotFoundBeforeForbidden проверяет порядок проверок
func TestUrlService_Update_NotFoundBeforeForbidden(t *testing.T) {
	urlService, _, _ := setupUrlService()

	ctx := context.Background()
	newTarget := "https://example.org"
	_, err := urlService.Update(ctx, 999, &models.UpdateUrlInput{URL: &newTarget}, 7)

	assert.ErrorIs(t, err, service.ErrURLNotFound)
}

// TestUrlService_Remove_Owner проверяет мягкое удаление владельцем
func TestUrlService_Remove_Owner(t *testing.T) {
	urlService, urlRepo, cacheRepo := setupUrlService()

	ctx := context.Background()
	_, err := urlService.Create(ctx, &models.CreateUrlInput{URL: "https://example.org"}, ptrUint(7))
	require.NoError(t, err)

	urls, _ := urlRepo.FindAll(ctx)
	code := urls[0].Code

	// Прогреваем кэш перед удалением
	_, err = urlService.FindAndTrackVisit(ctx, code)
	require.NoError(t, err)
	require.True(t, cacheRepo.Contains(code))

	err = urlService.Remove(ctx, urls[0].ID, 7)
	require.NoError(t, err)

	// Запись и кэш недоступны после удаления
	assert.False(t, cacheRepo.Contains(code))
	_, err = urlRepo.FindByID(ctx, urls[0].ID)
	assert.Error(t, err)
}

// TestUrlService_Remove_NotOwner проверяет запрет чужого удаления
func TestUrlService_Remove_NotOwner(t *testing.T) {
	urlService, urlRepo, _ := setupUrlService()

	ctx := context.Background()
	_, err := urlService.Create(ctx, &models.CreateUrlInput{URL: "https://example.org"}, ptrUint(7))
	require.NoError(t, err)

	urls, _ := urlRepo.FindAll(ctx)
	err = urlService.Remove(ctx, urls[0].ID, 8)

	assert.ErrorIs(t, err, service.ErrNotOwner)
}

// TestUrlService_Remove_NotFound проверяет удаление несуществующей ссылки
func TestUrlService_Remove_NotFound(t *testing.T) {
	urlService, _, _ := setupUrlService()

	ctx := context.Background()
	err := urlService.Remove(ctx, 999, 7)

	assert.ErrorIs(t, err, service.ErrURLNotFound)
}

// TestUrlService_FindManyByOwner проверяет выборку по владельцу
func TestUrlService_FindManyByOwner(t *testing.T) {
	urlService, _, _ := setupUrlService()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := urlService.Create(ctx, &models.CreateUrlInput{URL: fmt.Sprintf("https://example.org/%d", i)}, ptrUint(7))
		require.NoError(t, err)
	}
	_, err := urlService.Create(ctx, &models.CreateUrlInput{URL: "https://example.org/other"}, ptrUint(8))
	require.NoError(t, err)

	urls, err := urlService.FindManyByOwner(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, urls, 3)

	all, err := urlService.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
