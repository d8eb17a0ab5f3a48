package service_test

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/SergeiKhy/shortly/internal/models"
	"github.com/SergeiKhy/shortly/internal/service"
	"github.com/SergeiKhy/shortly/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUserService() (service.UserService, *mocks.MockUserRepository) {
	userRepo := mocks.NewMockUserRepository()
	logger, _ := zap.NewDevelopment()
	return service.NewUserService(userRepo, logger), userRepo
}

func validUserInput() *models.CreateUserInput {
	return &models.CreateUserInput{
		Name:     "Alice",
		Email:    "alice@example.org",
		Password: "Str0ng!pwd",
	}
}

// TestUserService_Create_Success проверяет регистрацию с хэшированием пароля
func TestUserService_Create_Success(t *testing.T) {
	userService, _ := setupUserService()

	ctx := context.Background()
	user, err := userService.Create(ctx, validUserInput())

	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice@example.org", user.Email)

	// Пароль хранится как bcrypt-хэш, не plaintext
	assert.NotEqual(t, "Str0ng!pwd", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("Str0ng!pwd")))
}

// TestUserService_Create_WeakPassword проверяет требование классов символов
func TestUserService_Create_WeakPassword(t *testing.T) {
	userService, _ := setupUserService()
	ctx := context.Background()

	weak := []string{
		"alllowercase1!", // без верхнего регистра
		"ALLUPPERCASE1!", // без нижнего регистра
		"NoDigitsHere!",  // без цифр
		"NoSymbols123",   // без спецсимволов
	}
	for _, password := range weak {
		input := validUserInput()
		input.Password = password
		_, err := userService.Create(ctx, input)
		assert.ErrorIs(t, err, service.ErrWeakPassword, password)
	}
}

// TestUserService_Create_EmailConflict проверяет отказ на занятый email
func TestUserService_Create_EmailConflict(t *testing.T) {
	userService, _ := setupUserService()

	ctx := context.Background()
	first, err := userService.Create(ctx, validUserInput())
	require.NoError(t, err)

	input := validUserInput()
	input.Name = "Impostor"
	_, err = userService.Create(ctx, input)
	assert.ErrorIs(t, err, service.ErrEmailTaken)

	// Первая запись не перезаписана
	found, err := userService.FindByEmail(ctx, "alice@example.org")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.ID, found.ID)
	assert.Equal(t, "Alice", found.Name)
}

// TestUserService_FindByEmail_Miss проверяет (nil, nil) при промахе
func TestUserService_FindByEmail_Miss(t *testing.T) {
	userService, _ := setupUserService()

	ctx := context.Background()
	user, err := userService.FindByEmail(ctx, "nobody@example.org")

	assert.NoError(t, err)
	assert.Nil(t, user)
}

// TestUserService_FindByID_NotFound проверяет ошибку при промахе по id
func TestUserService_FindByID_NotFound(t *testing.T) {
	userService, _ := setupUserService()

	ctx := context.Background()
	user, err := userService.FindByID(ctx, 999)

	assert.ErrorIs(t, err, service.ErrUserNotFound)
	assert.Nil(t, user)
}

// TestUserService_Update_MergesPatch проверяет частичное обновление
func TestUserService_Update_MergesPatch(t *testing.T) {
	userService, _ := setupUserService()

	ctx := context.Background()
	user, err := userService.Create(ctx, validUserInput())
	require.NoError(t, err)

	newName := "Alice B."
	updated, err := userService.Update(ctx, user.ID, &models.UpdateUserInput{Name: &newName})

	require.NoError(t, err)
	assert.Equal(t, "Alice B.", updated.Name)
	assert.Equal(t, "alice@example.org", updated.Email, "Пустые поля патча не трогаются")
}

// TestUserService_Update_NotFound проверяет обновление несуществующего пользователя
func TestUserService_Update_NotFound(t *testing.T) {
	userService, _ := setupUserService()

	ctx := context.Background()
	newName := "Nobody"
	_, err := userService.Update(ctx, 999, &models.UpdateUserInput{Name: &newName})

	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

// TestUserService_Remove проверяет мягкое удаление и повторный промах
func TestUserService_Remove(t *testing.T) {
	userService, _ := setupUserService()

	ctx := context.Background()
	user, err := userService.Create(ctx, validUserInput())
	require.NoError(t, err)

	require.NoError(t, userService.Remove(ctx, user.ID))

	_, err = userService.FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, service.ErrUserNotFound)

	// Повторное удаление - not found
	assert.ErrorIs(t, userService.Remove(ctx, user.ID), service.ErrUserNotFound)
}
