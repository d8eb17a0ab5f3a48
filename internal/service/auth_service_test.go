package service_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/SergeiKhy/shortly/internal/auth"
	"github.com/SergeiKhy/shortly/internal/service"
	"github.com/SergeiKhy/shortly/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthService(t *testing.T) (service.AuthService, service.UserService, *auth.JWTManager) {
	t.Helper()

	userRepo := mocks.NewMockUserRepository()
	logger, _ := zap.NewDevelopment()
	userService := service.NewUserService(userRepo, logger)
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	return service.NewAuthService(userService, jwtManager, logger), userService, jwtManager
}

// TestAuthService_SignIn_Success проверяет выдачу токена с полными claims
func TestAuthService_SignIn_Success(t *testing.T) {
	authService, userService, jwtManager := setupAuthService(t)

	ctx := context.Background()
	user, err := userService.Create(ctx, validUserInput())
	require.NoError(t, err)

	token, err := authService.SignIn(ctx, "alice@example.org", "Str0ng!pwd")
	require.NoError(t, err)
	require.NotEmpty(t, token.AccessToken)

	claims, err := jwtManager.Validate(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice@example.org", claims.Email)
	assert.Equal(t, "Alice", claims.Name)
}

// TestAuthService_SignIn_UnknownEmail проверяет отказ для неизвестного аккаунта
func TestAuthService_SignIn_UnknownEmail(t *testing.T) {
	authService, _, _ := setupAuthService(t)

	ctx := context.Background()
	token, err := authService.SignIn(ctx, "nobody@example.org", "whatever")

	assert.ErrorIs(t, err, service.ErrAccountNotFound)
	assert.Nil(t, token)
}

// TestAuthService_SignIn_WrongPassword проверяет отказ при неверном пароле
func TestAuthService_SignIn_WrongPassword(t *testing.T) {
	authService, userService, _ := setupAuthService(t)

	ctx := context.Background()
	_, err := userService.Create(ctx, validUserInput())
	require.NoError(t, err)

	token, err := authService.SignIn(ctx, "alice@example.org", "wrong-password")

	assert.ErrorIs(t, err, service.ErrWrongPassword)
	assert.Nil(t, token)
}

// TestAuthService_FindByUserID проверяет делегирование в сервис пользователей
func TestAuthService_FindByUserID(t *testing.T) {
	authService, userService, _ := setupAuthService(t)

	ctx := context.Background()
	user, err := userService.Create(ctx, validUserInput())
	require.NoError(t, err)

	found, err := authService.FindByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, found.Email)

	_, err = authService.FindByUserID(ctx, 999)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}
