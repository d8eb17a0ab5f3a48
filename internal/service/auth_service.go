package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/SergeiKhy/shortly/internal/auth"
	"github.com/SergeiKhy/shortly/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Ошибки аутентификации: оба маппятся на 401, но тексты различаются
var (
	ErrAccountNotFound = errors.New("no account found for this email")
	ErrWrongPassword   = errors.New("invalid password")
)

// TokenResponse стандартный конверт для выданного токена
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// AuthService интерфейс сервиса аутентификации
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*TokenResponse, error)
	FindByUserID(ctx context.Context, id uint) (*models.User, error)
}

type authService struct {
	userService UserService
	jwtManager  *auth.JWTManager
	logger      *zap.Logger
}

func NewAuthService(userService UserService, jwtManager *auth.JWTManager, logger *zap.Logger) AuthService {
	return &authService{
		userService: userService,
		jwtManager:  jwtManager,
		logger:      logger,
	}
}

// SignIn проверяет учётные данные и выдаёт подписанный токен сессии.
// Сравнение пароля - bcrypt, константное по времени
func (s *authService) SignIn(ctx context.Context, email, password string) (*TokenResponse, error) {
	user, err := s.userService.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrAccountNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrWrongPassword
	}

	token, err := s.jwtManager.Generate(user.ID, user.Email, user.Name)
	if err != nil {
		s.logger.Error("Failed to issue token", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &TokenResponse{AccessToken: token}, nil
}

// FindByUserID делегирует в сервис пользователей; используется /auth/me
func (s *authService) FindByUserID(ctx context.Context, id uint) (*models.User, error) {
	return s.userService.FindByID(ctx, id)
}
