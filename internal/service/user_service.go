package service

import (
	"context"
	"errors"
	"fmt"
	"unicode"

	"github.com/SergeiKhy/shortly/internal/models"
	"github.com/SergeiKhy/shortly/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Ошибки сервиса пользователей
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email is already registered")
	ErrWeakPassword = errors.New("password must contain upper and lower case letters, a digit and a symbol")
)

// UserService интерфейс сервиса пользователей
type UserService interface {
	Create(ctx context.Context, input *models.CreateUserInput) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	Update(ctx context.Context, id uint, input *models.UpdateUserInput) (*models.User, error)
	Remove(ctx context.Context, id uint) error
}

type userService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, logger *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Create регистрирует пользователя; пароль хранится только как bcrypt-хэш
func (s *userService) Create(ctx context.Context, input *models.CreateUserInput) (*models.User, error) {
	if !isStrongPassword(input.Password) {
		return nil, ErrWeakPassword
	}

	// Pre-check на занятый email; гонку двух регистраций
	// закрывает уникальный индекс в репозитории
	existing, err := s.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hash),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// FindByEmail возвращает (nil, nil) при промахе: флоу аутентификации
// различает "нет такого аккаунта" без ошибки
func (s *userService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}
		s.logger.Error("Failed to find user by email", zap.Error(err))
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

func (s *userService) FindByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("Failed to find user by id", zap.Uint("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	return user, nil
}

// Update сливает непустые поля патча и сохраняет
func (s *userService) Update(ctx context.Context, id uint, input *models.UpdateUserInput) (*models.User, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Email != nil {
		user.Email = *input.Email
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		s.logger.Error("Failed to update user", zap.Uint("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// isStrongPassword требует символы всех четырёх классов;
// минимальную длину проверяет binding на DTO
func isStrongPassword(password string) bool {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}

// Remove мягко удаляет пользователя
func (s *userService) Remove(ctx context.Context, id uint) error {
	err := s.userRepo.SoftDelete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("Failed to delete user", zap.Uint("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
