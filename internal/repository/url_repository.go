package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/SergeiKhy/shortly/internal/models"
	"gorm.io/gorm"
)

var (
	ErrURLNotFound = errors.New("url not found")
	ErrCodeExists  = errors.New("short code already exists")
)

type UrlRepository interface {
	Create(ctx context.Context, url *models.Url) error
	FindByID(ctx context.Context, id uint) (*models.Url, error)
	FindByCode(ctx context.Context, code string) (*models.Url, error)
	FindManyByOwner(ctx context.Context, userID uint) ([]models.Url, error)
	FindAll(ctx context.Context) ([]models.Url, error)
	Update(ctx context.Context, url *models.Url) error
	IncrementVisits(ctx context.Context, id uint) error
	SoftDelete(ctx context.Context, id uint) error
}

type urlRepository struct {
	db *PostgresDB
}

func NewUrlRepository(db *PostgresDB) UrlRepository {
	return &urlRepository{db: db}
}

func (r *urlRepository) Create(ctx context.Context, url *models.Url) error {
	err := r.db.DB.WithContext(ctx).Create(url).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrCodeExists
		}
		return fmt.Errorf("failed to create url: %w", err)
	}
	return nil
}

func (r *urlRepository) FindByID(ctx context.Context, id uint) (*models.Url, error) {
	var url models.Url
	err := r.db.DB.WithContext(ctx).First(&url, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrURLNotFound
		}
		return nil, fmt.Errorf("failed to find url by id: %w", err)
	}
	return &url, nil
}

func (r *urlRepository) FindByCode(ctx context.Context, code string) (*models.Url, error) {
	var url models.Url
	err := r.db.DB.WithContext(ctx).Where("code = ?", code).First(&url).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrURLNotFound
		}
		return nil, fmt.Errorf("failed to find url by code: %w", err)
	}
	return &url, nil
}

func (r *urlRepository) FindManyByOwner(ctx context.Context, userID uint) ([]models.Url, error) {
	var urls []models.Url
	err := r.db.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&urls).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find urls by owner: %w", err)
	}
	return urls, nil
}

func (r *urlRepository) FindAll(ctx context.Context) ([]models.Url, error) {
	var urls []models.Url
	err := r.db.DB.WithContext(ctx).Find(&urls).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find urls: %w", err)
	}
	return urls, nil
}

// Update не трогает visit_quantity: значение в переданной записи -
// снимок на момент чтения, конкурентные редиректы могли уйти вперёд
func (r *urlRepository) Update(ctx context.Context, url *models.Url) error {
	if err := r.db.DB.WithContext(ctx).Omit("visit_quantity").Save(url).Error; err != nil {
		return fmt.Errorf("failed to update url: %w", err)
	}
	return nil
}

// IncrementVisits увеличивает счётчик переходов одним условным UPDATE,
// без чтения-модификации-записи на стороне приложения
func (r *urlRepository) IncrementVisits(ctx context.Context, id uint) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.Url{}).
		Where("id = ?", id).
		UpdateColumn("visit_quantity", gorm.Expr("visit_quantity + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to increment visits: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrURLNotFound
	}
	return nil
}

func (r *urlRepository) SoftDelete(ctx context.Context, id uint) error {
	result := r.db.DB.WithContext(ctx).Delete(&models.Url{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete url: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrURLNotFound
	}
	return nil
}
