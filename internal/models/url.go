package models

import (
	"time"

	"gorm.io/gorm"
)

// Url короткая ссылка с счётчиком переходов
type Url struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	URL           string         `json:"url" gorm:"type:text;not null"`
	Code          string         `json:"code" gorm:"uniqueIndex;not null;size:16"`
	VisitQuantity int64          `json:"visit_quantity" gorm:"default:0"`
	UserID        *uint          `json:"user_id,omitempty"` // NULL для анонимных ссылок
	User          *User          `json:"-" gorm:"foreignKey:UserID"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Url) TableName() string {
	return "urls"
}

type CreateUrlInput struct {
	URL string `json:"url" binding:"required,url"`
}

type UpdateUrlInput struct {
	URL *string `json:"url,omitempty" binding:"omitempty,url"`
}
