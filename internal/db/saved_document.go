package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SavedDocument 定义了私有草稿模型，仅创建者可见
type SavedDocument struct {
	ID        string  `gorm:"primaryKey;size:36" json:"id"`
	UserID    string  `gorm:"size:36;index;not null" json:"user_id"`
	Title     *string `json:"title"`
	Content   string  `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *SavedDocument) BeforeCreate(_ *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}
