package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentLike 定义了点赞关系，(user_id, document_id) 唯一。
// 行的存在与否即是"已点赞"状态本身。
type DocumentLike struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	UserID     string    `gorm:"size:36;not null;uniqueIndex:idx_document_likes_user_document" json:"user_id"`
	DocumentID string    `gorm:"size:36;not null;uniqueIndex:idx_document_likes_user_document" json:"document_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (l *DocumentLike) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}
