package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PublishedDocument 定义了公开发布的文档快照。
// 发布后字段不再变化，likes_count 由点赞写入事务维护。
type PublishedDocument struct {
	ID         string   `gorm:"primaryKey;size:36" json:"id"`
	UserID     string   `gorm:"size:36;index;not null" json:"user_id"`
	Title      string   `gorm:"not null" json:"title"`
	Content    string   `json:"content"`
	Keywords   []string `gorm:"serializer:json" json:"keywords"`
	LikesCount int      `gorm:"not null;default:0" json:"likes_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (d *PublishedDocument) BeforeCreate(_ *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}
