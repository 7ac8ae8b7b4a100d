package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile 定义了用户档案模型。首次请求登录验证码时由服务端创建。
type Profile struct {
	ID        string  `gorm:"primaryKey;size:36" json:"id"`
	Username  *string `gorm:"uniqueIndex" json:"username"`
	Email     *string `gorm:"uniqueIndex" json:"email"`
	AvatarURL *string `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate 在入库前分配 UUID 主键
func (p *Profile) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
