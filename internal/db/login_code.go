package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoginCode 存放邮件验证码的 bcrypt 哈希。
// 验证成功或被新验证码取代时标记 consumed_at，明文不落库。
type LoginCode struct {
	ID         string     `gorm:"primaryKey;size:36"`
	Email      string     `gorm:"index;not null"`
	CodeHash   string     `gorm:"not null"`
	ExpiresAt  time.Time  `gorm:"not null"`
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

func (c *LoginCode) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// Consumed 判断验证码是否已被使用
func (c *LoginCode) Consumed() bool {
	return c.ConsumedAt != nil
}

// Expired 判断验证码在给定时间点是否过期
func (c *LoginCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
