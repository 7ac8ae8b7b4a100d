package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/markvault/internal/db"
	"github.com/markvault/internal/mailer"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrInvalidCode     = errors.New("invalid or expired code")
	ErrProfileNotFound = errors.New("profile not found")
)

const loginCodeLength = 6

// AuthService 实现两步邮件验证码登录。
type AuthService struct {
	db      *gorm.DB
	mailer  mailer.Mailer
	codeTTL time.Duration
}

// NewAuthService creates an AuthService instance.
func NewAuthService(gdb *gorm.DB, m mailer.Mailer, codeTTL time.Duration) *AuthService {
	if codeTTL <= 0 {
		codeTTL = 10 * time.Minute
	}
	return &AuthService{db: gdb, mailer: m, codeTTL: codeTTL}
}

// RequestCode 给邮箱发送一次性登录验证码。
// 账号不存在时静默创建（always-create 语义），旧的未消费验证码同时作废。
func (s *AuthService) RequestCode(email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	if _, err := s.ensureProfile(normalized); err != nil {
		return err
	}

	code, err := generateLoginCode()
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now()
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.LoginCode{}).
			Where("email = ? AND consumed_at IS NULL", normalized).
			Update("consumed_at", now).Error; err != nil {
			return err
		}

		return tx.Create(&db.LoginCode{
			Email:     normalized,
			CodeHash:  string(hash),
			ExpiresAt: now.Add(s.codeTTL),
		}).Error
	}); err != nil {
		return err
	}

	return s.mailer.SendLoginCode(normalized, code)
}

// VerifyCode 校验验证码，成功后标记消费并返回对应档案。
// 失败不区分"不存在/已过期/不匹配"，统一返回 ErrInvalidCode。
func (s *AuthService) VerifyCode(email, code string) (*db.Profile, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	trimmedCode := strings.TrimSpace(code)
	if trimmedCode == "" {
		return nil, ErrInvalidCode
	}

	var loginCode db.LoginCode
	if err := s.db.Where("email = ? AND consumed_at IS NULL", normalized).
		Order("created_at desc, id desc").
		First(&loginCode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}

	if loginCode.Expired(time.Now()) {
		return nil, ErrInvalidCode
	}

	if err := bcrypt.CompareHashAndPassword([]byte(loginCode.CodeHash), []byte(trimmedCode)); err != nil {
		return nil, ErrInvalidCode
	}

	now := time.Now()
	if err := s.db.Model(&db.LoginCode{}).
		Where("id = ?", loginCode.ID).
		Update("consumed_at", now).Error; err != nil {
		return nil, err
	}

	return s.profileByEmail(normalized)
}

// ProfileByID 按主键读取档案
func (s *AuthService) ProfileByID(id string) (*db.Profile, error) {
	var profile db.Profile
	if err := s.db.First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile 更新档案的展示字段，仅限本人。
func (s *AuthService) UpdateProfile(id string, username, avatarURL *string) (*db.Profile, error) {
	profile, err := s.ProfileByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if username != nil {
		trimmed := strings.TrimSpace(*username)
		if trimmed == "" {
			updates["username"] = nil
		} else {
			updates["username"] = trimmed
		}
	}
	if avatarURL != nil {
		updates["avatar_url"] = strings.TrimSpace(*avatarURL)
	}

	if len(updates) == 0 {
		return profile, nil
	}

	if err := s.db.Model(profile).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.ProfileByID(id)
}

func (s *AuthService) ensureProfile(email string) (*db.Profile, error) {
	profile, err := s.profileByEmail(email)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	created := db.Profile{Email: &email}
	if err := s.db.Create(&created).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *AuthService) profileByEmail(email string) (*db.Profile, error) {
	var profile db.Profile
	if err := s.db.First(&profile, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", ErrInvalidEmail
	}

	parsed, err := mail.ParseAddress(trimmed)
	if err != nil || parsed.Address != trimmed {
		return "", ErrInvalidEmail
	}
	return trimmed, nil
}

func generateLoginCode() (string, error) {
	digits := make([]byte, loginCodeLength)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generate login code: %w", err)
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
