package handler

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/markvault/internal/service"
	"github.com/sirupsen/logrus"
)

type requestCodeInput struct {
	Email string `json:"email" binding:"required"`
}

type verifyCodeInput struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// RequestLoginCode 处理验证码申请，账号不存在时自动创建
func (a *API) RequestLoginCode(c *gin.Context) {
	var input requestCodeInput
	if !bindJSON(c, &input, "email is required") {
		return
	}

	if err := a.auth.RequestCode(input.Email); err != nil {
		if errors.Is(err, service.ErrInvalidEmail) {
			respondError(c, http.StatusBadRequest, "invalid email address")
			return
		}
		logrus.WithError(err).Error("request login code failed")
		respondError(c, http.StatusInternalServerError, "failed to send login code")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "login code sent"})
}

// VerifyLoginCode 校验验证码并建立 cookie 会话
func (a *API) VerifyLoginCode(c *gin.Context) {
	var input verifyCodeInput
	if !bindJSON(c, &input, "email and code are required") {
		return
	}

	profile, err := a.auth.VerifyCode(input.Email, input.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, http.StatusBadRequest, "invalid email address")
		case errors.Is(err, service.ErrInvalidCode):
			respondError(c, http.StatusUnauthorized, "invalid or expired code")
		default:
			logrus.WithError(err).Error("verify login code failed")
			respondError(c, http.StatusInternalServerError, "failed to verify login code")
		}
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserIDKey, profile.ID)
	if err := session.Save(); err != nil {
		logrus.WithError(err).Error("save session failed")
		respondError(c, http.StatusInternalServerError, "failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// SignOut 清除会话
func (a *API) SignOut(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		logrus.WithError(err).Error("clear session failed")
	}
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

// CurrentSession 返回当前会话状态。
// 未登录不算错误，authenticated=false 即可；客户端靠轮询它感知会话失效。
func (a *API) CurrentSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	profile, err := a.auth.ProfileByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			// 档案已被删除，会话失效
			session := sessions.Default(c)
			session.Clear()
			_ = session.Save()
			c.JSON(http.StatusOK, gin.H{"authenticated": false})
			return
		}
		logrus.WithError(err).Error("fetch profile failed")
		respondError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"authenticated": true, "user_id": userID, "profile": profile})
}

type updateProfileInput struct {
	Username  *string `json:"username"`
	AvatarURL *string `json:"avatar_url"`
}

// UpdateProfile 更新当前用户档案的展示字段
func (a *API) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var input updateProfileInput
	if !bindJSON(c, &input, "invalid profile payload") {
		return
	}

	profile, err := a.auth.UpdateProfile(userID, input.Username, input.AvatarURL)
	if err != nil {
		logrus.WithError(err).Error("update profile failed")
		respondError(c, http.StatusInternalServerError, "failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// AuthRequired 保护需要会话的 JSON API
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentUserID(c); !ok {
			respondError(c, http.StatusUnauthorized, "Authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}
