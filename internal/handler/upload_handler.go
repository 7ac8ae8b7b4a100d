package handler

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "golang.org/x/image/webp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const maxAvatarDimension = 4096

// UploadAvatar 处理头像上传并更新当前用户档案
func (a *API) UploadAvatar(c *gin.Context) {
	userID, _ := currentUserID(c)

	file, err := c.FormFile("avatar")
	if err != nil {
		respondError(c, http.StatusBadRequest, "avatar file is required")
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(c, http.StatusBadRequest, "only image uploads are allowed")
		return
	}

	opened, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "failed to read upload")
		return
	}
	defer opened.Close()

	// DecodeConfig 只读文件头，能拦住伪装成图片的内容
	cfg, _, err := image.DecodeConfig(opened)
	if err != nil {
		respondError(c, http.StatusBadRequest, "unrecognized image format")
		return
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxAvatarDimension || cfg.Height > maxAvatarDimension {
		respondError(c, http.StatusBadRequest, "image dimensions out of range")
		return
	}

	if err := os.MkdirAll(a.uploadDir, 0o755); err != nil {
		logrus.WithError(err).Error("create upload dir failed")
		respondError(c, http.StatusInternalServerError, "failed to store upload")
		return
	}

	ext := filepath.Ext(file.Filename)
	newFilename := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
	filePath := filepath.Join(a.uploadDir, newFilename)

	if err := c.SaveUploadedFile(file, filePath); err != nil {
		logrus.WithError(err).Error("save upload failed")
		respondError(c, http.StatusInternalServerError, "failed to store upload")
		return
	}

	avatarURL := fmt.Sprintf("%s/%s", strings.TrimRight(a.uploadURL, "/"), newFilename)
	profile, err := a.auth.UpdateProfile(userID, nil, &avatarURL)
	if err != nil {
		logrus.WithError(err).Error("update avatar failed")
		respondError(c, http.StatusInternalServerError, "failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile, "url": avatarURL})
}
