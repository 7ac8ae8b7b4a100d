package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/markvault/internal/markdown"
	"github.com/markvault/internal/service"
	"github.com/sirupsen/logrus"
)

type savedDocumentInput struct {
	Content string  `json:"content"`
	Title   *string `json:"title"`
}

type publishInput struct {
	Content  string   `json:"content"`
	Title    string   `json:"title"`
	Keywords []string `json:"keywords"`
}

// ListSavedDocuments 返回当前用户的草稿列表，最近更新在前
func (a *API) ListSavedDocuments(c *gin.Context) {
	userID, _ := currentUserID(c)

	documents, err := a.documents.ListSaved(userID)
	if err != nil {
		logrus.WithError(err).Error("list saved documents failed")
		respondError(c, http.StatusInternalServerError, "failed to fetch documents")
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": documents})
}

// CreateSavedDocument 新建一条私有草稿
func (a *API) CreateSavedDocument(c *gin.Context) {
	userID, _ := currentUserID(c)

	var input savedDocumentInput
	if !bindJSON(c, &input, "invalid document payload") {
		return
	}

	document, err := a.documents.CreateSaved(userID, service.SavedDocumentInput{
		Content: input.Content,
		Title:   input.Title,
	})
	if err != nil {
		logrus.WithError(err).Error("create saved document failed")
		respondError(c, http.StatusInternalServerError, "failed to save document")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"document": document})
}

// UpdateSavedDocument 更新 id 与当前用户同时匹配的草稿
func (a *API) UpdateSavedDocument(c *gin.Context) {
	userID, _ := currentUserID(c)

	var input savedDocumentInput
	if !bindJSON(c, &input, "invalid document payload") {
		return
	}

	document, err := a.documents.UpdateSaved(userID, c.Param("id"), service.SavedDocumentInput{
		Content: input.Content,
		Title:   input.Title,
	})
	if err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			respondError(c, http.StatusNotFound, "document not found")
			return
		}
		logrus.WithError(err).Error("update saved document failed")
		respondError(c, http.StatusInternalServerError, "failed to update document")
		return
	}

	c.JSON(http.StatusOK, gin.H{"document": document})
}

// DeleteSavedDocument 删除 id 与当前用户同时匹配的草稿
func (a *API) DeleteSavedDocument(c *gin.Context) {
	userID, _ := currentUserID(c)

	if err := a.documents.DeleteSaved(userID, c.Param("id")); err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			respondError(c, http.StatusNotFound, "document not found")
			return
		}
		logrus.WithError(err).Error("delete saved document failed")
		respondError(c, http.StatusInternalServerError, "failed to delete document")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// PublishDocument 发布一篇公开文档
func (a *API) PublishDocument(c *gin.Context) {
	userID, _ := currentUserID(c)

	var input publishInput
	if !bindJSON(c, &input, "invalid publish payload") {
		return
	}

	document, err := a.documents.Publish(userID, input.Title, input.Content, input.Keywords)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTitleRequired):
			respondError(c, http.StatusBadRequest, "title is required")
		case errors.Is(err, service.ErrKeywordsRequired):
			respondError(c, http.StatusBadRequest, "at least one keyword is required")
		default:
			logrus.WithError(err).Error("publish document failed")
			respondError(c, http.StatusInternalServerError, "failed to publish document")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"document": document})
}

// ListPublishedDocuments 公开接口，按点赞数倒序，支持 search 过滤
func (a *API) ListPublishedDocuments(c *gin.Context) {
	documents, err := a.documents.ListPublished(c.Query("search"))
	if err != nil {
		logrus.WithError(err).Error("list published documents failed")
		respondError(c, http.StatusInternalServerError, "failed to fetch published documents")
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": documents})
}

// GetPublishedDocument 公开接口，返回单篇公开文档。
// render=1 时附带经过 UGC 清洗的 HTML，这是唯一跨用户的渲染出口。
func (a *API) GetPublishedDocument(c *gin.Context) {
	document, err := a.documents.GetPublished(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			respondError(c, http.StatusNotFound, "document not found")
			return
		}
		logrus.WithError(err).Error("get published document failed")
		respondError(c, http.StatusInternalServerError, "failed to fetch document")
		return
	}

	payload := gin.H{"document": document}
	if c.Query("render") == "1" {
		result := markdown.RenderUGC(document.Content)
		if result.Err != nil {
			logrus.WithError(result.Err).Warn("render published document failed")
		}
		payload["html"] = result.HTML
	}

	c.JSON(http.StatusOK, payload)
}

// ToggleDocumentLike 切换当前用户对文档的点赞状态
func (a *API) ToggleDocumentLike(c *gin.Context) {
	userID, _ := currentUserID(c)

	liked, err := a.documents.ToggleLike(userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			respondError(c, http.StatusNotFound, "document not found")
			return
		}
		logrus.WithError(err).Error("toggle like failed")
		respondError(c, http.StatusInternalServerError, "failed to toggle like")
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// DocumentLiked 查询当前用户是否点赞过文档
func (a *API) DocumentLiked(c *gin.Context) {
	userID, _ := currentUserID(c)

	liked, err := a.documents.IsLiked(userID, c.Param("id"))
	if err != nil {
		logrus.WithError(err).Error("check like failed")
		respondError(c, http.StatusInternalServerError, "failed to check like")
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// GetCommunityStats 返回首页的社区统计
func (a *API) GetCommunityStats(c *gin.Context) {
	stats, err := a.stats.Community()
	if err != nil {
		logrus.WithError(err).Error("community stats failed")
		respondError(c, http.StatusInternalServerError, "failed to fetch stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
