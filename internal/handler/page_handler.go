package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ShowHome 渲染落地页
func (a *API) ShowHome(c *gin.Context) {
	stats, err := a.stats.Community()
	if err != nil {
		logrus.WithError(err).Warn("community stats unavailable for home page")
	}

	c.HTML(http.StatusOK, "home.html", gin.H{
		"title": "MarkVault",
		"stats": stats,
	})
}

// ShowEditor 渲染编辑器页面
func (a *API) ShowEditor(c *gin.Context) {
	_, authenticated := currentUserID(c)
	c.HTML(http.StatusOK, "editor.html", gin.H{
		"title":         "Editor",
		"authenticated": authenticated,
	})
}

// ShowAuth 渲染登录页面
func (a *API) ShowAuth(c *gin.Context) {
	c.HTML(http.StatusOK, "auth.html", gin.H{
		"title": "Sign in",
	})
}

// ShowCommunity 渲染社区页面
func (a *API) ShowCommunity(c *gin.Context) {
	_, authenticated := currentUserID(c)
	c.HTML(http.StatusOK, "community.html", gin.H{
		"title":         "Community",
		"authenticated": authenticated,
	})
}

// ShowProfile 渲染个人页面，未登录跳去登录页
func (a *API) ShowProfile(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		c.Redirect(http.StatusFound, "/auth")
		return
	}
	c.HTML(http.StatusOK, "profile.html", gin.H{
		"title": "Profile",
	})
}

// ShowGuide 渲染 Markdown 语法指南
func (a *API) ShowGuide(c *gin.Context) {
	c.HTML(http.StatusOK, "guide.html", gin.H{
		"title": "Markdown Guide",
	})
}

// ShowNotFound 兜底 404 页面
func (a *API) ShowNotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "not_found.html", gin.H{
		"title": "Not Found",
	})
}
