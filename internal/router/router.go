package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/markvault/internal/config"
	"github.com/markvault/internal/handler"
	"github.com/markvault/internal/mailer"
	"gorm.io/gorm"
)

// Options 控制路由装配时的可选项
type Options struct {
	// LoadTemplates 为 false 时跳过 HTML 模板加载，供仅测 API 的场景使用
	LoadTemplates bool
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(cfg config.AppConfig, gdb *gorm.DB, m mailer.Mailer, opts Options) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("markvault_session", store))

	api := handler.NewAPI(gdb, m, cfg.LoginCodeTTL, cfg.UploadDir, cfg.UploadURLPath)

	if opts.LoadTemplates {
		r.LoadHTMLGlob("web/template/*.html")

		// 页面路由
		r.GET("/", api.ShowHome)
		r.GET("/editor", api.ShowEditor)
		r.GET("/auth", api.ShowAuth)
		r.GET("/community", api.ShowCommunity)
		r.GET("/profile", api.ShowProfile)
		r.GET("/guide", api.ShowGuide)
		r.NoRoute(api.ShowNotFound)
	}

	// 静态文件服务
	r.Static("/static", "./web/static")

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	apiGroup := r.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			auth.POST("/otp", api.RequestLoginCode)
			auth.POST("/verify", api.VerifyLoginCode)
			auth.POST("/logout", api.SignOut)
			auth.GET("/session", api.CurrentSession)
		}

		// 公开接口
		apiGroup.GET("/published", api.ListPublishedDocuments)
		apiGroup.GET("/published/:id", api.GetPublishedDocument)
		apiGroup.GET("/stats", api.GetCommunityStats)
		apiGroup.POST("/render", api.RenderPreview)
		apiGroup.POST("/export", api.ExportMarkdown)

		// 需要认证的接口
		authed := apiGroup.Group("")
		authed.Use(handler.AuthRequired())
		{
			authed.GET("/documents", api.ListSavedDocuments)
			authed.POST("/documents", api.CreateSavedDocument)
			authed.PUT("/documents/:id", api.UpdateSavedDocument)
			authed.DELETE("/documents/:id", api.DeleteSavedDocument)

			authed.POST("/published", api.PublishDocument)
			authed.POST("/published/:id/like", api.ToggleDocumentLike)
			authed.GET("/published/:id/liked", api.DocumentLiked)

			authed.PUT("/profile", api.UpdateProfile)
			authed.POST("/profile/avatar", api.UploadAvatar)
		}
	}

	return r
}
