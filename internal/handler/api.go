package handler

import (
	"time"

	"github.com/markvault/internal/mailer"
	"github.com/markvault/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	auth      *service.AuthService
	documents *service.DocumentService
	stats     *service.StatsService
	uploadDir string
	uploadURL string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, m mailer.Mailer, codeTTL time.Duration, uploadDir, uploadURL string) *API {
	return &API{
		auth:      service.NewAuthService(gdb, m, codeTTL),
		documents: service.NewDocumentService(gdb),
		stats:     service.NewStatsService(gdb),
		uploadDir: uploadDir,
		uploadURL: uploadURL,
	}
}
