package main

import (
	"github.com/markvault/internal/config"
	"github.com/markvault/internal/db"
	"github.com/markvault/internal/mailer"
	"github.com/markvault/internal/router"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	config.SetupLogger(cfg)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		logrus.WithError(err).Fatal("failed to initialize database")
	}

	var m mailer.Mailer = mailer.LogMailer{}
	if cfg.SMTPHost != "" {
		m = mailer.SMTPMailer{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		}
	}

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(cfg, db.DB, m, router.Options{LoadTemplates: true})
	logrus.WithField("addr", cfg.ListenAddr).Info("starting server")
	if err := r.Run(cfg.ListenAddr); err != nil {
		logrus.WithError(err).Fatal("failed to run server")
	}
}
