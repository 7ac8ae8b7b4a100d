package main

import (
	"fmt"
	"log"

	"github.com/markvault/internal/config"
	"github.com/markvault/internal/db"
	"github.com/markvault/internal/service"
)

// 演示数据生成器：创建两个作者和几篇公开文档，方便本地体验社区页。
func main() {
	cfg := config.Load()
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	authors := seedProfiles()
	seedPublished(authors)

	fmt.Println("演示数据生成完成")
}

func seedProfiles() []db.Profile {
	seeds := []struct {
		email    string
		username string
	}{
		{"ada@example.com", "ada"},
		{"ken@example.com", "ken"},
	}

	profiles := make([]db.Profile, 0, len(seeds))
	for _, seed := range seeds {
		var existing db.Profile
		if err := db.DB.First(&existing, "email = ?", seed.email).Error; err == nil {
			profiles = append(profiles, existing)
			continue
		}

		email := seed.email
		username := seed.username
		profile := db.Profile{Email: &email, Username: &username}
		if err := db.DB.Create(&profile).Error; err != nil {
			log.Fatal("创建演示用户失败:", err)
		}
		profiles = append(profiles, profile)
	}
	return profiles
}

func seedPublished(authors []db.Profile) {
	documents := service.NewDocumentService(db.DB)

	seeds := []struct {
		author   int
		title    string
		content  string
		keywords []string
	}{
		{0, "Getting started with Markdown", "# Hello\n\nMarkdown is *easy*.", []string{"markdown", "guide"}},
		{0, "GFM tables cheat sheet", "| a | b |\n|---|---|\n| 1 | 2 |", []string{"gfm", "tables"}},
		{1, "Writing release notes", "## v1.0\n\n- first release", []string{"release", "writing"}},
	}

	for _, seed := range seeds {
		if _, err := documents.Publish(authors[seed.author].ID, seed.title, seed.content, seed.keywords); err != nil {
			log.Fatal("创建演示文档失败:", err)
		}
	}
}
