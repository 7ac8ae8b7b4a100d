package service

import (
	"github.com/markvault/internal/db"
	"gorm.io/gorm"
)

// CommunityStats 汇总首页展示的社区统计数据
type CommunityStats struct {
	PublishedCount int64 `json:"published_count"`
	LikeTotal      int64 `json:"like_total"`
	AuthorCount    int64 `json:"author_count"`
}

// StatsService aggregates community-wide counters.
type StatsService struct {
	db *gorm.DB
}

// NewStatsService creates a StatsService instance.
func NewStatsService(gdb *gorm.DB) *StatsService {
	return &StatsService{db: gdb}
}

// Community 统计公开文档数、点赞总数与作者数。
func (s *StatsService) Community() (*CommunityStats, error) {
	stats := &CommunityStats{}

	if err := s.db.Model(&db.PublishedDocument{}).Count(&stats.PublishedCount).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&db.DocumentLike{}).Count(&stats.LikeTotal).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&db.PublishedDocument{}).
		Distinct("user_id").
		Count(&stats.AuthorCount).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
