package service

import (
	"errors"
	"strings"

	"github.com/markvault/internal/db"
	"gorm.io/gorm"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrTitleRequired    = errors.New("title is required")
	ErrKeywordsRequired = errors.New("at least one keyword is required")
)

// DocumentService wraps saved/published document database operations.
// 所有私有草稿操作都按 (id, user_id) 双重限定，归属检查在服务端完成。
type DocumentService struct {
	db *gorm.DB
}

// SavedDocumentInput represents fields accepted when creating or updating a draft.
type SavedDocumentInput struct {
	Content string
	Title   *string
}

// NewDocumentService creates a DocumentService instance.
func NewDocumentService(gdb *gorm.DB) *DocumentService {
	return &DocumentService{db: gdb}
}

// ListSaved 返回用户的全部草稿，按最近更新时间倒序。
func (s *DocumentService) ListSaved(userID string) ([]db.SavedDocument, error) {
	var documents []db.SavedDocument
	if err := s.db.Where("user_id = ?", userID).
		Order("updated_at desc, id desc").
		Find(&documents).Error; err != nil {
		return nil, err
	}
	return documents, nil
}

// CreateSaved 插入一条新的私有草稿。
func (s *DocumentService) CreateSaved(userID string, input SavedDocumentInput) (*db.SavedDocument, error) {
	document := db.SavedDocument{
		UserID:  userID,
		Title:   normalizeTitle(input.Title),
		Content: input.Content,
	}
	if err := s.db.Create(&document).Error; err != nil {
		return nil, err
	}
	return &document, nil
}

// UpdateSaved 更新同时匹配 id 和当前用户的草稿；
// 不存在或不属于该用户时返回 ErrDocumentNotFound。
func (s *DocumentService) UpdateSaved(userID, id string, input SavedDocumentInput) (*db.SavedDocument, error) {
	var existing db.SavedDocument
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	existing.Content = input.Content
	existing.Title = normalizeTitle(input.Title)

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

// DeleteSaved 删除同时匹配 id 和当前用户的草稿。
func (s *DocumentService) DeleteSaved(userID, id string) error {
	result := s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&db.SavedDocument{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

// Publish 创建一条公开发布的文档快照。
// 标题与至少一个非空关键词是发布的前置条件，发布后不可修改。
func (s *DocumentService) Publish(userID, title, content string, keywords []string) (*db.PublishedDocument, error) {
	trimmedTitle := strings.TrimSpace(title)
	if trimmedTitle == "" {
		return nil, ErrTitleRequired
	}

	cleaned := normalizeKeywords(keywords)
	if len(cleaned) == 0 {
		return nil, ErrKeywordsRequired
	}

	document := db.PublishedDocument{
		UserID:   userID,
		Title:    trimmedTitle,
		Content:  content,
		Keywords: cleaned,
	}
	if err := s.db.Create(&document).Error; err != nil {
		return nil, err
	}
	return &document, nil
}

// GetPublished 按主键读取一篇公开文档。
func (s *DocumentService) GetPublished(id string) (*db.PublishedDocument, error) {
	var document db.PublishedDocument
	if err := s.db.First(&document, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &document, nil
}

// ListPublished 返回公开文档，按点赞数倒序。
// searchTerm 非空时按标题大小写不敏感子串或关键词成员匹配过滤。
func (s *DocumentService) ListPublished(searchTerm string) ([]db.PublishedDocument, error) {
	var documents []db.PublishedDocument
	if err := s.db.Order("likes_count desc, created_at desc").Find(&documents).Error; err != nil {
		return nil, err
	}

	term := strings.ToLower(strings.TrimSpace(searchTerm))
	if term == "" {
		return documents, nil
	}

	filtered := make([]db.PublishedDocument, 0, len(documents))
	for _, doc := range documents {
		if matchesSearch(doc, term) {
			filtered = append(filtered, doc)
		}
	}
	return filtered, nil
}

// ToggleLike 切换点赞状态并返回切换后的状态。
// 点赞行的增删与 likes_count 的增减在同一事务内完成。
func (s *DocumentService) ToggleLike(userID, documentID string) (bool, error) {
	liked := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var document db.PublishedDocument
		if err := tx.First(&document, "id = ?", documentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDocumentNotFound
			}
			return err
		}

		var existing db.DocumentLike
		err := tx.Where("user_id = ? AND document_id = ?", userID, documentID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			return tx.Model(&db.PublishedDocument{}).
				Where("id = ? AND likes_count > 0", documentID).
				Update("likes_count", gorm.Expr("likes_count - 1")).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&db.DocumentLike{UserID: userID, DocumentID: documentID}).Error; err != nil {
				return err
			}
			liked = true
			return tx.Model(&db.PublishedDocument{}).
				Where("id = ?", documentID).
				Update("likes_count", gorm.Expr("likes_count + 1")).Error
		default:
			return err
		}
	})
	return liked, err
}

// IsLiked 判断用户是否已点赞某篇文档。
func (s *DocumentService) IsLiked(userID, documentID string) (bool, error) {
	var count int64
	if err := s.db.Model(&db.DocumentLike{}).
		Where("user_id = ? AND document_id = ?", userID, documentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func matchesSearch(doc db.PublishedDocument, lowerTerm string) bool {
	if strings.Contains(strings.ToLower(doc.Title), lowerTerm) {
		return true
	}
	for _, keyword := range doc.Keywords {
		if strings.EqualFold(strings.TrimSpace(keyword), lowerTerm) {
			return true
		}
	}
	return false
}

func normalizeTitle(title *string) *string {
	if title == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*title)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func normalizeKeywords(keywords []string) []string {
	cleaned := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		trimmed := strings.TrimSpace(keyword)
		if trimmed == "" {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	return cleaned
}
