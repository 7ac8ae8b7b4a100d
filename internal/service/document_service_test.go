package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/markvault/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:document-service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}
}

func seedProfile(t *testing.T, gdb *gorm.DB, email string) db.Profile {
	t.Helper()
	profile := db.Profile{Email: &email}
	if err := gdb.Create(&profile).Error; err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}
	return profile
}

func TestSaveThenListIncludesRecord(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	user := seedProfile(t, gdb, "writer@example.com")
	svc := NewDocumentService(gdb)

	title := "My Draft"
	created, err := svc.CreateSaved(user.ID, SavedDocumentInput{Content: "# Hi", Title: &title})
	if err != nil {
		t.Fatalf("create saved: %v", err)
	}

	list, err := svc.ListSaved(user.ID)
	if err != nil {
		t.Fatalf("list saved: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 document, got %d", len(list))
	}
	if list[0].ID != created.ID || list[0].Content != "# Hi" {
		t.Fatalf("unexpected document: %+v", list[0])
	}
	if list[0].Title == nil || *list[0].Title != "My Draft" {
		t.Fatalf("unexpected title: %v", list[0].Title)
	}
}

func TestCreateSavedNormalizesEmptyTitle(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	user := seedProfile(t, gdb, "writer@example.com")
	svc := NewDocumentService(gdb)

	empty := "   "
	created, err := svc.CreateSaved(user.ID, SavedDocumentInput{Content: "text", Title: &empty})
	if err != nil {
		t.Fatalf("create saved: %v", err)
	}
	if created.Title != nil {
		t.Fatalf("expected blank title normalized to absent, got %q", *created.Title)
	}
}

func TestListSavedOrdersByUpdatedAtDesc(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	user := seedProfile(t, gdb, "writer@example.com")
	svc := NewDocumentService(gdb)

	first, err := svc.CreateSaved(user.ID, SavedDocumentInput{Content: "first"})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := svc.CreateSaved(user.ID, SavedDocumentInput{Content: "second"})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	// 回头编辑第一篇，让它重新成为最近更新
	time.Sleep(10 * time.Millisecond)
	if _, err := svc.UpdateSaved(user.ID, first.ID, SavedDocumentInput{Content: "first edited"}); err != nil {
		t.Fatalf("update first: %v", err)
	}

	list, err := svc.ListSaved(user.ID)
	if err != nil {
		t.Fatalf("list saved: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(list))
	}
	if list[0].ID != first.ID || list[1].ID != second.ID {
		t.Fatalf("unexpected order: %s, %s", list[0].ID, list[1].ID)
	}
}

func TestListSavedScopedToOwner(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	owner := seedProfile(t, gdb, "owner@example.com")
	other := seedProfile(t, gdb, "other@example.com")
	svc := NewDocumentService(gdb)

	if _, err := svc.CreateSaved(owner.ID, SavedDocumentInput{Content: "private"}); err != nil {
		t.Fatalf("create saved: %v", err)
	}

	list, err := svc.ListSaved(other.ID)
	if err != nil {
		t.Fatalf("list saved: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected other user to see no documents, got %d", len(list))
	}
}

func TestUpdateSavedRejectsOtherUsersDocument(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	owner := seedProfile(t, gdb, "owner@example.com")
	other := seedProfile(t, gdb, "other@example.com")
	svc := NewDocumentService(gdb)

	created, err := svc.CreateSaved(owner.ID, SavedDocumentInput{Content: "private"})
	if err != nil {
		t.Fatalf("create saved: %v", err)
	}

	if _, err := svc.UpdateSaved(other.ID, created.ID, SavedDocumentInput{Content: "hijack"}); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}

	reloaded, err := svc.ListSaved(owner.ID)
	if err != nil {
		t.Fatalf("list saved: %v", err)
	}
	if reloaded[0].Content != "private" {
		t.Fatalf("document content should be untouched, got %q", reloaded[0].Content)
	}
}

func TestDeleteSavedRejectsOtherUsersDocument(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	owner := seedProfile(t, gdb, "owner@example.com")
	other := seedProfile(t, gdb, "other@example.com")
	svc := NewDocumentService(gdb)

	created, err := svc.CreateSaved(owner.ID, SavedDocumentInput{Content: "private"})
	if err != nil {
		t.Fatalf("create saved: %v", err)
	}

	if err := svc.DeleteSaved(other.ID, created.ID); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := svc.DeleteSaved(owner.ID, created.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}

	list, err := svc.ListSaved(owner.ID)
	if err != nil {
		t.Fatalf("list saved: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected document gone, got %d", len(list))
	}
}

func TestPublishRequiresTitleAndKeywords(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	user := seedProfile(t, gdb, "writer@example.com")
	svc := NewDocumentService(gdb)

	if _, err := svc.Publish(user.ID, "   ", "content", []string{"k"}); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}
	if _, err := svc.Publish(user.ID, "Title", "content", nil); !errors.Is(err, ErrKeywordsRequired) {
		t.Fatalf("expected ErrKeywordsRequired, got %v", err)
	}
	if _, err := svc.Publish(user.ID, "Title", "content", []string{"  ", ""}); !errors.Is(err, ErrKeywordsRequired) {
		t.Fatalf("expected ErrKeywordsRequired for blank keywords, got %v", err)
	}

	var count int64
	if err := gdb.Model(&db.PublishedDocument{}).Count(&count).Error; err != nil {
		t.Fatalf("count published: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no documents published, got %d", count)
	}
}

func TestListPublishedOrdersByLikesDesc(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	author := seedProfile(t, gdb, "author@example.com")
	fans := []db.Profile{
		seedProfile(t, gdb, "fan1@example.com"),
		seedProfile(t, gdb, "fan2@example.com"),
	}
	svc := NewDocumentService(gdb)

	quiet, err := svc.Publish(author.ID, "Quiet", "a", []string{"a"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	popular, err := svc.Publish(author.ID, "Popular", "b", []string{"b"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	for _, fan := range fans {
		if _, err := svc.ToggleLike(fan.ID, popular.ID); err != nil {
			t.Fatalf("toggle like: %v", err)
		}
	}

	list, err := svc.ListPublished("")
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(list))
	}
	if list[0].ID != popular.ID || list[1].ID != quiet.ID {
		t.Fatalf("unexpected order: %s, %s", list[0].Title, list[1].Title)
	}
	if list[0].LikesCount != 2 {
		t.Fatalf("expected likes_count=2, got %d", list[0].LikesCount)
	}
}

func TestListPublishedSearchByKeyword(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	author := seedProfile(t, gdb, "author@example.com")
	svc := NewDocumentService(gdb)

	if _, err := svc.Publish(author.ID, "Cooking notes", "a", []string{"food"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	target, err := svc.Publish(author.ID, "Go tips", "b", []string{"golang", "tips"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := svc.Publish(author.ID, "Travel log", "c", []string{"travel"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	list, err := svc.ListPublished("GOLANG")
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if len(list) != 1 || list[0].ID != target.ID {
		t.Fatalf("expected exactly the golang document, got %d results", len(list))
	}
}

func TestListPublishedSearchByTitleSubstring(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	author := seedProfile(t, gdb, "author@example.com")
	svc := NewDocumentService(gdb)

	target, err := svc.Publish(author.ID, "Release Checklist", "a", []string{"process"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := svc.Publish(author.ID, "Other", "b", []string{"misc"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	list, err := svc.ListPublished("checkli")
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if len(list) != 1 || list[0].ID != target.ID {
		t.Fatalf("expected title substring match, got %d results", len(list))
	}
}

func TestToggleLikeIsInvolution(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	author := seedProfile(t, gdb, "author@example.com")
	fan := seedProfile(t, gdb, "fan@example.com")
	svc := NewDocumentService(gdb)

	doc, err := svc.Publish(author.ID, "Title", "content", []string{"k"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	liked, err := svc.ToggleLike(fan.ID, doc.ID)
	if err != nil || !liked {
		t.Fatalf("first toggle should like: liked=%v err=%v", liked, err)
	}

	isLiked, err := svc.IsLiked(fan.ID, doc.ID)
	if err != nil || !isLiked {
		t.Fatalf("expected liked after first toggle: %v %v", isLiked, err)
	}

	reloaded, err := svc.GetPublished(doc.ID)
	if err != nil {
		t.Fatalf("get published: %v", err)
	}
	if reloaded.LikesCount != 1 {
		t.Fatalf("expected likes_count=1, got %d", reloaded.LikesCount)
	}

	liked, err = svc.ToggleLike(fan.ID, doc.ID)
	if err != nil || liked {
		t.Fatalf("second toggle should unlike: liked=%v err=%v", liked, err)
	}

	isLiked, err = svc.IsLiked(fan.ID, doc.ID)
	if err != nil || isLiked {
		t.Fatalf("expected unliked after second toggle: %v %v", isLiked, err)
	}

	reloaded, err = svc.GetPublished(doc.ID)
	if err != nil {
		t.Fatalf("get published: %v", err)
	}
	if reloaded.LikesCount != 0 {
		t.Fatalf("expected likes_count back to 0, got %d", reloaded.LikesCount)
	}

	var likeRows int64
	if err := gdb.Model(&db.DocumentLike{}).Count(&likeRows).Error; err != nil {
		t.Fatalf("count likes: %v", err)
	}
	if likeRows != 0 {
		t.Fatalf("expected no like rows after involution, got %d", likeRows)
	}
}

func TestToggleLikeUnknownDocument(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	fan := seedProfile(t, gdb, "fan@example.com")
	svc := NewDocumentService(gdb)

	if _, err := svc.ToggleLike(fan.ID, "missing-id"); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}
