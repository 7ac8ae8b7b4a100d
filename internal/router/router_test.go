package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/markvault/internal/config"
	"github.com/markvault/internal/db"
	"github.com/markvault/internal/mailer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	cfg := config.AppConfig{
		SessionSecret: "test-secret",
		GinMode:       gin.TestMode,
		UploadDir:     t.TempDir(),
		UploadURLPath: "/static/uploads",
		LoginCodeTTL:  time.Minute,
	}

	r := SetupRouter(cfg, gdb, mailer.LogMailer{}, Options{LoadTemplates: false})
	return r, gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}
}

func performJSON(r *gin.Engine, method, target string, payload any) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPing(t *testing.T) {
	r, _, cleanup := setupTestRouter(t)
	defer cleanup()

	w := performJSON(r, http.MethodGet, "/ping", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestDocumentRoutesRequireSession(t *testing.T) {
	r, _, cleanup := setupTestRouter(t)
	defer cleanup()

	cases := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/api/documents"},
		{http.MethodPost, "/api/documents"},
		{http.MethodPut, "/api/documents/some-id"},
		{http.MethodDelete, "/api/documents/some-id"},
		{http.MethodPost, "/api/published"},
		{http.MethodPost, "/api/published/some-id/like"},
		{http.MethodGet, "/api/published/some-id/liked"},
		{http.MethodPut, "/api/profile"},
	}

	for _, tc := range cases {
		w := performJSON(r, tc.method, tc.target, map[string]any{"content": "# Hi"})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.target, w.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp["error"] != "Authentication required" {
			t.Fatalf("unexpected error message: %q", resp["error"])
		}
	}
}

func TestPublishedListIsPublic(t *testing.T) {
	r, gdb, cleanup := setupTestRouter(t)
	defer cleanup()

	email := "author@example.com"
	profile := db.Profile{Email: &email}
	if err := gdb.Create(&profile).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	doc := db.PublishedDocument{
		UserID:   profile.ID,
		Title:    "Public post",
		Content:  "# Hi",
		Keywords: []string{"public"},
	}
	if err := gdb.Create(&doc).Error; err != nil {
		t.Fatalf("seed document: %v", err)
	}

	w := performJSON(r, http.MethodGet, "/api/published", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Documents []db.PublishedDocument `json:"documents"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Documents) != 1 || resp.Documents[0].Title != "Public post" {
		t.Fatalf("unexpected documents: %+v", resp.Documents)
	}
}

func TestPublishedDetailRenders(t *testing.T) {
	r, gdb, cleanup := setupTestRouter(t)
	defer cleanup()

	email := "author@example.com"
	profile := db.Profile{Email: &email}
	if err := gdb.Create(&profile).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	doc := db.PublishedDocument{
		UserID:   profile.ID,
		Title:    "Post",
		Content:  "# Heading\n\n<script>alert(1)</script>",
		Keywords: []string{"k"},
	}
	if err := gdb.Create(&doc).Error; err != nil {
		t.Fatalf("seed document: %v", err)
	}

	w := performJSON(r, http.MethodGet, "/api/published/"+doc.ID+"?render=1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		HTML string `json:"html"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !bytes.Contains([]byte(resp.HTML), []byte("<h1>")) {
		t.Fatalf("expected rendered heading: %q", resp.HTML)
	}
	if bytes.Contains([]byte(resp.HTML), []byte("<script>")) {
		t.Fatalf("community HTML must be sanitized: %q", resp.HTML)
	}
}

func TestSessionEndpointAnonymous(t *testing.T) {
	r, _, cleanup := setupTestRouter(t)
	defer cleanup()

	w := performJSON(r, http.MethodGet, "/api/auth/session", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Authenticated bool `json:"authenticated"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Authenticated {
		t.Fatal("expected anonymous session")
	}
}
