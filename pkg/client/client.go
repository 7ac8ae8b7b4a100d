package client

import (
	"fmt"
	"net/http/cookiejar"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
	"github.com/markvault/pkg/localstore"
)

// Client 是远端文档存储的客户端。
// 所有操作共享一个 loading 标志（并发调用不作区分），结果通过
// Notifier 浮出；失败对单次调用是终态，由用户重试，没有重试策略。
type Client struct {
	http     *resty.Client
	notifier Notifier
	session  *SessionManager
	loading  atomic.Bool

	mu        sync.Mutex
	saved     []SavedDocument
	published []PublishedDocument
}

type errorEnvelope struct {
	Error string `json:"error"`
}

type savedListEnvelope struct {
	Documents []SavedDocument `json:"documents"`
}

type savedEnvelope struct {
	Document *SavedDocument `json:"document"`
}

type publishedListEnvelope struct {
	Documents []PublishedDocument `json:"documents"`
}

type publishedEnvelope struct {
	Document *PublishedDocument `json:"document"`
}

type likedEnvelope struct {
	Liked bool `json:"liked"`
}

// New 创建指向 baseURL 的客户端。notifier 为 nil 时退回日志通知。
func New(baseURL string, notifier Notifier) *Client {
	if notifier == nil {
		notifier = LogNotifier{}
	}

	jar, _ := cookiejar.New(nil)
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetCookieJar(jar)

	c := &Client{http: httpClient, notifier: notifier}
	c.session = newSessionManager(httpClient, notifier)
	return c
}

// Session 返回与本客户端绑定的会话管理器。
func (c *Client) Session() *SessionManager {
	return c.session
}

// Loading 报告是否有操作在途。
func (c *Client) Loading() bool {
	return c.loading.Load()
}

// Saved 返回最近一次 FetchSaved 的结果快照。
func (c *Client) Saved() []SavedDocument {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SavedDocument, len(c.saved))
	copy(out, c.saved)
	return out
}

// Published 返回最近一次 FetchPublished 的结果快照。
func (c *Client) Published() []PublishedDocument {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]PublishedDocument, len(c.published))
	copy(out, c.published)
	return out
}

// FetchSaved 拉取当前用户的草稿列表。
// 未登录直接返回；失败浮出通知并保留上一次的列表。
func (c *Client) FetchSaved() []SavedDocument {
	if !c.session.Authenticated() {
		return nil
	}

	c.loading.Store(true)
	defer c.loading.Store(false)

	var env savedListEnvelope
	var apiErr errorEnvelope
	resp, err := c.http.R().SetResult(&env).SetError(&apiErr).Get("/api/documents")
	if err != nil {
		c.fail("Error fetching documents", err.Error())
		return nil
	}
	if resp.IsError() {
		c.fail("Error fetching documents", remoteMessage(apiErr, resp.Status()))
		return nil
	}

	c.mu.Lock()
	c.saved = env.Documents
	c.mu.Unlock()
	return env.Documents
}

// Save 新建一条私有草稿，返回创建的记录；失败或未登录返回 nil。
func (c *Client) Save(content string, title *string) *SavedDocument {
	if !c.requireSession("save documents") {
		return nil
	}

	c.loading.Store(true)
	defer c.loading.Store(false)

	var env savedEnvelope
	var apiErr errorEnvelope
	resp, err := c.http.R().
		SetBody(map[string]interface{}{"content": content, "title": title}).
		SetResult(&env).
		SetError(&apiErr).
		Post("/api/documents")
	if err != nil {
		c.fail("Error saving document", err.Error())
		return nil
	}
	if resp.IsError() {
		c.fail("Error saving document", remoteMessage(apiErr, resp.Status()))
		return nil
	}

	c.notify("Document saved", "Your document has been saved successfully")
	return env.Document
}

// Update 更新 id 属于当前用户的草稿；缺失或无权限返回 nil。
func (c *Client) Update(id, content string, title *string) *SavedDocument {
	if !c.session.Authenticated() {
		return nil
	}

	c.loading.Store(true)
	defer c.loading.Store(false)

	var env savedEnvelope
	var apiErr errorEnvelope
	resp, err := c.http.R().
		SetBody(map[string]interface{}{"content": content, "title": title}).
		SetResult(&env).
		SetError(&apiErr).
		Put(fmt.Sprintf("/api/documents/%s", id))
	if err != nil {
		c.fail("Error updating document", err.Error())
		return nil
	}
	if resp.IsError() {
		c.fail("Error updating document", remoteMessage(apiErr, resp.Status()))
		return nil
	}

	c.notify("Document updated", "Your document has been updated successfully")
	return env.Document
}

// Delete 删除 id 属于当前用户的草稿，返回是否成功。
func (c *Client) Delete(id string) bool {
	if !c.session.Authenticated() {
		return false
	}

	c.loading.Store(true)
	defer c.loading.Store(false)

	var apiErr errorEnvelope
	resp, err := c.http.R().SetError(&apiErr).Delete(fmt.Sprintf("/api/documents/%s", id))
	if err != nil {
		c.fail("Error deleting document", err.Error())
		return false
	}
	if resp.IsError() {
		c.fail("Error deleting document", remoteMessage(apiErr, resp.Status()))
		return false
	}

	c.notify("Document deleted", "Your document has been deleted successfully")
	return true
}

// Publish 发布一篇公开文档。
// 标题和关键词在本地先行校验，不达标时不会发起远端调用。
func (c *Client) Publish(content, title string, keywords []string) *PublishedDocument {
	if !c.requireSession("publish documents") {
		return nil
	}

	if strings.TrimSpace(title) == "" {
		c.failValidation("Title required", "Please provide a title for your document")
		return nil
	}
	if len(nonEmptyKeywords(keywords)) == 0 {
		c.failValidation("Keywords required", "Please provide at least one keyword")
		return nil
	}

	c.loading.Store(true)
	defer c.loading.Store(false)

	var env publishedEnvelope
	var apiErr errorEnvelope
	resp, err := c.http.R().
		SetBody(map[string]interface{}{"content": content, "title": title, "keywords": keywords}).
		SetResult(&env).
		SetError(&apiErr).
		Post("/api/published")
	if err != nil {
		c.fail("Error publishing document", err.Error())
		return nil
	}
	if resp.IsError() {
		c.fail("Error publishing document", remoteMessage(apiErr, resp.Status()))
		return nil
	}

	c.notify("Document published", "Your document has been published successfully")
	return env.Document
}

// FetchPublished 拉取公开文档列表（无需登录），按点赞数倒序。
// searchTerm 非空时按标题子串或关键词过滤。
func (c *Client) FetchPublished(searchTerm string) []PublishedDocument {
	c.loading.Store(true)
	defer c.loading.Store(false)

	var env publishedListEnvelope
	var apiErr errorEnvelope
	req := c.http.R().SetResult(&env).SetError(&apiErr)
	if strings.TrimSpace(searchTerm) != "" {
		req = req.SetQueryParam("search", searchTerm)
	}

	resp, err := req.Get("/api/published")
	if err != nil {
		c.fail("Error fetching published documents", err.Error())
		return nil
	}
	if resp.IsError() {
		c.fail("Error fetching published documents", remoteMessage(apiErr, resp.Status()))
		return nil
	}

	c.mu.Lock()
	c.published = env.Documents
	c.mu.Unlock()
	return env.Documents
}

// ToggleLike 切换点赞状态，返回是否切换成功。
// 本地缓存的 likes_count 由调用方自行加减，直到下次拉取前只是近似值。
func (c *Client) ToggleLike(documentID string) bool {
	if !c.requireSession("like documents") {
		return false
	}

	c.loading.Store(true)
	defer c.loading.Store(false)

	var env likedEnvelope
	var apiErr errorEnvelope
	resp, err := c.http.R().SetResult(&env).SetError(&apiErr).Post(fmt.Sprintf("/api/published/%s/like", documentID))
	if err != nil {
		c.fail("Error toggling like", err.Error())
		return false
	}
	if resp.IsError() {
		c.fail("Error toggling like", remoteMessage(apiErr, resp.Status()))
		return false
	}

	if env.Liked {
		c.notify("Document liked", "You have liked this document")
	} else {
		c.notify("Like removed", "You have removed your like from this document")
	}
	return true
}

// OpenDraft 把一篇私有草稿的内容载入编辑器存储，下次打开编辑器时恢复。
// 草稿从最近一次 FetchSaved 的副本里找，没有副本时先拉取一次。
func (c *Client) OpenDraft(store *localstore.Store, id string) bool {
	c.mu.Lock()
	saved := c.saved
	c.mu.Unlock()
	if len(saved) == 0 {
		saved = c.FetchSaved()
	}

	for i := range saved {
		if saved[i].ID == id {
			localstore.Set(store, localstore.KeyEditorContent, saved[i].Content)
			return true
		}
	}

	c.fail("Import failed", "There was an error importing the document")
	return false
}

// IsLiked 查询当前用户是否点赞过文档；未登录时返回 false 而非错误。
func (c *Client) IsLiked(documentID string) bool {
	if !c.session.Authenticated() {
		return false
	}

	var env likedEnvelope
	var apiErr errorEnvelope
	resp, err := c.http.R().SetResult(&env).SetError(&apiErr).
		Get(fmt.Sprintf("/api/published/%s/liked", documentID))
	if err != nil || resp.IsError() {
		return false
	}
	return env.Liked
}

func (c *Client) requireSession(action string) bool {
	if c.session.Authenticated() {
		return true
	}
	c.notifier.Notify(Notification{
		Title:       "Authentication required",
		Description: fmt.Sprintf("Please sign in to %s", action),
		IsError:     true,
	})
	return false
}

func (c *Client) notify(title, description string) {
	c.notifier.Notify(Notification{Title: title, Description: description})
}

func (c *Client) fail(title, description string) {
	c.notifier.Notify(Notification{Title: title, Description: description, IsError: true})
}

func (c *Client) failValidation(title, description string) {
	c.notifier.Notify(Notification{Title: title, Description: description, IsError: true})
}

func remoteMessage(apiErr errorEnvelope, fallback string) string {
	if strings.TrimSpace(apiErr.Error) != "" {
		return apiErr.Error
	}
	return fallback
}

func nonEmptyKeywords(keywords []string) []string {
	cleaned := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if strings.TrimSpace(keyword) != "" {
			cleaned = append(cleaned, keyword)
		}
	}
	return cleaned
}
