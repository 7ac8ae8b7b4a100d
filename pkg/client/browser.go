package client

import (
	"fmt"
	"sync"
	"time"

	"github.com/markvault/pkg/localstore"
)

// DefaultSearchDebounce 是社区搜索的防抖间隔。
const DefaultSearchDebounce = 300 * time.Millisecond

// Browser 维护社区列表视图的本地状态：防抖后的搜索词、
// 已点赞集合，以及一份可本地修改的列表副本，用来做乐观的
// 点赞数更新而不必整页重拉。
type Browser struct {
	client *Client
	delay  time.Duration

	mu         sync.Mutex
	timer      *time.Timer
	searchTerm string
	documents  []PublishedDocument
	liked      map[string]bool
}

// NewBrowser 创建社区浏览状态。debounce 非正时使用默认值。
func NewBrowser(c *Client, debounce time.Duration) *Browser {
	if debounce <= 0 {
		debounce = DefaultSearchDebounce
	}
	return &Browser{
		client: c,
		delay:  debounce,
		liked:  map[string]bool{},
	}
}

// SetSearchTerm 更新搜索词；防抖窗口结束后才触发远端查询。
func (b *Browser) SetSearchTerm(term string) {
	b.mu.Lock()
	b.searchTerm = term
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.delay, b.Refresh)
	b.mu.Unlock()
}

// Refresh 立即按当前搜索词重拉列表，替换本地副本。
// 这是点赞数缓存唯一的校准手段。
func (b *Browser) Refresh() {
	b.mu.Lock()
	term := b.searchTerm
	b.mu.Unlock()

	documents := b.client.FetchPublished(term)
	if documents == nil {
		// 拉取失败，保留上一次的列表
		return
	}

	liked := map[string]bool{}
	if b.client.Session().Authenticated() {
		for _, doc := range documents {
			if b.client.IsLiked(doc.ID) {
				liked[doc.ID] = true
			}
		}
	}

	b.mu.Lock()
	b.documents = documents
	b.liked = liked
	b.mu.Unlock()
}

// ToggleLike 切换点赞并乐观调整本地副本的计数。
// 所有修改都基于锁内的最新副本，不依赖调用时捕获的快照。
func (b *Browser) ToggleLike(documentID string) bool {
	if !b.client.ToggleLike(documentID) {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	nowLiked := !b.liked[documentID]
	b.liked[documentID] = nowLiked

	for i := range b.documents {
		if b.documents[i].ID != documentID {
			continue
		}
		if nowLiked {
			b.documents[i].LikesCount++
		} else if b.documents[i].LikesCount > 0 {
			b.documents[i].LikesCount--
		}
		break
	}
	return true
}

// Import 把一篇公开文档的内容载入编辑器存储，下次打开编辑器时恢复。
// 文档必须在本地列表副本里，内容随列表一起拉取，无需再访问远端。
func (b *Browser) Import(store *localstore.Store, documentID string) bool {
	b.mu.Lock()
	var found *PublishedDocument
	for i := range b.documents {
		if b.documents[i].ID == documentID {
			found = &b.documents[i]
			break
		}
	}
	b.mu.Unlock()

	if found == nil {
		b.client.fail("Import failed", "There was an error importing the document")
		return false
	}

	localstore.Set(store, localstore.KeyEditorContent, found.Content)
	b.client.notify("Document imported", fmt.Sprintf("%q has been imported to the editor", found.Title))
	return true
}

// Documents 返回本地列表副本。
func (b *Browser) Documents() []PublishedDocument {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]PublishedDocument, len(b.documents))
	copy(out, b.documents)
	return out
}

// Liked 报告某篇文档是否在本地点赞集合中。
func (b *Browser) Liked(documentID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.liked[documentID]
}

// SearchTerm 返回当前搜索词。
func (b *Browser) SearchTerm() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.searchTerm
}

// Close 取消尚未触发的防抖查询。
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
