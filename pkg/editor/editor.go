package editor

import (
	"sync"
	"time"

	"github.com/markvault/internal/markdown"
	"github.com/markvault/pkg/localstore"
)

// DefaultRenderDelay 是预览重渲染的防抖间隔。
// 自动保存不防抖：每次击键都同步落盘，只有渲染被合并。
const DefaultRenderDelay = 120 * time.Millisecond

// Pane 标识编辑器的一个面板。
type Pane int

const (
	// PaneNone 双栏并排
	PaneNone Pane = iota
	// PaneSource 源文本面板
	PaneSource
	// PanePreview 预览面板
	PanePreview
)

// Layout 描述两个面板当前的可见性。
// 最大化一个面板会整个隐藏另一个，而不是按比例缩放。
type Layout struct {
	Maximized      Pane
	SourceVisible  bool
	PreviewVisible bool
}

// Session 是编辑器的内存状态：源文本、防抖后的预览渲染结果、
// 面板布局与主题偏好。文本变更同步镜像到本地存储。
type Session struct {
	store       *localstore.Store
	renderDelay time.Duration

	mu          sync.Mutex
	content     string
	preview     markdown.Result
	maximized   Pane
	renderTimer *time.Timer
}

// NewSession 从本地存储恢复编辑器状态。renderDelay 非正时用默认值。
func NewSession(store *localstore.Store, renderDelay time.Duration) *Session {
	if renderDelay <= 0 {
		renderDelay = DefaultRenderDelay
	}

	s := &Session{store: store, renderDelay: renderDelay}
	s.content = localstore.Get(store, localstore.KeyEditorContent, "")
	s.preview = markdown.Render(s.content)
	return s
}

// SetContent 更新源文本：立即镜像到本地存储，预览渲染延后合并。
func (s *Session) SetContent(text string) {
	s.mu.Lock()
	s.content = text
	if s.renderTimer != nil {
		s.renderTimer.Stop()
	}
	s.renderTimer = time.AfterFunc(s.renderDelay, s.renderNow)
	s.mu.Unlock()

	localstore.Set(s.store, localstore.KeyEditorContent, text)
}

// Content 返回当前源文本。
func (s *Session) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

// Preview 返回最近一次渲染的预览结果。
// 防抖窗口内它可能落后于 Content，FlushPreview 可强制同步。
func (s *Session) Preview() markdown.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

// FlushPreview 取消挂起的防抖渲染，立即渲染并返回结果。
func (s *Session) FlushPreview() markdown.Result {
	s.mu.Lock()
	if s.renderTimer != nil {
		s.renderTimer.Stop()
		s.renderTimer = nil
	}
	s.mu.Unlock()

	s.renderNow()
	return s.Preview()
}

func (s *Session) renderNow() {
	s.mu.Lock()
	content := s.content
	s.mu.Unlock()

	result := markdown.Render(content)

	s.mu.Lock()
	s.preview = result
	s.mu.Unlock()
}

// ToggleMaximize 切换面板最大化：再次点击同一面板恢复双栏。
func (s *Session) ToggleMaximize(pane Pane) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maximized == pane {
		s.maximized = PaneNone
		return
	}
	s.maximized = pane
}

// Layout 返回当前面板布局。
func (s *Session) Layout() Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Layout{
		Maximized:      s.maximized,
		SourceVisible:  s.maximized == PaneNone || s.maximized == PaneSource,
		PreviewVisible: s.maximized == PaneNone || s.maximized == PanePreview,
	}
}

// DarkMode 读取主题偏好，默认深色。
func (s *Session) DarkMode() bool {
	return localstore.Get(s.store, localstore.KeyDarkMode, localstore.DefaultDarkMode)
}

// SetDarkMode 写入主题偏好。
func (s *Session) SetDarkMode(enabled bool) {
	localstore.Set(s.store, localstore.KeyDarkMode, enabled)
}

// Export 生成可下载的 .md 工件。
func (s *Session) Export() (filename string, data []byte) {
	return "document.md", []byte(s.Content())
}

// Close 取消挂起的渲染。
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.renderTimer != nil {
		s.renderTimer.Stop()
		s.renderTimer = nil
	}
}
