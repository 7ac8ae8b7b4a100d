package markdown

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	engine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML(), html.WithUnsafe()),
	)
	ugcPolicy = bluemonday.UGCPolicy()
)

const errorFallbackHTML = `<div class="markdown-error">Error parsing markdown</div>`

// Result 封装一次渲染的产物。Err 非空时 HTML 为降级片段。
type Result struct {
	HTML string
	Err  error
}

// Render 将 Markdown 源文本转换为 HTML。
// GFM 扩展开启，单个换行渲染为 <br>。转换失败不向外抛出，
// 返回带降级片段的 Result，由调用方区分展示。
//
// 输出未做任何清洗：作者预览自己的文本时这是刻意的信任边界，
// 跨用户场景必须改用 RenderUGC。
func Render(source string) Result {
	var buf bytes.Buffer
	if err := engine.Convert([]byte(source), &buf); err != nil {
		return Result{HTML: errorFallbackHTML, Err: fmt.Errorf("convert markdown: %w", err)}
	}
	return Result{HTML: buf.String()}
}

// RenderUGC 渲染他人发布的内容，在 Render 之上套用 UGC 白名单清洗。
func RenderUGC(source string) Result {
	result := Render(source)
	if result.Err != nil {
		return result
	}
	result.HTML = ugcPolicy.Sanitize(result.HTML)
	return result
}
