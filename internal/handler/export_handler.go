package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type exportInput struct {
	Content string `json:"content"`
	Title   string `json:"title"`
}

// ExportMarkdown 把提交的内容打包成 .md 附件下载
func (a *API) ExportMarkdown(c *gin.Context) {
	var input exportInput
	if !bindJSON(c, &input, "invalid export payload") {
		return
	}

	filename := exportFilename(input.Title)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(input.Content))
}

// exportFilename 由标题派生下载文件名，空标题回退到时间戳。
func exportFilename(title string) string {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return fmt.Sprintf("document-%s.md", time.Now().Format("20060102-150405"))
	}

	var b strings.Builder
	for _, r := range trimmed {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}

	safe := strings.Trim(b.String(), "-")
	if safe == "" {
		return fmt.Sprintf("document-%s.md", time.Now().Format("20060102-150405"))
	}
	return safe + ".md"
}
