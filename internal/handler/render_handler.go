package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/markvault/internal/markdown"
)

type renderInput struct {
	Content string `json:"content"`
}

// RenderPreview 将提交的 Markdown 渲染为预览 HTML。
// 渲染的是作者自己的文本，输出不做清洗；失败时返回降级片段与错误消息。
func (a *API) RenderPreview(c *gin.Context) {
	var input renderInput
	if !bindJSON(c, &input, "invalid render payload") {
		return
	}

	result := markdown.Render(input.Content)
	payload := gin.H{"html": result.HTML}
	if result.Err != nil {
		payload["error"] = result.Err.Error()
	}

	c.JSON(http.StatusOK, payload)
}
