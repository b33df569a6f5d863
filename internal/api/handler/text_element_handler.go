package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"pearl-track/internal/dto"
	"pearl-track/internal/service"
	"pearl-track/pkg/response"
)

// TextElementHandler 文本资源模块 HTTP 处理器
type TextElementHandler struct {
	textSvc service.TextElementService
}

// NewTextElementHandler 创建 TextElementHandler
func NewTextElementHandler(textSvc service.TextElementService) *TextElementHandler {
	return &TextElementHandler{textSvc: textSvc}
}

// ListTextElements 文本资源列表
// GET /api/v1/text-elements?type=title
func (h *TextElementHandler) ListTextElements(c *gin.Context) {
	elements, err := h.textSvc.List(c.Request.Context(), c.Query("type"))
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, elements)
}

// CreateTextElement 手动创建文本资源（已存在同类同归一文本时复用）
// POST /api/v1/text-elements
func (h *TextElementHandler) CreateTextElement(c *gin.Context) {
	var req dto.CreateTextElementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	element, err := h.textSvc.Create(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.Created(c, element)
}

// UpdateTextElement 更新文本资源文案（共享资源：改动对所有引用条目生效）
// PUT /api/v1/text-elements/:id
func (h *TextElementHandler) UpdateTextElement(c *gin.Context) {
	var req dto.UpdateTextElementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	element, err := h.textSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, service.ErrElementNotFound) {
			response.NotFound(c, 14001, "文本资源不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, element)
}

// DeleteTextElement 删除文本资源（仍被引用时拒绝）
// DELETE /api/v1/text-elements/:id
func (h *TextElementHandler) DeleteTextElement(c *gin.Context) {
	if err := h.textSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, service.ErrElementNotFound):
			response.NotFound(c, 14001, "文本资源不存在")
		case errors.Is(err, service.ErrElementReferenced):
			response.Conflict(c, 14002, "文本资源仍被条目引用，不可删除")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}
