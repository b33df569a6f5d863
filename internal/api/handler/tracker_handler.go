package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"pearl-track/internal/dto"
	"pearl-track/internal/service"
	"pearl-track/pkg/response"
)

// TrackerHandler 跟踪器模块 HTTP 处理器
type TrackerHandler struct {
	trackerSvc service.TrackerService
}

// NewTrackerHandler 创建 TrackerHandler
func NewTrackerHandler(trackerSvc service.TrackerService) *TrackerHandler {
	return &TrackerHandler{trackerSvc: trackerSvc}
}

// GetTracker 获取跟踪器详情
// GET /api/v1/trackers/:id
func (h *TrackerHandler) GetTracker(c *gin.Context) {
	tracker, err := h.trackerSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleTrackerError(c, err)
		return
	}

	response.OK(c, tracker)
}

// ListByEffort 报告工作下的跟踪器列表
// GET /api/v1/efforts/:id/trackers
func (h *TrackerHandler) ListByEffort(c *gin.Context) {
	trackers, err := h.trackerSvc.ListByEffort(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrEffortNotFound) {
			response.NotFound(c, 13005, "报告工作不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, trackers)
}

// UpdateTracker 完整编辑跟踪器（允许状态回退）
// PUT /api/v1/trackers/:id
func (h *TrackerHandler) UpdateTracker(c *gin.Context) {
	var req dto.UpdateTrackerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	tracker, err := h.trackerSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleTrackerError(c, err)
		return
	}

	response.OK(c, tracker)
}

// QuickStatus 快捷状态变更（仅状态机前向动作）
// POST /api/v1/trackers/quick-status
func (h *TrackerHandler) QuickStatus(c *gin.Context) {
	var req dto.QuickStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	tracker, err := h.trackerSvc.QuickStatus(c.Request.Context(), &req)
	if err != nil {
		h.handleTrackerError(c, err)
		return
	}

	response.OK(c, tracker)
}

// BatchAssign 批量指派程序员 / 截止日期 / 优先级
// POST /api/v1/trackers/batch-assign
func (h *TrackerHandler) BatchAssign(c *gin.Context) {
	var req dto.BatchAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	updated, err := h.trackerSvc.BatchAssign(c.Request.Context(), &req)
	if err != nil {
		h.handleTrackerError(c, err)
		return
	}

	response.OK(c, gin.H{"updated": updated})
}

func (h *TrackerHandler) handleTrackerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTrackerNotFound):
		response.NotFound(c, 17001, "跟踪器不存在")
	case errors.Is(err, service.ErrInvalidTransition):
		response.Conflict(c, 17002, err.Error())
	case errors.Is(err, service.ErrInvalidDueDate):
		response.BadRequest(c, 17003, "截止日期格式无效，应为 YYYY-MM-DD")
	default:
		response.InternalError(c)
	}
}
