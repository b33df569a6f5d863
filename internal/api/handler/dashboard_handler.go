package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"pearl-track/internal/service"
	"pearl-track/pkg/response"
)

// DashboardHandler 仪表盘模块 HTTP 处理器
type DashboardHandler struct {
	dashSvc service.DashboardService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashSvc: dashSvc}
}

// GlobalRollup 全局汇总（按程序员 / 类别 / 研究 / 报告工作）
// GET /api/v1/dashboard/rollup
func (h *DashboardHandler) GlobalRollup(c *gin.Context) {
	rollup, err := h.dashSvc.GlobalRollup(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, rollup)
}

// MyAssignments 我的待办（指派给我且 QC 未完成，按截止日期升序）
// GET /api/v1/dashboard/my-assignments
func (h *DashboardHandler) MyAssignments(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	assignments, err := h.dashSvc.MyAssignments(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, assignments)
}

// EffortDashboard 单个报告工作的仪表盘视图
// GET /api/v1/dashboard/effort?effort_id=xxx&status=in_progress
// 未选择报告工作时返回显式空视图；status 仅过滤列表，不影响聚合
func (h *DashboardHandler) EffortDashboard(c *gin.Context) {
	view, err := h.dashSvc.EffortDashboard(c.Request.Context(), c.Query("effort_id"), c.Query("status"))
	if err != nil {
		if errors.Is(err, service.ErrEffortNotFound) {
			response.NotFound(c, 13005, "报告工作不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, view)
}
