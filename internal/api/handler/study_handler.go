package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"pearl-track/internal/dto"
	"pearl-track/internal/service"
	"pearl-track/pkg/response"
)

// StudyHandler 研究 / 报告工作模块 HTTP 处理器
// 覆盖研究、数据库版本、报告工作、模板包四类层级资源
type StudyHandler struct {
	studySvc service.StudyService
}

// NewStudyHandler 创建 StudyHandler
func NewStudyHandler(studySvc service.StudyService) *StudyHandler {
	return &StudyHandler{studySvc: studySvc}
}

// ── 研究 ──

// CreateStudy 创建研究
// POST /api/v1/studies
func (h *StudyHandler) CreateStudy(c *gin.Context) {
	var req dto.CreateStudyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	study, err := h.studySvc.CreateStudy(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrStudyCodeTaken) {
			response.Conflict(c, 13001, "研究编号已存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.Created(c, study)
}

// GetStudy 获取研究详情
// GET /api/v1/studies/:id
func (h *StudyHandler) GetStudy(c *gin.Context) {
	study, err := h.studySvc.GetStudy(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleStudyError(c, err)
		return
	}

	response.OK(c, study)
}

// ListStudies 研究列表
// GET /api/v1/studies
func (h *StudyHandler) ListStudies(c *gin.Context) {
	studies, err := h.studySvc.ListStudies(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, studies)
}

// UpdateStudy 更新研究
// PUT /api/v1/studies/:id
func (h *StudyHandler) UpdateStudy(c *gin.Context) {
	var req dto.UpdateStudyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	study, err := h.studySvc.UpdateStudy(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, service.ErrStudyCodeTaken) {
			response.Conflict(c, 13001, "研究编号已存在")
			return
		}
		h.handleStudyError(c, err)
		return
	}

	response.OK(c, study)
}

// DeleteStudy 删除研究
// DELETE /api/v1/studies/:id
func (h *StudyHandler) DeleteStudy(c *gin.Context) {
	if err := h.studySvc.DeleteStudy(c.Request.Context(), c.Param("id")); err != nil {
		h.handleStudyError(c, err)
		return
	}

	response.OK(c, nil)
}

// ── 数据库版本 ──

// CreateRelease 创建数据库版本
// POST /api/v1/releases
func (h *StudyHandler) CreateRelease(c *gin.Context) {
	var req dto.CreateReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	release, err := h.studySvc.CreateRelease(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrBadReleaseDate) {
			response.BadRequest(c, 13002, "版本日期格式无效，应为 YYYY-MM-DD")
			return
		}
		h.handleStudyError(c, err)
		return
	}

	response.Created(c, release)
}

// ListReleases 研究下的数据库版本列表
// GET /api/v1/studies/:id/releases
func (h *StudyHandler) ListReleases(c *gin.Context) {
	releases, err := h.studySvc.ListReleases(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleStudyError(c, err)
		return
	}

	response.OK(c, releases)
}

// DeleteRelease 删除数据库版本
// DELETE /api/v1/releases/:id
func (h *StudyHandler) DeleteRelease(c *gin.Context) {
	if err := h.studySvc.DeleteRelease(c.Request.Context(), c.Param("id")); err != nil {
		h.handleStudyError(c, err)
		return
	}

	response.OK(c, nil)
}

// ── 报告工作 ──

// CreateEffort 创建报告工作
// POST /api/v1/efforts
func (h *StudyHandler) CreateEffort(c *gin.Context) {
	var req dto.CreateEffortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	effort, err := h.studySvc.CreateEffort(c.Request.Context(), &req)
	if err != nil {
		h.handleStudyError(c, err)
		return
	}

	response.Created(c, effort)
}

// ListEfforts 研究下的报告工作列表
// GET /api/v1/studies/:id/efforts
func (h *StudyHandler) ListEfforts(c *gin.Context) {
	efforts, err := h.studySvc.ListEfforts(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleStudyError(c, err)
		return
	}

	response.OK(c, efforts)
}

// ListAllEfforts 全部报告工作列表（跨研究，供选择器使用）
// GET /api/v1/efforts
func (h *StudyHandler) ListAllEfforts(c *gin.Context) {
	efforts, err := h.studySvc.ListAllEfforts(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, efforts)
}

// DeleteEffort 删除报告工作
// DELETE /api/v1/efforts/:id
func (h *StudyHandler) DeleteEffort(c *gin.Context) {
	if err := h.studySvc.DeleteEffort(c.Request.Context(), c.Param("id")); err != nil {
		h.handleStudyError(c, err)
		return
	}

	response.OK(c, nil)
}

// ── 模板包 ──

// CreatePackage 创建模板包
// POST /api/v1/packages
func (h *StudyHandler) CreatePackage(c *gin.Context) {
	var req dto.CreatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	pkg, err := h.studySvc.CreatePackage(c.Request.Context(), &req)
	if err != nil {
		h.handleStudyError(c, err)
		return
	}

	response.Created(c, pkg)
}

// ListPackages 研究下的模板包列表
// GET /api/v1/studies/:id/packages
func (h *StudyHandler) ListPackages(c *gin.Context) {
	pkgs, err := h.studySvc.ListPackages(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleStudyError(c, err)
		return
	}

	response.OK(c, pkgs)
}

// DeletePackage 删除模板包
// DELETE /api/v1/packages/:id
func (h *StudyHandler) DeletePackage(c *gin.Context) {
	if err := h.studySvc.DeletePackage(c.Request.Context(), c.Param("id")); err != nil {
		h.handleStudyError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *StudyHandler) handleStudyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudyNotFound):
		response.NotFound(c, 13003, "研究不存在")
	case errors.Is(err, service.ErrReleaseNotFound):
		response.NotFound(c, 13004, "数据库版本不存在")
	case errors.Is(err, service.ErrEffortNotFound):
		response.NotFound(c, 13005, "报告工作不存在")
	case errors.Is(err, service.ErrPackageNotFound):
		response.NotFound(c, 13006, "模板包不存在")
	default:
		response.InternalError(c)
	}
}
