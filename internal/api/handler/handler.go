package handler

import "pearl-track/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth        *AuthHandler
	User        *UserHandler
	Study       *StudyHandler
	TextElement *TextElementHandler
	Item        *ItemHandler
	Bulk        *BulkHandler
	Tracker     *TrackerHandler
	Dashboard   *DashboardHandler
	Export      *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth),
		User:        NewUserHandler(svc.User),
		Study:       NewStudyHandler(svc.Study),
		TextElement: NewTextElementHandler(svc.TextElement),
		Item:        NewItemHandler(svc.Item),
		Bulk:        NewBulkHandler(svc.Bulk),
		Tracker:     NewTrackerHandler(svc.Tracker),
		Dashboard:   NewDashboardHandler(svc.Dashboard),
		Export:      NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
