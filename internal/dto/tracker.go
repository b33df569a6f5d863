package dto

// ── 跟踪器模块 DTO ──

// TrackerResponse 跟踪器信息响应
type TrackerResponse struct {
	ID                     string  `json:"id"`
	EffortID               string  `json:"effort_id"`
	StudyID                string  `json:"study_id"`
	ItemCode               string  `json:"item_code"`
	ItemType               string  `json:"item_type"`
	ItemSubtype            string  `json:"item_subtype"`
	ProductionStatus       string  `json:"production_status"`
	QCStatus               string  `json:"qc_status"`
	ProductionProgrammerID *string `json:"production_programmer_id,omitempty"`
	QCProgrammerID         *string `json:"qc_programmer_id,omitempty"`
	DueDate                *string `json:"due_date,omitempty"` // "2026-09-01"
	Priority               int     `json:"priority"`
	InProduction           bool    `json:"in_production"`

	// 快捷状态操作可用动作（按轴）
	ProductionActions []string `json:"production_actions"`
	QCActions         []string `json:"qc_actions"`
}

// UpdateTrackerRequest 编辑跟踪器请求（完整编辑，可回退状态）
type UpdateTrackerRequest struct {
	ProductionStatus       *string `json:"production_status" binding:"omitempty,oneof=not_started in_progress completed on_hold"`
	QCStatus               *string `json:"qc_status"         binding:"omitempty,oneof=not_started in_progress completed failed"`
	ProductionProgrammerID *string `json:"production_programmer_id" binding:"omitempty,uuid"`
	QCProgrammerID         *string `json:"qc_programmer_id"         binding:"omitempty,uuid"`
	DueDate                *string `json:"due_date"`
	Priority               *int    `json:"priority"`
	InProduction           *bool   `json:"in_production"`
}

// QuickStatusRequest 快捷状态变更请求
// 仅允许状态机前向动作：not_started →start→ in_progress →complete→ completed
type QuickStatusRequest struct {
	TrackerID  string `json:"tracker_id"  binding:"required,uuid"`
	NewStatus  string `json:"new_status"  binding:"required,oneof=in_progress completed"`
	StatusType string `json:"status_type" binding:"required,oneof=production qc"`
}

// BatchAssignRequest 批量指派请求（按报告工作圈选跟踪器）
type BatchAssignRequest struct {
	TrackerIDs             []string `json:"tracker_ids" binding:"required,min=1"`
	ProductionProgrammerID *string  `json:"production_programmer_id" binding:"omitempty,uuid"`
	QCProgrammerID         *string  `json:"qc_programmer_id"         binding:"omitempty,uuid"`
	DueDate                *string  `json:"due_date"`
	Priority               *int     `json:"priority"`
}
