package dto

// ── 仪表盘模块 DTO ──
//
// 所有聚合结果均为派生数据：每次请求基于当前跟踪器快照重新计算，
// 引擎不跨调用缓存任何派生状态。

// DeadlineStats 截止日期分类统计
// 已完成或无截止日期的跟踪器不进入任何桶
type DeadlineStats struct {
	Overdue int `json:"overdue"`  // due_date < 今天
	DueSoon int `json:"due_soon"` // 今天 <= due_date <= 今天+7天
	OnTrack int `json:"on_track"`
}

// StatusCounts 按状态值计数
type StatusCounts struct {
	NotStarted int `json:"not_started"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	OnHold     int `json:"on_hold,omitempty"`
	Failed     int `json:"failed,omitempty"`
	Total      int `json:"total"`
}

// ProgrammerRollup 按（程序员, 角色）分组的工作量统计
// 一个跟踪器最多贡献两组：生产指派一次、QC 指派一次
type ProgrammerRollup struct {
	ProgrammerID  string       `json:"programmer_id"`
	Username      string       `json:"username,omitempty"`
	Role          string       `json:"role"` // production | qc
	Counts        StatusCounts `json:"counts"`
	Overdue       int          `json:"overdue"`
	CompletionPct int          `json:"completion_pct"` // 四舍五入到整数（.5 进位）
}

// CategoryRollup 按任务类别分组的统计
// 类别由 (item_type, item_subtype) 映射：SDTM/ADaM/Table/Listing/Figure/TLF/Dataset/Other
type CategoryRollup struct {
	Category string       `json:"category"`
	Counts   StatusCounts `json:"counts"`
	Overdue  int          `json:"overdue"`
}

// StudyRollup 按研究分组的统计
type StudyRollup struct {
	StudyID string       `json:"study_id"`
	Counts  StatusCounts `json:"counts"`
	Overdue int          `json:"overdue"`
}

// EffortRollup 按报告工作分组的统计
type EffortRollup struct {
	EffortID      string       `json:"effort_id"`
	Counts        StatusCounts `json:"counts"`
	Overdue       int          `json:"overdue"`
	Active        bool         `json:"active"` // 存在生产未完成的跟踪器
	CompletionPct int          `json:"completion_pct"`
}

// RollupResponse 全量聚合结果
type RollupResponse struct {
	Total         int                `json:"total"`
	Deadline      DeadlineStats      `json:"deadline"`
	ByProgrammer  []ProgrammerRollup `json:"by_programmer"`
	ByCategory    []CategoryRollup   `json:"by_category"`
	ByStudy       []StudyRollup      `json:"by_study"`
	ByEffort      []EffortRollup     `json:"by_effort"`
	CompletionPct int                `json:"completion_pct"`
}

// MyAssignmentsResponse "我的任务"视图
// 仅含 QC 未通过的待办跟踪器，按截止日期升序（无截止日期排最后）
type MyAssignmentsResponse struct {
	Total    int               `json:"total"`
	Deadline DeadlineStats     `json:"deadline"`
	List     []TrackerResponse `json:"list"`
}

// EffortDashboardResponse 单个报告工作的跟踪器仪表盘
// 未选择报告工作时返回空视图（显式"请选择"状态，而非展示全部）
type EffortDashboardResponse struct {
	EffortID      string            `json:"effort_id"`
	Total         int               `json:"total"`
	Deadline      DeadlineStats     `json:"deadline"`
	ByCategory    []CategoryRollup  `json:"by_category"`
	CompletionPct int               `json:"completion_pct"`
	List          []TrackerResponse `json:"list"`
}
