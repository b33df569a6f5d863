package dto

// ── 批量上传模块 DTO ──

// BulkRunReport 一次批量对账运行的完整报告
// 引擎对部分成功不做回滚，报告是向调用方传达部分成功的唯一契约，
// 任何单行失败都必须体现在计数与日志行中。
type BulkRunReport struct {
	Total             int      `json:"total"`
	Created           int      `json:"created"`
	RejectedDuplicate int      `json:"rejected_duplicate"`
	RejectedError     int      `json:"rejected_error"`
	Skipped           int      `json:"skipped"`
	ElementsCreated   int      `json:"elements_created"`
	ElementsReused    int      `json:"elements_reused"`
	Lines             []string `json:"lines"` // 每行一条（含被跳过的行）
}
