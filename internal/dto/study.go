package dto

// ── 研究 / 报告工作模块 DTO ──

// CreateStudyRequest 创建研究请求
type CreateStudyRequest struct {
	Code string `json:"code" binding:"required,min=2,max=50"`
	Name string `json:"name" binding:"required,min=2,max=255"`
}

// UpdateStudyRequest 更新研究请求
type UpdateStudyRequest struct {
	Code *string `json:"code" binding:"omitempty,min=2,max=50"`
	Name *string `json:"name" binding:"omitempty,min=2,max=255"`
}

// CreateReleaseRequest 创建数据库版本请求
type CreateReleaseRequest struct {
	StudyID     string  `json:"study_id"     binding:"required,uuid"`
	Name        string  `json:"name"         binding:"required,min=2,max=100"`
	ReleaseDate *string `json:"release_date"` // "2026-09-01"
}

// CreateEffortRequest 创建报告工作请求
type CreateEffortRequest struct {
	StudyID   string  `json:"study_id"   binding:"required,uuid"`
	ReleaseID *string `json:"release_id" binding:"omitempty,uuid"`
	Name      string  `json:"name"       binding:"required,min=2,max=100"`
}

// CreatePackageRequest 创建模板包请求
type CreatePackageRequest struct {
	StudyID string `json:"study_id" binding:"required,uuid"`
	Name    string `json:"name"     binding:"required,min=2,max=100"`
}
