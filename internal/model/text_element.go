package model

// TextElement 共享文本资源表 — 对应 text_elements
// 标题、脚注、人群集、缩写集与 ICH 分类共用一张表，按 type 区分。
// 语义唯一键为 (type, 规范化后的 label)，由引擎侧去重保证，数据库不加唯一约束
// （label 可编辑，历史数据可能存在近似重复）。
type TextElement struct {
	ElementID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"element_id"`
	Type      string `gorm:"type:varchar(20);not null;index"                json:"type"`
	Label     string `gorm:"type:text;not null"                             json:"label"`
	SoftDeleteModel
}

// TableName 指定表名
func (TextElement) TableName() string { return "text_elements" }
