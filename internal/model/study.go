package model

import "time"

// Study 研究表 — 对应 studies
type Study struct {
	StudyID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"study_id"`
	Code    string `gorm:"type:varchar(50);not null;uniqueIndex"          json:"code"`
	Name    string `gorm:"type:varchar(255);not null"                     json:"name"`
	SoftDeleteModel
}

// TableName 指定表名
func (Study) TableName() string { return "studies" }

// DatabaseRelease 数据库版本表 — 对应 database_releases
type DatabaseRelease struct {
	ReleaseID   string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"release_id"`
	StudyID     string     `gorm:"type:uuid;not null"                             json:"study_id"`
	Name        string     `gorm:"type:varchar(100);not null"                     json:"name"`
	ReleaseDate *time.Time `gorm:"type:date"                                      json:"release_date,omitempty"`
	SoftDeleteModel

	Study *Study `gorm:"foreignKey:StudyID;references:StudyID" json:"study,omitempty"`
}

// TableName 指定表名
func (DatabaseRelease) TableName() string { return "database_releases" }

// ReportingEffort 报告工作表 — 对应 reporting_efforts
// 一个报告工作隶属一个研究，可选关联一个数据库版本
type ReportingEffort struct {
	EffortID  string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"effort_id"`
	StudyID   string  `gorm:"type:uuid;not null"                             json:"study_id"`
	ReleaseID *string `gorm:"type:uuid"                                      json:"release_id,omitempty"`
	Name      string  `gorm:"type:varchar(100);not null"                     json:"name"`
	SoftDeleteModel

	Study   *Study           `gorm:"foreignKey:StudyID;references:StudyID"       json:"study,omitempty"`
	Release *DatabaseRelease `gorm:"foreignKey:ReleaseID;references:ReleaseID"   json:"release,omitempty"`
}

// TableName 指定表名
func (ReportingEffort) TableName() string { return "reporting_efforts" }

// Package 条目模板包表 — 对应 packages
// 与 ReportingEffort 平行的另一种条目容器（可复用模板）
type Package struct {
	PackageID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"package_id"`
	StudyID   string `gorm:"type:uuid;not null"                             json:"study_id"`
	Name      string `gorm:"type:varchar(100);not null"                     json:"name"`
	SoftDeleteModel

	Study *Study `gorm:"foreignKey:StudyID;references:StudyID" json:"study,omitempty"`
}

// TableName 指定表名
func (Package) TableName() string { return "packages" }
