package model

// Item 报告条目表 — 对应 items
// item_type 为 TLF 时 TLF 明细字段有效；为 Dataset 时 Dataset 明细字段有效。
// package_id 与 effort_id 二选一（数据库 CHECK 约束保证）。
type Item struct {
	ItemID      string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"item_id"`
	ItemType    string  `gorm:"type:varchar(10);not null"                      json:"item_type"` // TLF | Dataset
	ItemSubtype string  `gorm:"type:varchar(20);not null"                      json:"item_subtype"`
	ItemCode    string  `gorm:"type:varchar(100);not null"                     json:"item_code"`
	PackageID   *string `gorm:"type:uuid;index"                                json:"package_id,omitempty"`
	EffortID    *string `gorm:"type:uuid;index"                                json:"effort_id,omitempty"`

	// TLF 明细：均为 text_elements 的可空引用
	TitleID          *string `gorm:"type:uuid" json:"title_id,omitempty"`
	PopulationFlagID *string `gorm:"type:uuid" json:"population_flag_id,omitempty"`
	ICHCategoryID    *string `gorm:"type:uuid;column:ich_category_id" json:"ich_category_id,omitempty"`

	// Dataset 明细
	DatasetLabel *string `gorm:"type:varchar(255)" json:"dataset_label,omitempty"`
	SortingOrder *int    `json:"sorting_order,omitempty"`

	SoftDeleteModel

	// 关联
	Title     *TextElement   `gorm:"foreignKey:TitleID;references:ElementID" json:"title,omitempty"`
	Footnotes []ItemFootnote `gorm:"foreignKey:ItemID;references:ItemID"     json:"footnotes,omitempty"`
	Acronyms  []ItemAcronym  `gorm:"foreignKey:ItemID;references:ItemID"     json:"acronyms,omitempty"`
}

// TableName 指定表名
func (Item) TableName() string { return "items" }

// ItemFootnote 条目脚注关联 — 对应 item_footnotes
// sequence_number 为 1 起始的显示顺序
type ItemFootnote struct {
	ItemID         string `gorm:"type:uuid;primaryKey" json:"item_id"`
	FootnoteID     string `gorm:"type:uuid;primaryKey" json:"footnote_id"`
	SequenceNumber int    `gorm:"not null"             json:"sequence_number"`

	Footnote *TextElement `gorm:"foreignKey:FootnoteID;references:ElementID" json:"footnote,omitempty"`
}

// TableName 指定表名
func (ItemFootnote) TableName() string { return "item_footnotes" }

// ItemAcronym 条目缩写关联 — 对应 item_acronyms（无序）
type ItemAcronym struct {
	ItemID    string `gorm:"type:uuid;primaryKey" json:"item_id"`
	AcronymID string `gorm:"type:uuid;primaryKey" json:"acronym_id"`

	Acronym *TextElement `gorm:"foreignKey:AcronymID;references:ElementID" json:"acronym,omitempty"`
}

// TableName 指定表名
func (ItemAcronym) TableName() string { return "item_acronyms" }
