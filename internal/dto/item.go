package dto

// ── 条目模块 DTO ──

// CreateItemRequest 手动创建条目请求
// 文本资源字段（title/population/ich_category/footnotes/acronyms）既可以传
// 现有 text_element 的 id（纯数字/uuid 字符串），也可以传自由文本，由解析器
// 统一归一到共享资源 id。
type CreateItemRequest struct {
	ItemType    string `json:"item_type"    binding:"required,oneof=TLF Dataset"`
	ItemSubtype string `json:"item_subtype" binding:"omitempty,max=20"`
	ItemCode    string `json:"item_code"    binding:"required,max=100"`

	// TLF 字段
	Title       string `json:"title"        binding:"omitempty"`
	Population  string `json:"population"   binding:"omitempty"`
	ICHCategory string `json:"ich_category" binding:"omitempty"`

	// Dataset 字段
	DatasetLabel string `json:"dataset_label" binding:"omitempty,max=255"`
	SortingOrder *int   `json:"sorting_order"`

	Footnotes []string `json:"footnotes" binding:"omitempty,max=50"`
	Acronyms  []string `json:"acronyms"  binding:"omitempty,max=50"`
}

// UpdateItemRequest 编辑条目请求（字段同创建，条目自身作为排重豁免对象）
type UpdateItemRequest struct {
	ItemSubtype *string `json:"item_subtype" binding:"omitempty,max=20"`
	ItemCode    *string `json:"item_code"    binding:"omitempty,max=100"`

	Title       *string `json:"title"`
	Population  *string `json:"population"`
	ICHCategory *string `json:"ich_category"`

	DatasetLabel *string `json:"dataset_label" binding:"omitempty,max=255"`
	SortingOrder *int    `json:"sorting_order"`

	Footnotes *[]string `json:"footnotes"`
	Acronyms  *[]string `json:"acronyms"`
}

// ItemResponse 条目信息响应
type ItemResponse struct {
	ID          string  `json:"id"`
	ItemType    string  `json:"item_type"`
	ItemSubtype string  `json:"item_subtype"`
	ItemCode    string  `json:"item_code"`
	PackageID   *string `json:"package_id,omitempty"`
	EffortID    *string `json:"effort_id,omitempty"`

	TitleID          *string `json:"title_id,omitempty"`
	TitleLabel       string  `json:"title_label,omitempty"`
	PopulationFlagID *string `json:"population_flag_id,omitempty"`
	ICHCategoryID    *string `json:"ich_category_id,omitempty"`

	DatasetLabel *string `json:"dataset_label,omitempty"`
	SortingOrder *int    `json:"sorting_order,omitempty"`

	Footnotes []FootnoteRef `json:"footnotes,omitempty"`
	Acronyms  []AcronymRef  `json:"acronyms,omitempty"`
}

// FootnoteRef 条目脚注引用（带序号）
type FootnoteRef struct {
	FootnoteID     string `json:"footnote_id"`
	SequenceNumber int    `json:"sequence_number"`
	Label          string `json:"label,omitempty"`
}

// AcronymRef 条目缩写引用
type AcronymRef struct {
	AcronymID string `json:"acronym_id"`
	Label     string `json:"label,omitempty"`
}

// ── 文本资源 DTO ──

// CreateTextElementRequest 创建文本资源请求
type CreateTextElementRequest struct {
	Type  string `json:"type"  binding:"required,oneof=title footnote population_set acronyms_set ich_category"`
	Label string `json:"label" binding:"required"`
}

// UpdateTextElementRequest 更新文本资源请求
type UpdateTextElementRequest struct {
	Label string `json:"label" binding:"required"`
}
