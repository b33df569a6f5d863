package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"pearl-track/internal/model"
)

// ── 测试辅助 ──

func setupTestExportService() (ExportService, *testRepos) {
	repo, mocks := newTestRepository()
	svc := NewExportService(repo, zap.NewNop())
	mocks.effort.efforts["eff-1"] = &model.ReportingEffort{EffortID: "eff-1", StudyID: "study-1", Name: "CSR Final"}
	return svc, mocks
}

// ── ExportEffortTrackers 测试 ──

func TestExportService_ExportEffortTrackers_NoEffort(t *testing.T) {
	svc, _ := setupTestExportService()

	_, _, err := svc.ExportEffortTrackers(context.Background(), "eff-missing")
	if !errors.Is(err, ErrExportNoEffort) {
		t.Errorf("期望 ErrExportNoEffort，实际: %v", err)
	}
}

func TestExportService_ExportEffortTrackers_NoTrackers(t *testing.T) {
	svc, _ := setupTestExportService()

	_, _, err := svc.ExportEffortTrackers(context.Background(), "eff-1")
	if !errors.Is(err, ErrExportNoTrackers) {
		t.Errorf("期望 ErrExportNoTrackers，实际: %v", err)
	}
}

func TestExportService_ExportEffortTrackers_Success(t *testing.T) {
	svc, mocks := setupTestExportService()
	mocks.tracker.trackers["trk-1"] = &model.Tracker{
		TrackerID: "trk-1", EffortID: "eff-1", StudyID: "study-1",
		ItemID: "item-1", ItemCode: "T 14.1.1",
		ItemType: model.ItemTypeTLF, ItemSubtype: "Table",
		ProductionStatus: model.StatusInProgress, QCStatus: model.StatusNotStarted,
	}

	buf, filename, err := svc.ExportEffortTrackers(context.Background(), "eff-1")
	if err != nil {
		t.Fatalf("导出应成功: %v", err)
	}
	if buf == nil || buf.Len() == 0 {
		t.Fatal("导出内容不应为空")
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("文件名应以 .xlsx 结尾，实际 %s", filename)
	}
	if !strings.Contains(filename, "CSR Final") {
		t.Errorf("文件名应携带报告工作名称，实际 %s", filename)
	}
}

// ── ExportMyCalendar 测试 ──

func TestExportService_ExportMyCalendar_PendingOnly(t *testing.T) {
	svc, mocks := setupTestExportService()

	alice := "user-alice"
	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	// 进日历：有截止日期且 QC 未通过
	mocks.tracker.trackers["trk-1"] = &model.Tracker{
		TrackerID: "trk-1", EffortID: "eff-1", StudyID: "study-1",
		ItemID: "item-1", ItemCode: "T 14.1.1",
		ItemType: model.ItemTypeTLF, ItemSubtype: "Table",
		ProductionStatus: model.StatusInProgress, QCStatus: model.StatusNotStarted,
		ProductionProgrammerID: &alice, DueDate: &due,
	}
	// 不进日历：QC 已通过
	mocks.tracker.trackers["trk-2"] = &model.Tracker{
		TrackerID: "trk-2", EffortID: "eff-1", StudyID: "study-1",
		ItemID: "item-2", ItemCode: "T 14.2.1",
		ItemType: model.ItemTypeTLF, ItemSubtype: "Table",
		ProductionStatus: model.StatusCompleted, QCStatus: model.StatusCompleted,
		ProductionProgrammerID: &alice, DueDate: &due,
	}
	// 不进日历：无截止日期
	mocks.tracker.trackers["trk-3"] = &model.Tracker{
		TrackerID: "trk-3", EffortID: "eff-1", StudyID: "study-1",
		ItemID: "item-3", ItemCode: "T 14.3.1",
		ItemType: model.ItemTypeTLF, ItemSubtype: "Table",
		ProductionStatus: model.StatusNotStarted, QCStatus: model.StatusNotStarted,
		ProductionProgrammerID: &alice,
	}

	buf, filename, err := svc.ExportMyCalendar(context.Background(), alice)
	if err != nil {
		t.Fatalf("导出应成功: %v", err)
	}
	content := buf.String()
	if !strings.Contains(content, "BEGIN:VCALENDAR") {
		t.Error("输出应为 iCalendar 格式")
	}
	if !strings.Contains(content, "trk-1@pearl-track") {
		t.Error("待办跟踪器应生成事件")
	}
	if strings.Contains(content, "trk-2@pearl-track") {
		t.Error("QC 已通过的跟踪器不应生成事件")
	}
	if strings.Contains(content, "trk-3@pearl-track") {
		t.Error("无截止日期的跟踪器不应生成事件")
	}
	if !strings.HasSuffix(filename, ".ics") {
		t.Errorf("文件名应以 .ics 结尾，实际 %s", filename)
	}
}
