package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"pearl-track/config"
	"pearl-track/internal/model"
)

// ── 测试辅助 ──

func setupTestBulkService() (BulkService, *testRepos) {
	repo, mocks := newTestRepository()
	textSvc := NewTextElementService(repo, zap.NewNop())
	cfg := &config.UploadConfig{MaxRows: 1000}
	svc := NewBulkService(cfg, repo, textSvc, zap.NewNop())

	mocks.study.studies["study-1"] = &model.Study{StudyID: "study-1", Code: "ABC-001"}
	mocks.effort.efforts["eff-1"] = &model.ReportingEffort{EffortID: "eff-1", StudyID: "study-1", Name: "CSR Final"}
	mocks.pkg.packages["pkg-1"] = &model.Package{PackageID: "pkg-1", StudyID: "study-1"}

	return svc, mocks
}

// buildXLSX 以 [表头; 数据行...] 构造上传文件
func buildXLSX(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue("Sheet1", cell, v); err != nil {
				t.Fatalf("构造测试文件失败: %v", err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("构造测试文件失败: %v", err)
	}
	return buf
}

// ── ParseUpload 测试 ──

func TestBulkService_ParseUpload_MissingRequiredColumnAborts(t *testing.T) {
	svc, _ := setupTestBulkService()

	// TLF 缺 Title Key：整体中止，不返回任何行
	buf := buildXLSX(t, [][]string{
		{"TLF Type", "Title"},
		{"Table", "Demographics"},
	})
	_, err := svc.ParseUpload(buf, model.ItemTypeTLF)
	if !errors.Is(err, ErrBulkMissingColumn) {
		t.Errorf("期望 ErrBulkMissingColumn，实际: %v", err)
	}

	// Dataset 缺 Run Order
	buf = buildXLSX(t, [][]string{
		{"Dataset Name"},
		{"ADSL"},
	})
	_, err = svc.ParseUpload(buf, model.ItemTypeDataset)
	if !errors.Is(err, ErrBulkMissingColumn) {
		t.Errorf("期望 ErrBulkMissingColumn，实际: %v", err)
	}
}

func TestBulkService_ParseUpload_HeaderCaseInsensitive(t *testing.T) {
	svc, _ := setupTestBulkService()

	buf := buildXLSX(t, [][]string{
		{"TITLE KEY", "tlf type", "Title"},
		{"T 14.1.1", "Table", "Demographics"},
	})
	rows, err := svc.ParseUpload(buf, model.ItemTypeTLF)
	if err != nil {
		t.Fatalf("ParseUpload 应成功: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("期望 1 行，实际 %d", len(rows))
	}
	if rows[0].TitleKey != "T 14.1.1" || rows[0].Title != "Demographics" {
		t.Errorf("表头大小写不敏感匹配失败: %+v", rows[0])
	}
}

func TestBulkService_ParseUpload_DropsFullyEmptyRows(t *testing.T) {
	svc, _ := setupTestBulkService()

	buf := buildXLSX(t, [][]string{
		{"Title Key", "Title"},
		{"T 14.1.1", "Demographics"},
		{"", ""},
		{"T 14.2.1", "Disposition"},
	})
	rows, err := svc.ParseUpload(buf, model.ItemTypeTLF)
	if err != nil {
		t.Fatalf("ParseUpload 应成功: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("完全空行不进入管线，期望 2 行，实际 %d", len(rows))
	}
}

func TestBulkService_ParseUpload_RowCap(t *testing.T) {
	repo, mocks := newTestRepository()
	mocks.effort.efforts["eff-1"] = &model.ReportingEffort{EffortID: "eff-1", StudyID: "study-1"}
	textSvc := NewTextElementService(repo, zap.NewNop())
	svc := NewBulkService(&config.UploadConfig{MaxRows: 2}, repo, textSvc, zap.NewNop())

	buf := buildXLSX(t, [][]string{
		{"Title Key"},
		{"T 1"},
		{"T 2"},
		{"T 3"},
	})
	_, err := svc.ParseUpload(buf, model.ItemTypeTLF)
	if !errors.Is(err, ErrBulkTooManyRows) {
		t.Errorf("期望 ErrBulkTooManyRows，实际: %v", err)
	}
}

// ── Reconcile 测试 ──

func TestBulkService_Reconcile_DuplicateWithinFile(t *testing.T) {
	svc, mocks := setupTestBulkService()

	// 同文件两行同键（标题大小写/空白不同）：第一行创建、第二行拒绝
	rows := []BulkItemRow{
		{Row: 2, TitleKey: "T 14.1.1", TLFType: "Table", Title: "Demographics Table"},
		{Row: 3, TitleKey: "t14.1.1", TLFType: "table", Title: " DEMOGRAPHICS  TABLE "},
	}
	report, err := svc.Reconcile(context.Background(), model.ItemTypeTLF, effortContainer("eff-1"), rows)
	if err != nil {
		t.Fatalf("Reconcile 应成功: %v", err)
	}

	if report.Created != 1 {
		t.Errorf("期望 created=1，实际 %d", report.Created)
	}
	if report.RejectedDuplicate != 1 {
		t.Errorf("期望 rejected_duplicate=1，实际 %d", report.RejectedDuplicate)
	}
	if len(mocks.item.items) != 1 {
		t.Errorf("仓储中应只有 1 个条目，实际 %d", len(mocks.item.items))
	}
	if len(report.Lines) != 2 {
		t.Errorf("每行一条日志，期望 2 条，实际 %d", len(report.Lines))
	}
}

func TestBulkService_Reconcile_SkipsBlankRequired(t *testing.T) {
	svc, _ := setupTestBulkService()

	rows := []BulkItemRow{
		{Row: 2, TitleKey: "NA", Title: "某标题"},
		{Row: 3, TitleKey: "T 14.1.1", Title: "Demographics"},
	}
	report, err := svc.Reconcile(context.Background(), model.ItemTypeTLF, effortContainer("eff-1"), rows)
	if err != nil {
		t.Fatalf("Reconcile 应成功: %v", err)
	}
	if report.Skipped != 1 || report.Created != 1 {
		t.Errorf("期望 skipped=1 created=1，实际 skipped=%d created=%d", report.Skipped, report.Created)
	}
}

func TestBulkService_Reconcile_BadRunOrderRejected(t *testing.T) {
	svc, _ := setupTestBulkService()

	rows := []BulkItemRow{
		{Row: 2, DatasetName: "ADSL", RunOrder: "abc"},
		{Row: 3, DatasetName: "ADAE", RunOrder: "2"},
	}
	report, err := svc.Reconcile(context.Background(), model.ItemTypeDataset, effortContainer("eff-1"), rows)
	if err != nil {
		t.Fatalf("Reconcile 应成功: %v", err)
	}
	if report.RejectedError != 1 {
		t.Errorf("Run Order 非数字应计入 rejected_error，实际 %d", report.RejectedError)
	}
	if report.Created != 1 {
		t.Errorf("合法行应照常创建，实际 created=%d", report.Created)
	}
}

func TestBulkService_Reconcile_ElementCounters(t *testing.T) {
	svc, mocks := setupTestBulkService()
	mocks.textElement.elements["el-1"] = &model.TextElement{
		ElementID: "el-1", Type: model.ElementTypeTitle, Label: "Demographics Table",
	}

	rows := []BulkItemRow{
		{Row: 2, TitleKey: "T 14.1.1", Title: "DEMOGRAPHICS TABLE", Population: "Safety Population"},
	}
	report, err := svc.Reconcile(context.Background(), model.ItemTypeTLF, effortContainer("eff-1"), rows)
	if err != nil {
		t.Fatalf("Reconcile 应成功: %v", err)
	}
	if report.ElementsReused != 1 {
		t.Errorf("标题应命中既有资源，期望 elements_reused=1，实际 %d", report.ElementsReused)
	}
	if report.ElementsCreated != 1 {
		t.Errorf("人群集应新建资源，期望 elements_created=1，实际 %d", report.ElementsCreated)
	}
}

func TestBulkService_Reconcile_DegradedElementFailure(t *testing.T) {
	svc, mocks := setupTestBulkService()
	mocks.textElement.failNext = true

	// 标题资源创建失败：条目照常创建，不挂标题链接，原因进日志行
	rows := []BulkItemRow{
		{Row: 2, TitleKey: "T 14.1.1", Title: "Demographics Table"},
	}
	report, err := svc.Reconcile(context.Background(), model.ItemTypeTLF, effortContainer("eff-1"), rows)
	if err != nil {
		t.Fatalf("Reconcile 应成功: %v", err)
	}
	if report.Created != 1 {
		t.Fatalf("降级场景条目应照常创建，实际 created=%d", report.Created)
	}
	for _, item := range mocks.item.items {
		if item.TitleID != nil {
			t.Error("降级条目不应挂标题链接")
		}
	}
	if !strings.Contains(report.Lines[0], "资源创建失败") {
		t.Errorf("降级原因应体现在日志行: %s", report.Lines[0])
	}
}

func TestBulkService_Reconcile_TrackersForEffortOnly(t *testing.T) {
	svc, mocks := setupTestBulkService()

	rows := []BulkItemRow{
		{Row: 2, DatasetName: "ADSL", RunOrder: "1"},
		{Row: 3, DatasetName: "ADAE", RunOrder: "2"},
	}
	if _, err := svc.Reconcile(context.Background(), model.ItemTypeDataset, effortContainer("eff-1"), rows); err != nil {
		t.Fatalf("Reconcile 应成功: %v", err)
	}
	if len(mocks.tracker.trackers) != 2 {
		t.Errorf("报告工作容器每条目一个跟踪器，期望 2，实际 %d", len(mocks.tracker.trackers))
	}

	// 模板包容器不创建跟踪器
	svc2, mocks2 := setupTestBulkService()
	if _, err := svc2.Reconcile(context.Background(), model.ItemTypeDataset, packageContainer("pkg-1"), rows); err != nil {
		t.Fatalf("Reconcile 应成功: %v", err)
	}
	if len(mocks2.tracker.trackers) != 0 {
		t.Errorf("模板包容器不应创建跟踪器，实际 %d", len(mocks2.tracker.trackers))
	}
}

func TestBulkService_Reconcile_CountsConserve(t *testing.T) {
	svc, _ := setupTestBulkService()

	rows := []BulkItemRow{
		{Row: 2, DatasetName: "ADSL", RunOrder: "1"},
		{Row: 3, DatasetName: "adsl", RunOrder: "2", DatasetType: "sdtm"},
		{Row: 4, DatasetName: "NA", RunOrder: "3"},
		{Row: 5, DatasetName: "ADAE", RunOrder: "x"},
	}
	report, err := svc.Reconcile(context.Background(), model.ItemTypeDataset, effortContainer("eff-1"), rows)
	if err != nil {
		t.Fatalf("Reconcile 应成功: %v", err)
	}
	sum := report.Created + report.RejectedDuplicate + report.RejectedError + report.Skipped
	if sum != report.Total {
		t.Errorf("计数守恒: created+rejected+skipped=%d 应等于 total=%d", sum, report.Total)
	}
}
