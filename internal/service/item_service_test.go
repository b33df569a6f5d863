package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"pearl-track/internal/dto"
	"pearl-track/internal/model"
)

// ── 测试辅助 ──

func setupTestItemService() (ItemService, *testRepos) {
	repo, mocks := newTestRepository()
	textSvc := NewTextElementService(repo, zap.NewNop())
	svc := NewItemService(repo, textSvc, zap.NewNop())

	mocks.study.studies["study-1"] = &model.Study{StudyID: "study-1", Code: "ABC-001", Name: "测试研究"}
	mocks.effort.efforts["eff-1"] = &model.ReportingEffort{EffortID: "eff-1", StudyID: "study-1", Name: "CSR Final"}
	mocks.pkg.packages["pkg-1"] = &model.Package{PackageID: "pkg-1", StudyID: "study-1", Name: "标准模板"}

	return svc, mocks
}

func effortContainer(id string) model.ContainerRef {
	return model.ContainerRef{Type: model.ContainerEffort, ID: id}
}

func packageContainer(id string) model.ContainerRef {
	return model.ContainerRef{Type: model.ContainerPackage, ID: id}
}

// ── detectDuplicate 测试 ──

func TestDetectDuplicate_TLFNormalizedKey(t *testing.T) {
	titleID := "el-1"
	items := []model.Item{{
		ItemID:      "item-1",
		ItemType:    model.ItemTypeTLF,
		ItemSubtype: "Table",
		ItemCode:    "T 14.1.1",
		TitleID:     &titleID,
	}}
	lookup := func(id string) string {
		if id == "el-1" {
			return "Demographics Table"
		}
		return ""
	}

	// 大小写与空白差异仍判重
	cand := itemCandidate{
		ItemType:   model.ItemTypeTLF,
		Subtype:    "table",
		Code:       "t14.1.1",
		TitleLabel: "DEMOGRAPHICS  TABLE",
	}
	dup, msg := detectDuplicate(items, cand, "", lookup)
	if !dup {
		t.Fatal("规范化后同键应判重")
	}
	if msg == "" {
		t.Error("判重应携带冲突信息")
	}

	// 标题不同则不判重
	cand.TitleLabel = "Disposition Table"
	if dup, _ := detectDuplicate(items, cand, "", lookup); dup {
		t.Error("标题不同不应判重")
	}
}

func TestDetectDuplicate_DatasetKeyIgnoresTitle(t *testing.T) {
	items := []model.Item{{
		ItemID:      "item-1",
		ItemType:    model.ItemTypeDataset,
		ItemSubtype: "SDTM",
		ItemCode:    "ADSL",
	}}

	cand := itemCandidate{ItemType: model.ItemTypeDataset, Subtype: "sdtm", Code: " adsl "}
	if dup, _ := detectDuplicate(items, cand, "", nil); !dup {
		t.Error("Dataset 按 (子类型, 编码) 判重")
	}

	// 子类型不同不判重
	cand.Subtype = "ADaM"
	if dup, _ := detectDuplicate(items, cand, "", nil); dup {
		t.Error("子类型不同不应判重")
	}
}

func TestDetectDuplicate_ExcludesSelf(t *testing.T) {
	items := []model.Item{{
		ItemID:      "item-1",
		ItemType:    model.ItemTypeDataset,
		ItemSubtype: "SDTM",
		ItemCode:    "ADSL",
	}}

	cand := itemCandidate{ItemType: model.ItemTypeDataset, Subtype: "SDTM", Code: "ADSL"}
	if dup, _ := detectDuplicate(items, cand, "item-1", nil); dup {
		t.Error("编辑场景排重应豁免条目自身")
	}
}

// ── Create 测试 ──

func TestItemService_Create_EffortCreatesTracker(t *testing.T) {
	svc, mocks := setupTestItemService()

	resp, err := svc.Create(context.Background(), effortContainer("eff-1"), &dto.CreateItemRequest{
		ItemType: model.ItemTypeTLF,
		ItemCode: "T 14.1.1",
		Title:    "Demographics Table",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.ItemSubtype != "Table" {
		t.Errorf("TLF 子类型缺省应为 Table，实际 %s", resp.ItemSubtype)
	}
	if resp.TitleID == nil {
		t.Error("自由文本标题应解析为资源引用")
	}

	// 挂到报告工作必须联动创建跟踪器
	if len(mocks.tracker.trackers) != 1 {
		t.Fatalf("期望 1 个跟踪器，实际 %d", len(mocks.tracker.trackers))
	}
	for _, trk := range mocks.tracker.trackers {
		if trk.StudyID != "study-1" || trk.EffortID != "eff-1" {
			t.Errorf("跟踪器归属错误: study=%s effort=%s", trk.StudyID, trk.EffortID)
		}
		if trk.ProductionStatus != model.StatusNotStarted {
			t.Errorf("新跟踪器生产状态应为 not_started，实际 %s", trk.ProductionStatus)
		}
	}
}

func TestItemService_Create_PackageNoTracker(t *testing.T) {
	svc, mocks := setupTestItemService()

	_, err := svc.Create(context.Background(), packageContainer("pkg-1"), &dto.CreateItemRequest{
		ItemType: model.ItemTypeDataset,
		ItemCode: "ADSL",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if len(mocks.tracker.trackers) != 0 {
		t.Errorf("模板包容器不应创建跟踪器，实际 %d 个", len(mocks.tracker.trackers))
	}
}

func TestItemService_Create_RejectsDuplicate(t *testing.T) {
	svc, _ := setupTestItemService()

	req := &dto.CreateItemRequest{
		ItemType: model.ItemTypeTLF,
		ItemCode: "T 14.1.1",
		Title:    "Demographics Table",
	}
	if _, err := svc.Create(context.Background(), effortContainer("eff-1"), req); err != nil {
		t.Fatalf("首次创建应成功: %v", err)
	}

	// 同键（标题大小写不同）第二次创建应拒绝
	dup := &dto.CreateItemRequest{
		ItemType: model.ItemTypeTLF,
		ItemCode: "t 14.1.1",
		Title:    "DEMOGRAPHICS TABLE",
	}
	_, err := svc.Create(context.Background(), effortContainer("eff-1"), dup)
	if !errors.Is(err, ErrItemDuplicate) {
		t.Errorf("期望 ErrItemDuplicate，实际: %v", err)
	}
}

func TestItemService_Create_ContainerNotFound(t *testing.T) {
	svc, _ := setupTestItemService()

	_, err := svc.Create(context.Background(), effortContainer("eff-missing"), &dto.CreateItemRequest{
		ItemType: model.ItemTypeDataset,
		ItemCode: "ADSL",
	})
	if !errors.Is(err, ErrContainerNotFound) {
		t.Errorf("期望 ErrContainerNotFound，实际: %v", err)
	}
}

// ── Update 测试 ──

func TestItemService_Update_SelfNotDuplicate(t *testing.T) {
	svc, _ := setupTestItemService()

	created, err := svc.Create(context.Background(), effortContainer("eff-1"), &dto.CreateItemRequest{
		ItemType: model.ItemTypeDataset,
		ItemCode: "ADSL",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	// 键未变的编辑不应被自身判重拦截
	label := "Subject-Level Analysis Dataset"
	_, err = svc.Update(context.Background(), created.ID, &dto.UpdateItemRequest{
		DatasetLabel: &label,
	})
	if err != nil {
		t.Errorf("键未变的编辑应成功: %v", err)
	}
}

func TestItemService_Update_RejectsCollisionWithOther(t *testing.T) {
	svc, _ := setupTestItemService()

	if _, err := svc.Create(context.Background(), effortContainer("eff-1"), &dto.CreateItemRequest{
		ItemType: model.ItemTypeDataset, ItemCode: "ADSL",
	}); err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	second, err := svc.Create(context.Background(), effortContainer("eff-1"), &dto.CreateItemRequest{
		ItemType: model.ItemTypeDataset, ItemCode: "ADAE",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	// 把第二个条目改成与第一个同键
	code := "adsl"
	_, err = svc.Update(context.Background(), second.ID, &dto.UpdateItemRequest{ItemCode: &code})
	if !errors.Is(err, ErrItemDuplicate) {
		t.Errorf("期望 ErrItemDuplicate，实际: %v", err)
	}
}

// ── Delete 测试 ──

func TestItemService_Delete_CascadesTracker(t *testing.T) {
	svc, mocks := setupTestItemService()

	created, err := svc.Create(context.Background(), effortContainer("eff-1"), &dto.CreateItemRequest{
		ItemType: model.ItemTypeDataset, ItemCode: "ADSL",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if len(mocks.tracker.trackers) != 1 {
		t.Fatalf("前置条件失败: 期望 1 个跟踪器")
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if len(mocks.tracker.trackers) != 0 {
		t.Error("删除条目应级联清理其跟踪器")
	}
}
