package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"pearl-track/internal/model"
)

// ── 测试辅助 ──

func setupTestDashboardService(now time.Time) (*dashboardService, *testRepos) {
	repo, mocks := newTestRepository()
	svc := &dashboardService{repo: repo, logger: zap.NewNop(), now: func() time.Time { return now }}
	return svc, mocks
}

func addTracker(mocks *testRepos, t model.Tracker) {
	mocks.tracker.trackers[t.TrackerID] = &t
}

// ── MyAssignments 测试 ──

func TestDashboardService_MyAssignments_FilterAndSort(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	svc, mocks := setupTestDashboardService(now)

	alice := "user-alice"
	// QC 已通过：不进待办
	addTracker(mocks, model.Tracker{
		TrackerID: "trk-done", EffortID: "eff-1", StudyID: "s", ItemCode: "T 1",
		ItemType: model.ItemTypeTLF, ItemSubtype: "Table",
		ProductionStatus: model.StatusCompleted, QCStatus: model.StatusCompleted,
		ProductionProgrammerID: &alice,
	})
	// 无截止日期：排最后
	addTracker(mocks, model.Tracker{
		TrackerID: "trk-nodue", EffortID: "eff-1", StudyID: "s", ItemCode: "T 2",
		ItemType: model.ItemTypeTLF, ItemSubtype: "Table",
		ProductionStatus: model.StatusNotStarted, QCStatus: model.StatusNotStarted,
		ProductionProgrammerID: &alice,
	})
	// 较晚截止
	late := time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)
	addTracker(mocks, model.Tracker{
		TrackerID: "trk-late", EffortID: "eff-1", StudyID: "s", ItemCode: "T 3",
		ItemType: model.ItemTypeTLF, ItemSubtype: "Table",
		ProductionStatus: model.StatusInProgress, QCStatus: model.StatusNotStarted,
		ProductionProgrammerID: &alice, DueDate: &late,
	})
	// 较早截止（QC 指派同样进待办）
	early := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	addTracker(mocks, model.Tracker{
		TrackerID: "trk-early", EffortID: "eff-1", StudyID: "s", ItemCode: "T 4",
		ItemType: model.ItemTypeTLF, ItemSubtype: "Table",
		ProductionStatus: model.StatusCompleted, QCStatus: model.StatusInProgress,
		QCProgrammerID: &alice, DueDate: &early,
	})
	// 其他人的任务：不可见
	bob := "user-bob"
	addTracker(mocks, model.Tracker{
		TrackerID: "trk-other", EffortID: "eff-1", StudyID: "s", ItemCode: "T 5",
		ItemType: model.ItemTypeTLF, ItemSubtype: "Table",
		ProductionStatus: model.StatusNotStarted, QCStatus: model.StatusNotStarted,
		ProductionProgrammerID: &bob,
	})

	resp, err := svc.MyAssignments(context.Background(), alice)
	if err != nil {
		t.Fatalf("MyAssignments 应成功: %v", err)
	}

	if resp.Total != 3 {
		t.Fatalf("期望 3 条待办（QC 已通过与他人任务除外），实际 %d", resp.Total)
	}
	wantOrder := []string{"trk-early", "trk-late", "trk-nodue"}
	for i, want := range wantOrder {
		if resp.List[i].ID != want {
			t.Errorf("排序第 %d 位期望 %s，实际 %s", i, want, resp.List[i].ID)
		}
	}
}

func TestDashboardService_MyAssignments_Empty(t *testing.T) {
	svc, _ := setupTestDashboardService(time.Now())

	resp, err := svc.MyAssignments(context.Background(), "user-nobody")
	if err != nil {
		t.Fatalf("MyAssignments 应成功: %v", err)
	}
	if resp.Total != 0 || len(resp.List) != 0 {
		t.Errorf("无指派用户应得到空视图: %+v", resp)
	}
}

// ── EffortDashboard 测试 ──

func TestDashboardService_EffortDashboard_EmptySelection(t *testing.T) {
	svc, mocks := setupTestDashboardService(time.Now())
	addTracker(mocks, model.Tracker{
		TrackerID: "trk-1", EffortID: "eff-1", StudyID: "s", ItemCode: "T 1",
		ItemType: model.ItemTypeTLF, ItemSubtype: "Table",
		ProductionStatus: model.StatusNotStarted, QCStatus: model.StatusNotStarted,
	})

	// 未选择报告工作：显式空视图，不展示全部
	resp, err := svc.EffortDashboard(context.Background(), "", "")
	if err != nil {
		t.Fatalf("EffortDashboard 应成功: %v", err)
	}
	if resp.Total != 0 || len(resp.List) != 0 {
		t.Errorf("未选择报告工作应返回空视图: %+v", resp)
	}
}

func TestDashboardService_EffortDashboard_ScopedToEffort(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	svc, mocks := setupTestDashboardService(now)
	mocks.effort.efforts["eff-1"] = &model.ReportingEffort{EffortID: "eff-1", StudyID: "s", Name: "CSR Final"}

	overdue := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	addTracker(mocks, model.Tracker{
		TrackerID: "trk-1", EffortID: "eff-1", StudyID: "s", ItemCode: "ADSL",
		ItemType: model.ItemTypeDataset, ItemSubtype: "SDTM",
		ProductionStatus: model.StatusInProgress, QCStatus: model.StatusNotStarted,
		DueDate: &overdue,
	})
	addTracker(mocks, model.Tracker{
		TrackerID: "trk-2", EffortID: "eff-other", StudyID: "s", ItemCode: "T 1",
		ItemType: model.ItemTypeTLF, ItemSubtype: "Table",
		ProductionStatus: model.StatusNotStarted, QCStatus: model.StatusNotStarted,
	})

	resp, err := svc.EffortDashboard(context.Background(), "eff-1", "")
	if err != nil {
		t.Fatalf("EffortDashboard 应成功: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("仪表盘应只含所选报告工作的跟踪器，实际 %d", resp.Total)
	}
	if resp.Deadline.Overdue != 1 {
		t.Errorf("期望 1 条逾期，实际 %d", resp.Deadline.Overdue)
	}
	if len(resp.ByCategory) != 1 || resp.ByCategory[0].Category != "SDTM" {
		t.Errorf("类别分组错误: %+v", resp.ByCategory)
	}
}

func TestDashboardService_EffortDashboard_StatusFilter(t *testing.T) {
	svc, mocks := setupTestDashboardService(time.Now())
	mocks.effort.efforts["eff-1"] = &model.ReportingEffort{EffortID: "eff-1", StudyID: "s", Name: "CSR Final"}

	addTracker(mocks, model.Tracker{
		TrackerID: "trk-1", EffortID: "eff-1", StudyID: "s", ItemCode: "ADSL",
		ItemType: model.ItemTypeDataset, ItemSubtype: "SDTM",
		ProductionStatus: model.StatusInProgress, QCStatus: model.StatusNotStarted,
	})
	addTracker(mocks, model.Tracker{
		TrackerID: "trk-2", EffortID: "eff-1", StudyID: "s", ItemCode: "ADAE",
		ItemType: model.ItemTypeDataset, ItemSubtype: "SDTM",
		ProductionStatus: model.StatusNotStarted, QCStatus: model.StatusNotStarted,
	})

	resp, err := svc.EffortDashboard(context.Background(), "eff-1", model.StatusInProgress)
	if err != nil {
		t.Fatalf("EffortDashboard 应成功: %v", err)
	}
	// 过滤只作用于列表，聚合统计仍覆盖全部
	if resp.Total != 2 {
		t.Errorf("Total 应统计全部跟踪器，实际 %d", resp.Total)
	}
	if len(resp.List) != 1 || resp.List[0].ItemCode != "ADSL" {
		t.Errorf("列表应只含 in_progress 的跟踪器: %+v", resp.List)
	}
}

// ── GlobalRollup 测试 ──

func TestDashboardService_GlobalRollup_FillsUsernames(t *testing.T) {
	svc, mocks := setupTestDashboardService(time.Now())
	mocks.user.users["user-alice"] = &model.User{UserID: "user-alice", Username: "alice", Role: "programmer"}

	alice := "user-alice"
	ghost := "user-ghost" // 已删除用户：降级为只留 id
	addTracker(mocks, model.Tracker{
		TrackerID: "trk-1", EffortID: "eff-1", StudyID: "s", ItemCode: "T 1",
		ItemType: model.ItemTypeTLF, ItemSubtype: "Table",
		ProductionStatus:       model.StatusInProgress,
		QCStatus:               model.StatusNotStarted,
		ProductionProgrammerID: &alice,
		QCProgrammerID:         &ghost,
	})

	resp, err := svc.GlobalRollup(context.Background())
	if err != nil {
		t.Fatalf("GlobalRollup 应成功: %v", err)
	}
	for _, g := range resp.ByProgrammer {
		switch g.ProgrammerID {
		case "user-alice":
			if g.Username != "alice" {
				t.Errorf("期望补充用户名 alice，实际 %q", g.Username)
			}
		case "user-ghost":
			if g.Username != "" {
				t.Errorf("查不到的用户应留空用户名，实际 %q", g.Username)
			}
		}
	}
}
