package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pearl-track/internal/dto"
	"pearl-track/internal/model"
	"pearl-track/internal/repository"
)

// ── DashboardService 接口 ──

// DashboardService 仪表盘聚合业务接口
// 所有视图均为请求时即算：不缓存派生数据，跟踪器快照是唯一事实来源
type DashboardService interface {
	// GlobalRollup 全量聚合（截止日期分类 + 程序员/类别/研究/报告工作分组）
	GlobalRollup(ctx context.Context) (*dto.RollupResponse, error)
	// MyAssignments 当前用户的待办视图：生产或 QC 指派给我、且 QC 未通过
	MyAssignments(ctx context.Context, userID string) (*dto.MyAssignmentsResponse, error)
	// EffortDashboard 单个报告工作的跟踪器仪表盘；effortID 为空返回空视图；
	// statusFilter 非空时仅过滤列表（聚合统计仍覆盖全部跟踪器）
	EffortDashboard(ctx context.Context, effortID, statusFilter string) (*dto.EffortDashboardResponse, error)
}

type dashboardService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(repo *repository.Repository, logger *zap.Logger) DashboardService {
	return &dashboardService{repo: repo, logger: logger, now: time.Now}
}

func (s *dashboardService) GlobalRollup(ctx context.Context) (*dto.RollupResponse, error) {
	trackers, err := s.repo.Tracker.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := BuildRollup(trackers, s.now())
	s.fillUsernames(ctx, resp.ByProgrammer)
	return resp, nil
}

// ════════════════════════════════════════════════════════════
// MyAssignments — "我的任务"视图
// ════════════════════════════════════════════════════════════

func (s *dashboardService) MyAssignments(ctx context.Context, userID string) (*dto.MyAssignmentsResponse, error) {
	trackers, err := s.repo.Tracker.ListByProgrammer(ctx, userID)
	if err != nil {
		return nil, err
	}

	// QC 已通过的任务从待办中剔除
	pending := make([]model.Tracker, 0, len(trackers))
	for i := range trackers {
		if trackers[i].QCStatus != model.StatusCompleted {
			pending = append(pending, trackers[i])
		}
	}

	// 截止日期升序，无截止日期排最后；同日期按编号保证稳定输出
	sort.SliceStable(pending, func(i, j int) bool {
		di, dj := pending[i].DueDate, pending[j].DueDate
		switch {
		case di == nil && dj == nil:
			return pending[i].ItemCode < pending[j].ItemCode
		case di == nil:
			return false
		case dj == nil:
			return true
		case !di.Equal(*dj):
			return di.Before(*dj)
		default:
			return pending[i].ItemCode < pending[j].ItemCode
		}
	})

	resp := &dto.MyAssignmentsResponse{
		Total:    len(pending),
		Deadline: buildDeadlineStats(pending, s.now()),
		List:     make([]dto.TrackerResponse, 0, len(pending)),
	}
	for i := range pending {
		resp.List = append(resp.List, *toTrackerResponse(&pending[i]))
	}
	return resp, nil
}

// EffortDashboard effortID 为空时返回显式空视图，而非全量展示
func (s *dashboardService) EffortDashboard(ctx context.Context, effortID, statusFilter string) (*dto.EffortDashboardResponse, error) {
	resp := &dto.EffortDashboardResponse{
		EffortID:   effortID,
		ByCategory: []dto.CategoryRollup{},
		List:       []dto.TrackerResponse{},
	}
	if effortID == "" {
		return resp, nil
	}

	if _, err := s.repo.Effort.GetByID(ctx, effortID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEffortNotFound
		}
		return nil, err
	}

	trackers, err := s.repo.Tracker.ListByEffort(ctx, effortID)
	if err != nil {
		return nil, err
	}

	today := s.now()
	rollup := BuildRollup(trackers, today)

	resp.Total = len(trackers)
	resp.Deadline = rollup.Deadline
	resp.ByCategory = rollup.ByCategory
	resp.CompletionPct = rollup.CompletionPct
	for i := range trackers {
		if statusFilter != "" && trackers[i].ProductionStatus != statusFilter {
			continue
		}
		resp.List = append(resp.List, *toTrackerResponse(&trackers[i]))
	}
	return resp, nil
}

// fillUsernames 补充程序员分组的用户名；查询失败只降级不中断
func (s *dashboardService) fillUsernames(ctx context.Context, groups []dto.ProgrammerRollup) {
	for i := range groups {
		user, err := s.repo.User.GetByID(ctx, groups[i].ProgrammerID)
		if err != nil {
			s.logger.Warn("聚合补充用户名失败", zap.String("user_id", groups[i].ProgrammerID), zap.Error(err))
			continue
		}
		groups[i].Username = user.Username
	}
}
