package repository

import (
	"context"

	"gorm.io/gorm"

	"pearl-track/internal/model"
)

// TrackerRepository 进度跟踪数据访问接口
type TrackerRepository interface {
	Create(ctx context.Context, tracker *model.Tracker) error
	GetByID(ctx context.Context, id string) (*model.Tracker, error)
	Update(ctx context.Context, tracker *model.Tracker) error
	Delete(ctx context.Context, id string) error
	DeleteByItem(ctx context.Context, itemID string) error
	List(ctx context.Context) ([]model.Tracker, error)
	ListByEffort(ctx context.Context, effortID string) ([]model.Tracker, error)
	ListByProgrammer(ctx context.Context, programmerID string) ([]model.Tracker, error)
}

type trackerRepo struct {
	db *gorm.DB
}

// NewTrackerRepo 创建 TrackerRepository 实例
func NewTrackerRepo(db *gorm.DB) TrackerRepository {
	return &trackerRepo{db: db}
}

func (r *trackerRepo) Create(ctx context.Context, tracker *model.Tracker) error {
	return r.db.WithContext(ctx).Create(tracker).Error
}

func (r *trackerRepo) GetByID(ctx context.Context, id string) (*model.Tracker, error) {
	var tracker model.Tracker
	err := r.db.WithContext(ctx).
		Where("tracker_id = ?", id).
		First(&tracker).Error
	if err != nil {
		return nil, err
	}
	return &tracker, nil
}

func (r *trackerRepo) Update(ctx context.Context, tracker *model.Tracker) error {
	return r.db.WithContext(ctx).Save(tracker).Error
}

func (r *trackerRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("tracker_id = ?", id).Delete(&model.Tracker{}).Error
}

// DeleteByItem 条目删除时级联清理对应跟踪器
func (r *trackerRepo) DeleteByItem(ctx context.Context, itemID string) error {
	return r.db.WithContext(ctx).Where("item_id = ?", itemID).Delete(&model.Tracker{}).Error
}

func (r *trackerRepo) List(ctx context.Context) ([]model.Tracker, error) {
	var trackers []model.Tracker
	if err := r.db.WithContext(ctx).Find(&trackers).Error; err != nil {
		return nil, err
	}
	return trackers, nil
}

func (r *trackerRepo) ListByEffort(ctx context.Context, effortID string) ([]model.Tracker, error) {
	var trackers []model.Tracker
	err := r.db.WithContext(ctx).
		Where("effort_id = ?", effortID).
		Order("item_code").
		Find(&trackers).Error
	if err != nil {
		return nil, err
	}
	return trackers, nil
}

// ListByProgrammer 返回某用户作为生产或 QC 指派人的全部跟踪器
func (r *trackerRepo) ListByProgrammer(ctx context.Context, programmerID string) ([]model.Tracker, error) {
	var trackers []model.Tracker
	err := r.db.WithContext(ctx).
		Where("production_programmer_id = ? OR qc_programmer_id = ?", programmerID, programmerID).
		Find(&trackers).Error
	if err != nil {
		return nil, err
	}
	return trackers, nil
}
