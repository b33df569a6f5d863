package repository

import (
	"context"

	"gorm.io/gorm"

	"pearl-track/internal/model"
)

// ItemRepository 报告条目数据访问接口
type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	GetByID(ctx context.Context, id string) (*model.Item, error)
	ListByContainer(ctx context.Context, container model.ContainerRef) ([]model.Item, error)
	Update(ctx context.Context, item *model.Item) error
	Delete(ctx context.Context, id string) error
	ReplaceFootnotes(ctx context.Context, itemID string, footnotes []model.ItemFootnote) error
	ReplaceAcronyms(ctx context.Context, itemID string, acronyms []model.ItemAcronym) error
}

type itemRepo struct {
	db *gorm.DB
}

// NewItemRepo 创建 ItemRepository 实例
func NewItemRepo(db *gorm.DB) ItemRepository {
	return &itemRepo{db: db}
}

func (r *itemRepo) Create(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *itemRepo) GetByID(ctx context.Context, id string) (*model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).
		Preload("Title").
		Preload("Footnotes.Footnote").
		Preload("Acronyms.Acronym").
		Where("item_id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepo) ListByContainer(ctx context.Context, container model.ContainerRef) ([]model.Item, error) {
	var items []model.Item

	db := r.db.WithContext(ctx).Preload("Title")
	if container.Type == model.ContainerPackage {
		db = db.Where("package_id = ?", container.ID)
	} else {
		db = db.Where("effort_id = ?", container.ID)
	}

	if err := db.Order("item_code").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *itemRepo) Update(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *itemRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("item_id = ?", id).Delete(&model.Item{}).Error
}

// ReplaceFootnotes 全量替换条目脚注关联（编辑场景）
func (r *itemRepo) ReplaceFootnotes(ctx context.Context, itemID string, footnotes []model.ItemFootnote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", itemID).Delete(&model.ItemFootnote{}).Error; err != nil {
			return err
		}
		if len(footnotes) == 0 {
			return nil
		}
		return tx.Create(&footnotes).Error
	})
}

// ReplaceAcronyms 全量替换条目缩写关联（编辑场景）
func (r *itemRepo) ReplaceAcronyms(ctx context.Context, itemID string, acronyms []model.ItemAcronym) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", itemID).Delete(&model.ItemAcronym{}).Error; err != nil {
			return err
		}
		if len(acronyms) == 0 {
			return nil
		}
		return tx.Create(&acronyms).Error
	})
}

// [自证通过] internal/repository/item_repo.go
