package repository

import (
	"context"

	"gorm.io/gorm"

	"pearl-track/internal/model"
)

// TextElementRepository 共享文本资源数据访问接口
type TextElementRepository interface {
	Create(ctx context.Context, element *model.TextElement) error
	GetByID(ctx context.Context, id string) (*model.TextElement, error)
	ListByType(ctx context.Context, elementType string) ([]model.TextElement, error)
	List(ctx context.Context) ([]model.TextElement, error)
	Update(ctx context.Context, element *model.TextElement) error
	Delete(ctx context.Context, id string) error
	CountReferences(ctx context.Context, id string) (int64, error)
}

type textElementRepo struct {
	db *gorm.DB
}

// NewTextElementRepo 创建 TextElementRepository 实例
func NewTextElementRepo(db *gorm.DB) TextElementRepository {
	return &textElementRepo{db: db}
}

func (r *textElementRepo) Create(ctx context.Context, element *model.TextElement) error {
	return r.db.WithContext(ctx).Create(element).Error
}

func (r *textElementRepo) GetByID(ctx context.Context, id string) (*model.TextElement, error) {
	var element model.TextElement
	if err := r.db.WithContext(ctx).Where("element_id = ?", id).First(&element).Error; err != nil {
		return nil, err
	}
	return &element, nil
}

func (r *textElementRepo) ListByType(ctx context.Context, elementType string) ([]model.TextElement, error) {
	var elements []model.TextElement
	err := r.db.WithContext(ctx).
		Where("type = ?", elementType).
		Order("label").
		Find(&elements).Error
	if err != nil {
		return nil, err
	}
	return elements, nil
}

func (r *textElementRepo) List(ctx context.Context) ([]model.TextElement, error) {
	var elements []model.TextElement
	if err := r.db.WithContext(ctx).Order("type, label").Find(&elements).Error; err != nil {
		return nil, err
	}
	return elements, nil
}

func (r *textElementRepo) Update(ctx context.Context, element *model.TextElement) error {
	return r.db.WithContext(ctx).Save(element).Error
}

func (r *textElementRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("element_id = ?", id).Delete(&model.TextElement{}).Error
}

// CountReferences 统计资源被条目引用的次数（删除前校验：被引用的资源不可删除）
func (r *textElementRepo) CountReferences(ctx context.Context, id string) (int64, error) {
	var total int64

	var n int64
	err := r.db.WithContext(ctx).Model(&model.Item{}).
		Where("title_id = ? OR population_flag_id = ? OR ich_category_id = ?", id, id, id).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	total += n

	if err := r.db.WithContext(ctx).Model(&model.ItemFootnote{}).Where("footnote_id = ?", id).Count(&n).Error; err != nil {
		return 0, err
	}
	total += n

	if err := r.db.WithContext(ctx).Model(&model.ItemAcronym{}).Where("acronym_id = ?", id).Count(&n).Error; err != nil {
		return 0, err
	}
	total += n

	return total, nil
}

// [自证通过] internal/repository/text_element_repo.go
