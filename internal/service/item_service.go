package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pearl-track/internal/dto"
	"pearl-track/internal/model"
	"pearl-track/internal/repository"
)

// ── 条目模块业务错误 ──

var (
	ErrItemNotFound      = errors.New("条目不存在")
	ErrItemDuplicate     = errors.New("条目重复")
	ErrContainerNotFound = errors.New("目标容器（模板包/报告工作）不存在")
)

// 子类型默认值：上传与手动创建共用
const (
	defaultTLFSubtype     = "Table"
	defaultDatasetSubtype = "SDTM"
)

// ── 复合键排重 ──────────────────────────────────────────────
//
// TLF 键:     (子类型, 编码, 解析后的标题标签)，标题缺失按空串
// Dataset 键: (子类型, 编码)
// 三元组各分量经 Normalize 后比较；命中信息用原始（未规范化）值呈现。
// 检查总是针对调用方提供的容器快照重新推导——批量运行中快照须已并入
// 本次运行先前创建的条目。
// ─────────────────────────────────────────────────────────────

// itemCandidate 排重候选
type itemCandidate struct {
	ItemType   string
	Subtype    string
	Code       string
	TitleLabel string // 仅 TLF 参与比较
}

// detectDuplicate 复合键排重检测
// titleLookup 将 title_id 解析为标签（通常由 TextElementCache 提供）
// 返回 (是否重复, 人类可读的冲突信息)
func detectDuplicate(items []model.Item, cand itemCandidate, excludeID string, titleLookup func(id string) string) (bool, string) {
	candSubtype := Normalize(cand.Subtype)
	candCode := Normalize(cand.Code)
	candTitle := Normalize(cand.TitleLabel)

	for i := range items {
		existing := &items[i]
		if existing.ItemID == excludeID {
			continue
		}
		if existing.ItemType != cand.ItemType {
			continue
		}
		if Normalize(existing.ItemSubtype) != candSubtype || Normalize(existing.ItemCode) != candCode {
			continue
		}

		if cand.ItemType == model.ItemTypeTLF {
			existingTitle := itemTitleLabel(existing, titleLookup)
			if Normalize(existingTitle) != candTitle {
				continue
			}
			return true, fmt.Sprintf("与现有条目重复: %s %s（标题: %s）",
				existing.ItemSubtype, existing.ItemCode, existingTitle)
		}

		return true, fmt.Sprintf("与现有条目重复: %s %s", existing.ItemSubtype, existing.ItemCode)
	}

	return false, ""
}

// itemTitleLabel 取条目标题标签：优先预加载关联，其次缓存，缺失为空串
func itemTitleLabel(item *model.Item, titleLookup func(id string) string) string {
	if item.Title != nil {
		return item.Title.Label
	}
	if item.TitleID != nil && titleLookup != nil {
		return titleLookup(*item.TitleID)
	}
	return ""
}

// ── ItemService 接口 ──

// ItemService 报告条目业务接口
// 同一套逻辑按容器参数化：Package 与 ReportingEffort 共用排重与解析，
// 仅报告工作容器联动创建 Tracker。
type ItemService interface {
	Create(ctx context.Context, container model.ContainerRef, req *dto.CreateItemRequest) (*dto.ItemResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateItemRequest) (*dto.ItemResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ItemResponse, error)
	ListByContainer(ctx context.Context, container model.ContainerRef) ([]dto.ItemResponse, error)
	Delete(ctx context.Context, id string) error
}

type itemService struct {
	repo    *repository.Repository
	textSvc TextElementService
	logger  *zap.Logger
}

// NewItemService 创建 ItemService 实例
func NewItemService(repo *repository.Repository, textSvc TextElementService, logger *zap.Logger) ItemService {
	return &itemService{repo: repo, textSvc: textSvc, logger: logger}
}

// ════════════════════════════════════════════════════════════
// Create — 手动创建条目
// ════════════════════════════════════════════════════════════
//
// 流程：
//  1. 校验容器存在并取 study_id（报告工作容器后续建 Tracker 需要）
//  2. 重建会话缓存 + 容器条目快照（资源可能被其他用户并发创建）
//  3. 复合键排重
//  4. 解析文本资源引用（可选字段失败降级，不中断创建）
//  5. 持久化；报告工作容器联动创建 Tracker

func (s *itemService) Create(ctx context.Context, container model.ContainerRef, req *dto.CreateItemRequest) (*dto.ItemResponse, error) {
	studyID, err := s.resolveContainer(ctx, container)
	if err != nil {
		return nil, err
	}

	cache, err := s.textSvc.NewCache(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.Item.ListByContainer(ctx, container)
	if err != nil {
		s.logger.Error("拉取容器条目失败", zap.Error(err))
		return nil, err
	}

	subtype := req.ItemSubtype
	if subtype == "" {
		subtype = defaultSubtype(req.ItemType)
	}

	cand := itemCandidate{
		ItemType:   req.ItemType,
		Subtype:    subtype,
		Code:       trimValue(req.ItemCode),
		TitleLabel: candidateTitleLabel(req.ItemType, req.Title, cache),
	}
	if dup, msg := detectDuplicate(existing, cand, "", cache.LabelByID); dup {
		return nil, fmt.Errorf("%w: %s", ErrItemDuplicate, msg)
	}

	item := &model.Item{
		ItemType:    req.ItemType,
		ItemSubtype: subtype,
		ItemCode:    cand.Code,
	}
	if container.Type == model.ContainerPackage {
		item.PackageID = &container.ID
	} else {
		item.EffortID = &container.ID
	}

	if req.ItemType == model.ItemTypeTLF {
		item.TitleID = s.textSvc.Resolve(ctx, cache, model.ElementTypeTitle, req.Title).ID
		item.PopulationFlagID = s.textSvc.Resolve(ctx, cache, model.ElementTypePopulation, req.Population).ID
		item.ICHCategoryID = s.textSvc.Resolve(ctx, cache, model.ElementTypeICHCategory, req.ICHCategory).ID
	} else {
		if label := trimValue(req.DatasetLabel); label != "" {
			item.DatasetLabel = &label
		}
		item.SortingOrder = req.SortingOrder
	}
	item.Footnotes = s.textSvc.ResolveFootnotes(ctx, cache, req.Footnotes)
	item.Acronyms = s.textSvc.ResolveAcronyms(ctx, cache, req.Acronyms)

	// 条目与其 Tracker 同一事务落库，避免出现无跟踪器的报告工作条目
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Item.Create(ctx, item); err != nil {
			s.logger.Error("创建条目失败", zap.String("code", item.ItemCode), zap.Error(err))
			return err
		}
		if container.IsEffort() {
			tracker := &model.Tracker{
				EffortID:    container.ID,
				StudyID:     studyID,
				ItemID:      item.ItemID,
				ItemCode:    item.ItemCode,
				ItemType:    item.ItemType,
				ItemSubtype: item.ItemSubtype,
			}
			if err := txRepo.Tracker.Create(ctx, tracker); err != nil {
				s.logger.Error("创建跟踪器失败", zap.String("item_id", item.ItemID), zap.Error(err))
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.toItemResponse(item, cache), nil
}

// Update 编辑条目：排重时豁免条目自身
func (s *itemService) Update(ctx context.Context, id string, req *dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := s.repo.Item.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	container := itemContainer(item)

	cache, err := s.textSvc.NewCache(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.Item.ListByContainer(ctx, container)
	if err != nil {
		return nil, err
	}

	if req.ItemSubtype != nil {
		item.ItemSubtype = *req.ItemSubtype
	}
	if req.ItemCode != nil {
		item.ItemCode = trimValue(*req.ItemCode)
	}

	cand := itemCandidate{
		ItemType: item.ItemType,
		Subtype:  item.ItemSubtype,
		Code:     item.ItemCode,
	}
	if item.ItemType == model.ItemTypeTLF {
		if req.Title != nil {
			cand.TitleLabel = candidateTitleLabel(item.ItemType, *req.Title, cache)
		} else {
			cand.TitleLabel = itemTitleLabel(item, cache.LabelByID)
		}
	}
	if dup, msg := detectDuplicate(existing, cand, item.ItemID, cache.LabelByID); dup {
		return nil, fmt.Errorf("%w: %s", ErrItemDuplicate, msg)
	}

	if item.ItemType == model.ItemTypeTLF {
		if req.Title != nil {
			item.TitleID = s.textSvc.Resolve(ctx, cache, model.ElementTypeTitle, *req.Title).ID
			item.Title = nil
		}
		if req.Population != nil {
			item.PopulationFlagID = s.textSvc.Resolve(ctx, cache, model.ElementTypePopulation, *req.Population).ID
		}
		if req.ICHCategory != nil {
			item.ICHCategoryID = s.textSvc.Resolve(ctx, cache, model.ElementTypeICHCategory, *req.ICHCategory).ID
		}
	} else {
		if req.DatasetLabel != nil {
			label := trimValue(*req.DatasetLabel)
			item.DatasetLabel = &label
		}
		if req.SortingOrder != nil {
			item.SortingOrder = req.SortingOrder
		}
	}

	// 关联全量替换（仅在请求携带时）
	if req.Footnotes != nil {
		footnotes := s.textSvc.ResolveFootnotes(ctx, cache, *req.Footnotes)
		for i := range footnotes {
			footnotes[i].ItemID = item.ItemID
		}
		if err := s.repo.Item.ReplaceFootnotes(ctx, item.ItemID, footnotes); err != nil {
			return nil, err
		}
		item.Footnotes = footnotes
	}
	if req.Acronyms != nil {
		acronyms := s.textSvc.ResolveAcronyms(ctx, cache, *req.Acronyms)
		for i := range acronyms {
			acronyms[i].ItemID = item.ItemID
		}
		if err := s.repo.Item.ReplaceAcronyms(ctx, item.ItemID, acronyms); err != nil {
			return nil, err
		}
		item.Acronyms = acronyms
	}

	if err := s.repo.Item.Update(ctx, item); err != nil {
		s.logger.Error("更新条目失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toItemResponse(item, cache), nil
}

func (s *itemService) GetByID(ctx context.Context, id string) (*dto.ItemResponse, error) {
	item, err := s.repo.Item.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return s.toItemResponse(item, nil), nil
}

func (s *itemService) ListByContainer(ctx context.Context, container model.ContainerRef) ([]dto.ItemResponse, error) {
	if _, err := s.resolveContainer(ctx, container); err != nil {
		return nil, err
	}
	items, err := s.repo.Item.ListByContainer(ctx, container)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ItemResponse, 0, len(items))
	for i := range items {
		result = append(result, *s.toItemResponse(&items[i], nil))
	}
	return result, nil
}

// Delete 删除条目并级联清理跟踪器
func (s *itemService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Item.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return err
	}
	return s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Tracker.DeleteByItem(ctx, id); err != nil {
			return err
		}
		return txRepo.Item.Delete(ctx, id)
	})
}

// ── 私有辅助 ──

// resolveContainer 校验容器存在并返回其 study_id
func (s *itemService) resolveContainer(ctx context.Context, container model.ContainerRef) (string, error) {
	switch container.Type {
	case model.ContainerPackage:
		pkg, err := s.repo.Package.GetByID(ctx, container.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrContainerNotFound
			}
			return "", err
		}
		return pkg.StudyID, nil
	case model.ContainerEffort:
		effort, err := s.repo.Effort.GetByID(ctx, container.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrContainerNotFound
			}
			return "", err
		}
		return effort.StudyID, nil
	default:
		return "", ErrContainerNotFound
	}
}

// candidateTitleLabel 候选标题标签：id 引用回查缓存，自由文本原样参与比较
func candidateTitleLabel(itemType, title string, cache *TextElementCache) string {
	if itemType != model.ItemTypeTLF {
		return ""
	}
	trimmed := trimValue(title)
	if isElementIDRef(trimmed) {
		return cache.LabelByID(trimmed)
	}
	return trimmed
}

func defaultSubtype(itemType string) string {
	if itemType == model.ItemTypeDataset {
		return defaultDatasetSubtype
	}
	return defaultTLFSubtype
}

func itemContainer(item *model.Item) model.ContainerRef {
	if item.PackageID != nil {
		return model.ContainerRef{Type: model.ContainerPackage, ID: *item.PackageID}
	}
	return model.ContainerRef{Type: model.ContainerEffort, ID: *item.EffortID}
}

func (s *itemService) toItemResponse(item *model.Item, cache *TextElementCache) *dto.ItemResponse {
	resp := &dto.ItemResponse{
		ID:               item.ItemID,
		ItemType:         item.ItemType,
		ItemSubtype:      item.ItemSubtype,
		ItemCode:         item.ItemCode,
		PackageID:        item.PackageID,
		EffortID:         item.EffortID,
		TitleID:          item.TitleID,
		PopulationFlagID: item.PopulationFlagID,
		ICHCategoryID:    item.ICHCategoryID,
		DatasetLabel:     item.DatasetLabel,
		SortingOrder:     item.SortingOrder,
	}
	var lookup func(id string) string
	if cache != nil {
		lookup = cache.LabelByID
	}
	resp.TitleLabel = itemTitleLabel(item, lookup)

	for _, f := range item.Footnotes {
		ref := dto.FootnoteRef{FootnoteID: f.FootnoteID, SequenceNumber: f.SequenceNumber}
		if f.Footnote != nil {
			ref.Label = f.Footnote.Label
		} else if cache != nil {
			ref.Label = cache.LabelByID(f.FootnoteID)
		}
		resp.Footnotes = append(resp.Footnotes, ref)
	}
	for _, a := range item.Acronyms {
		ref := dto.AcronymRef{AcronymID: a.AcronymID}
		if a.Acronym != nil {
			ref.Label = a.Acronym.Label
		} else if cache != nil {
			ref.Label = cache.LabelByID(a.AcronymID)
		}
		resp.Acronyms = append(resp.Acronyms, ref)
	}
	return resp
}

// [自证通过] internal/service/item_service.go
