package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"pearl-track/internal/model"
	"pearl-track/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Username
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, filters *repository.UserListFilters, offset, limit int) ([]model.User, int64, error) {
	var filtered []model.User
	for _, u := range m.users {
		if filters != nil && filters.Role != "" && u.Role != filters.Role {
			continue
		}
		filtered = append(filtered, *u)
	}
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

// ── Mock StudyRepository ──

type mockStudyRepo struct {
	studies map[string]*model.Study
}

func newMockStudyRepo() *mockStudyRepo {
	return &mockStudyRepo{studies: make(map[string]*model.Study)}
}

func (m *mockStudyRepo) Create(_ context.Context, study *model.Study) error {
	if study.StudyID == "" {
		study.StudyID = "study-" + study.Code
	}
	m.studies[study.StudyID] = study
	return nil
}

func (m *mockStudyRepo) GetByID(_ context.Context, id string) (*model.Study, error) {
	if s, ok := m.studies[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudyRepo) GetByCode(_ context.Context, code string) (*model.Study, error) {
	for _, s := range m.studies {
		if s.Code == code {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudyRepo) List(_ context.Context) ([]model.Study, error) {
	var result []model.Study
	for _, s := range m.studies {
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockStudyRepo) Update(_ context.Context, study *model.Study) error {
	m.studies[study.StudyID] = study
	return nil
}

func (m *mockStudyRepo) Delete(_ context.Context, id string) error {
	delete(m.studies, id)
	return nil
}

// ── Mock ReleaseRepository ──

type mockReleaseRepo struct {
	releases map[string]*model.DatabaseRelease
}

func newMockReleaseRepo() *mockReleaseRepo {
	return &mockReleaseRepo{releases: make(map[string]*model.DatabaseRelease)}
}

func (m *mockReleaseRepo) Create(_ context.Context, release *model.DatabaseRelease) error {
	if release.ReleaseID == "" {
		release.ReleaseID = fmt.Sprintf("rel-%d", len(m.releases)+1)
	}
	m.releases[release.ReleaseID] = release
	return nil
}

func (m *mockReleaseRepo) GetByID(_ context.Context, id string) (*model.DatabaseRelease, error) {
	if r, ok := m.releases[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReleaseRepo) ListByStudy(_ context.Context, studyID string) ([]model.DatabaseRelease, error) {
	var result []model.DatabaseRelease
	for _, r := range m.releases {
		if r.StudyID == studyID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockReleaseRepo) Delete(_ context.Context, id string) error {
	delete(m.releases, id)
	return nil
}

// ── Mock EffortRepository ──

type mockEffortRepo struct {
	efforts map[string]*model.ReportingEffort
}

func newMockEffortRepo() *mockEffortRepo {
	return &mockEffortRepo{efforts: make(map[string]*model.ReportingEffort)}
}

func (m *mockEffortRepo) Create(_ context.Context, effort *model.ReportingEffort) error {
	if effort.EffortID == "" {
		effort.EffortID = fmt.Sprintf("eff-%d", len(m.efforts)+1)
	}
	m.efforts[effort.EffortID] = effort
	return nil
}

func (m *mockEffortRepo) GetByID(_ context.Context, id string) (*model.ReportingEffort, error) {
	if e, ok := m.efforts[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEffortRepo) ListByStudy(_ context.Context, studyID string) ([]model.ReportingEffort, error) {
	var result []model.ReportingEffort
	for _, e := range m.efforts {
		if e.StudyID == studyID {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockEffortRepo) List(_ context.Context) ([]model.ReportingEffort, error) {
	var result []model.ReportingEffort
	for _, e := range m.efforts {
		result = append(result, *e)
	}
	return result, nil
}

func (m *mockEffortRepo) Delete(_ context.Context, id string) error {
	delete(m.efforts, id)
	return nil
}

// ── Mock PackageRepository ──

type mockPackageRepo struct {
	packages map[string]*model.Package
}

func newMockPackageRepo() *mockPackageRepo {
	return &mockPackageRepo{packages: make(map[string]*model.Package)}
}

func (m *mockPackageRepo) Create(_ context.Context, pkg *model.Package) error {
	if pkg.PackageID == "" {
		pkg.PackageID = fmt.Sprintf("pkg-%d", len(m.packages)+1)
	}
	m.packages[pkg.PackageID] = pkg
	return nil
}

func (m *mockPackageRepo) GetByID(_ context.Context, id string) (*model.Package, error) {
	if p, ok := m.packages[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPackageRepo) ListByStudy(_ context.Context, studyID string) ([]model.Package, error) {
	var result []model.Package
	for _, p := range m.packages {
		if p.StudyID == studyID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockPackageRepo) Delete(_ context.Context, id string) error {
	delete(m.packages, id)
	return nil
}

// ── Mock TextElementRepository ──

type mockTextElementRepo struct {
	elements  map[string]*model.TextElement
	refs      map[string]int64 // element_id → 引用计数
	idCounter int
	failNext  bool // 下一次 Create 返回错误（降级路径测试）
}

func newMockTextElementRepo() *mockTextElementRepo {
	return &mockTextElementRepo{
		elements: make(map[string]*model.TextElement),
		refs:     make(map[string]int64),
	}
}

func (m *mockTextElementRepo) Create(_ context.Context, element *model.TextElement) error {
	if m.failNext {
		m.failNext = false
		return fmt.Errorf("数据库写入失败")
	}
	if element.ElementID == "" {
		m.idCounter++
		element.ElementID = fmt.Sprintf("el-%d", m.idCounter)
	}
	m.elements[element.ElementID] = element
	return nil
}

func (m *mockTextElementRepo) GetByID(_ context.Context, id string) (*model.TextElement, error) {
	if e, ok := m.elements[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTextElementRepo) ListByType(_ context.Context, elementType string) ([]model.TextElement, error) {
	var result []model.TextElement
	for _, e := range m.elements {
		if e.Type == elementType {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockTextElementRepo) List(_ context.Context) ([]model.TextElement, error) {
	var result []model.TextElement
	for _, e := range m.elements {
		result = append(result, *e)
	}
	return result, nil
}

func (m *mockTextElementRepo) Update(_ context.Context, element *model.TextElement) error {
	m.elements[element.ElementID] = element
	return nil
}

func (m *mockTextElementRepo) Delete(_ context.Context, id string) error {
	delete(m.elements, id)
	return nil
}

func (m *mockTextElementRepo) CountReferences(_ context.Context, id string) (int64, error) {
	return m.refs[id], nil
}

// ── Mock ItemRepository ──

type mockItemRepo struct {
	items      map[string]*model.Item
	idCounter  int
	createFail bool
}

func newMockItemRepo() *mockItemRepo {
	return &mockItemRepo{items: make(map[string]*model.Item)}
}

func (m *mockItemRepo) Create(_ context.Context, item *model.Item) error {
	if m.createFail {
		return fmt.Errorf("数据库写入失败")
	}
	if item.ItemID == "" {
		m.idCounter++
		item.ItemID = fmt.Sprintf("item-%d", m.idCounter)
	}
	cp := *item
	m.items[cp.ItemID] = &cp
	return nil
}

func (m *mockItemRepo) GetByID(_ context.Context, id string) (*model.Item, error) {
	if item, ok := m.items[id]; ok {
		return item, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockItemRepo) ListByContainer(_ context.Context, container model.ContainerRef) ([]model.Item, error) {
	var result []model.Item
	for _, item := range m.items {
		if container.Type == model.ContainerPackage {
			if item.PackageID != nil && *item.PackageID == container.ID {
				result = append(result, *item)
			}
		} else {
			if item.EffortID != nil && *item.EffortID == container.ID {
				result = append(result, *item)
			}
		}
	}
	return result, nil
}

func (m *mockItemRepo) Update(_ context.Context, item *model.Item) error {
	cp := *item
	m.items[cp.ItemID] = &cp
	return nil
}

func (m *mockItemRepo) Delete(_ context.Context, id string) error {
	delete(m.items, id)
	return nil
}

func (m *mockItemRepo) ReplaceFootnotes(_ context.Context, itemID string, footnotes []model.ItemFootnote) error {
	if item, ok := m.items[itemID]; ok {
		item.Footnotes = footnotes
	}
	return nil
}

func (m *mockItemRepo) ReplaceAcronyms(_ context.Context, itemID string, acronyms []model.ItemAcronym) error {
	if item, ok := m.items[itemID]; ok {
		item.Acronyms = acronyms
	}
	return nil
}

// ── Mock TrackerRepository ──

type mockTrackerRepo struct {
	trackers  map[string]*model.Tracker
	idCounter int
}

func newMockTrackerRepo() *mockTrackerRepo {
	return &mockTrackerRepo{trackers: make(map[string]*model.Tracker)}
}

func (m *mockTrackerRepo) Create(_ context.Context, tracker *model.Tracker) error {
	if tracker.TrackerID == "" {
		m.idCounter++
		tracker.TrackerID = fmt.Sprintf("trk-%d", m.idCounter)
	}
	if tracker.ProductionStatus == "" {
		tracker.ProductionStatus = model.StatusNotStarted
	}
	if tracker.QCStatus == "" {
		tracker.QCStatus = model.StatusNotStarted
	}
	cp := *tracker
	m.trackers[cp.TrackerID] = &cp
	return nil
}

func (m *mockTrackerRepo) GetByID(_ context.Context, id string) (*model.Tracker, error) {
	if t, ok := m.trackers[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTrackerRepo) Update(_ context.Context, tracker *model.Tracker) error {
	cp := *tracker
	m.trackers[cp.TrackerID] = &cp
	return nil
}

func (m *mockTrackerRepo) Delete(_ context.Context, id string) error {
	delete(m.trackers, id)
	return nil
}

func (m *mockTrackerRepo) DeleteByItem(_ context.Context, itemID string) error {
	for id, t := range m.trackers {
		if t.ItemID == itemID {
			delete(m.trackers, id)
		}
	}
	return nil
}

func (m *mockTrackerRepo) List(_ context.Context) ([]model.Tracker, error) {
	var result []model.Tracker
	for _, t := range m.trackers {
		result = append(result, *t)
	}
	return result, nil
}

func (m *mockTrackerRepo) ListByEffort(_ context.Context, effortID string) ([]model.Tracker, error) {
	var result []model.Tracker
	for _, t := range m.trackers {
		if t.EffortID == effortID {
			result = append(result, *t)
		}
	}
	return result, nil
}

func (m *mockTrackerRepo) ListByProgrammer(_ context.Context, programmerID string) ([]model.Tracker, error) {
	var result []model.Tracker
	for _, t := range m.trackers {
		prod := t.ProductionProgrammerID != nil && *t.ProductionProgrammerID == programmerID
		qc := t.QCProgrammerID != nil && *t.QCProgrammerID == programmerID
		if prod || qc {
			result = append(result, *t)
		}
	}
	return result, nil
}

// ── 测试用 Repository 聚合 ──

type testRepos struct {
	user        *mockUserRepo
	study       *mockStudyRepo
	release     *mockReleaseRepo
	effort      *mockEffortRepo
	pkg         *mockPackageRepo
	textElement *mockTextElementRepo
	item        *mockItemRepo
	tracker     *mockTrackerRepo
}

func newTestRepository() (*repository.Repository, *testRepos) {
	mocks := &testRepos{
		user:        newMockUserRepo(),
		study:       newMockStudyRepo(),
		release:     newMockReleaseRepo(),
		effort:      newMockEffortRepo(),
		pkg:         newMockPackageRepo(),
		textElement: newMockTextElementRepo(),
		item:        newMockItemRepo(),
		tracker:     newMockTrackerRepo(),
	}
	repo := &repository.Repository{
		User:        mocks.user,
		Study:       mocks.study,
		Release:     mocks.release,
		Effort:      mocks.effort,
		Package:     mocks.pkg,
		TextElement: mocks.textElement,
		Item:        mocks.item,
		Tracker:     mocks.tracker,
	}
	return repo, mocks
}
