package repository

import (
	"context"

	"gorm.io/gorm"

	"pearl-track/internal/model"
)

// StudyRepository 研究数据访问接口
type StudyRepository interface {
	Create(ctx context.Context, study *model.Study) error
	GetByID(ctx context.Context, id string) (*model.Study, error)
	GetByCode(ctx context.Context, code string) (*model.Study, error)
	List(ctx context.Context) ([]model.Study, error)
	Update(ctx context.Context, study *model.Study) error
	Delete(ctx context.Context, id string) error
}

type studyRepo struct {
	db *gorm.DB
}

// NewStudyRepo 创建 StudyRepository 实例
func NewStudyRepo(db *gorm.DB) StudyRepository {
	return &studyRepo{db: db}
}

func (r *studyRepo) Create(ctx context.Context, study *model.Study) error {
	return r.db.WithContext(ctx).Create(study).Error
}

func (r *studyRepo) GetByID(ctx context.Context, id string) (*model.Study, error) {
	var study model.Study
	if err := r.db.WithContext(ctx).Where("study_id = ?", id).First(&study).Error; err != nil {
		return nil, err
	}
	return &study, nil
}

func (r *studyRepo) GetByCode(ctx context.Context, code string) (*model.Study, error) {
	var study model.Study
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&study).Error; err != nil {
		return nil, err
	}
	return &study, nil
}

func (r *studyRepo) List(ctx context.Context) ([]model.Study, error) {
	var studies []model.Study
	if err := r.db.WithContext(ctx).Order("code").Find(&studies).Error; err != nil {
		return nil, err
	}
	return studies, nil
}

func (r *studyRepo) Update(ctx context.Context, study *model.Study) error {
	return r.db.WithContext(ctx).Save(study).Error
}

func (r *studyRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("study_id = ?", id).Delete(&model.Study{}).Error
}

// ── ReleaseRepository ──

// ReleaseRepository 数据库版本数据访问接口
type ReleaseRepository interface {
	Create(ctx context.Context, release *model.DatabaseRelease) error
	GetByID(ctx context.Context, id string) (*model.DatabaseRelease, error)
	ListByStudy(ctx context.Context, studyID string) ([]model.DatabaseRelease, error)
	Delete(ctx context.Context, id string) error
}

type releaseRepo struct {
	db *gorm.DB
}

// NewReleaseRepo 创建 ReleaseRepository 实例
func NewReleaseRepo(db *gorm.DB) ReleaseRepository {
	return &releaseRepo{db: db}
}

func (r *releaseRepo) Create(ctx context.Context, release *model.DatabaseRelease) error {
	return r.db.WithContext(ctx).Create(release).Error
}

func (r *releaseRepo) GetByID(ctx context.Context, id string) (*model.DatabaseRelease, error) {
	var release model.DatabaseRelease
	if err := r.db.WithContext(ctx).Where("release_id = ?", id).First(&release).Error; err != nil {
		return nil, err
	}
	return &release, nil
}

func (r *releaseRepo) ListByStudy(ctx context.Context, studyID string) ([]model.DatabaseRelease, error) {
	var releases []model.DatabaseRelease
	err := r.db.WithContext(ctx).
		Where("study_id = ?", studyID).
		Order("created_at DESC").
		Find(&releases).Error
	if err != nil {
		return nil, err
	}
	return releases, nil
}

func (r *releaseRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("release_id = ?", id).Delete(&model.DatabaseRelease{}).Error
}

// ── EffortRepository ──

// EffortRepository 报告工作数据访问接口
type EffortRepository interface {
	Create(ctx context.Context, effort *model.ReportingEffort) error
	GetByID(ctx context.Context, id string) (*model.ReportingEffort, error)
	ListByStudy(ctx context.Context, studyID string) ([]model.ReportingEffort, error)
	List(ctx context.Context) ([]model.ReportingEffort, error)
	Delete(ctx context.Context, id string) error
}

type effortRepo struct {
	db *gorm.DB
}

// NewEffortRepo 创建 EffortRepository 实例
func NewEffortRepo(db *gorm.DB) EffortRepository {
	return &effortRepo{db: db}
}

func (r *effortRepo) Create(ctx context.Context, effort *model.ReportingEffort) error {
	return r.db.WithContext(ctx).Create(effort).Error
}

func (r *effortRepo) GetByID(ctx context.Context, id string) (*model.ReportingEffort, error) {
	var effort model.ReportingEffort
	err := r.db.WithContext(ctx).
		Preload("Study").
		Where("effort_id = ?", id).
		First(&effort).Error
	if err != nil {
		return nil, err
	}
	return &effort, nil
}

func (r *effortRepo) ListByStudy(ctx context.Context, studyID string) ([]model.ReportingEffort, error) {
	var efforts []model.ReportingEffort
	err := r.db.WithContext(ctx).
		Where("study_id = ?", studyID).
		Order("name").
		Find(&efforts).Error
	if err != nil {
		return nil, err
	}
	return efforts, nil
}

func (r *effortRepo) List(ctx context.Context) ([]model.ReportingEffort, error) {
	var efforts []model.ReportingEffort
	if err := r.db.WithContext(ctx).Preload("Study").Order("name").Find(&efforts).Error; err != nil {
		return nil, err
	}
	return efforts, nil
}

func (r *effortRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("effort_id = ?", id).Delete(&model.ReportingEffort{}).Error
}

// ── PackageRepository ──

// PackageRepository 模板包数据访问接口
type PackageRepository interface {
	Create(ctx context.Context, pkg *model.Package) error
	GetByID(ctx context.Context, id string) (*model.Package, error)
	ListByStudy(ctx context.Context, studyID string) ([]model.Package, error)
	Delete(ctx context.Context, id string) error
}

type packageRepo struct {
	db *gorm.DB
}

// NewPackageRepo 创建 PackageRepository 实例
func NewPackageRepo(db *gorm.DB) PackageRepository {
	return &packageRepo{db: db}
}

func (r *packageRepo) Create(ctx context.Context, pkg *model.Package) error {
	return r.db.WithContext(ctx).Create(pkg).Error
}

func (r *packageRepo) GetByID(ctx context.Context, id string) (*model.Package, error) {
	var pkg model.Package
	if err := r.db.WithContext(ctx).Where("package_id = ?", id).First(&pkg).Error; err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *packageRepo) ListByStudy(ctx context.Context, studyID string) ([]model.Package, error) {
	var pkgs []model.Package
	err := r.db.WithContext(ctx).
		Where("study_id = ?", studyID).
		Order("name").
		Find(&pkgs).Error
	if err != nil {
		return nil, err
	}
	return pkgs, nil
}

func (r *packageRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("package_id = ?", id).Delete(&model.Package{}).Error
}
