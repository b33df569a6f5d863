package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pearl-track/internal/dto"
	"pearl-track/internal/model"
	"pearl-track/internal/repository"
)

// ── 研究模块业务错误 ──

var (
	ErrStudyNotFound   = errors.New("研究不存在")
	ErrStudyCodeTaken  = errors.New("研究编码已存在")
	ErrReleaseNotFound = errors.New("数据库版本不存在")
	ErrEffortNotFound  = errors.New("报告工作不存在")
	ErrPackageNotFound = errors.New("模板包不存在")
	ErrBadReleaseDate  = errors.New("版本日期格式无效（期望 YYYY-MM-DD）")
)

// StudyService 研究 / 数据库版本 / 报告工作 / 模板包 管理接口
// 四类实体的 CRUD 较薄，归入同一个 Service
type StudyService interface {
	CreateStudy(ctx context.Context, req *dto.CreateStudyRequest) (*model.Study, error)
	GetStudy(ctx context.Context, id string) (*model.Study, error)
	ListStudies(ctx context.Context) ([]model.Study, error)
	UpdateStudy(ctx context.Context, id string, req *dto.UpdateStudyRequest) (*model.Study, error)
	DeleteStudy(ctx context.Context, id string) error

	CreateRelease(ctx context.Context, req *dto.CreateReleaseRequest) (*model.DatabaseRelease, error)
	ListReleases(ctx context.Context, studyID string) ([]model.DatabaseRelease, error)
	DeleteRelease(ctx context.Context, id string) error

	CreateEffort(ctx context.Context, req *dto.CreateEffortRequest) (*model.ReportingEffort, error)
	ListEfforts(ctx context.Context, studyID string) ([]model.ReportingEffort, error)
	ListAllEfforts(ctx context.Context) ([]model.ReportingEffort, error)
	DeleteEffort(ctx context.Context, id string) error

	CreatePackage(ctx context.Context, req *dto.CreatePackageRequest) (*model.Package, error)
	ListPackages(ctx context.Context, studyID string) ([]model.Package, error)
	DeletePackage(ctx context.Context, id string) error
}

type studyService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStudyService 创建 StudyService 实例
func NewStudyService(repo *repository.Repository, logger *zap.Logger) StudyService {
	return &studyService{repo: repo, logger: logger}
}

// ── 研究 ──

func (s *studyService) CreateStudy(ctx context.Context, req *dto.CreateStudyRequest) (*model.Study, error) {
	if _, err := s.repo.Study.GetByCode(ctx, req.Code); err == nil {
		return nil, ErrStudyCodeTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	study := &model.Study{Code: req.Code, Name: req.Name}
	if err := s.repo.Study.Create(ctx, study); err != nil {
		s.logger.Error("创建研究失败", zap.Error(err))
		return nil, err
	}
	return study, nil
}

func (s *studyService) GetStudy(ctx context.Context, id string) (*model.Study, error) {
	study, err := s.repo.Study.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudyNotFound
		}
		return nil, err
	}
	return study, nil
}

func (s *studyService) ListStudies(ctx context.Context) ([]model.Study, error) {
	return s.repo.Study.List(ctx)
}

func (s *studyService) UpdateStudy(ctx context.Context, id string, req *dto.UpdateStudyRequest) (*model.Study, error) {
	study, err := s.GetStudy(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil && *req.Code != study.Code {
		if _, err := s.repo.Study.GetByCode(ctx, *req.Code); err == nil {
			return nil, ErrStudyCodeTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		study.Code = *req.Code
	}
	if req.Name != nil {
		study.Name = *req.Name
	}

	if err := s.repo.Study.Update(ctx, study); err != nil {
		return nil, err
	}
	return study, nil
}

func (s *studyService) DeleteStudy(ctx context.Context, id string) error {
	if _, err := s.GetStudy(ctx, id); err != nil {
		return err
	}
	return s.repo.Study.Delete(ctx, id)
}

// ── 数据库版本 ──

func (s *studyService) CreateRelease(ctx context.Context, req *dto.CreateReleaseRequest) (*model.DatabaseRelease, error) {
	if _, err := s.GetStudy(ctx, req.StudyID); err != nil {
		return nil, err
	}

	release := &model.DatabaseRelease{StudyID: req.StudyID, Name: req.Name}
	if req.ReleaseDate != nil && *req.ReleaseDate != "" {
		d, err := time.Parse(dueDateLayout, *req.ReleaseDate)
		if err != nil {
			return nil, ErrBadReleaseDate
		}
		release.ReleaseDate = &d
	}

	if err := s.repo.Release.Create(ctx, release); err != nil {
		s.logger.Error("创建数据库版本失败", zap.Error(err))
		return nil, err
	}
	return release, nil
}

func (s *studyService) ListReleases(ctx context.Context, studyID string) ([]model.DatabaseRelease, error) {
	if _, err := s.GetStudy(ctx, studyID); err != nil {
		return nil, err
	}
	return s.repo.Release.ListByStudy(ctx, studyID)
}

func (s *studyService) DeleteRelease(ctx context.Context, id string) error {
	if _, err := s.repo.Release.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReleaseNotFound
		}
		return err
	}
	return s.repo.Release.Delete(ctx, id)
}

// ── 报告工作 ──

func (s *studyService) CreateEffort(ctx context.Context, req *dto.CreateEffortRequest) (*model.ReportingEffort, error) {
	if _, err := s.GetStudy(ctx, req.StudyID); err != nil {
		return nil, err
	}
	if req.ReleaseID != nil {
		if _, err := s.repo.Release.GetByID(ctx, *req.ReleaseID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrReleaseNotFound
			}
			return nil, err
		}
	}

	effort := &model.ReportingEffort{
		StudyID:   req.StudyID,
		ReleaseID: req.ReleaseID,
		Name:      req.Name,
	}
	if err := s.repo.Effort.Create(ctx, effort); err != nil {
		s.logger.Error("创建报告工作失败", zap.Error(err))
		return nil, err
	}
	return effort, nil
}

func (s *studyService) ListEfforts(ctx context.Context, studyID string) ([]model.ReportingEffort, error) {
	if _, err := s.GetStudy(ctx, studyID); err != nil {
		return nil, err
	}
	return s.repo.Effort.ListByStudy(ctx, studyID)
}

func (s *studyService) ListAllEfforts(ctx context.Context) ([]model.ReportingEffort, error) {
	return s.repo.Effort.List(ctx)
}

func (s *studyService) DeleteEffort(ctx context.Context, id string) error {
	if _, err := s.repo.Effort.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEffortNotFound
		}
		return err
	}
	return s.repo.Effort.Delete(ctx, id)
}

// ── 模板包 ──

func (s *studyService) CreatePackage(ctx context.Context, req *dto.CreatePackageRequest) (*model.Package, error) {
	if _, err := s.GetStudy(ctx, req.StudyID); err != nil {
		return nil, err
	}

	pkg := &model.Package{StudyID: req.StudyID, Name: req.Name}
	if err := s.repo.Package.Create(ctx, pkg); err != nil {
		s.logger.Error("创建模板包失败", zap.Error(err))
		return nil, err
	}
	return pkg, nil
}

func (s *studyService) ListPackages(ctx context.Context, studyID string) ([]model.Package, error) {
	if _, err := s.GetStudy(ctx, studyID); err != nil {
		return nil, err
	}
	return s.repo.Package.ListByStudy(ctx, studyID)
}

func (s *studyService) DeletePackage(ctx context.Context, id string) error {
	if _, err := s.repo.Package.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPackageNotFound
		}
		return err
	}
	return s.repo.Package.Delete(ctx, id)
}
