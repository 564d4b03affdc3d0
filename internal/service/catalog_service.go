package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/culokossa/culib-api/internal/models"
	appErrors "github.com/culokossa/culib-api/pkg/errors"
)

type entityRepository interface {
	List(ctx context.Context) ([]models.Entity, error)
	FindByID(ctx context.Context, id int) (*models.Entity, error)
}

type departmentRepository interface {
	List(ctx context.Context) ([]models.Department, error)
	ListByEntity(ctx context.Context, entityID int) ([]models.Department, error)
	FindByID(ctx context.Context, id int) (*models.Department, error)
}

type programRepository interface {
	List(ctx context.Context) ([]models.Program, error)
	ListByDepartment(ctx context.Context, departmentID int) ([]models.Program, error)
	FindByID(ctx context.Context, id int) (*models.Program, error)
}

type academicYearRepository interface {
	List(ctx context.Context) ([]models.AcademicYear, error)
	FindByID(ctx context.Context, id int) (*models.AcademicYear, error)
}

type documentTypeRepository interface {
	List(ctx context.Context) ([]models.DocumentType, error)
	FindByID(ctx context.Context, id int) (*models.DocumentType, error)
}

// CatalogService exposes the read side of the institutional catalog: entities,
// departments, programs, academic years and document types.
type CatalogService struct {
	entities    entityRepository
	departments departmentRepository
	programs    programRepository
	years       academicYearRepository
	types       documentTypeRepository
	logger      *zap.Logger
}

// NewCatalogService constructs the catalog service.
func NewCatalogService(
	entities entityRepository,
	departments departmentRepository,
	programs programRepository,
	years academicYearRepository,
	types documentTypeRepository,
	logger *zap.Logger,
) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		entities:    entities,
		departments: departments,
		programs:    programs,
		years:       years,
		types:       types,
		logger:      logger,
	}
}

// ListEntities returns every institution.
func (s *CatalogService) ListEntities(ctx context.Context) ([]models.Entity, error) {
	entities, err := s.entities.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list entities")
	}
	return entities, nil
}

// GetEntity returns one institution by id.
func (s *CatalogService) GetEntity(ctx context.Context, id int) (*models.Entity, error) {
	entity, err := s.entities.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "entity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load entity")
	}
	return entity, nil
}

// ListDepartments returns all departments, or only those owned by the entity
// when entityID is non-zero.
func (s *CatalogService) ListDepartments(ctx context.Context, entityID int) ([]models.Department, error) {
	var (
		departments []models.Department
		err         error
	)
	if entityID > 0 {
		departments, err = s.departments.ListByEntity(ctx, entityID)
	} else {
		departments, err = s.departments.List(ctx)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}
	return departments, nil
}

// GetDepartment returns one department by id.
func (s *CatalogService) GetDepartment(ctx context.Context, id int) (*models.Department, error) {
	department, err := s.departments.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}
	return department, nil
}

// ListPrograms returns all programs, or only those belonging to the department
// when departmentID is non-zero.
func (s *CatalogService) ListPrograms(ctx context.Context, departmentID int) ([]models.Program, error) {
	var (
		programs []models.Program
		err      error
	)
	if departmentID > 0 {
		programs, err = s.programs.ListByDepartment(ctx, departmentID)
	} else {
		programs, err = s.programs.List(ctx)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}
	return programs, nil
}

// GetProgram returns one program by id.
func (s *CatalogService) GetProgram(ctx context.Context, id int) (*models.Program, error) {
	program, err := s.programs.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	return program, nil
}

// ListAcademicYears returns every academic year level.
func (s *CatalogService) ListAcademicYears(ctx context.Context) ([]models.AcademicYear, error) {
	years, err := s.years.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list academic years")
	}
	return years, nil
}

// ListDocumentTypes returns every document type.
func (s *CatalogService) ListDocumentTypes(ctx context.Context) ([]models.DocumentType, error) {
	types, err := s.types.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list document types")
	}
	return types, nil
}
