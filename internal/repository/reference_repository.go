package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/culokossa/culib-api/internal/models"
)

// AcademicYearRepository handles the academic year reference collection.
type AcademicYearRepository struct {
	db *sqlx.DB
}

// NewAcademicYearRepository creates a new repository instance.
func NewAcademicYearRepository(db *sqlx.DB) *AcademicYearRepository {
	return &AcademicYearRepository{db: db}
}

// List returns all academic years in insertion order.
func (r *AcademicYearRepository) List(ctx context.Context) ([]models.AcademicYear, error) {
	const query = `SELECT id, year, name FROM academic_years ORDER BY id`
	var years []models.AcademicYear
	if err := r.db.SelectContext(ctx, &years, query); err != nil {
		return nil, fmt.Errorf("list academic years: %w", err)
	}
	return years, nil
}

// FindByID returns an academic year by id.
func (r *AcademicYearRepository) FindByID(ctx context.Context, id int) (*models.AcademicYear, error) {
	const query = `SELECT id, year, name FROM academic_years WHERE id = $1`
	var year models.AcademicYear
	if err := r.db.GetContext(ctx, &year, query, id); err != nil {
		return nil, err
	}
	return &year, nil
}

// Create persists a new academic year.
func (r *AcademicYearRepository) Create(ctx context.Context, year *models.AcademicYear) error {
	const query = `INSERT INTO academic_years (year, name) VALUES ($1, $2) RETURNING id`
	if err := r.db.GetContext(ctx, &year.ID, query, year.Year, year.Name); err != nil {
		return fmt.Errorf("create academic year: %w", err)
	}
	return nil
}

// DocumentTypeRepository handles the document type reference collection.
type DocumentTypeRepository struct {
	db *sqlx.DB
}

// NewDocumentTypeRepository creates a new repository instance.
func NewDocumentTypeRepository(db *sqlx.DB) *DocumentTypeRepository {
	return &DocumentTypeRepository{db: db}
}

// List returns all document types in insertion order.
func (r *DocumentTypeRepository) List(ctx context.Context) ([]models.DocumentType, error) {
	const query = `SELECT id, name FROM document_types ORDER BY id`
	var types []models.DocumentType
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, fmt.Errorf("list document types: %w", err)
	}
	return types, nil
}

// FindByID returns a document type by id.
func (r *DocumentTypeRepository) FindByID(ctx context.Context, id int) (*models.DocumentType, error) {
	const query = `SELECT id, name FROM document_types WHERE id = $1`
	var docType models.DocumentType
	if err := r.db.GetContext(ctx, &docType, query, id); err != nil {
		return nil, err
	}
	return &docType, nil
}

// Create persists a new document type.
func (r *DocumentTypeRepository) Create(ctx context.Context, docType *models.DocumentType) error {
	const query = `INSERT INTO document_types (name) VALUES ($1) RETURNING id`
	if err := r.db.GetContext(ctx, &docType.ID, query, docType.Name); err != nil {
		return fmt.Errorf("create document type: %w", err)
	}
	return nil
}
