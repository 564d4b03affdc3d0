package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/culokossa/culib-api/internal/models"
)

const documentColumns = `id, title, program_id, academic_year_id, document_type_id, file_path, file_size, upload_date, year, description`

// DocumentRepository handles persistence for uploaded documents.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository creates a new repository instance.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// List returns all documents in insertion order.
func (r *DocumentRepository) List(ctx context.Context) ([]models.Document, error) {
	query := fmt.Sprintf("SELECT %s FROM documents ORDER BY id", documentColumns)
	var documents []models.Document
	if err := r.db.SelectContext(ctx, &documents, query); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return documents, nil
}

// ListByEntity returns documents whose program transitively belongs to the
// entity, via the department join.
func (r *DocumentRepository) ListByEntity(ctx context.Context, entityID int) ([]models.Document, error) {
	const q = `SELECT d.id, d.title, d.program_id, d.academic_year_id, d.document_type_id, d.file_path, d.file_size, d.upload_date, d.year, d.description
		FROM documents d
		JOIN programs p ON p.id = d.program_id
		JOIN departments dep ON dep.id = p.department_id
		WHERE dep.entity_id = $1 ORDER BY d.id`
	var documents []models.Document
	if err := r.db.SelectContext(ctx, &documents, q, entityID); err != nil {
		return nil, fmt.Errorf("list documents by entity: %w", err)
	}
	return documents, nil
}

// ListByDepartment returns documents whose program belongs to the department.
func (r *DocumentRepository) ListByDepartment(ctx context.Context, departmentID int) ([]models.Document, error) {
	const q = `SELECT d.id, d.title, d.program_id, d.academic_year_id, d.document_type_id, d.file_path, d.file_size, d.upload_date, d.year, d.description
		FROM documents d
		JOIN programs p ON p.id = d.program_id
		WHERE p.department_id = $1 ORDER BY d.id`
	var documents []models.Document
	if err := r.db.SelectContext(ctx, &documents, q, departmentID); err != nil {
		return nil, fmt.Errorf("list documents by department: %w", err)
	}
	return documents, nil
}

// ListRecent returns the most recently uploaded documents.
func (r *DocumentRepository) ListRecent(ctx context.Context, limit int) ([]models.Document, error) {
	query := fmt.Sprintf("SELECT %s FROM documents ORDER BY upload_date DESC LIMIT $1", documentColumns)
	var documents []models.Document
	if err := r.db.SelectContext(ctx, &documents, query, limit); err != nil {
		return nil, fmt.Errorf("list recent documents: %w", err)
	}
	return documents, nil
}

// FindByID returns a document by id.
func (r *DocumentRepository) FindByID(ctx context.Context, id int) (*models.Document, error) {
	query := fmt.Sprintf("SELECT %s FROM documents WHERE id = $1", documentColumns)
	var document models.Document
	if err := r.db.GetContext(ctx, &document, query, id); err != nil {
		return nil, err
	}
	return &document, nil
}

// Count returns the total number of documents.
func (r *DocumentRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM documents`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

// CountPerEntity returns document counts grouped by owning entity, using the
// same entity -> department -> program join as the entity filter.
func (r *DocumentRepository) CountPerEntity(ctx context.Context) ([]models.EntityDocumentCount, error) {
	const query = `SELECT e.id AS entity_id, e.name AS entity_name, COUNT(d.id) AS count
		FROM entities e
		LEFT JOIN departments dep ON dep.entity_id = e.id
		LEFT JOIN programs p ON p.department_id = dep.id
		LEFT JOIN documents d ON d.program_id = p.id
		GROUP BY e.id, e.name
		ORDER BY e.id`
	var counts []models.EntityDocumentCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count documents per entity: %w", err)
	}
	return counts, nil
}

// Create persists a new document, assigning id and defaulting the upload date.
func (r *DocumentRepository) Create(ctx context.Context, document *models.Document) error {
	if document.UploadDate.IsZero() {
		document.UploadDate = time.Now().UTC()
	}
	const query = `INSERT INTO documents (title, program_id, academic_year_id, document_type_id, file_path, file_size, upload_date, year, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	if err := r.db.GetContext(ctx, &document.ID, query,
		document.Title,
		document.ProgramID,
		document.AcademicYearID,
		document.DocumentTypeID,
		document.FilePath,
		document.FileSize,
		document.UploadDate,
		document.Year,
		document.Description,
	); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns of a document.
func (r *DocumentRepository) Update(ctx context.Context, document *models.Document) error {
	const query = `UPDATE documents SET title = :title, program_id = :program_id, academic_year_id = :academic_year_id,
		document_type_id = :document_type_id, file_path = :file_path, file_size = :file_size, year = :year, description = :description
		WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, document); err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

// Delete removes a document record.
func (r *DocumentRepository) Delete(ctx context.Context, id int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
