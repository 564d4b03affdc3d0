package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/culokossa/culib-api/internal/models"
)

// DepartmentRepository handles persistence for departments.
type DepartmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository creates a new repository instance.
func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// List returns all departments in insertion order.
func (r *DepartmentRepository) List(ctx context.Context) ([]models.Department, error) {
	const query = `SELECT id, entity_id, name, full_name, description FROM departments ORDER BY id`
	var departments []models.Department
	if err := r.db.SelectContext(ctx, &departments, query); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

// ListByEntity returns the departments owned by an entity.
func (r *DepartmentRepository) ListByEntity(ctx context.Context, entityID int) ([]models.Department, error) {
	const query = `SELECT id, entity_id, name, full_name, description FROM departments WHERE entity_id = $1 ORDER BY id`
	var departments []models.Department
	if err := r.db.SelectContext(ctx, &departments, query, entityID); err != nil {
		return nil, fmt.Errorf("list departments by entity: %w", err)
	}
	return departments, nil
}

// FindByID returns a department by id.
func (r *DepartmentRepository) FindByID(ctx context.Context, id int) (*models.Department, error) {
	const query = `SELECT id, entity_id, name, full_name, description FROM departments WHERE id = $1`
	var department models.Department
	if err := r.db.GetContext(ctx, &department, query, id); err != nil {
		return nil, err
	}
	return &department, nil
}

// Create persists a new department.
func (r *DepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	const query = `INSERT INTO departments (entity_id, name, full_name, description) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.GetContext(ctx, &department.ID, query, department.EntityID, department.Name, department.FullName, department.Description); err != nil {
		return fmt.Errorf("create department: %w", err)
	}
	return nil
}
