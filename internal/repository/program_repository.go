package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/culokossa/culib-api/internal/models"
)

// ProgramRepository handles persistence for programs.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository creates a new repository instance.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// List returns all programs in insertion order.
func (r *ProgramRepository) List(ctx context.Context) ([]models.Program, error) {
	const query = `SELECT id, department_id, name, full_name, description, is_tronc_commun FROM programs ORDER BY id`
	var programs []models.Program
	if err := r.db.SelectContext(ctx, &programs, query); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return programs, nil
}

// ListByDepartment returns the programs belonging to a department.
func (r *ProgramRepository) ListByDepartment(ctx context.Context, departmentID int) ([]models.Program, error) {
	const query = `SELECT id, department_id, name, full_name, description, is_tronc_commun FROM programs WHERE department_id = $1 ORDER BY id`
	var programs []models.Program
	if err := r.db.SelectContext(ctx, &programs, query, departmentID); err != nil {
		return nil, fmt.Errorf("list programs by department: %w", err)
	}
	return programs, nil
}

// FindByID returns a program by id.
func (r *ProgramRepository) FindByID(ctx context.Context, id int) (*models.Program, error) {
	const query = `SELECT id, department_id, name, full_name, description, is_tronc_commun FROM programs WHERE id = $1`
	var program models.Program
	if err := r.db.GetContext(ctx, &program, query, id); err != nil {
		return nil, err
	}
	return &program, nil
}

// Create persists a new program.
func (r *ProgramRepository) Create(ctx context.Context, program *models.Program) error {
	const query = `INSERT INTO programs (department_id, name, full_name, description, is_tronc_commun) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.GetContext(ctx, &program.ID, query, program.DepartmentID, program.Name, program.FullName, program.Description, program.IsTroncCommun); err != nil {
		return fmt.Errorf("create program: %w", err)
	}
	return nil
}
