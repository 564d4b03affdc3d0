package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/culokossa/culib-api/internal/models"
)

// EntityRepository handles persistence for academic entities.
type EntityRepository struct {
	db *sqlx.DB
}

// NewEntityRepository creates a new repository instance.
func NewEntityRepository(db *sqlx.DB) *EntityRepository {
	return &EntityRepository{db: db}
}

// List returns all entities in insertion order.
func (r *EntityRepository) List(ctx context.Context) ([]models.Entity, error) {
	const query = `SELECT id, name, full_name, description FROM entities ORDER BY id`
	var entities []models.Entity
	if err := r.db.SelectContext(ctx, &entities, query); err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	return entities, nil
}

// FindByID returns an entity by id.
func (r *EntityRepository) FindByID(ctx context.Context, id int) (*models.Entity, error) {
	const query = `SELECT id, name, full_name, description FROM entities WHERE id = $1`
	var entity models.Entity
	if err := r.db.GetContext(ctx, &entity, query, id); err != nil {
		return nil, err
	}
	return &entity, nil
}

// Create persists a new entity, assigning the next sequence id.
func (r *EntityRepository) Create(ctx context.Context, entity *models.Entity) error {
	const query = `INSERT INTO entities (name, full_name, description) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.GetContext(ctx, &entity.ID, query, entity.Name, entity.FullName, entity.Description); err != nil {
		return fmt.Errorf("create entity: %w", err)
	}
	return nil
}
