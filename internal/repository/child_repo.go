package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"growthlog/internal/database"
	"growthlog/internal/models"
	"growthlog/internal/store"
)

// ChildRepository handles database operations for children.
type ChildRepository struct {
	db *database.DB
}

// NewChildRepository creates a new child repository.
func NewChildRepository(db *database.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

const childColumns = "id, owner_id, name, birth_date, gender, created_at, updated_at"

// CreateChild persists a new child with a fresh id.
func (r *ChildRepository) CreateChild(ctx context.Context, child *models.Child) error {
	now := time.Now().UTC()
	child.ID = uuid.NewString()
	child.CreatedAt = now
	child.UpdatedAt = now

	query := "INSERT INTO children (id, owner_id, name, birth_date, gender, created_at, updated_at) " +
		"VALUES (?, ?, ?, ?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, query,
		child.ID, child.OwnerID, child.Name, nullTime(child.BirthDate), child.Gender,
		child.CreatedAt, child.UpdatedAt)
	if err != nil {
		return &store.UnavailableError{Op: "create child", Err: err}
	}
	return nil
}

// GetChild retrieves a child by id.
func (r *ChildRepository) GetChild(ctx context.Context, id string) (*models.Child, error) {
	query := "SELECT " + childColumns + " FROM children WHERE id = ?"
	child, err := scanChild(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, &store.UnavailableError{Op: "get child", Err: err}
	}
	return child, nil
}

// ListChildren retrieves all children of an owner, oldest record first.
func (r *ChildRepository) ListChildren(ctx context.Context, ownerID string) ([]models.Child, error) {
	query := "SELECT " + childColumns + " FROM children WHERE owner_id = ? ORDER BY seq ASC"
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, &store.UnavailableError{Op: "list children", Err: err}
	}
	defer rows.Close()

	var children []models.Child
	for rows.Next() {
		child, err := scanChild(rows)
		if err != nil {
			return nil, &store.UnavailableError{Op: "scan child", Err: err}
		}
		children = append(children, *child)
	}
	if err := rows.Err(); err != nil {
		return nil, &store.UnavailableError{Op: "list children", Err: err}
	}
	return children, nil
}

// UpdateChild persists name, birth date and gender changes. Owner and
// id are never written.
func (r *ChildRepository) UpdateChild(ctx context.Context, child *models.Child) error {
	child.UpdatedAt = time.Now().UTC()
	query := "UPDATE children SET name = ?, birth_date = ?, gender = ?, updated_at = ? WHERE id = ?"
	result, err := r.db.ExecContext(ctx, query,
		child.Name, nullTime(child.BirthDate), child.Gender, child.UpdatedAt, child.ID)
	if err != nil {
		return &store.UnavailableError{Op: "update child", Err: err}
	}
	return requireRow(result, "update child")
}

// DeleteChild removes a child; measurements go with it via the foreign
// key cascade.
func (r *ChildRepository) DeleteChild(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM children WHERE id = ?", id)
	if err != nil {
		return &store.UnavailableError{Op: "delete child", Err: err}
	}
	return requireRow(result, "delete child")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanChild(row rowScanner) (*models.Child, error) {
	child := &models.Child{}
	var birthDate sql.NullTime
	err := row.Scan(&child.ID, &child.OwnerID, &child.Name, &birthDate, &child.Gender,
		&child.CreatedAt, &child.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if birthDate.Valid {
		d := birthDate.Time
		child.BirthDate = &d
	}
	return child, nil
}

// requireRow converts a zero-row write into store.ErrNotFound.
func requireRow(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return &store.UnavailableError{Op: op, Err: err}
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
