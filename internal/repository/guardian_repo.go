// Package repository contains the SQL implementations of the store
// interfaces, written against the dialect-aware database wrapper so the
// same queries run on SQLite, PostgreSQL and MySQL.
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

// GuardianRepository handles database operations for guardians.
type GuardianRepository struct {
	db *database.DB
}

// NewGuardianRepository creates a new guardian repository.
func NewGuardianRepository(db *database.DB) *GuardianRepository {
	return &GuardianRepository{db: db}
}

// CreateGuardian provisions a new guardian account.
func (r *GuardianRepository) CreateGuardian(ctx context.Context) (*models.Guardian, error) {
	g := &models.Guardian{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	query := "INSERT INTO guardians (id, created_at) VALUES (?, ?)"
	if _, err := r.db.ExecContext(ctx, query, g.ID, g.CreatedAt); err != nil {
		return nil, &store.UnavailableError{Op: "create guardian", Err: err}
	}
	return g, nil
}

// GetGuardian retrieves a guardian by id.
func (r *GuardianRepository) GetGuardian(ctx context.Context, id string) (*models.Guardian, error) {
	query := "SELECT id, created_at FROM guardians WHERE id = ?"
	g := &models.Guardian{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&g.ID, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, &store.UnavailableError{Op: "get guardian", Err: err}
	}
	return g, nil
}
