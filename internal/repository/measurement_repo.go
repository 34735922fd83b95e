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

// MeasurementRepository handles database operations for measurements.
type MeasurementRepository struct {
	db *database.DB
}

// NewMeasurementRepository creates a new measurement repository.
func NewMeasurementRepository(db *database.DB) *MeasurementRepository {
	return &MeasurementRepository{db: db}
}

const measurementColumns = "id, child_id, date, height_cm, weight_kg, head_circumference_cm, note, created_at, updated_at"

// CreateMeasurement persists a new measurement with a fresh id. Fails
// with store.ErrNotFound when the child does not exist.
func (r *MeasurementRepository) CreateMeasurement(ctx context.Context, m *models.Measurement) error {
	var count int
	check := "SELECT COUNT(*) FROM children WHERE id = ?"
	if err := r.db.QueryRowContext(ctx, check, m.ChildID).Scan(&count); err != nil {
		return &store.UnavailableError{Op: "check child", Err: err}
	}
	if count == 0 {
		return store.ErrNotFound
	}

	now := time.Now().UTC()
	m.ID = uuid.NewString()
	m.CreatedAt = now
	m.UpdatedAt = now

	query := "INSERT INTO measurements (id, child_id, date, height_cm, weight_kg, head_circumference_cm, note, created_at, updated_at) " +
		"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.ChildID, m.Date, nullFloat(m.HeightCm), nullFloat(m.WeightKg),
		nullFloat(m.HeadCircumferenceCm), m.Note, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return &store.UnavailableError{Op: "create measurement", Err: err}
	}
	return nil
}

// GetMeasurement retrieves a measurement by id.
func (r *MeasurementRepository) GetMeasurement(ctx context.Context, id string) (*models.Measurement, error) {
	query := "SELECT " + measurementColumns + " FROM measurements WHERE id = ?"
	m, err := scanMeasurement(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, &store.UnavailableError{Op: "get measurement", Err: err}
	}
	return m, nil
}

// ListMeasurements retrieves a child's measurements, most recent date
// first; equal dates keep insertion order.
func (r *MeasurementRepository) ListMeasurements(ctx context.Context, childID string) ([]models.Measurement, error) {
	query := "SELECT " + measurementColumns + " FROM measurements WHERE child_id = ? ORDER BY date DESC, seq ASC"
	rows, err := r.db.QueryContext(ctx, query, childID)
	if err != nil {
		return nil, &store.UnavailableError{Op: "list measurements", Err: err}
	}
	defer rows.Close()

	var measurements []models.Measurement
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, &store.UnavailableError{Op: "scan measurement", Err: err}
		}
		measurements = append(measurements, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, &store.UnavailableError{Op: "list measurements", Err: err}
	}
	return measurements, nil
}

// LatestMeasurement retrieves the most recent measurement of a child,
// or nil when there is none.
func (r *MeasurementRepository) LatestMeasurement(ctx context.Context, childID string) (*models.Measurement, error) {
	query := "SELECT " + measurementColumns + " FROM measurements WHERE child_id = ? " +
		"ORDER BY date DESC, seq ASC LIMIT 1"
	m, err := scanMeasurement(r.db.QueryRowContext(ctx, query, childID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &store.UnavailableError{Op: "latest measurement", Err: err}
	}
	return m, nil
}

// UpdateMeasurement persists field changes. Id and child id are never
// written.
func (r *MeasurementRepository) UpdateMeasurement(ctx context.Context, m *models.Measurement) error {
	m.UpdatedAt = time.Now().UTC()
	query := "UPDATE measurements SET date = ?, height_cm = ?, weight_kg = ?, head_circumference_cm = ?, note = ?, updated_at = ? WHERE id = ?"
	result, err := r.db.ExecContext(ctx, query,
		m.Date, nullFloat(m.HeightCm), nullFloat(m.WeightKg), nullFloat(m.HeadCircumferenceCm),
		m.Note, m.UpdatedAt, m.ID)
	if err != nil {
		return &store.UnavailableError{Op: "update measurement", Err: err}
	}
	return requireRow(result, "update measurement")
}

// DeleteMeasurement removes a measurement.
func (r *MeasurementRepository) DeleteMeasurement(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM measurements WHERE id = ?", id)
	if err != nil {
		return &store.UnavailableError{Op: "delete measurement", Err: err}
	}
	return requireRow(result, "delete measurement")
}

func scanMeasurement(row rowScanner) (*models.Measurement, error) {
	m := &models.Measurement{}
	var height, weight, head sql.NullFloat64
	err := row.Scan(&m.ID, &m.ChildID, &m.Date, &height, &weight, &head, &m.Note,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if height.Valid {
		m.HeightCm = &height.Float64
	}
	if weight.Valid {
		m.WeightKg = &weight.Float64
	}
	if head.Valid {
		m.HeadCircumferenceCm = &head.Float64
	}
	return m, nil
}
