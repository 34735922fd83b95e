// Package store defines the storage contract for growth records. Two
// implementations satisfy it: the in-memory store in this package and
// the SQL repositories in internal/repository. Ownership filtering is
// not a store concern; the access guard in internal/service compares
// owner ids on the entities the store returns.
package store

import (
	"context"
	"errors"

	"growthlog/internal/models"
)

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrUnavailable classifies infrastructure faults from the storage
// backend. Use errors.Is(err, ErrUnavailable) to detect them.
var ErrUnavailable = errors.New("storage unavailable")

// UnavailableError wraps a backend failure without hiding its cause.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

// GuardianStore persists guardian accounts.
type GuardianStore interface {
	// CreateGuardian provisions a new guardian with a fresh id.
	CreateGuardian(ctx context.Context) (*models.Guardian, error)

	// GetGuardian returns ErrNotFound for unknown ids.
	GetGuardian(ctx context.Context, id string) (*models.Guardian, error)
}

// ChildStore persists child records. Deleting a child deletes all of
// its measurements.
type ChildStore interface {
	// CreateChild assigns a fresh id and persists the child.
	CreateChild(ctx context.Context, child *models.Child) error

	// GetChild returns ErrNotFound for unknown ids.
	GetChild(ctx context.Context, id string) (*models.Child, error)

	// ListChildren returns the owner's children ordered by creation
	// time ascending.
	ListChildren(ctx context.Context, ownerID string) ([]models.Child, error)

	// UpdateChild persists name, gender and birth date changes. Id and
	// owner are never written. Returns ErrNotFound for unknown ids.
	UpdateChild(ctx context.Context, child *models.Child) error

	// DeleteChild removes the child and cascades to its measurements.
	DeleteChild(ctx context.Context, id string) error
}

// MeasurementStore persists measurements.
type MeasurementStore interface {
	// CreateMeasurement assigns a fresh id and persists the
	// measurement. Returns ErrNotFound when the child id is unknown.
	CreateMeasurement(ctx context.Context, m *models.Measurement) error

	// GetMeasurement returns ErrNotFound for unknown ids.
	GetMeasurement(ctx context.Context, id string) (*models.Measurement, error)

	// ListMeasurements returns a child's measurements ordered by date
	// descending; ties keep insertion order.
	ListMeasurements(ctx context.Context, childID string) ([]models.Measurement, error)

	// LatestMeasurement returns the most recent measurement, or nil
	// when the child has none.
	LatestMeasurement(ctx context.Context, childID string) (*models.Measurement, error)

	// UpdateMeasurement persists field changes. Id and child id are
	// never written. Returns ErrNotFound for unknown ids.
	UpdateMeasurement(ctx context.Context, m *models.Measurement) error

	// DeleteMeasurement removes the measurement.
	DeleteMeasurement(ctx context.Context, id string) error
}
