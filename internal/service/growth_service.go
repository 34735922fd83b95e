// Package service composes the access guard, the validator and the
// store into the operations exposed to callers. Every mutation is
// authorized and re-validated before it reaches storage, and every read
// result is enriched with derived metrics on the way out.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"growthlog/internal/models"
	"growthlog/internal/store"
	"growthlog/internal/validation"
)

// GrowthService is the facade over child and measurement records. All
// operations are scoped to the acting guardian's ownership.
type GrowthService struct {
	guard        *GuardianService
	children     store.ChildStore
	measurements store.MeasurementStore
	policy       validation.ChildPolicy
}

// NewGrowthService creates a new growth service.
func NewGrowthService(guard *GuardianService, children store.ChildStore, measurements store.MeasurementStore, policy validation.ChildPolicy) *GrowthService {
	return &GrowthService{
		guard:        guard,
		children:     children,
		measurements: measurements,
		policy:       policy,
	}
}

// CreateChildInput carries the client-settable fields of a new child.
type CreateChildInput struct {
	Name      string
	BirthDate *string
	Gender    string
}

// UpdateChildInput is a partial update; nil fields are left untouched.
// An empty Gender or BirthDate string clears the field.
type UpdateChildInput struct {
	Name      *string
	BirthDate *string
	Gender    *string
}

// CreateMeasurementInput carries the client-settable fields of a new
// measurement. BMI is not among them.
type CreateMeasurementInput struct {
	Date                *string
	HeightCm            *float64
	WeightKg            *float64
	HeadCircumferenceCm *float64
	Note                string
}

// UpdateMeasurementInput is a partial update; nil fields are left
// untouched.
type UpdateMeasurementInput struct {
	Date                *string
	HeightCm            *float64
	WeightKg            *float64
	HeadCircumferenceCm *float64
	Note                *string
}

// ListChildren returns the guardian's children in creation order, each
// with its most recent measurement.
func (s *GrowthService) ListChildren(ctx context.Context, ownerID string) ([]ChildSummary, error) {
	children, err := s.children.ListChildren(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}

	now := time.Now().UTC()
	summaries := make([]ChildSummary, 0, len(children))
	for _, child := range children {
		latest, err := s.measurements.LatestMeasurement(ctx, child.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load latest measurement: %w", err)
		}
		summaries = append(summaries, childSummary(child, latest, now))
	}
	return summaries, nil
}

// GetChild returns one owned child with its full measurement history.
func (s *GrowthService) GetChild(ctx context.Context, ownerID, childID string) (*ChildDetail, error) {
	child, err := s.guard.AuthorizeChild(ctx, ownerID, childID)
	if err != nil {
		return nil, err
	}
	history, err := s.measurements.ListMeasurements(ctx, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements: %w", err)
	}
	return childDetail(*child, history, time.Now().UTC()), nil
}

// CreateChild validates and persists a new child owned by the guardian.
func (s *GrowthService) CreateChild(ctx context.Context, ownerID string, in CreateChildInput) (*ChildDetail, error) {
	birthDate, err := validation.ValidateChild(in.Name, in.BirthDate, s.policy)
	if err != nil {
		return nil, err
	}

	child := &models.Child{
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(in.Name),
		BirthDate: birthDate,
		Gender:    strings.TrimSpace(in.Gender),
	}
	if err := s.children.CreateChild(ctx, child); err != nil {
		return nil, fmt.Errorf("failed to create child: %w", err)
	}
	return childDetail(*child, nil, time.Now().UTC()), nil
}

// UpdateChild applies a partial update to an owned child. Only the
// provided fields change; owner and id never do. An empty patch leaves
// the record untouched.
func (s *GrowthService) UpdateChild(ctx context.Context, ownerID, childID string, in UpdateChildInput) (*ChildDetail, error) {
	child, err := s.guard.AuthorizeChild(ctx, ownerID, childID)
	if err != nil {
		return nil, err
	}

	changed := false
	if in.Name != nil && strings.TrimSpace(*in.Name) != child.Name {
		child.Name = strings.TrimSpace(*in.Name)
		changed = true
	}
	if in.Gender != nil && strings.TrimSpace(*in.Gender) != child.Gender {
		child.Gender = strings.TrimSpace(*in.Gender)
		changed = true
	}
	if in.BirthDate != nil {
		birthDate, err := validation.ValidateBirthDate(in.BirthDate, s.policy)
		if err != nil {
			return nil, err
		}
		if !sameDate(child.BirthDate, birthDate) {
			child.BirthDate = birthDate
			changed = true
		}
	}
	if child.Name == "" {
		return nil, validation.Error{Field: "name", Code: validation.MissingField, Message: "name is required"}
	}

	if changed {
		if err := s.children.UpdateChild(ctx, child); err != nil {
			return nil, fmt.Errorf("failed to update child: %w", err)
		}
	}

	history, err := s.measurements.ListMeasurements(ctx, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements: %w", err)
	}
	return childDetail(*child, history, time.Now().UTC()), nil
}

// DeleteChild removes an owned child and all of its measurements.
func (s *GrowthService) DeleteChild(ctx context.Context, ownerID, childID string) error {
	if _, err := s.guard.AuthorizeChild(ctx, ownerID, childID); err != nil {
		return err
	}
	if err := s.children.DeleteChild(ctx, childID); err != nil {
		return fmt.Errorf("failed to delete child: %w", err)
	}
	return nil
}

// CreateMeasurement validates and persists a new measurement for an
// owned child.
func (s *GrowthService) CreateMeasurement(ctx context.Context, ownerID, childID string, in CreateMeasurementInput) (*MeasurementView, error) {
	if _, err := s.guard.AuthorizeChild(ctx, ownerID, childID); err != nil {
		return nil, err
	}
	date, err := validation.ValidateMeasurement(in.Date, in.HeightCm, in.WeightKg, in.HeadCircumferenceCm)
	if err != nil {
		return nil, err
	}

	m := &models.Measurement{
		ChildID:             childID,
		Date:                date,
		HeightCm:            in.HeightCm,
		WeightKg:            in.WeightKg,
		HeadCircumferenceCm: in.HeadCircumferenceCm,
		Note:                strings.TrimSpace(in.Note),
	}
	if err := s.measurements.CreateMeasurement(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create measurement: %w", err)
	}
	view := measurementView(*m)
	return &view, nil
}

// UpdateMeasurement applies a partial update to a measurement reachable
// through an owned child. The merged record is re-validated before it
// is written.
func (s *GrowthService) UpdateMeasurement(ctx context.Context, ownerID, measurementID string, in UpdateMeasurementInput) (*MeasurementView, error) {
	m, err := s.guard.AuthorizeMeasurement(ctx, ownerID, measurementID)
	if err != nil {
		return nil, err
	}

	changed := false
	if in.Date != nil {
		date, err := validation.ValidateMeasurementDate(in.Date)
		if err != nil {
			return nil, err
		}
		if !date.Equal(m.Date) {
			m.Date = date
			changed = true
		}
	}
	if in.HeightCm != nil && !sameFloat(m.HeightCm, in.HeightCm) {
		m.HeightCm = in.HeightCm
		changed = true
	}
	if in.WeightKg != nil && !sameFloat(m.WeightKg, in.WeightKg) {
		m.WeightKg = in.WeightKg
		changed = true
	}
	if in.HeadCircumferenceCm != nil && !sameFloat(m.HeadCircumferenceCm, in.HeadCircumferenceCm) {
		m.HeadCircumferenceCm = in.HeadCircumferenceCm
		changed = true
	}
	if in.Note != nil && strings.TrimSpace(*in.Note) != m.Note {
		m.Note = strings.TrimSpace(*in.Note)
		changed = true
	}

	if err := validation.ValidateMeasurementValues(m.HeightCm, m.WeightKg, m.HeadCircumferenceCm); err != nil {
		return nil, err
	}

	if changed {
		if err := s.measurements.UpdateMeasurement(ctx, m); err != nil {
			return nil, fmt.Errorf("failed to update measurement: %w", err)
		}
	}
	view := measurementView(*m)
	return &view, nil
}

// DeleteMeasurement removes a measurement reachable through an owned
// child. Deletion is terminal.
func (s *GrowthService) DeleteMeasurement(ctx context.Context, ownerID, measurementID string) error {
	if _, err := s.guard.AuthorizeMeasurement(ctx, ownerID, measurementID); err != nil {
		return err
	}
	if err := s.measurements.DeleteMeasurement(ctx, measurementID); err != nil {
		return fmt.Errorf("failed to delete measurement: %w", err)
	}
	return nil
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func sameFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
