package service

import (
	"context"
	"errors"
	"fmt"

	"growthlog/internal/models"
	"growthlog/internal/security"
	"growthlog/internal/store"
)

var (
	// ErrNotFound means the referenced entity does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrForbidden means the entity exists but belongs to another
	// guardian. Deployments may collapse this into ErrNotFound at the
	// boundary; inside the service the two stay distinct.
	ErrForbidden = errors.New("record belongs to another guardian")
)

// GuardianService resolves caller identity and authorizes access to
// child records by ownership.
type GuardianService struct {
	guardians    store.GuardianStore
	children     store.ChildStore
	measurements store.MeasurementStore
	issuer       *security.TokenIssuer
}

// NewGuardianService creates a new guardian service.
func NewGuardianService(guardians store.GuardianStore, children store.ChildStore, measurements store.MeasurementStore, issuer *security.TokenIssuer) *GuardianService {
	return &GuardianService{
		guardians:    guardians,
		children:     children,
		measurements: measurements,
		issuer:       issuer,
	}
}

// ResolveIdentity returns the guardian id bound to the presented token.
// When the token is absent, invalid, or references a guardian that no
// longer exists, a new guardian is provisioned and a fresh token is
// returned for the caller to re-present on future requests. Repeated
// calls with the same valid token always resolve to the same guardian.
func (s *GuardianService) ResolveIdentity(ctx context.Context, token string) (string, string, error) {
	if token != "" {
		if guardianID, err := s.issuer.Verify(token); err == nil {
			_, err := s.guardians.GetGuardian(ctx, guardianID)
			if err == nil {
				return guardianID, "", nil
			}
			if !errors.Is(err, store.ErrNotFound) {
				return "", "", fmt.Errorf("failed to load guardian: %w", err)
			}
		}
	}

	guardian, err := s.guardians.CreateGuardian(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to provision guardian: %w", err)
	}
	fresh, err := s.issuer.Mint(guardian.ID)
	if err != nil {
		return "", "", err
	}
	return guardian.ID, fresh, nil
}

// AuthorizeChild loads a child and checks ownership. Returns
// ErrNotFound when the child does not exist and ErrForbidden when it is
// owned by a different guardian.
func (s *GuardianService) AuthorizeChild(ctx context.Context, ownerID, childID string) (*models.Child, error) {
	child, err := s.children.GetChild(ctx, childID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load child: %w", err)
	}
	if child.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return child, nil
}

// AuthorizeMeasurement loads a measurement and applies the ownership
// check transitively through its parent child. A measurement whose
// parent is owned by someone else is ErrForbidden even though the
// measurement id itself is valid.
func (s *GuardianService) AuthorizeMeasurement(ctx context.Context, ownerID, measurementID string) (*models.Measurement, error) {
	m, err := s.measurements.GetMeasurement(ctx, measurementID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load measurement: %w", err)
	}
	if _, err := s.AuthorizeChild(ctx, ownerID, m.ChildID); err != nil {
		return nil, err
	}
	return m, nil
}
