package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"growthlog/internal/models"
)

// Memory is an in-memory store. It keeps the initial deployment and the
// test suite lightweight, and intentionally favors clarity over
// performance. Safe for concurrent use.
type Memory struct {
	mu           sync.RWMutex
	seq          int64
	guardians    map[string]models.Guardian
	children     map[string]memChild
	measurements map[string]memMeasurement
}

type memChild struct {
	models.Child
	seq int64
}

type memMeasurement struct {
	models.Measurement
	seq int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		guardians:    make(map[string]models.Guardian),
		children:     make(map[string]memChild),
		measurements: make(map[string]memMeasurement),
	}
}

func (s *Memory) nextSeq() int64 {
	s.seq++
	return s.seq
}

func (s *Memory) CreateGuardian(_ context.Context) (*models.Guardian, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := models.Guardian{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
	s.guardians[g.ID] = g
	return &g, nil
}

func (s *Memory) GetGuardian(_ context.Context, id string) (*models.Guardian, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if g, ok := s.guardians[id]; ok {
		return &g, nil
	}
	return nil, ErrNotFound
}

func (s *Memory) CreateChild(_ context.Context, child *models.Child) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	child.ID = uuid.NewString()
	child.CreatedAt = now
	child.UpdatedAt = now
	s.children[child.ID] = memChild{Child: cloneChild(*child), seq: s.nextSeq()}
	return nil
}

func (s *Memory) GetChild(_ context.Context, id string) (*models.Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.children[id]; ok {
		child := cloneChild(c.Child)
		return &child, nil
	}
	return nil, ErrNotFound
}

func (s *Memory) ListChildren(_ context.Context, ownerID string) ([]models.Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var owned []memChild
	for _, c := range s.children {
		if c.OwnerID == ownerID {
			owned = append(owned, c)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].seq < owned[j].seq })
	children := make([]models.Child, len(owned))
	for i, c := range owned {
		children[i] = cloneChild(c.Child)
	}
	return children, nil
}

func (s *Memory) UpdateChild(_ context.Context, child *models.Child) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.children[child.ID]
	if !ok {
		return ErrNotFound
	}
	updated := cloneChild(*child)
	updated.OwnerID = existing.OwnerID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	s.children[child.ID] = memChild{Child: updated, seq: existing.seq}
	child.UpdatedAt = updated.UpdatedAt
	return nil
}

func (s *Memory) DeleteChild(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.children[id]; !ok {
		return ErrNotFound
	}
	delete(s.children, id)
	for mid, m := range s.measurements {
		if m.ChildID == id {
			delete(s.measurements, mid)
		}
	}
	return nil
}

func (s *Memory) CreateMeasurement(_ context.Context, m *models.Measurement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.children[m.ChildID]; !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	m.ID = uuid.NewString()
	m.CreatedAt = now
	m.UpdatedAt = now
	s.measurements[m.ID] = memMeasurement{Measurement: cloneMeasurement(*m), seq: s.nextSeq()}
	return nil
}

func (s *Memory) GetMeasurement(_ context.Context, id string) (*models.Measurement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.measurements[id]; ok {
		measurement := cloneMeasurement(m.Measurement)
		return &measurement, nil
	}
	return nil, ErrNotFound
}

func (s *Memory) ListMeasurements(_ context.Context, childID string) ([]models.Measurement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sorted := s.sortedByChild(childID)
	measurements := make([]models.Measurement, len(sorted))
	for i, m := range sorted {
		measurements[i] = cloneMeasurement(m.Measurement)
	}
	return measurements, nil
}

func (s *Memory) LatestMeasurement(_ context.Context, childID string) (*models.Measurement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sorted := s.sortedByChild(childID)
	if len(sorted) == 0 {
		return nil, nil
	}
	latest := cloneMeasurement(sorted[0].Measurement)
	return &latest, nil
}

// sortedByChild returns a child's measurements newest first, insertion
// order on equal dates. Callers must hold the lock.
func (s *Memory) sortedByChild(childID string) []memMeasurement {
	var list []memMeasurement
	for _, m := range s.measurements {
		if m.ChildID == childID {
			list = append(list, m)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		return list[i].seq < list[j].seq
	})
	return list
}

func (s *Memory) UpdateMeasurement(_ context.Context, m *models.Measurement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.measurements[m.ID]
	if !ok {
		return ErrNotFound
	}
	updated := cloneMeasurement(*m)
	updated.ChildID = existing.ChildID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	s.measurements[m.ID] = memMeasurement{Measurement: updated, seq: existing.seq}
	m.UpdatedAt = updated.UpdatedAt
	return nil
}

func (s *Memory) DeleteMeasurement(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.measurements[id]; !ok {
		return ErrNotFound
	}
	delete(s.measurements, id)
	return nil
}

// cloneChild copies a child so callers never alias stored pointers.
func cloneChild(c models.Child) models.Child {
	if c.BirthDate != nil {
		d := *c.BirthDate
		c.BirthDate = &d
	}
	return c
}

func cloneMeasurement(m models.Measurement) models.Measurement {
	m.HeightCm = cloneFloat(m.HeightCm)
	m.WeightKg = cloneFloat(m.WeightKg)
	m.HeadCircumferenceCm = cloneFloat(m.HeadCircumferenceCm)
	return m
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
