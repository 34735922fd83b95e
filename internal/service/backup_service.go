package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"growthlog/internal/database"
	"growthlog/internal/models"
	"growthlog/internal/repository"
)

// BackupData is the complete database backup envelope.
type BackupData struct {
	Version      string              `json:"version"`
	ExportedAt   time.Time           `json:"exported_at"`
	Guardians    []GuardianBackup    `json:"guardians"`
	Children     []ChildBackup       `json:"children"`
	Measurements []MeasurementBackup `json:"measurements"`
}

// GuardianBackup represents a guardian record for backup.
type GuardianBackup struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// ChildBackup represents a child record for backup.
type ChildBackup struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	BirthDate *string   `json:"birth_date"`
	Gender    string    `json:"gender"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MeasurementBackup represents a measurement record for backup.
type MeasurementBackup struct {
	ID                  string    `json:"id"`
	ChildID             string    `json:"child_id"`
	Date                string    `json:"date"`
	HeightCm            *float64  `json:"height_cm"`
	WeightKg            *float64  `json:"weight_kg"`
	HeadCircumferenceCm *float64  `json:"head_circumference_cm"`
	Note                string    `json:"note"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

const backupVersion = "1"

const dateLayout = "2006-01-02"

// BackupService exports and imports the full growth database.
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service.
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export writes all guardians, children and measurements as JSON.
func (s *BackupService) Export(ctx context.Context, w io.Writer) error {
	data := BackupData{
		Version:    backupVersion,
		ExportedAt: time.Now().UTC(),
	}

	rows, err := s.db.QueryContext(ctx, "SELECT id, created_at FROM guardians ORDER BY seq ASC")
	if err != nil {
		return fmt.Errorf("failed to export guardians: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var g GuardianBackup
		if err := rows.Scan(&g.ID, &g.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan guardian: %w", err)
		}
		data.Guardians = append(data.Guardians, g)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to export guardians: %w", err)
	}

	children, err := s.exportChildren(ctx)
	if err != nil {
		return err
	}
	data.Children = children

	measurements, err := s.exportMeasurements(ctx)
	if err != nil {
		return err
	}
	data.Measurements = measurements

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	return nil
}

func (s *BackupService) exportChildren(ctx context.Context) ([]ChildBackup, error) {
	repo := repository.NewChildRepository(s.db)
	guardians, err := s.guardianIDs(ctx)
	if err != nil {
		return nil, err
	}

	var out []ChildBackup
	for _, ownerID := range guardians {
		children, err := repo.ListChildren(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("failed to export children: %w", err)
		}
		for _, c := range children {
			out = append(out, childToBackup(c))
		}
	}
	return out, nil
}

func (s *BackupService) exportMeasurements(ctx context.Context) ([]MeasurementBackup, error) {
	query := "SELECT id, child_id, date, height_cm, weight_kg, head_circumference_cm, note, created_at, updated_at " +
		"FROM measurements ORDER BY seq ASC"
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to export measurements: %w", err)
	}
	defer rows.Close()

	var out []MeasurementBackup
	for rows.Next() {
		var m models.Measurement
		var height, weight, head *float64
		if err := rows.Scan(&m.ID, &m.ChildID, &m.Date, &height, &weight, &head, &m.Note,
			&m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		out = append(out, MeasurementBackup{
			ID:                  m.ID,
			ChildID:             m.ChildID,
			Date:                m.Date.Format(dateLayout),
			HeightCm:            height,
			WeightKg:            weight,
			HeadCircumferenceCm: head,
			Note:                m.Note,
			CreatedAt:           m.CreatedAt,
			UpdatedAt:           m.UpdatedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to export measurements: %w", err)
	}
	return out, nil
}

func (s *BackupService) guardianIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM guardians ORDER BY seq ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list guardians: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan guardian id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Import reads a backup envelope and inserts its records. When clear is
// true all existing data is removed first.
func (s *BackupService) Import(ctx context.Context, r io.Reader, clear bool) error {
	var data BackupData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if data.Version != backupVersion {
		return fmt.Errorf("unsupported backup version: %s", data.Version)
	}

	tx, err := s.db.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	rewrite := s.db.Dialect.RewriteQuery
	if clear {
		// Children and measurements go via the FK cascade
		if _, err := tx.Exec("DELETE FROM guardians"); err != nil {
			return fmt.Errorf("failed to clear existing data: %w", err)
		}
	}

	for _, g := range data.Guardians {
		query := rewrite("INSERT INTO guardians (id, created_at) VALUES (?, ?)")
		if _, err := tx.Exec(query, g.ID, g.CreatedAt); err != nil {
			return fmt.Errorf("failed to import guardian %s: %w", g.ID, err)
		}
	}
	for _, c := range data.Children {
		var birthDate interface{}
		if c.BirthDate != nil {
			parsed, err := time.Parse(dateLayout, *c.BirthDate)
			if err != nil {
				return fmt.Errorf("failed to import child %s: bad birth date %q", c.ID, *c.BirthDate)
			}
			birthDate = parsed
		}
		query := rewrite("INSERT INTO children (id, owner_id, name, birth_date, gender, created_at, updated_at) " +
			"VALUES (?, ?, ?, ?, ?, ?, ?)")
		if _, err := tx.Exec(query, c.ID, c.OwnerID, c.Name, birthDate, c.Gender, c.CreatedAt, c.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import child %s: %w", c.ID, err)
		}
	}
	for _, m := range data.Measurements {
		date, err := time.Parse(dateLayout, m.Date)
		if err != nil {
			return fmt.Errorf("failed to import measurement %s: bad date %q", m.ID, m.Date)
		}
		query := rewrite("INSERT INTO measurements (id, child_id, date, height_cm, weight_kg, head_circumference_cm, note, created_at, updated_at) " +
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
		if _, err := tx.Exec(query, m.ID, m.ChildID, date, m.HeightCm, m.WeightKg, m.HeadCircumferenceCm, m.Note, m.CreatedAt, m.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import measurement %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

func childToBackup(c models.Child) ChildBackup {
	b := ChildBackup{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Name:      c.Name,
		Gender:    c.Gender,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.BirthDate != nil {
		d := c.BirthDate.Format(dateLayout)
		b.BirthDate = &d
	}
	return b
}
