package models

import "time"

// Child represents a tracked individual whose growth is being recorded.
// OwnerID is set at creation and is never mutable afterwards.
type Child struct {
	ID        string
	OwnerID   string
	Name      string
	BirthDate *time.Time
	Gender    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
