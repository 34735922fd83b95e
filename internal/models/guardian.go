package models

import "time"

// Guardian represents the account on whose behalf child records are
// created and accessed. Guardians are provisioned anonymously on first
// use; there are no credentials beyond the token bound to the caller.
type Guardian struct {
	ID        string
	CreatedAt time.Time
}
