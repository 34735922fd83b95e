package models

import "time"

// Measurement is a single dated observation of a child's growth.
// Height, weight and head circumference are individually optional; a
// measurement must always retain at least a date. BMI is never stored,
// it is derived on the way out from height and weight.
type Measurement struct {
	ID                  string
	ChildID             string
	Date                time.Time
	HeightCm            *float64
	WeightKg            *float64
	HeadCircumferenceCm *float64
	Note                string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
