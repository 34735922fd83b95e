// Package validation enforces the field and cross-field rules that child
// and measurement records must satisfy before they reach the store. All
// checks are side-effect free and fail on the first violation.
package validation

import (
	"fmt"
	"strings"
	"time"
)

// Code classifies a validation failure.
type Code string

const (
	MissingField Code = "missing_field"
	InvalidDate  Code = "invalid_date"
	FutureDate   Code = "future_date"
	OutOfRange   Code = "out_of_range"
)

// Plausibility bounds for measurements. The 20 cm height floor admits
// premature newborns.
const (
	MinHeightCm = 20.0
	MaxHeightCm = 250.0
	MinWeightKg = 1.0
	MaxWeightKg = 300.0
)

// DateLayout is the calendar date format accepted at the boundary.
const DateLayout = "2006-01-02"

// Error represents a validation error on a named field.
type Error struct {
	Field   string
	Code    Code
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ChildPolicy carries deployment-level validation policy.
type ChildPolicy struct {
	RequireBirthDate bool
}

// Now is the clock used for future-date checks. Overridable in tests.
var Now = time.Now

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// today returns the current calendar date at UTC midnight. Future-date
// checks compare dates only, time of day is ignored.
func today() time.Time {
	y, m, d := Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ValidateChild checks a child's name and birth date. The birth date is
// optional unless the policy requires it; when present it must parse and
// must not be in the future. Returns the parsed birth date, nil when
// absent.
func ValidateChild(name string, birthDate *string, policy ChildPolicy) (*time.Time, error) {
	if strings.TrimSpace(name) == "" {
		return nil, Error{Field: "name", Code: MissingField, Message: "name is required"}
	}
	return ValidateBirthDate(birthDate, policy)
}

// ValidateBirthDate checks a birth date on its own, for partial updates
// where the name is untouched.
func ValidateBirthDate(birthDate *string, policy ChildPolicy) (*time.Time, error) {
	if birthDate == nil || strings.TrimSpace(*birthDate) == "" {
		if policy.RequireBirthDate {
			return nil, Error{Field: "birthDate", Code: MissingField, Message: "birth date is required"}
		}
		return nil, nil
	}
	parsed, err := ParseDate(strings.TrimSpace(*birthDate))
	if err != nil {
		return nil, Error{Field: "birthDate", Code: InvalidDate, Message: "birth date must be a valid YYYY-MM-DD date"}
	}
	if parsed.After(today()) {
		return nil, Error{Field: "birthDate", Code: FutureDate, Message: "birth date cannot be in the future"}
	}
	return &parsed, nil
}

// ValidateMeasurementDate checks the observation date of a measurement:
// required, parseable, not in the future.
func ValidateMeasurementDate(date *string) (time.Time, error) {
	if date == nil || strings.TrimSpace(*date) == "" {
		return time.Time{}, Error{Field: "date", Code: MissingField, Message: "date is required"}
	}
	parsed, err := ParseDate(strings.TrimSpace(*date))
	if err != nil {
		return time.Time{}, Error{Field: "date", Code: InvalidDate, Message: "date must be a valid YYYY-MM-DD date"}
	}
	if parsed.After(today()) {
		return time.Time{}, Error{Field: "date", Code: FutureDate, Message: "date cannot be in the future"}
	}
	return parsed, nil
}

// ValidateMeasurementValues checks the optional measures of a
// measurement. Absent fields skip their own range check.
func ValidateMeasurementValues(heightCm, weightKg, headCircumferenceCm *float64) error {
	if heightCm != nil && (*heightCm < MinHeightCm || *heightCm > MaxHeightCm) {
		return Error{
			Field:   "heightCm",
			Code:    OutOfRange,
			Message: fmt.Sprintf("height must be between %g and %g cm", MinHeightCm, MaxHeightCm),
		}
	}
	if weightKg != nil && (*weightKg < MinWeightKg || *weightKg > MaxWeightKg) {
		return Error{
			Field:   "weightKg",
			Code:    OutOfRange,
			Message: fmt.Sprintf("weight must be between %g and %g kg", MinWeightKg, MaxWeightKg),
		}
	}
	if headCircumferenceCm != nil && *headCircumferenceCm <= 0 {
		return Error{Field: "headCircumferenceCm", Code: OutOfRange, Message: "head circumference must be positive"}
	}
	return nil
}

// ValidateMeasurement checks a complete measurement record and returns
// the parsed observation date.
func ValidateMeasurement(date *string, heightCm, weightKg, headCircumferenceCm *float64) (time.Time, error) {
	parsed, err := ValidateMeasurementDate(date)
	if err != nil {
		return time.Time{}, err
	}
	if err := ValidateMeasurementValues(heightCm, weightKg, headCircumferenceCm); err != nil {
		return time.Time{}, err
	}
	return parsed, nil
}
