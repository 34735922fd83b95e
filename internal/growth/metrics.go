// Package growth contains the pure metric calculations derived from raw
// measurements. Functions here are total: they never panic and never
// touch storage or the clock beyond the asOf argument they are given.
package growth

import (
	"math"
	"time"
)

// BMI computes the body mass index from weight in kilograms and height
// in centimeters, rounded to one decimal place. It returns nil when
// either input is absent or non-positive, or when the height collapses
// to zero after conversion to meters.
func BMI(weightKg, heightCm *float64) *float64 {
	if weightKg == nil || heightCm == nil {
		return nil
	}
	if *weightKg <= 0 || *heightCm <= 0 {
		return nil
	}
	h := *heightCm / 100
	if h <= 0 {
		return nil
	}
	bmi := math.Round(*weightKg/(h*h)*10) / 10
	return &bmi
}

// AgeYears returns the number of whole completed years between birthDate
// and asOf, or nil when no birth date is known. The count is decremented
// by one when the asOf month/day falls before the birth month/day, so it
// only increases on the calendar anniversary. A Feb 29 birth date rolls
// over on Mar 1 in non-leap years.
func AgeYears(birthDate *time.Time, asOf time.Time) *int {
	if birthDate == nil {
		return nil
	}
	years := asOf.Year() - birthDate.Year()
	hadBirthday := asOf.Month() > birthDate.Month() ||
		(asOf.Month() == birthDate.Month() && asOf.Day() >= birthDate.Day())
	if !hadBirthday {
		years--
	}
	return &years
}
