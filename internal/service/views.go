package service

import (
	"time"

	"growthlog/internal/growth"
	"growthlog/internal/models"
)

// MeasurementView is a measurement enriched with its derived BMI. BMI
// is computed on the way out and is never client-supplied.
type MeasurementView struct {
	models.Measurement
	BMI *float64
}

// ChildSummary is the list-call shape of a child: the record, its age
// in completed years, and only its most recent measurement.
type ChildSummary struct {
	models.Child
	AgeYears *int
	Latest   *MeasurementView
}

// ChildDetail is the detail-call shape of a child: the record, its age,
// and the full measurement history ordered most recent first.
type ChildDetail struct {
	models.Child
	AgeYears     *int
	Measurements []MeasurementView
}

func measurementView(m models.Measurement) MeasurementView {
	return MeasurementView{
		Measurement: m,
		BMI:         growth.BMI(m.WeightKg, m.HeightCm),
	}
}

func childDetail(c models.Child, history []models.Measurement, asOf time.Time) *ChildDetail {
	detail := &ChildDetail{
		Child:        c,
		AgeYears:     growth.AgeYears(c.BirthDate, asOf),
		Measurements: make([]MeasurementView, len(history)),
	}
	for i, m := range history {
		detail.Measurements[i] = measurementView(m)
	}
	return detail
}

func childSummary(c models.Child, latest *models.Measurement, asOf time.Time) ChildSummary {
	summary := ChildSummary{
		Child:    c,
		AgeYears: growth.AgeYears(c.BirthDate, asOf),
	}
	if latest != nil {
		view := measurementView(*latest)
		summary.Latest = &view
	}
	return summary
}
