package handlers

import (
	"growthlog/internal/service"
	"growthlog/internal/validation"
)

// JSON response shapes. Dates cross the boundary as YYYY-MM-DD strings;
// the service layer only ever sees parsed values.

type measurementResponse struct {
	ID                  string   `json:"id"`
	ChildID             string   `json:"childId"`
	Date                string   `json:"date"`
	HeightCm            *float64 `json:"heightCm"`
	WeightKg            *float64 `json:"weightKg"`
	HeadCircumferenceCm *float64 `json:"headCircumferenceCm"`
	Note                string   `json:"note,omitempty"`
	BMI                 *float64 `json:"bmi"`
}

type childResponse struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	BirthDate    *string               `json:"birthDate"`
	Gender       string                `json:"gender,omitempty"`
	AgeYears     *int                  `json:"ageYears"`
	Latest       *measurementResponse  `json:"latestMeasurement,omitempty"`
	Measurements []measurementResponse `json:"measurements,omitempty"`
}

func toMeasurementResponse(m service.MeasurementView) measurementResponse {
	return measurementResponse{
		ID:                  m.ID,
		ChildID:             m.ChildID,
		Date:                m.Date.Format(validation.DateLayout),
		HeightCm:            m.HeightCm,
		WeightKg:            m.WeightKg,
		HeadCircumferenceCm: m.HeadCircumferenceCm,
		Note:                m.Note,
		BMI:                 m.BMI,
	}
}

func toChildSummaryResponse(c service.ChildSummary) childResponse {
	resp := childResponse{
		ID:       c.ID,
		Name:     c.Name,
		Gender:   c.Gender,
		AgeYears: c.AgeYears,
	}
	if c.BirthDate != nil {
		d := c.BirthDate.Format(validation.DateLayout)
		resp.BirthDate = &d
	}
	if c.Latest != nil {
		latest := toMeasurementResponse(*c.Latest)
		resp.Latest = &latest
	}
	return resp
}

func toChildDetailResponse(c service.ChildDetail) childResponse {
	resp := childResponse{
		ID:           c.ID,
		Name:         c.Name,
		Gender:       c.Gender,
		AgeYears:     c.AgeYears,
		Measurements: make([]measurementResponse, len(c.Measurements)),
	}
	if c.BirthDate != nil {
		d := c.BirthDate.Format(validation.DateLayout)
		resp.BirthDate = &d
	}
	for i, m := range c.Measurements {
		resp.Measurements[i] = toMeasurementResponse(m)
	}
	return resp
}
