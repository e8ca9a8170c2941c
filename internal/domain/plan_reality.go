/**
 * @description
 * This file defines the PlanRealityDifference entity: one observed deviation
 * between what a trip planned and what actually happened. Planned and actual
 * values are stored as strings because a metric may record either a number
 * ("100") or free text ("Museo del Prado"); numeric analytics skip the
 * observations that do not parse.
 *
 * @notes
 * - Metric wire values and the impact-level vocabulary are kept in Spanish
 *   for compatibility with existing clients and stored documents.
 */

package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DifferenceMetric is the fixed enumeration of plan-vs-reality metrics.
type DifferenceMetric string

const (
	MetricTimeSpent        DifferenceMetric = "tiempo_gastado"
	MetricCostVariation    DifferenceMetric = "variacion_costo"
	MetricActivityChanged  DifferenceMetric = "actividad_cambiada"
	MetricLocationChanged  DifferenceMetric = "ubicacion_cambiada"
	MetricExperienceRating DifferenceMetric = "calificacion_experiencia"
	MetricParticipantCount DifferenceMetric = "cantidad_participantes"
	MetricWeatherImpact    DifferenceMetric = "impacto_clima"
	MetricDurationChange   DifferenceMetric = "cambio_duracion"
	MetricBudgetDeviation  DifferenceMetric = "desviacion_presupuesto"
	MetricOther            DifferenceMetric = "otro"
)

// AllDifferenceMetrics lists every valid metric value.
var AllDifferenceMetrics = []DifferenceMetric{
	MetricTimeSpent,
	MetricCostVariation,
	MetricActivityChanged,
	MetricLocationChanged,
	MetricExperienceRating,
	MetricParticipantCount,
	MetricWeatherImpact,
	MetricDurationChange,
	MetricBudgetDeviation,
	MetricOther,
}

// IsValid reports whether the metric belongs to the fixed enumeration.
func (m DifferenceMetric) IsValid() bool {
	for _, known := range AllDifferenceMetrics {
		if m == known {
			return true
		}
	}
	return false
}

// IsCostMetric reports whether the metric belongs to the cost family used by
// budget aggregation and the cost impact thresholds.
func (m DifferenceMetric) IsCostMetric() bool {
	return m == MetricCostVariation || m == MetricBudgetDeviation
}

// IsTimeMetric reports whether the metric belongs to the time family.
func (m DifferenceMetric) IsTimeMetric() bool {
	return m == MetricTimeSpent || m == MetricDurationChange
}

// PlanRealityDifference is one plan-vs-actual observation for a trip.
type PlanRealityDifference struct {
	ID           string           `json:"id"`
	TripID       string           `json:"trip_id"`
	DayID        *string          `json:"day_id,omitempty"`
	ActivityID   *string          `json:"activity_id,omitempty"`
	Metric       DifferenceMetric `json:"metric"`
	PlannedValue string           `json:"planned_value"`
	ActualValue  string           `json:"actual_value"`
	Notes        string           `json:"notes,omitempty"`
	IsDeleted    bool             `json:"is_deleted"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// NewPlanRealityDifference builds a difference with a fresh id and
// timestamps. Field validation (metric membership, required values) is the
// create use case's responsibility.
func NewPlanRealityDifference(tripID string, metric DifferenceMetric, plannedValue, actualValue, notes string, dayID, activityID *string) *PlanRealityDifference {
	now := time.Now().UTC()
	return &PlanRealityDifference{
		ID:           uuid.NewString(),
		TripID:       tripID,
		DayID:        dayID,
		ActivityID:   activityID,
		Metric:       metric,
		PlannedValue: plannedValue,
		ActualValue:  actualValue,
		Notes:        strings.TrimSpace(notes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// DifferenceUpdate carries the optional fields of an update; nil fields are
// left untouched.
type DifferenceUpdate struct {
	Metric       *DifferenceMetric
	PlannedValue *string
	ActualValue  *string
	Notes        *string
}

// Apply overwrites only the provided fields and refreshes updated_at.
func (d *PlanRealityDifference) Apply(update DifferenceUpdate) {
	if update.Metric != nil {
		d.Metric = *update.Metric
	}
	if update.PlannedValue != nil {
		d.PlannedValue = *update.PlannedValue
	}
	if update.ActualValue != nil {
		d.ActualValue = *update.ActualValue
	}
	if update.Notes != nil {
		d.Notes = strings.TrimSpace(*update.Notes)
	}
	d.UpdatedAt = time.Now().UTC()
}

// HasSignificantDifference reports whether the plan deviated at all. The
// comparison is raw string inequality, not semantic.
func (d *PlanRealityDifference) HasSignificantDifference() bool {
	return d.PlannedValue != d.ActualValue
}

// SoftDelete flags the difference as deleted without removing the row.
func (d *PlanRealityDifference) SoftDelete() {
	d.IsDeleted = true
	d.UpdatedAt = time.Now().UTC()
}

// VariancePercentage returns the signed relative change of actual vs planned
// as a percentage, or nil when either value is non-numeric. A planned value
// of zero yields 100 for any movement away from it and 0 when the actual is
// also zero, avoiding a division by zero.
func (d *PlanRealityDifference) VariancePercentage() *float64 {
	planned, err := strconv.ParseFloat(strings.TrimSpace(d.PlannedValue), 64)
	if err != nil {
		return nil
	}
	actual, err := strconv.ParseFloat(strings.TrimSpace(d.ActualValue), 64)
	if err != nil {
		return nil
	}

	var variance float64
	switch {
	case planned == 0 && actual == 0:
		variance = 0.0
	case planned == 0:
		variance = 100.0
	default:
		variance = (actual - planned) / planned * 100.0
	}
	return &variance
}

// NumericActualValue parses the actual value, or returns nil when it is not
// numeric. Used by satisfaction aggregation over experience ratings.
func (d *PlanRealityDifference) NumericActualValue() *float64 {
	actual, err := strconv.ParseFloat(strings.TrimSpace(d.ActualValue), 64)
	if err != nil {
		return nil
	}
	return &actual
}
