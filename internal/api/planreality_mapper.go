/**
 * @description
 * This file maps plan-reality differences to their API representation:
 * human-readable metric labels, the computed variance, and the impact level
 * derived from metric-family thresholds. Labels and impact values stay in
 * Spanish for compatibility with the existing clients.
 */

package api

import (
	"math"
	"time"

	"github.com/practpec/api-voyaj-sub001/internal/domain"
)

const (
	impactHigh    = "alto"
	impactMedium  = "medio"
	impactLow     = "bajo"
	impactNeutral = "neutral"
)

// metricLabels translates each metric to its display label.
var metricLabels = map[domain.DifferenceMetric]string{
	domain.MetricTimeSpent:        "Tiempo gastado",
	domain.MetricCostVariation:    "Variación de costo",
	domain.MetricActivityChanged:  "Actividad cambiada",
	domain.MetricLocationChanged:  "Ubicación cambiada",
	domain.MetricExperienceRating: "Calificación de experiencia",
	domain.MetricParticipantCount: "Cantidad de participantes",
	domain.MetricWeatherImpact:    "Impacto del clima",
	domain.MetricDurationChange:   "Cambio de duración",
	domain.MetricBudgetDeviation:  "Desviación de presupuesto",
	domain.MetricOther:            "Otro",
}

// differenceResponse is the API shape of one plan-reality observation.
type differenceResponse struct {
	ID                 string   `json:"id"`
	TripID             string   `json:"trip_id"`
	DayID              *string  `json:"day_id,omitempty"`
	ActivityID         *string  `json:"activity_id,omitempty"`
	Metric             string   `json:"metric"`
	MetricLabel        string   `json:"metric_label"`
	PlannedValue       string   `json:"planned_value"`
	ActualValue        string   `json:"actual_value"`
	Notes              string   `json:"notes,omitempty"`
	VariancePercentage *float64 `json:"variance_percentage"`
	ImpactLevel        string   `json:"impact_level"`
	DifferenceDetected bool     `json:"difference_detected"`
	CreatedAt          string   `json:"created_at"`
	UpdatedAt          string   `json:"updated_at"`
}

// impactLevel classifies the absolute variance against the metric family's
// thresholds. Non-measurable observations are neutral.
func impactLevel(metric domain.DifferenceMetric, variance *float64) string {
	if variance == nil {
		return impactNeutral
	}
	abs := math.Abs(*variance)

	var high, medium float64
	switch {
	case metric.IsCostMetric():
		high, medium = 50, 20
	case metric.IsTimeMetric():
		high, medium = 100, 50
	default:
		high, medium = 30, 15
	}

	switch {
	case abs >= high:
		return impactHigh
	case abs >= medium:
		return impactMedium
	default:
		return impactLow
	}
}

func metricLabel(metric domain.DifferenceMetric) string {
	if label, ok := metricLabels[metric]; ok {
		return label
	}
	return string(metric)
}

func toDifferenceResponse(diff *domain.PlanRealityDifference) differenceResponse {
	variance := diff.VariancePercentage()
	return differenceResponse{
		ID:                 diff.ID,
		TripID:             diff.TripID,
		DayID:              diff.DayID,
		ActivityID:         diff.ActivityID,
		Metric:             string(diff.Metric),
		MetricLabel:        metricLabel(diff.Metric),
		PlannedValue:       diff.PlannedValue,
		ActualValue:        diff.ActualValue,
		Notes:              diff.Notes,
		VariancePercentage: variance,
		ImpactLevel:        impactLevel(diff.Metric, variance),
		DifferenceDetected: diff.HasSignificantDifference(),
		CreatedAt:          diff.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          diff.UpdatedAt.Format(time.RFC3339),
	}
}

func toDifferenceResponses(diffs []*domain.PlanRealityDifference) []differenceResponse {
	out := make([]differenceResponse, 0, len(diffs))
	for _, diff := range diffs {
		out = append(out, toDifferenceResponse(diff))
	}
	return out
}
