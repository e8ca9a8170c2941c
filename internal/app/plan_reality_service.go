/**
 * @description
 * This file contains the plan-vs-reality analytics engine: recording of
 * individual plan/actual observations and the derived trip-wide analysis
 * (variance aggregation by metric family, major-variance detection,
 * satisfaction scoring, insight/pattern generation, and the improvement
 * recommendations).
 *
 * @notes
 * - Access is trip-membership based, unlike the owner-only expense-split
 *   check; the asymmetry is intentional and preserved.
 * - Observations whose values do not parse as numbers are excluded from every
 *   average but still counted in totals and per-metric counts.
 * - Recommendation, pattern, and suggestion texts stay in Spanish for
 *   compatibility with the existing clients.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/practpec/api-voyaj-sub001/internal/domain"
	"github.com/practpec/api-voyaj-sub001/internal/store"
)

const (
	majorVarianceThreshold   = 30.0
	costOverrunVariance      = 20.0
	timeOverrunVariance      = 50.0
	costOverrunTrigger       = 2
	timeOverrunTrigger       = 2
	activityChangeTrigger    = 3
	costPatternThreshold     = 20.0
	timePatternThreshold     = 50.0
	successVarianceTolerance = 25.0
)

const (
	recBudgetMargin   = "Considera agregar un margen adicional al presupuesto de tus próximos viajes"
	recTimeBuffer     = "Planifica las actividades con más tiempo de margen entre ellas"
	recResearchMore   = "Investiga mejor las actividades antes de confirmar el itinerario"
	recPlanAsExpected = "¡Excelente planificación! El viaje se ejecutó según lo esperado"

	patternBudgetExceeded = "Tendencia a exceder el presupuesto"
	patternTimeOverrun    = "Las actividades toman más tiempo de lo planeado"

	suggestionBudgetMargin = "Agrega un margen de 15-20% al presupuesto de tu próximo viaje"
	suggestionTimeBlocks   = "Reserva bloques de tiempo más amplios para cada actividad"
)

// CreateDifferenceRequest is the payload for recording one observation.
type CreateDifferenceRequest struct {
	TripID       string  `json:"trip_id"`
	DayID        *string `json:"day_id,omitempty"`
	ActivityID   *string `json:"activity_id,omitempty"`
	Metric       string  `json:"metric"`
	PlannedValue string  `json:"planned_value"`
	ActualValue  string  `json:"actual_value"`
	Notes        string  `json:"notes,omitempty"`
}

// TripAnalysis is the aggregate plan-vs-reality view of one trip.
type TripAnalysis struct {
	TripID string `json:"trip_id"`
	// TripTitle is enriched by an outer collaborator; the engine leaves it
	// empty.
	TripTitle           string                          `json:"trip_title"`
	TotalDifferences    int                             `json:"total_differences"`
	DifferencesByMetric map[domain.DifferenceMetric]int `json:"differences_by_metric"`
	MajorVariances      []*domain.PlanRealityDifference `json:"major_variances"`
	BudgetVariance      float64                         `json:"budget_variance"`
	TimeVariance        float64                         `json:"time_variance"`
	OverallSatisfaction *float64                        `json:"overall_satisfaction"`
	Recommendations     []string                        `json:"recommendations"`
}

// TripInsight is one structured finding about a trip's execution.
type TripInsight struct {
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variance    float64 `json:"variance"`
}

// TripInsights is the pattern-oriented companion to TripAnalysis.
type TripInsights struct {
	TripID      string        `json:"trip_id"`
	Insights    []TripInsight `json:"insights"`
	Patterns    []string      `json:"patterns"`
	Suggestions []string      `json:"suggestions"`
	SuccessRate float64       `json:"success_rate"`
}

// PlanRealityService owns the plan-reality observations and their analytics.
type PlanRealityService struct {
	diffs   store.DifferenceRepository
	members store.TripMemberFinder
}

// NewPlanRealityService creates the analytics service.
func NewPlanRealityService(diffs store.DifferenceRepository, members store.TripMemberFinder) *PlanRealityService {
	return &PlanRealityService{diffs: diffs, members: members}
}

// ValidateTripAccess reports whether userID is a member of the trip. Lookup
// failures of any kind read as "no access"; access checks fail closed and
// never surface storage errors.
func (s *PlanRealityService) ValidateTripAccess(ctx context.Context, tripID, userID string) bool {
	member, err := s.members.FindByTripAndUser(ctx, tripID, userID)
	if err != nil {
		return false
	}
	return member != nil
}

// CreateDifference records one observation for the caller's trip.
func (s *PlanRealityService) CreateDifference(ctx context.Context, userID string, req CreateDifferenceRequest) (*domain.PlanRealityDifference, error) {
	if !s.ValidateTripAccess(ctx, req.TripID, userID) {
		return nil, domain.NewForbiddenError("you are not a member of this trip")
	}

	metric := domain.DifferenceMetric(strings.TrimSpace(req.Metric))
	if !metric.IsValid() {
		return nil, domain.NewValidationError("metric must be one of the known difference metrics")
	}
	if strings.TrimSpace(req.PlannedValue) == "" {
		return nil, domain.NewValidationError("planned value is required")
	}
	if strings.TrimSpace(req.ActualValue) == "" {
		return nil, domain.NewValidationError("actual value is required")
	}

	diff := domain.NewPlanRealityDifference(req.TripID, metric, req.PlannedValue, req.ActualValue, req.Notes, req.DayID, req.ActivityID)
	if err := s.diffs.Create(ctx, diff); err != nil {
		return nil, fmt.Errorf("failed to persist plan-reality difference: %w", err)
	}
	return diff, nil
}

// GetDifference fetches one active observation.
func (s *PlanRealityService) GetDifference(ctx context.Context, id string) (*domain.PlanRealityDifference, error) {
	diff, err := s.diffs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrDifferenceNotFound) {
			return nil, domain.NewNotFoundError("plan-reality difference not found")
		}
		return nil, err
	}
	return diff, nil
}

// ListTripDifferences lists the trip's active observations, newest first.
func (s *PlanRealityService) ListTripDifferences(ctx context.Context, tripID, userID string) ([]*domain.PlanRealityDifference, error) {
	if !s.ValidateTripAccess(ctx, tripID, userID) {
		return nil, domain.NewForbiddenError("you are not a member of this trip")
	}
	return s.diffs.FindByTripID(ctx, tripID)
}

// UpdateDifference overwrites the provided fields of one observation.
func (s *PlanRealityService) UpdateDifference(ctx context.Context, id, userID string, update domain.DifferenceUpdate) (*domain.PlanRealityDifference, error) {
	diff, err := s.GetDifference(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.ValidateTripAccess(ctx, diff.TripID, userID) {
		return nil, domain.NewForbiddenError("you are not a member of this trip")
	}
	if update.Metric != nil && !update.Metric.IsValid() {
		return nil, domain.NewValidationError("metric must be one of the known difference metrics")
	}
	if update.PlannedValue != nil && strings.TrimSpace(*update.PlannedValue) == "" {
		return nil, domain.NewValidationError("planned value must not be empty")
	}
	if update.ActualValue != nil && strings.TrimSpace(*update.ActualValue) == "" {
		return nil, domain.NewValidationError("actual value must not be empty")
	}

	diff.Apply(update)
	if err := s.diffs.Update(ctx, diff); err != nil {
		return nil, fmt.Errorf("failed to update plan-reality difference: %w", err)
	}
	return diff, nil
}

// DeleteDifference soft-deletes one observation.
func (s *PlanRealityService) DeleteDifference(ctx context.Context, id, userID string) error {
	diff, err := s.GetDifference(ctx, id)
	if err != nil {
		return err
	}
	if !s.ValidateTripAccess(ctx, diff.TripID, userID) {
		return domain.NewForbiddenError("you are not a member of this trip")
	}
	if err := s.diffs.Delete(ctx, diff.ID); err != nil {
		return fmt.Errorf("failed to delete plan-reality difference: %w", err)
	}
	return nil
}

// GetTripAnalysis aggregates the trip's observations into counts, family
// variances, the satisfaction score, and the recommendation list.
func (s *PlanRealityService) GetTripAnalysis(ctx context.Context, tripID string) (*TripAnalysis, error) {
	diffs, err := s.diffs.FindByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to load differences for analysis: %w", err)
	}

	analysis := &TripAnalysis{
		TripID:              tripID,
		TotalDifferences:    len(diffs),
		DifferencesByMetric: make(map[domain.DifferenceMetric]int),
		MajorVariances:      []*domain.PlanRealityDifference{},
	}

	var budgetSum, timeSum, satisfactionSum float64
	var budgetCount, timeCount, satisfactionCount int
	var costOverruns, timeOverruns, activityChanges int

	for _, diff := range diffs {
		analysis.DifferencesByMetric[diff.Metric]++

		if diff.Metric == domain.MetricActivityChanged {
			activityChanges++
		}
		if diff.Metric == domain.MetricExperienceRating {
			if rating := diff.NumericActualValue(); rating != nil {
				satisfactionSum += *rating
				satisfactionCount++
			}
		}

		variance := diff.VariancePercentage()
		if variance == nil {
			continue
		}
		if math.Abs(*variance) >= majorVarianceThreshold {
			analysis.MajorVariances = append(analysis.MajorVariances, diff)
		}
		if diff.Metric.IsCostMetric() {
			budgetSum += *variance
			budgetCount++
		}
		if diff.Metric.IsTimeMetric() {
			timeSum += *variance
			timeCount++
		}
		if diff.Metric == domain.MetricCostVariation && *variance > costOverrunVariance {
			costOverruns++
		}
		if diff.Metric == domain.MetricTimeSpent && *variance > timeOverrunVariance {
			timeOverruns++
		}
	}

	if budgetCount > 0 {
		analysis.BudgetVariance = budgetSum / float64(budgetCount)
	}
	if timeCount > 0 {
		analysis.TimeVariance = timeSum / float64(timeCount)
	}
	if satisfactionCount > 0 {
		satisfaction := satisfactionSum / float64(satisfactionCount)
		analysis.OverallSatisfaction = &satisfaction
	}
	analysis.Recommendations = buildRecommendations(costOverruns, timeOverruns, activityChanges)

	return analysis, nil
}

func buildRecommendations(costOverruns, timeOverruns, activityChanges int) []string {
	var recommendations []string
	if costOverruns > costOverrunTrigger {
		recommendations = append(recommendations, recBudgetMargin)
	}
	if timeOverruns > timeOverrunTrigger {
		recommendations = append(recommendations, recTimeBuffer)
	}
	if activityChanges > activityChangeTrigger {
		recommendations = append(recommendations, recResearchMore)
	}
	if len(recommendations) == 0 {
		recommendations = []string{recPlanAsExpected}
	}
	return recommendations
}

// GetTripInsights derives the pattern-oriented view: cost and time cluster
// insights, recurring-behavior patterns with paired suggestions, and the
// overall success rate.
func (s *PlanRealityService) GetTripInsights(ctx context.Context, tripID string) (*TripInsights, error) {
	diffs, err := s.diffs.FindByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to load differences for insights: %w", err)
	}

	insights := &TripInsights{
		TripID:      tripID,
		Insights:    []TripInsight{},
		Patterns:    []string{},
		Suggestions: []string{},
	}

	var costSum, timeSum float64
	var costCount, timeCount int
	var measurable, withinPlan int
	for _, diff := range diffs {
		variance := diff.VariancePercentage()
		if variance == nil {
			continue
		}
		measurable++
		if math.Abs(*variance) <= successVarianceTolerance {
			withinPlan++
		}
		if diff.Metric.IsCostMetric() {
			costSum += *variance
			costCount++
		}
		if diff.Metric.IsTimeMetric() {
			timeSum += *variance
			timeCount++
		}
	}

	if costCount > 0 {
		avg := costSum / float64(costCount)
		insights.Insights = append(insights.Insights, TripInsight{
			Type:        "costo",
			Title:       "Comportamiento del presupuesto",
			Description: fmt.Sprintf("Los costos variaron en promedio %.1f%% respecto a lo planeado", avg),
			Variance:    avg,
		})
		if avg > costPatternThreshold {
			insights.Patterns = append(insights.Patterns, patternBudgetExceeded)
			insights.Suggestions = append(insights.Suggestions, suggestionBudgetMargin)
		}
	}

	if timeCount > 0 {
		avg := timeSum / float64(timeCount)
		insights.Insights = append(insights.Insights, TripInsight{
			Type:        "tiempo",
			Title:       "Manejo del tiempo",
			Description: fmt.Sprintf("Las actividades variaron en promedio %.1f%% respecto al tiempo planeado", avg),
			Variance:    avg,
		})
		if avg > timePatternThreshold {
			insights.Patterns = append(insights.Patterns, patternTimeOverrun)
			insights.Suggestions = append(insights.Suggestions, suggestionTimeBlocks)
		}
	}

	// No measurable observation means nothing contradicted the plan.
	if measurable == 0 {
		insights.SuccessRate = 100.0
	} else {
		insights.SuccessRate = float64(withinPlan) / float64(measurable) * 100.0
	}

	return insights, nil
}
