package app

import (
	"context"
	"testing"

	"github.com/practpec/api-voyaj-sub001/internal/domain"
	"github.com/practpec/api-voyaj-sub001/internal/store"
)

func newPlanRealityService() (*PlanRealityService, *store.MemoryDifferenceRepository, *store.MemoryTripMemberFinder) {
	diffs := store.NewMemoryDifferenceRepository()
	members := store.NewMemoryTripMemberFinder()
	return NewPlanRealityService(diffs, members), diffs, members
}

func mustCreateDifference(t *testing.T, service *PlanRealityService, userID string, req CreateDifferenceRequest) *domain.PlanRealityDifference {
	t.Helper()
	diff, err := service.CreateDifference(context.Background(), userID, req)
	if err != nil {
		t.Fatalf("unexpected error creating difference: %v", err)
	}
	return diff
}

func TestValidateTripAccessFailsClosed(t *testing.T) {
	service, _, members := newPlanRealityService()
	members.AddMember("trip-1", "u1", domain.TripRoleMember)

	if !service.ValidateTripAccess(context.Background(), "trip-1", "u1") {
		t.Fatal("member must have access")
	}
	if service.ValidateTripAccess(context.Background(), "trip-1", "stranger") {
		t.Fatal("non-member must not have access")
	}

	// A storage failure reads as "no access", never as an error.
	members.Err = context.DeadlineExceeded
	if service.ValidateTripAccess(context.Background(), "trip-1", "u1") {
		t.Fatal("lookup failure must deny access")
	}
}

func TestCreateDifferenceRules(t *testing.T) {
	service, _, members := newPlanRealityService()
	members.AddMember("trip-1", "u1", domain.TripRoleOwner)

	_, err := service.CreateDifference(context.Background(), "stranger", CreateDifferenceRequest{
		TripID: "trip-1", Metric: "variacion_costo", PlannedValue: "100", ActualValue: "130",
	})
	if !domain.IsKind(err, domain.KindForbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}

	invalid := []CreateDifferenceRequest{
		{TripID: "trip-1", Metric: "", PlannedValue: "100", ActualValue: "130"},
		{TripID: "trip-1", Metric: "no_existe", PlannedValue: "100", ActualValue: "130"},
		{TripID: "trip-1", Metric: "variacion_costo", PlannedValue: "", ActualValue: "130"},
		{TripID: "trip-1", Metric: "variacion_costo", PlannedValue: "100", ActualValue: "  "},
	}
	for _, req := range invalid {
		if _, err := service.CreateDifference(context.Background(), "u1", req); !domain.IsKind(err, domain.KindValidation) {
			t.Fatalf("expected validation error for %+v, got %v", req, err)
		}
	}

	diff := mustCreateDifference(t, service, "u1", CreateDifferenceRequest{
		TripID: "trip-1", Metric: "variacion_costo", PlannedValue: "100", ActualValue: "130",
	})
	if diff.ID == "" {
		t.Fatal("expected generated id")
	}
	if diff.Metric != domain.MetricCostVariation {
		t.Fatalf("expected cost-variation metric, got %s", diff.Metric)
	}
}

func TestGetTripAnalysisEmptyTrip(t *testing.T) {
	service, _, _ := newPlanRealityService()

	analysis, err := service.GetTripAnalysis(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.TotalDifferences != 0 {
		t.Fatalf("expected 0 differences, got %d", analysis.TotalDifferences)
	}
	if len(analysis.DifferencesByMetric) != 0 {
		t.Fatal("expected empty metric map")
	}
	if len(analysis.MajorVariances) != 0 {
		t.Fatal("expected no major variances")
	}
	if analysis.BudgetVariance != 0.0 || analysis.TimeVariance != 0.0 {
		t.Fatal("expected zero variances")
	}
	if analysis.OverallSatisfaction != nil {
		t.Fatal("expected nil satisfaction with no ratings")
	}
	if len(analysis.Recommendations) != 1 || analysis.Recommendations[0] != recPlanAsExpected {
		t.Fatalf("expected the positive-reinforcement message, got %v", analysis.Recommendations)
	}
}

func TestGetTripAnalysisCostOverruns(t *testing.T) {
	service, _, members := newPlanRealityService()
	members.AddMember("trip-1", "u1", domain.TripRoleOwner)

	for i := 0; i < 3; i++ {
		mustCreateDifference(t, service, "u1", CreateDifferenceRequest{
			TripID: "trip-1", Metric: "variacion_costo", PlannedValue: "100", ActualValue: "130",
		})
	}

	analysis, err := service.GetTripAnalysis(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.TotalDifferences != 3 {
		t.Fatalf("expected 3 differences, got %d", analysis.TotalDifferences)
	}
	if analysis.DifferencesByMetric[domain.MetricCostVariation] != 3 {
		t.Fatalf("expected 3 cost-variation entries, got %d", analysis.DifferencesByMetric[domain.MetricCostVariation])
	}
	if analysis.BudgetVariance != 30.0 {
		t.Fatalf("expected budget variance 30, got %f", analysis.BudgetVariance)
	}
	// |30| >= 30 makes each observation a major variance.
	if len(analysis.MajorVariances) != 3 {
		t.Fatalf("expected 3 major variances, got %d", len(analysis.MajorVariances))
	}
	// Three overruns above 20% exceed the trigger of two.
	found := false
	for _, rec := range analysis.Recommendations {
		if rec == recBudgetMargin {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected budgeting recommendation, got %v", analysis.Recommendations)
	}
}

func TestGetTripAnalysisMixedMetrics(t *testing.T) {
	service, _, members := newPlanRealityService()
	members.AddMember("trip-1", "u1", domain.TripRoleOwner)

	// Non-numeric observation: counted, excluded from every average.
	mustCreateDifference(t, service, "u1", CreateDifferenceRequest{
		TripID: "trip-1", Metric: "actividad_cambiada", PlannedValue: "Museo", ActualValue: "Playa",
	})
	mustCreateDifference(t, service, "u1", CreateDifferenceRequest{
		TripID: "trip-1", Metric: "tiempo_gastado", PlannedValue: "2", ActualValue: "4",
	})
	mustCreateDifference(t, service, "u1", CreateDifferenceRequest{
		TripID: "trip-1", Metric: "calificacion_experiencia", PlannedValue: "5", ActualValue: "4",
	})
	mustCreateDifference(t, service, "u1", CreateDifferenceRequest{
		TripID: "trip-1", Metric: "desviacion_presupuesto", PlannedValue: "200", ActualValue: "220",
	})

	analysis, err := service.GetTripAnalysis(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.TotalDifferences != 4 {
		t.Fatalf("expected 4 differences, got %d", analysis.TotalDifferences)
	}
	if analysis.TimeVariance != 100.0 {
		t.Fatalf("expected time variance 100, got %f", analysis.TimeVariance)
	}
	if analysis.BudgetVariance != 10.0 {
		t.Fatalf("expected budget variance 10, got %f", analysis.BudgetVariance)
	}
	if analysis.OverallSatisfaction == nil || *analysis.OverallSatisfaction != 4.0 {
		t.Fatalf("expected satisfaction 4.0, got %v", analysis.OverallSatisfaction)
	}
	// time 100% is major; the textual activity change is not measurable.
	if len(analysis.MajorVariances) != 1 {
		t.Fatalf("expected 1 major variance, got %d", len(analysis.MajorVariances))
	}
	if analysis.MajorVariances[0].Metric != domain.MetricTimeSpent {
		t.Fatalf("expected the time observation as major variance, got %s", analysis.MajorVariances[0].Metric)
	}
}

func TestGetTripAnalysisMajorVariancesKeepRepositoryOrder(t *testing.T) {
	service, _, members := newPlanRealityService()
	members.AddMember("trip-1", "u1", domain.TripRoleOwner)

	older := mustCreateDifference(t, service, "u1", CreateDifferenceRequest{
		TripID: "trip-1", Metric: "variacion_costo", PlannedValue: "100", ActualValue: "150",
	})
	newer := mustCreateDifference(t, service, "u1", CreateDifferenceRequest{
		TripID: "trip-1", Metric: "variacion_costo", PlannedValue: "100", ActualValue: "200",
	})

	analysis, err := service.GetTripAnalysis(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(analysis.MajorVariances) != 2 {
		t.Fatalf("expected 2 major variances, got %d", len(analysis.MajorVariances))
	}
	if analysis.MajorVariances[0].ID != newer.ID || analysis.MajorVariances[1].ID != older.ID {
		t.Fatal("expected newest-first repository order to be preserved")
	}
}

func TestGetTripInsights(t *testing.T) {
	service, _, members := newPlanRealityService()
	members.AddMember("trip-1", "u1", domain.TripRoleOwner)

	mustCreateDifference(t, service, "u1", CreateDifferenceRequest{
		TripID: "trip-1", Metric: "variacion_costo", PlannedValue: "100", ActualValue: "130",
	})
	mustCreateDifference(t, service, "u1", CreateDifferenceRequest{
		TripID: "trip-1", Metric: "tiempo_gastado", PlannedValue: "2", ActualValue: "4",
	})

	insights, err := service.GetTripInsights(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(insights.Insights) != 2 {
		t.Fatalf("expected cost and time insights, got %d", len(insights.Insights))
	}
	// cost avg 30 > 20 and time avg 100 > 50 trigger both patterns.
	if len(insights.Patterns) != 2 {
		t.Fatalf("expected 2 patterns, got %v", insights.Patterns)
	}
	if insights.Patterns[0] != patternBudgetExceeded || insights.Patterns[1] != patternTimeOverrun {
		t.Fatalf("unexpected patterns: %v", insights.Patterns)
	}
	if len(insights.Suggestions) != 2 {
		t.Fatalf("expected paired suggestions, got %v", insights.Suggestions)
	}
	// |30| and |100| both exceed the 25% tolerance.
	if insights.SuccessRate != 0.0 {
		t.Fatalf("expected success rate 0, got %f", insights.SuccessRate)
	}
}

func TestGetTripInsightsDefaultsOptimistic(t *testing.T) {
	service, _, members := newPlanRealityService()
	members.AddMember("trip-1", "u1", domain.TripRoleOwner)

	insights, err := service.GetTripInsights(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if insights.SuccessRate != 100.0 {
		t.Fatalf("expected optimistic 100%% success rate, got %f", insights.SuccessRate)
	}

	// A purely textual observation keeps the trip unmeasurable.
	mustCreateDifference(t, service, "u1", CreateDifferenceRequest{
		TripID: "trip-1", Metric: "ubicacion_cambiada", PlannedValue: "Centro", ActualValue: "Playa",
	})
	insights, err = service.GetTripInsights(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if insights.SuccessRate != 100.0 {
		t.Fatalf("expected 100%% with no measurable differences, got %f", insights.SuccessRate)
	}
	if len(insights.Insights) != 0 {
		t.Fatal("expected no numeric insights")
	}
}

func TestUpdateAndDeleteDifference(t *testing.T) {
	service, _, members := newPlanRealityService()
	members.AddMember("trip-1", "u1", domain.TripRoleOwner)

	diff := mustCreateDifference(t, service, "u1", CreateDifferenceRequest{
		TripID: "trip-1", Metric: "variacion_costo", PlannedValue: "100", ActualValue: "130",
	})

	actual := "140"
	updated, err := service.UpdateDifference(context.Background(), diff.ID, "u1", domain.DifferenceUpdate{ActualValue: &actual})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ActualValue != "140" {
		t.Fatalf("expected updated actual value, got %q", updated.ActualValue)
	}

	if _, err := service.UpdateDifference(context.Background(), diff.ID, "stranger", domain.DifferenceUpdate{}); !domain.IsKind(err, domain.KindForbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}

	if err := service.DeleteDifference(context.Background(), diff.ID, "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Soft-deleted differences read as not found.
	if _, err := service.GetDifference(context.Background(), diff.ID); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not-found after delete, got %v", err)
	}
}
