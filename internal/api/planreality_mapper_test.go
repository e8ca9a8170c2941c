package api

import (
	"testing"

	"github.com/practpec/api-voyaj-sub001/internal/domain"
)

func TestImpactLevel(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name     string
		metric   domain.DifferenceMetric
		variance *float64
		want     string
	}{
		{name: "cost high", metric: domain.MetricCostVariation, variance: f(55), want: "alto"},
		{name: "cost medium", metric: domain.MetricCostVariation, variance: f(25), want: "medio"},
		{name: "cost low", metric: domain.MetricCostVariation, variance: f(10), want: "bajo"},
		{name: "cost negative uses absolute value", metric: domain.MetricBudgetDeviation, variance: f(-60), want: "alto"},
		{name: "time high", metric: domain.MetricTimeSpent, variance: f(120), want: "alto"},
		{name: "time medium", metric: domain.MetricDurationChange, variance: f(60), want: "medio"},
		{name: "time low", metric: domain.MetricTimeSpent, variance: f(40), want: "bajo"},
		{name: "other high", metric: domain.MetricParticipantCount, variance: f(30), want: "alto"},
		{name: "other medium", metric: domain.MetricParticipantCount, variance: f(15), want: "medio"},
		{name: "other low", metric: domain.MetricOther, variance: f(10), want: "bajo"},
		{name: "non numeric is neutral", metric: domain.MetricActivityChanged, variance: nil, want: "neutral"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := impactLevel(tt.metric, tt.variance); got != tt.want {
				t.Fatalf("impactLevel(%s) = %q, want %q", tt.metric, got, tt.want)
			}
		})
	}
}

func TestToDifferenceResponse(t *testing.T) {
	diff := domain.NewPlanRealityDifference("trip-1", domain.MetricCostVariation, "100", "155", "", nil, nil)

	resp := toDifferenceResponse(diff)
	if resp.Metric != "variacion_costo" {
		t.Fatalf("unexpected metric: %q", resp.Metric)
	}
	if resp.MetricLabel != "Variación de costo" {
		t.Fatalf("unexpected label: %q", resp.MetricLabel)
	}
	if resp.VariancePercentage == nil || *resp.VariancePercentage != 55.0 {
		t.Fatalf("expected variance 55, got %v", resp.VariancePercentage)
	}
	if resp.ImpactLevel != "alto" {
		t.Fatalf("expected alto impact, got %q", resp.ImpactLevel)
	}
	if !resp.DifferenceDetected {
		t.Fatal("expected a detected difference")
	}
}

func TestToDifferenceResponseTextual(t *testing.T) {
	diff := domain.NewPlanRealityDifference("trip-1", domain.MetricActivityChanged, "Museo", "Museo", "", nil, nil)

	resp := toDifferenceResponse(diff)
	if resp.VariancePercentage != nil {
		t.Fatalf("expected nil variance, got %v", *resp.VariancePercentage)
	}
	if resp.ImpactLevel != "neutral" {
		t.Fatalf("expected neutral impact, got %q", resp.ImpactLevel)
	}
	if resp.DifferenceDetected {
		t.Fatal("identical values must not flag a difference")
	}
}
