/**
 * @description
 * This file contains the HTTP handlers for plan-reality observations and the
 * derived analytics: per-trip difference CRUD, the trip analysis, and the
 * insight report. Trip-membership checks live in the plan-reality service.
 */

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/practpec/api-voyaj-sub001/internal/app"
	"github.com/practpec/api-voyaj-sub001/internal/domain"
)

// PlanRealityHandlers holds the plan-reality service.
type PlanRealityHandlers struct {
	planReality *app.PlanRealityService
}

// NewPlanRealityHandlers creates a new instance of PlanRealityHandlers.
func NewPlanRealityHandlers(planReality *app.PlanRealityService) *PlanRealityHandlers {
	return &PlanRealityHandlers{planReality: planReality}
}

// CreateDifferenceHandler records one plan-vs-actual observation.
func (h *PlanRealityHandlers) CreateDifferenceHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	var req app.CreateDifferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.TripID = chi.URLParam(r, "id")

	diff, err := h.planReality.CreateDifference(r.Context(), userID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDifferenceResponse(diff))
}

// ListDifferencesHandler lists a trip's observations, newest first.
func (h *PlanRealityHandlers) ListDifferencesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	diffs, err := h.planReality.ListTripDifferences(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDifferenceResponses(diffs))
}

type updateDifferenceRequest struct {
	Metric       *string `json:"metric,omitempty"`
	PlannedValue *string `json:"planned_value,omitempty"`
	ActualValue  *string `json:"actual_value,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

// UpdateDifferenceHandler overwrites the provided fields of one observation.
func (h *PlanRealityHandlers) UpdateDifferenceHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	var req updateDifferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := domain.DifferenceUpdate{
		PlannedValue: req.PlannedValue,
		ActualValue:  req.ActualValue,
		Notes:        req.Notes,
	}
	if req.Metric != nil {
		metric := domain.DifferenceMetric(*req.Metric)
		update.Metric = &metric
	}

	diff, err := h.planReality.UpdateDifference(r.Context(), chi.URLParam(r, "diffID"), userID, update)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDifferenceResponse(diff))
}

// DeleteDifferenceHandler soft-deletes one observation.
func (h *PlanRealityHandlers) DeleteDifferenceHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	if err := h.planReality.DeleteDifference(r.Context(), chi.URLParam(r, "diffID"), userID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TripAnalysisHandler returns the aggregate plan-vs-reality analysis.
func (h *PlanRealityHandlers) TripAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	tripID := chi.URLParam(r, "id")
	if !h.planReality.ValidateTripAccess(r.Context(), tripID, userID) {
		writeError(w, http.StatusForbidden, "you are not a member of this trip")
		return
	}

	analysis, err := h.planReality.GetTripAnalysis(r.Context(), tripID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// TripInsightsHandler returns the pattern-oriented insight report.
func (h *PlanRealityHandlers) TripInsightsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	tripID := chi.URLParam(r, "id")
	if !h.planReality.ValidateTripAccess(r.Context(), tripID, userID) {
		writeError(w, http.StatusForbidden, "you are not a member of this trip")
		return
	}

	insights, err := h.planReality.GetTripInsights(r.Context(), tripID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, insights)
}
