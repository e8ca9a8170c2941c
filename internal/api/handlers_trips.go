/**
 * @description
 * This file contains the HTTP handlers for trips, their members, and their
 * expenses. Access control (membership, ownership) is enforced by the trip
 * service; handlers only shuttle identifiers and payloads.
 */

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/practpec/api-voyaj-sub001/internal/app"
)

// TripHandlers holds the trip service.
type TripHandlers struct {
	trips *app.TripService
}

// NewTripHandlers creates a new instance of TripHandlers.
func NewTripHandlers(trips *app.TripService) *TripHandlers {
	return &TripHandlers{trips: trips}
}

// CreateTripHandler creates a trip owned by the caller.
func (h *TripHandlers) CreateTripHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	var req app.CreateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	trip, err := h.trips.CreateTrip(r.Context(), userID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, trip)
}

// GetTripHandler fetches one trip visible to the caller.
func (h *TripHandlers) GetTripHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	trip, err := h.trips.GetTrip(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// ListTripsHandler lists the caller's trips.
func (h *TripHandlers) ListTripsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	trips, err := h.trips.ListUserTrips(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

// UpdateTripHandler overwrites a trip's editable fields.
func (h *TripHandlers) UpdateTripHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	var req app.CreateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	trip, err := h.trips.UpdateTrip(r.Context(), chi.URLParam(r, "id"), userID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// DeleteTripHandler soft-deletes a trip.
func (h *TripHandlers) DeleteTripHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	if err := h.trips.DeleteTrip(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddMemberHandler invites a user into a trip.
func (h *TripHandlers) AddMemberHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	member, err := h.trips.AddMember(r.Context(), chi.URLParam(r, "id"), userID, req.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

// RemoveMemberHandler drops a member from a trip.
func (h *TripHandlers) RemoveMemberHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	if err := h.trips.RemoveMember(r.Context(), chi.URLParam(r, "id"), userID, chi.URLParam(r, "memberID")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMembersHandler lists a trip's members.
func (h *TripHandlers) ListMembersHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	members, err := h.trips.ListMembers(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// CreateExpenseHandler records a shared cost paid by the caller.
func (h *TripHandlers) CreateExpenseHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	var req app.CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	expense, err := h.trips.CreateExpense(r.Context(), chi.URLParam(r, "id"), userID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

// ListExpensesHandler lists a trip's active expenses.
func (h *TripHandlers) ListExpensesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	expenses, err := h.trips.ListTripExpenses(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

// GetExpenseHandler fetches one expense visible to the caller.
func (h *TripHandlers) GetExpenseHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	expense, err := h.trips.GetExpense(r.Context(), chi.URLParam(r, "expenseID"), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

// UpdateExpenseHandler overwrites an expense's editable fields.
func (h *TripHandlers) UpdateExpenseHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	var req app.CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	expense, err := h.trips.UpdateExpense(r.Context(), chi.URLParam(r, "expenseID"), userID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

// DeleteExpenseHandler soft-deletes an expense.
func (h *TripHandlers) DeleteExpenseHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	if err := h.trips.DeleteExpense(r.Context(), chi.URLParam(r, "expenseID"), userID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
