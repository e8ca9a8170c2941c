/**
 * @description
 * This file contains the HTTP handlers for expense splits and trip balances.
 * Batch endpoints verify trip membership through the expense before touching
 * splits; the status-transition endpoints are owner-only, enforced through
 * the split service's access check.
 */

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/practpec/api-voyaj-sub001/internal/app"
)

// SplitHandlers holds the split and trip services.
type SplitHandlers struct {
	splits *app.ExpenseSplitService
	trips  *app.TripService
}

// NewSplitHandlers creates a new instance of SplitHandlers.
func NewSplitHandlers(splits *app.ExpenseSplitService, trips *app.TripService) *SplitHandlers {
	return &SplitHandlers{splits: splits, trips: trips}
}

type splitBatchRequest struct {
	Splits []app.SplitInput `json:"splits"`
}

// CreateSplitsHandler divides one expense among trip members.
func (h *SplitHandlers) CreateSplitsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	expenseID := chi.URLParam(r, "expenseID")
	// Membership gate: the expense lookup rejects non-members.
	if _, err := h.trips.GetExpense(r.Context(), expenseID, userID); err != nil {
		writeDomainError(w, err)
		return
	}

	var req splitBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	splits, err := h.splits.CreateExpenseSplits(r.Context(), expenseID, req.Splits)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, splits)
}

// ReplaceSplitsHandler replaces every split of the expense with a new batch.
func (h *SplitHandlers) ReplaceSplitsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	expenseID := chi.URLParam(r, "expenseID")
	if _, err := h.trips.GetExpense(r.Context(), expenseID, userID); err != nil {
		writeDomainError(w, err)
		return
	}

	var req splitBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	splits, err := h.splits.UpdateExpenseSplits(r.Context(), expenseID, req.Splits)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, splits)
}

// ListExpenseSplitsHandler lists the active splits of one expense.
func (h *SplitHandlers) ListExpenseSplitsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	expenseID := chi.URLParam(r, "expenseID")
	if _, err := h.trips.GetExpense(r.Context(), expenseID, userID); err != nil {
		writeDomainError(w, err)
		return
	}

	splits, err := h.splits.GetExpenseSplits(r.Context(), expenseID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, splits)
}

// ListMySplitsHandler lists every active split charged to the caller.
func (h *SplitHandlers) ListMySplitsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	splits, err := h.splits.GetUserSplits(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, splits)
}

// ListMyPendingSplitsHandler lists the caller's unpaid splits.
func (h *SplitHandlers) ListMyPendingSplitsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	splits, err := h.splits.GetUserPendingSplits(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, splits)
}

// authorizeSplitOwner loads the split and checks the owner-only rule. Only
// the member the split is charged to may transition it.
func (h *SplitHandlers) authorizeSplitOwner(w http.ResponseWriter, r *http.Request, splitID, userID string) bool {
	split, err := h.splits.GetSplit(r.Context(), splitID)
	if err != nil {
		writeDomainError(w, err)
		return false
	}
	if !h.splits.ValidateSplitAccess(split, userID) {
		writeError(w, http.StatusForbidden, "only the charged member can modify this split")
		return false
	}
	return true
}

// MarkPaidHandler settles one split.
func (h *SplitHandlers) MarkPaidHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	splitID := chi.URLParam(r, "id")
	if !h.authorizeSplitOwner(w, r, splitID, userID) {
		return
	}

	var req struct {
		Notes *string `json:"notes,omitempty"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	split, err := h.splits.MarkSplitAsPaid(r.Context(), splitID, req.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, split)
}

// MarkPendingHandler reverts a split to pending.
func (h *SplitHandlers) MarkPendingHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	splitID := chi.URLParam(r, "id")
	if !h.authorizeSplitOwner(w, r, splitID, userID) {
		return
	}

	split, err := h.splits.MarkSplitAsPending(r.Context(), splitID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, split)
}

// CancelSplitHandler voids one split.
func (h *SplitHandlers) CancelSplitHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	splitID := chi.URLParam(r, "id")
	if !h.authorizeSplitOwner(w, r, splitID, userID) {
		return
	}

	split, err := h.splits.CancelSplit(r.Context(), splitID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, split)
}

// TripBalancesHandler reconciles a trip's per-member balances.
func (h *SplitHandlers) TripBalancesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	tripID := chi.URLParam(r, "id")
	// Membership gate: the trip lookup rejects non-members.
	if _, err := h.trips.GetTrip(r.Context(), tripID, userID); err != nil {
		writeDomainError(w, err)
		return
	}

	summary, err := h.splits.CalculateTripBalances(r.Context(), tripID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
