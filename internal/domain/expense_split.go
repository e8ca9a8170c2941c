/**
 * @description
 * This file defines the ExpenseSplit entity: one trip member's monetary
 * obligation for one shared expense. The entity owns field validation and the
 * pending/paid/cancelled lifecycle; persistence is the repository's job.
 *
 * @notes
 * - Amounts are currency-agnostic decimals; a trip has a single implicit
 *   currency, so no conversion happens here.
 * - paid_at is set if and only if the last transition was a mark-paid;
 *   cancelling or reverting to pending clears it.
 */

package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SplitStatus is the lifecycle state of an expense split.
type SplitStatus string

const (
	SplitStatusPending   SplitStatus = "pending"
	SplitStatusPaid      SplitStatus = "paid"
	SplitStatusCancelled SplitStatus = "cancelled"
)

const maxSplitNotesLength = 500

// ExpenseSplit is one member's obligation for one expense.
type ExpenseSplit struct {
	ID        string      `json:"id"`
	ExpenseID string      `json:"expense_id"`
	UserID    string      `json:"user_id"`
	Amount    float64     `json:"amount"`
	Status    SplitStatus `json:"status"`
	PaidAt    *time.Time  `json:"paid_at,omitempty"`
	Notes     string      `json:"notes,omitempty"`
	IsDeleted bool        `json:"is_deleted"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewExpenseSplit builds a pending split, validating its identifiers, amount,
// and notes length.
func NewExpenseSplit(expenseID, userID string, amount float64, notes string) (*ExpenseSplit, error) {
	if strings.TrimSpace(expenseID) == "" {
		return nil, NewValidationError("expense id is required")
	}
	if strings.TrimSpace(userID) == "" {
		return nil, NewValidationError("user id is required")
	}
	if amount <= 0 {
		return nil, NewValidationError("split amount must be greater than zero")
	}
	notes = strings.TrimSpace(notes)
	if len(notes) > maxSplitNotesLength {
		return nil, NewValidationError("split notes must not exceed 500 characters")
	}

	now := time.Now().UTC()
	return &ExpenseSplit{
		ID:        uuid.NewString(),
		ExpenseID: expenseID,
		UserID:    userID,
		Amount:    amount,
		Status:    SplitStatusPending,
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsActive reports whether the split has not been soft-deleted.
func (s *ExpenseSplit) IsActive() bool { return !s.IsDeleted }

func (s *ExpenseSplit) IsPaid() bool      { return s.Status == SplitStatusPaid }
func (s *ExpenseSplit) IsPending() bool   { return s.Status == SplitStatusPending }
func (s *ExpenseSplit) IsCancelled() bool { return s.Status == SplitStatusCancelled }

// MarkAsPaid transitions the split to paid and stamps paid_at. When notes is
// non-nil the stored notes are overwritten with the trimmed value.
func (s *ExpenseSplit) MarkAsPaid(notes *string) {
	now := time.Now().UTC()
	s.Status = SplitStatusPaid
	s.PaidAt = &now
	if notes != nil {
		s.Notes = strings.TrimSpace(*notes)
	}
	s.UpdatedAt = now
}

// MarkAsPending reverts the split to pending and clears paid_at.
func (s *ExpenseSplit) MarkAsPending() {
	s.Status = SplitStatusPending
	s.PaidAt = nil
	s.UpdatedAt = time.Now().UTC()
}

// Cancel transitions the split to cancelled and clears paid_at.
func (s *ExpenseSplit) Cancel() {
	s.Status = SplitStatusCancelled
	s.PaidAt = nil
	s.UpdatedAt = time.Now().UTC()
}

// UpdateAmount replaces the split amount, rejecting non-positive values.
func (s *ExpenseSplit) UpdateAmount(amount float64) error {
	if amount <= 0 {
		return NewValidationError("split amount must be greater than zero")
	}
	s.Amount = amount
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// SoftDelete flags the split as deleted without removing the row.
func (s *ExpenseSplit) SoftDelete() {
	s.IsDeleted = true
	s.UpdatedAt = time.Now().UTC()
}

// Restore clears the soft-delete flag.
func (s *ExpenseSplit) Restore() {
	s.IsDeleted = false
	s.UpdatedAt = time.Now().UTC()
}
