/**
 * @description
 * This file contains the expense-split engine: batch creation and replacement
 * of splits, status transitions, and the trip-wide balance reconciliation.
 * The service enforces the cross-entity invariants (batch uniqueness, positive
 * totals) and orchestrates the repository; per-field validation lives on the
 * entity.
 *
 * @notes
 * - CreateExpenseSplits persists one row at a time: validation runs over the
 *   whole batch before the first write, but a storage failure mid-batch
 *   leaves the earlier rows persisted. Batch replacement goes through the
 *   repository's transactional ReplaceForExpense instead.
 * - Status transitions persist through a status-guarded conditional update,
 *   so two concurrent transitions on the same split cannot both win.
 */

package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/practpec/api-voyaj-sub001/internal/domain"
	"github.com/practpec/api-voyaj-sub001/internal/store"
)

// SplitInput is one entry of a split creation or replacement batch.
type SplitInput struct {
	UserID string  `json:"user_id"`
	Amount float64 `json:"amount"`
	Notes  string  `json:"notes,omitempty"`
}

// ExpenseSplitService owns the business rules of the expense-split engine.
type ExpenseSplitService struct {
	splits store.SplitRepository
}

// NewExpenseSplitService creates the split service on top of a repository.
func NewExpenseSplitService(splits store.SplitRepository) *ExpenseSplitService {
	return &ExpenseSplitService{splits: splits}
}

// buildSplits validates a batch and constructs every entity before anything
// is written: empty batches, non-positive totals, duplicated users, and
// per-entry field errors all fail here.
func buildSplits(expenseID string, inputs []SplitInput) ([]*domain.ExpenseSplit, error) {
	if len(inputs) == 0 {
		return nil, domain.NewValidationError("at least one split is required")
	}

	var total float64
	for _, input := range inputs {
		total += input.Amount
	}
	if total <= 0 {
		return nil, domain.NewValidationError("sum of split amounts must be greater than zero")
	}

	seen := make(map[string]struct{}, len(inputs))
	splits := make([]*domain.ExpenseSplit, 0, len(inputs))
	for _, input := range inputs {
		if _, dup := seen[input.UserID]; dup {
			return nil, domain.NewValidationError(fmt.Sprintf("user %s appears more than once in the batch", input.UserID))
		}
		seen[input.UserID] = struct{}{}

		split, err := domain.NewExpenseSplit(expenseID, input.UserID, input.Amount, input.Notes)
		if err != nil {
			return nil, err
		}
		splits = append(splits, split)
	}
	return splits, nil
}

// CreateExpenseSplits divides one expense among trip members, returning the
// created splits in input order.
func (s *ExpenseSplitService) CreateExpenseSplits(ctx context.Context, expenseID string, inputs []SplitInput) ([]*domain.ExpenseSplit, error) {
	splits, err := buildSplits(expenseID, inputs)
	if err != nil {
		return nil, err
	}

	for _, split := range splits {
		if err := s.splits.Create(ctx, split); err != nil {
			return nil, fmt.Errorf("failed to persist split for user %s: %w", split.UserID, err)
		}
	}
	return splits, nil
}

// UpdateExpenseSplits replaces every split of the expense with the given
// batch. This is destructive-then-recreate, not a merge: splits absent from
// the new batch are soft-deleted even when they were already paid.
func (s *ExpenseSplitService) UpdateExpenseSplits(ctx context.Context, expenseID string, inputs []SplitInput) ([]*domain.ExpenseSplit, error) {
	splits, err := buildSplits(expenseID, inputs)
	if err != nil {
		return nil, err
	}

	if err := s.splits.ReplaceForExpense(ctx, expenseID, splits); err != nil {
		return nil, fmt.Errorf("failed to replace splits for expense %s: %w", expenseID, err)
	}
	return splits, nil
}

// GetSplit fetches one split by id.
func (s *ExpenseSplitService) GetSplit(ctx context.Context, id string) (*domain.ExpenseSplit, error) {
	split, err := s.splits.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrSplitNotFound) {
			return nil, domain.NewNotFoundError("expense split not found")
		}
		return nil, err
	}
	return split, nil
}

// GetExpenseSplits lists the active splits of one expense.
func (s *ExpenseSplitService) GetExpenseSplits(ctx context.Context, expenseID string) ([]*domain.ExpenseSplit, error) {
	return s.splits.FindByExpenseID(ctx, expenseID)
}

// GetUserSplits lists every active split charged to a user.
func (s *ExpenseSplitService) GetUserSplits(ctx context.Context, userID string) ([]*domain.ExpenseSplit, error) {
	return s.splits.FindByUserID(ctx, userID)
}

// GetUserPendingSplits lists a user's unpaid splits.
func (s *ExpenseSplitService) GetUserPendingSplits(ctx context.Context, userID string) ([]*domain.ExpenseSplit, error) {
	return s.splits.GetUserPendingSplits(ctx, userID)
}

// MarkSplitAsPaid settles one split. Notes, when provided, replace the stored
// notes.
func (s *ExpenseSplitService) MarkSplitAsPaid(ctx context.Context, id string, notes *string) (*domain.ExpenseSplit, error) {
	split, err := s.GetSplit(ctx, id)
	if err != nil {
		return nil, err
	}
	if split.IsDeleted {
		return nil, domain.NewBusinessRuleError("cannot modify a deleted split")
	}
	if split.IsPaid() {
		return nil, domain.NewBusinessRuleError("split is already paid")
	}

	observedStatus := split.Status
	split.MarkAsPaid(notes)
	if err := s.persistTransition(ctx, split, observedStatus); err != nil {
		return nil, err
	}
	return split, nil
}

// MarkSplitAsPending reverts a split to pending, clearing its payment stamp.
func (s *ExpenseSplitService) MarkSplitAsPending(ctx context.Context, id string) (*domain.ExpenseSplit, error) {
	split, err := s.GetSplit(ctx, id)
	if err != nil {
		return nil, err
	}
	if split.IsDeleted {
		return nil, domain.NewBusinessRuleError("cannot modify a deleted split")
	}
	if split.IsPending() {
		return nil, domain.NewBusinessRuleError("split is already pending")
	}

	observedStatus := split.Status
	split.MarkAsPending()
	if err := s.persistTransition(ctx, split, observedStatus); err != nil {
		return nil, err
	}
	return split, nil
}

// CancelSplit voids one split.
func (s *ExpenseSplitService) CancelSplit(ctx context.Context, id string) (*domain.ExpenseSplit, error) {
	split, err := s.GetSplit(ctx, id)
	if err != nil {
		return nil, err
	}
	if split.IsDeleted {
		return nil, domain.NewBusinessRuleError("cannot modify a deleted split")
	}
	if split.IsCancelled() {
		return nil, domain.NewBusinessRuleError("split is already cancelled")
	}

	observedStatus := split.Status
	split.Cancel()
	if err := s.persistTransition(ctx, split, observedStatus); err != nil {
		return nil, err
	}
	return split, nil
}

func (s *ExpenseSplitService) persistTransition(ctx context.Context, split *domain.ExpenseSplit, observedStatus domain.SplitStatus) error {
	err := s.splits.UpdateWithStatusGuard(ctx, split, observedStatus)
	if err != nil {
		if errors.Is(err, store.ErrStatusConflict) {
			return domain.NewBusinessRuleError("split was modified concurrently, retry the operation")
		}
		return err
	}
	return nil
}

// CalculateTripBalances derives each member's net position for a trip from
// the repository's raw owed/paid aggregates. Recomputed on every call; no
// cache.
func (s *ExpenseSplitService) CalculateTripBalances(ctx context.Context, tripID string) (*domain.TripBalanceSummary, error) {
	rows, err := s.splits.GetTripBalances(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trip balances: %w", err)
	}

	summary := &domain.TripBalanceSummary{
		TripID:   tripID,
		Balances: make([]domain.UserBalance, 0, len(rows)),
	}
	for _, row := range rows {
		net := row.AmountPaid - row.AmountOwed
		balance := domain.UserBalance{
			UserID:     row.UserID,
			AmountOwed: row.AmountOwed,
			AmountPaid: row.AmountPaid,
			NetBalance: net,
		}
		switch {
		case net > 0:
			balance.Status = domain.BalanceStatusCreditor
			summary.TotalCredits += net
		case net < 0:
			balance.Status = domain.BalanceStatusDebtor
			summary.TotalDebts += -net
		default:
			balance.Status = domain.BalanceStatusSettled
		}
		summary.Balances = append(summary.Balances, balance)
	}
	summary.IsBalanced = summary.TotalDebts == summary.TotalCredits
	return summary, nil
}

// ValidateSplitAccess reports whether userID may act on the split. Access is
// owner-only: only the member the split is charged to passes, regardless of
// trip membership.
func (s *ExpenseSplitService) ValidateSplitAccess(split *domain.ExpenseSplit, userID string) bool {
	return split != nil && split.UserID == userID
}
