/**
 * @description
 * In-memory implementations of the split and plan-reality repositories plus a
 * trip-member finder. They mirror the PostgreSQL semantics (soft-delete
 * visibility, newest-first listings, the status-guarded update, and the
 * balance aggregation) and back the service-level tests.
 *
 * @notes
 * - The split repository needs an expense→trip mapping to aggregate balances;
 *   tests register it with RegisterExpense.
 */

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/practpec/api-voyaj-sub001/internal/domain"
)

// MemorySplitRepository is an in-memory SplitRepository.
type MemorySplitRepository struct {
	mu           sync.Mutex
	splits       []*domain.ExpenseSplit
	expenseTrips map[string]string
}

func NewMemorySplitRepository() *MemorySplitRepository {
	return &MemorySplitRepository{expenseTrips: make(map[string]string)}
}

// RegisterExpense records which trip an expense belongs to, standing in for
// the expenses table side of the balance join.
func (r *MemorySplitRepository) RegisterExpense(expenseID, tripID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expenseTrips[expenseID] = tripID
}

func copySplit(s *domain.ExpenseSplit) *domain.ExpenseSplit {
	clone := *s
	if s.PaidAt != nil {
		paidAt := *s.PaidAt
		clone.PaidAt = &paidAt
	}
	return &clone
}

func (r *MemorySplitRepository) Create(ctx context.Context, split *domain.ExpenseSplit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.splits = append(r.splits, copySplit(split))
	return nil
}

func (r *MemorySplitRepository) FindByID(ctx context.Context, id string) (*domain.ExpenseSplit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.splits {
		if s.ID == id {
			return copySplit(s), nil
		}
	}
	return nil, ErrSplitNotFound
}

func (r *MemorySplitRepository) FindByExpenseID(ctx context.Context, expenseID string) ([]*domain.ExpenseSplit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ExpenseSplit
	for _, s := range r.splits {
		if s.ExpenseID == expenseID && !s.IsDeleted {
			out = append(out, copySplit(s))
		}
	}
	return out, nil
}

func (r *MemorySplitRepository) FindByUserID(ctx context.Context, userID string) ([]*domain.ExpenseSplit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ExpenseSplit
	for i := len(r.splits) - 1; i >= 0; i-- {
		if s := r.splits[i]; s.UserID == userID && !s.IsDeleted {
			out = append(out, copySplit(s))
		}
	}
	return out, nil
}

func (r *MemorySplitRepository) FindByExpenseAndUser(ctx context.Context, expenseID, userID string) (*domain.ExpenseSplit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.splits {
		if s.ExpenseID == expenseID && s.UserID == userID && !s.IsDeleted {
			return copySplit(s), nil
		}
	}
	return nil, ErrSplitNotFound
}

func (r *MemorySplitRepository) Update(ctx context.Context, split *domain.ExpenseSplit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.splits {
		if s.ID == split.ID {
			r.splits[i] = copySplit(split)
			return nil
		}
	}
	return ErrSplitNotFound
}

func (r *MemorySplitRepository) UpdateWithStatusGuard(ctx context.Context, split *domain.ExpenseSplit, expectedStatus domain.SplitStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.splits {
		if s.ID == split.ID {
			if s.Status != expectedStatus || s.IsDeleted {
				return ErrStatusConflict
			}
			r.splits[i] = copySplit(split)
			return nil
		}
	}
	return ErrStatusConflict
}

func (r *MemorySplitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.splits {
		if s.ID == id && !s.IsDeleted {
			s.IsDeleted = true
			return nil
		}
	}
	return ErrSplitNotFound
}

func (r *MemorySplitRepository) DeleteByExpenseID(ctx context.Context, expenseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.splits {
		if s.ExpenseID == expenseID {
			s.IsDeleted = true
		}
	}
	return nil
}

func (r *MemorySplitRepository) ReplaceForExpense(ctx context.Context, expenseID string, splits []*domain.ExpenseSplit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.splits {
		if s.ExpenseID == expenseID {
			s.IsDeleted = true
		}
	}
	for _, s := range splits {
		r.splits = append(r.splits, copySplit(s))
	}
	return nil
}

func (r *MemorySplitRepository) GetUserPendingSplits(ctx context.Context, userID string) ([]*domain.ExpenseSplit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ExpenseSplit
	for i := len(r.splits) - 1; i >= 0; i-- {
		s := r.splits[i]
		if s.UserID == userID && s.Status == domain.SplitStatusPending && !s.IsDeleted {
			out = append(out, copySplit(s))
		}
	}
	return out, nil
}

func (r *MemorySplitRepository) GetTripBalances(ctx context.Context, tripID string) ([]domain.UserBalanceRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	totals := make(map[string]*domain.UserBalanceRow)
	for _, s := range r.splits {
		if s.IsDeleted || r.expenseTrips[s.ExpenseID] != tripID {
			continue
		}
		row, ok := totals[s.UserID]
		if !ok {
			row = &domain.UserBalanceRow{UserID: s.UserID}
			totals[s.UserID] = row
		}
		switch s.Status {
		case domain.SplitStatusPending:
			row.AmountOwed += s.Amount
		case domain.SplitStatusPaid:
			row.AmountPaid += s.Amount
		}
	}

	out := make([]domain.UserBalanceRow, 0, len(totals))
	for _, row := range totals {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// MemoryDifferenceRepository is an in-memory DifferenceRepository.
type MemoryDifferenceRepository struct {
	mu    sync.Mutex
	diffs []*domain.PlanRealityDifference
}

func NewMemoryDifferenceRepository() *MemoryDifferenceRepository {
	return &MemoryDifferenceRepository{}
}

func copyDifference(d *domain.PlanRealityDifference) *domain.PlanRealityDifference {
	clone := *d
	return &clone
}

func (r *MemoryDifferenceRepository) Create(ctx context.Context, diff *domain.PlanRealityDifference) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diffs = append(r.diffs, copyDifference(diff))
	return nil
}

func (r *MemoryDifferenceRepository) FindByID(ctx context.Context, id string) (*domain.PlanRealityDifference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.diffs {
		if d.ID == id && !d.IsDeleted {
			return copyDifference(d), nil
		}
	}
	return nil, ErrDifferenceNotFound
}

// FindByTripID returns active differences newest first (reverse insertion
// order, matching the SQL created_at DESC ordering).
func (r *MemoryDifferenceRepository) FindByTripID(ctx context.Context, tripID string) ([]*domain.PlanRealityDifference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.PlanRealityDifference
	for i := len(r.diffs) - 1; i >= 0; i-- {
		if d := r.diffs[i]; d.TripID == tripID && !d.IsDeleted {
			out = append(out, copyDifference(d))
		}
	}
	return out, nil
}

func (r *MemoryDifferenceRepository) Update(ctx context.Context, diff *domain.PlanRealityDifference) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, d := range r.diffs {
		if d.ID == diff.ID {
			r.diffs[i] = copyDifference(diff)
			return nil
		}
	}
	return ErrDifferenceNotFound
}

func (r *MemoryDifferenceRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.diffs {
		if d.ID == id && !d.IsDeleted {
			d.IsDeleted = true
			return nil
		}
	}
	return ErrDifferenceNotFound
}

// MemoryTripMemberFinder is an in-memory TripMemberFinder keyed by
// (trip, user) pairs.
type MemoryTripMemberFinder struct {
	mu      sync.Mutex
	members map[string]*domain.TripMember
	// Err, when set, is returned by every lookup; used to exercise the
	// fail-closed access check.
	Err error
}

func NewMemoryTripMemberFinder() *MemoryTripMemberFinder {
	return &MemoryTripMemberFinder{members: make(map[string]*domain.TripMember)}
}

func (f *MemoryTripMemberFinder) AddMember(tripID, userID string, role domain.TripMemberRole) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[tripID+"/"+userID] = domain.NewTripMember(tripID, userID, role)
}

func (f *MemoryTripMemberFinder) FindByTripAndUser(ctx context.Context, tripID, userID string) (*domain.TripMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	member, ok := f.members[tripID+"/"+userID]
	if !ok {
		return nil, ErrMemberNotFound
	}
	clone := *member
	return &clone, nil
}
