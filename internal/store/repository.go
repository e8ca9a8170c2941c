/**
 * @description
 * This file defines the repository interfaces for the trip service. The
 * interfaces decouple the business logic from the storage backend: each has a
 * single PostgreSQL implementation for production and an in-memory
 * implementation used by tests.
 *
 * @notes
 * - Read operations exclude soft-deleted rows unless stated otherwise.
 * - Sentinel errors live here because every implementation shares them.
 */

package store

import (
	"context"
	"errors"

	"github.com/practpec/api-voyaj-sub001/internal/domain"
)

var (
	ErrSplitNotFound      = errors.New("expense split not found")
	ErrDifferenceNotFound = errors.New("plan-reality difference not found")
	ErrTripNotFound       = errors.New("trip not found")
	ErrMemberNotFound     = errors.New("trip member not found")
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrFriendshipNotFound = errors.New("friendship not found")
	ErrEmailTaken         = errors.New("email already registered")
	// ErrStatusConflict is returned by the status-guarded update when the row
	// no longer carries the status observed by the caller (lost race).
	ErrStatusConflict = errors.New("split status changed concurrently")
)

// SplitRepository persists expense splits and computes trip balances.
type SplitRepository interface {
	Create(ctx context.Context, split *domain.ExpenseSplit) error
	FindByID(ctx context.Context, id string) (*domain.ExpenseSplit, error)
	FindByExpenseID(ctx context.Context, expenseID string) ([]*domain.ExpenseSplit, error)
	FindByUserID(ctx context.Context, userID string) ([]*domain.ExpenseSplit, error)
	FindByExpenseAndUser(ctx context.Context, expenseID, userID string) (*domain.ExpenseSplit, error)
	// Update replaces every mutable column of the split row.
	Update(ctx context.Context, split *domain.ExpenseSplit) error
	// UpdateWithStatusGuard replaces the row only while it still carries
	// expectedStatus and is not soft-deleted; ErrStatusConflict otherwise.
	UpdateWithStatusGuard(ctx context.Context, split *domain.ExpenseSplit, expectedStatus domain.SplitStatus) error
	Delete(ctx context.Context, id string) error
	DeleteByExpenseID(ctx context.Context, expenseID string) error
	// ReplaceForExpense soft-deletes the expense's current splits and inserts
	// the replacement batch within one storage transaction.
	ReplaceForExpense(ctx context.Context, expenseID string, splits []*domain.ExpenseSplit) error
	GetUserPendingSplits(ctx context.Context, userID string) ([]*domain.ExpenseSplit, error)
	// GetTripBalances joins active splits to their parent expenses filtered by
	// trip id, grouping by user and summing amounts conditionally on status.
	GetTripBalances(ctx context.Context, tripID string) ([]domain.UserBalanceRow, error)
}

// DifferenceRepository persists plan-reality differences.
type DifferenceRepository interface {
	Create(ctx context.Context, diff *domain.PlanRealityDifference) error
	FindByID(ctx context.Context, id string) (*domain.PlanRealityDifference, error)
	// FindByTripID returns active differences newest first.
	FindByTripID(ctx context.Context, tripID string) ([]*domain.PlanRealityDifference, error)
	Update(ctx context.Context, diff *domain.PlanRealityDifference) error
	Delete(ctx context.Context, id string) error
}

// TripMemberFinder is the membership lookup consumed by the plan-reality
// access check.
type TripMemberFinder interface {
	FindByTripAndUser(ctx context.Context, tripID, userID string) (*domain.TripMember, error)
}

// TripRepository persists trips, their members, and their expenses.
type TripRepository interface {
	TripMemberFinder

	CreateTrip(ctx context.Context, trip *domain.Trip) error
	FindTripByID(ctx context.Context, id string) (*domain.Trip, error)
	FindTripsByUserID(ctx context.Context, userID string) ([]*domain.Trip, error)
	UpdateTrip(ctx context.Context, trip *domain.Trip) error
	DeleteTrip(ctx context.Context, id string) error

	AddMember(ctx context.Context, member *domain.TripMember) error
	RemoveMember(ctx context.Context, tripID, userID string) error
	ListMembers(ctx context.Context, tripID string) ([]*domain.TripMember, error)

	CreateExpense(ctx context.Context, expense *domain.Expense) error
	FindExpenseByID(ctx context.Context, id string) (*domain.Expense, error)
	FindExpensesByTripID(ctx context.Context, tripID string) ([]*domain.Expense, error)
	UpdateExpense(ctx context.Context, expense *domain.Expense) error
	DeleteExpense(ctx context.Context, id string) error
}

// UserRepository persists accounts and friendships.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	FindUserByID(ctx context.Context, id string) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error

	CreateFriendship(ctx context.Context, friendship *domain.Friendship) error
	FindFriendshipByID(ctx context.Context, id string) (*domain.Friendship, error)
	FindFriendshipBetween(ctx context.Context, userA, userB string) (*domain.Friendship, error)
	UpdateFriendship(ctx context.Context, friendship *domain.Friendship) error
	ListFriendships(ctx context.Context, userID string) ([]*domain.Friendship, error)
}
