/**
 * @description
 * This file contains the trip service: trip CRUD, membership management, and
 * the expense records that parent the expense splits. Creating a trip also
 * enrolls the owner as its first member so the membership-based access checks
 * hold from the start.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/practpec/api-voyaj-sub001/internal/domain"
	"github.com/practpec/api-voyaj-sub001/internal/store"
)

// CreateTripRequest is the trip creation payload.
type CreateTripRequest struct {
	Title       string     `json:"title"`
	Destination string     `json:"destination"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Budget      float64    `json:"budget"`
}

// CreateExpenseRequest is the expense creation payload.
type CreateExpenseRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category,omitempty"`
}

// TripService owns trips, their members, and their expenses.
type TripService struct {
	trips store.TripRepository
}

// NewTripService creates the trip service.
func NewTripService(trips store.TripRepository) *TripService {
	return &TripService{trips: trips}
}

// CreateTrip creates a trip and enrolls the owner as its first member.
func (s *TripService) CreateTrip(ctx context.Context, ownerID string, req CreateTripRequest) (*domain.Trip, error) {
	trip, err := domain.NewTrip(ownerID, req.Title, req.Destination, req.Budget)
	if err != nil {
		return nil, err
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, domain.NewValidationError("end date must not precede start date")
	}
	trip.StartDate = req.StartDate
	trip.EndDate = req.EndDate

	if err := s.trips.CreateTrip(ctx, trip); err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}
	owner := domain.NewTripMember(trip.ID, ownerID, domain.TripRoleOwner)
	if err := s.trips.AddMember(ctx, owner); err != nil {
		return nil, fmt.Errorf("failed to enroll trip owner: %w", err)
	}
	return trip, nil
}

// GetTrip fetches one trip visible to the caller.
func (s *TripService) GetTrip(ctx context.Context, tripID, userID string) (*domain.Trip, error) {
	trip, err := s.trips.FindTripByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, store.ErrTripNotFound) {
			return nil, domain.NewNotFoundError("trip not found")
		}
		return nil, err
	}
	if !s.isMember(ctx, tripID, userID) {
		return nil, domain.NewForbiddenError("you are not a member of this trip")
	}
	return trip, nil
}

// ListUserTrips lists the trips the user belongs to.
func (s *TripService) ListUserTrips(ctx context.Context, userID string) ([]*domain.Trip, error) {
	return s.trips.FindTripsByUserID(ctx, userID)
}

// UpdateTrip overwrites the trip's editable fields. Owner only.
func (s *TripService) UpdateTrip(ctx context.Context, tripID, userID string, req CreateTripRequest) (*domain.Trip, error) {
	trip, err := s.ownedTrip(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}

	updated, err := domain.NewTrip(trip.OwnerID, req.Title, req.Destination, req.Budget)
	if err != nil {
		return nil, err
	}
	trip.Title = updated.Title
	trip.Destination = updated.Destination
	trip.Budget = updated.Budget
	trip.StartDate = req.StartDate
	trip.EndDate = req.EndDate
	trip.UpdatedAt = time.Now().UTC()

	if err := s.trips.UpdateTrip(ctx, trip); err != nil {
		return nil, fmt.Errorf("failed to update trip: %w", err)
	}
	return trip, nil
}

// DeleteTrip soft-deletes the trip. Owner only.
func (s *TripService) DeleteTrip(ctx context.Context, tripID, userID string) error {
	if _, err := s.ownedTrip(ctx, tripID, userID); err != nil {
		return err
	}
	if err := s.trips.DeleteTrip(ctx, tripID); err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	return nil
}

// AddMember invites a user into the trip. Owner only.
func (s *TripService) AddMember(ctx context.Context, tripID, userID, newMemberID string) (*domain.TripMember, error) {
	if _, err := s.ownedTrip(ctx, tripID, userID); err != nil {
		return nil, err
	}
	if existing, err := s.trips.FindByTripAndUser(ctx, tripID, newMemberID); err == nil && existing != nil {
		return nil, domain.NewBusinessRuleError("user is already a member of this trip")
	}

	member := domain.NewTripMember(tripID, newMemberID, domain.TripRoleMember)
	if err := s.trips.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add trip member: %w", err)
	}
	return member, nil
}

// RemoveMember drops a member from the trip. Owner only; the owner cannot
// remove themselves.
func (s *TripService) RemoveMember(ctx context.Context, tripID, userID, memberID string) error {
	if _, err := s.ownedTrip(ctx, tripID, userID); err != nil {
		return err
	}
	if memberID == userID {
		return domain.NewBusinessRuleError("the trip owner cannot be removed")
	}
	if err := s.trips.RemoveMember(ctx, tripID, memberID); err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			return domain.NewNotFoundError("trip member not found")
		}
		return fmt.Errorf("failed to remove trip member: %w", err)
	}
	return nil
}

// ListMembers lists the trip's members. Any member may look.
func (s *TripService) ListMembers(ctx context.Context, tripID, userID string) ([]*domain.TripMember, error) {
	if !s.isMember(ctx, tripID, userID) {
		return nil, domain.NewForbiddenError("you are not a member of this trip")
	}
	return s.trips.ListMembers(ctx, tripID)
}

// CreateExpense records a shared cost paid by the caller.
func (s *TripService) CreateExpense(ctx context.Context, tripID, userID string, req CreateExpenseRequest) (*domain.Expense, error) {
	if !s.isMember(ctx, tripID, userID) {
		return nil, domain.NewForbiddenError("you are not a member of this trip")
	}
	expense, err := domain.NewExpense(tripID, userID, req.Description, req.Amount, req.Category)
	if err != nil {
		return nil, err
	}
	if err := s.trips.CreateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	return expense, nil
}

// GetExpense fetches one expense visible to the caller.
func (s *TripService) GetExpense(ctx context.Context, expenseID, userID string) (*domain.Expense, error) {
	expense, err := s.trips.FindExpenseByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, store.ErrExpenseNotFound) {
			return nil, domain.NewNotFoundError("expense not found")
		}
		return nil, err
	}
	if !s.isMember(ctx, expense.TripID, userID) {
		return nil, domain.NewForbiddenError("you are not a member of this trip")
	}
	return expense, nil
}

// UpdateExpense overwrites an expense's editable fields. Only the payer may
// edit it.
func (s *TripService) UpdateExpense(ctx context.Context, expenseID, userID string, req CreateExpenseRequest) (*domain.Expense, error) {
	expense, err := s.GetExpense(ctx, expenseID, userID)
	if err != nil {
		return nil, err
	}
	if expense.PaidBy != userID {
		return nil, domain.NewForbiddenError("only the payer can edit an expense")
	}

	updated, err := domain.NewExpense(expense.TripID, expense.PaidBy, req.Description, req.Amount, req.Category)
	if err != nil {
		return nil, err
	}
	expense.Description = updated.Description
	expense.Amount = updated.Amount
	expense.Category = updated.Category
	expense.UpdatedAt = time.Now().UTC()

	if err := s.trips.UpdateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	return expense, nil
}

// ListTripExpenses lists the trip's active expenses.
func (s *TripService) ListTripExpenses(ctx context.Context, tripID, userID string) ([]*domain.Expense, error) {
	if !s.isMember(ctx, tripID, userID) {
		return nil, domain.NewForbiddenError("you are not a member of this trip")
	}
	return s.trips.FindExpensesByTripID(ctx, tripID)
}

// DeleteExpense soft-deletes an expense. Only the payer may delete it.
func (s *TripService) DeleteExpense(ctx context.Context, expenseID, userID string) error {
	expense, err := s.GetExpense(ctx, expenseID, userID)
	if err != nil {
		return err
	}
	if expense.PaidBy != userID {
		return domain.NewForbiddenError("only the payer can delete an expense")
	}
	if err := s.trips.DeleteExpense(ctx, expenseID); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}

func (s *TripService) isMember(ctx context.Context, tripID, userID string) bool {
	member, err := s.trips.FindByTripAndUser(ctx, tripID, userID)
	if err != nil {
		return false
	}
	return member != nil
}

func (s *TripService) ownedTrip(ctx context.Context, tripID, userID string) (*domain.Trip, error) {
	trip, err := s.trips.FindTripByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, store.ErrTripNotFound) {
			return nil, domain.NewNotFoundError("trip not found")
		}
		return nil, err
	}
	if trip.OwnerID != userID {
		return nil, domain.NewForbiddenError("only the trip owner can do this")
	}
	return trip, nil
}
