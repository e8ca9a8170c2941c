/**
 * @description
 * This file defines the trip aggregate and its satellites: members (who can
 * see the trip and its plan-reality records) and expenses (the parents of
 * expense splits). These are thin CRUD models; the domain algorithms live in
 * the split and plan-reality engines.
 */

package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Trip is a planned journey owned by a user.
type Trip struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Title       string     `json:"title"`
	Destination string     `json:"destination"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Budget      float64    `json:"budget"`
	IsDeleted   bool       `json:"is_deleted"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TripMemberRole distinguishes the trip owner from invited members.
type TripMemberRole string

const (
	TripRoleOwner  TripMemberRole = "owner"
	TripRoleMember TripMemberRole = "member"
)

// TripMember is one user's membership in a trip.
type TripMember struct {
	ID        string         `json:"id"`
	TripID    string         `json:"trip_id"`
	UserID    string         `json:"user_id"`
	Role      TripMemberRole `json:"role"`
	JoinedAt  time.Time      `json:"joined_at"`
	IsDeleted bool           `json:"is_deleted"`
}

// Expense is a shared cost within a trip, the parent aggregate of splits.
type Expense struct {
	ID          string    `json:"id"`
	TripID      string    `json:"trip_id"`
	PaidBy      string    `json:"paid_by"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category,omitempty"`
	IsDeleted   bool      `json:"is_deleted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTrip builds a trip owned by ownerID, validating the title.
func NewTrip(ownerID, title, destination string, budget float64) (*Trip, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, NewValidationError("owner id is required")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewValidationError("trip title is required")
	}
	if budget < 0 {
		return nil, NewValidationError("trip budget must not be negative")
	}

	now := time.Now().UTC()
	return &Trip{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       title,
		Destination: strings.TrimSpace(destination),
		Budget:      budget,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// NewTripMember builds a membership row for a trip.
func NewTripMember(tripID, userID string, role TripMemberRole) *TripMember {
	return &TripMember{
		ID:       uuid.NewString(),
		TripID:   tripID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now().UTC(),
	}
}

// NewExpense builds an expense within a trip, validating the amount.
func NewExpense(tripID, paidBy, description string, amount float64, category string) (*Expense, error) {
	if strings.TrimSpace(tripID) == "" {
		return nil, NewValidationError("trip id is required")
	}
	if strings.TrimSpace(paidBy) == "" {
		return nil, NewValidationError("payer id is required")
	}
	if amount <= 0 {
		return nil, NewValidationError("expense amount must be greater than zero")
	}

	now := time.Now().UTC()
	return &Expense{
		ID:          uuid.NewString(),
		TripID:      tripID,
		PaidBy:      paidBy,
		Description: strings.TrimSpace(description),
		Amount:      amount,
		Category:    strings.TrimSpace(category),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
