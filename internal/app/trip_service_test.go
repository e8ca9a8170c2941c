package app

import (
	"context"
	"testing"

	"github.com/practpec/api-voyaj-sub001/internal/domain"
	"github.com/practpec/api-voyaj-sub001/internal/store"
)

// stubTripRepository is a minimal in-test TripRepository.
type stubTripRepository struct {
	trips    map[string]*domain.Trip
	members  []*domain.TripMember
	expenses map[string]*domain.Expense
}

func newStubTripRepository() *stubTripRepository {
	return &stubTripRepository{
		trips:    make(map[string]*domain.Trip),
		expenses: make(map[string]*domain.Expense),
	}
}

func (r *stubTripRepository) CreateTrip(ctx context.Context, trip *domain.Trip) error {
	r.trips[trip.ID] = trip
	return nil
}

func (r *stubTripRepository) FindTripByID(ctx context.Context, id string) (*domain.Trip, error) {
	trip, ok := r.trips[id]
	if !ok || trip.IsDeleted {
		return nil, store.ErrTripNotFound
	}
	return trip, nil
}

func (r *stubTripRepository) FindTripsByUserID(ctx context.Context, userID string) ([]*domain.Trip, error) {
	var out []*domain.Trip
	for _, m := range r.members {
		if m.UserID == userID && !m.IsDeleted {
			if trip, ok := r.trips[m.TripID]; ok && !trip.IsDeleted {
				out = append(out, trip)
			}
		}
	}
	return out, nil
}

func (r *stubTripRepository) UpdateTrip(ctx context.Context, trip *domain.Trip) error {
	r.trips[trip.ID] = trip
	return nil
}

func (r *stubTripRepository) DeleteTrip(ctx context.Context, id string) error {
	trip, ok := r.trips[id]
	if !ok {
		return store.ErrTripNotFound
	}
	trip.IsDeleted = true
	return nil
}

func (r *stubTripRepository) AddMember(ctx context.Context, member *domain.TripMember) error {
	r.members = append(r.members, member)
	return nil
}

func (r *stubTripRepository) RemoveMember(ctx context.Context, tripID, userID string) error {
	for _, m := range r.members {
		if m.TripID == tripID && m.UserID == userID && !m.IsDeleted {
			m.IsDeleted = true
			return nil
		}
	}
	return store.ErrMemberNotFound
}

func (r *stubTripRepository) ListMembers(ctx context.Context, tripID string) ([]*domain.TripMember, error) {
	var out []*domain.TripMember
	for _, m := range r.members {
		if m.TripID == tripID && !m.IsDeleted {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubTripRepository) FindByTripAndUser(ctx context.Context, tripID, userID string) (*domain.TripMember, error) {
	for _, m := range r.members {
		if m.TripID == tripID && m.UserID == userID && !m.IsDeleted {
			return m, nil
		}
	}
	return nil, store.ErrMemberNotFound
}

func (r *stubTripRepository) CreateExpense(ctx context.Context, expense *domain.Expense) error {
	r.expenses[expense.ID] = expense
	return nil
}

func (r *stubTripRepository) FindExpenseByID(ctx context.Context, id string) (*domain.Expense, error) {
	expense, ok := r.expenses[id]
	if !ok || expense.IsDeleted {
		return nil, store.ErrExpenseNotFound
	}
	return expense, nil
}

func (r *stubTripRepository) FindExpensesByTripID(ctx context.Context, tripID string) ([]*domain.Expense, error) {
	var out []*domain.Expense
	for _, e := range r.expenses {
		if e.TripID == tripID && !e.IsDeleted {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *stubTripRepository) UpdateExpense(ctx context.Context, expense *domain.Expense) error {
	r.expenses[expense.ID] = expense
	return nil
}

func (r *stubTripRepository) DeleteExpense(ctx context.Context, id string) error {
	expense, ok := r.expenses[id]
	if !ok {
		return store.ErrExpenseNotFound
	}
	expense.IsDeleted = true
	return nil
}

func TestCreateTripEnrollsOwner(t *testing.T) {
	repo := newStubTripRepository()
	service := NewTripService(repo)

	trip, err := service.CreateTrip(context.Background(), "u1", CreateTripRequest{Title: "Madrid", Budget: 1000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	member, err := repo.FindByTripAndUser(context.Background(), trip.ID, "u1")
	if err != nil {
		t.Fatalf("owner must be enrolled as a member: %v", err)
	}
	if member.Role != domain.TripRoleOwner {
		t.Fatalf("expected owner role, got %s", member.Role)
	}

	// Members can see the trip, strangers cannot.
	if _, err := service.GetTrip(context.Background(), trip.ID, "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.GetTrip(context.Background(), trip.ID, "stranger"); !domain.IsKind(err, domain.KindForbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestTripMembershipManagement(t *testing.T) {
	repo := newStubTripRepository()
	service := NewTripService(repo)

	trip, err := service.CreateTrip(context.Background(), "u1", CreateTripRequest{Title: "Madrid"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Only the owner may invite.
	if _, err := service.AddMember(context.Background(), trip.ID, "u2", "u3"); !domain.IsKind(err, domain.KindForbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}

	member, err := service.AddMember(context.Background(), trip.ID, "u1", "u2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if member.Role != domain.TripRoleMember {
		t.Fatalf("expected member role, got %s", member.Role)
	}
	if _, err := service.AddMember(context.Background(), trip.ID, "u1", "u2"); !domain.IsKind(err, domain.KindBusinessRule) {
		t.Fatalf("expected business-rule error on duplicate member, got %v", err)
	}

	// The owner cannot remove themselves.
	if err := service.RemoveMember(context.Background(), trip.ID, "u1", "u1"); !domain.IsKind(err, domain.KindBusinessRule) {
		t.Fatalf("expected business-rule error, got %v", err)
	}
	if err := service.RemoveMember(context.Background(), trip.ID, "u1", "u2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	members, _ := service.ListMembers(context.Background(), trip.ID, "u1")
	if len(members) != 1 {
		t.Fatalf("expected only the owner left, got %d members", len(members))
	}
}

func TestExpenseLifecycle(t *testing.T) {
	repo := newStubTripRepository()
	service := NewTripService(repo)

	trip, err := service.CreateTrip(context.Background(), "u1", CreateTripRequest{Title: "Madrid"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.AddMember(context.Background(), trip.ID, "u1", "u2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := service.CreateExpense(context.Background(), trip.ID, "stranger", CreateExpenseRequest{Description: "hotel", Amount: 120}); !domain.IsKind(err, domain.KindForbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
	if _, err := service.CreateExpense(context.Background(), trip.ID, "u2", CreateExpenseRequest{Amount: -5}); !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	expense, err := service.CreateExpense(context.Background(), trip.ID, "u2", CreateExpenseRequest{Description: "hotel", Amount: 120})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Only the payer may delete the expense.
	if err := service.DeleteExpense(context.Background(), expense.ID, "u1"); !domain.IsKind(err, domain.KindForbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
	if err := service.DeleteExpense(context.Background(), expense.ID, "u2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expenses, _ := service.ListTripExpenses(context.Background(), trip.ID, "u1")
	if len(expenses) != 0 {
		t.Fatalf("expected no active expenses, got %d", len(expenses))
	}
}

func TestUpdateTripValidatesDates(t *testing.T) {
	repo := newStubTripRepository()
	service := NewTripService(repo)

	trip, err := service.CreateTrip(context.Background(), "u1", CreateTripRequest{Title: "Madrid"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start := trip.CreatedAt
	end := start.AddDate(0, 0, -1)
	_, err = service.CreateTrip(context.Background(), "u1", CreateTripRequest{Title: "Lisboa", StartDate: &start, EndDate: &end})
	if !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("expected validation error for inverted dates, got %v", err)
	}

	updated, err := service.UpdateTrip(context.Background(), trip.ID, "u1", CreateTripRequest{Title: "Madrid 2026", Budget: 2000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Title != "Madrid 2026" || updated.Budget != 2000 {
		t.Fatalf("unexpected update result: %+v", updated)
	}
}
