/**
 * @description
 * PostgreSQL implementation of the TripRepository interface: trips, trip
 * membership, and the expense aggregate that parents the splits. Thin CRUD
 * with the same soft-delete conventions as the split repository.
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/practpec/api-voyaj-sub001/internal/domain"
)

// PostgresTripRepository is the production TripRepository.
type PostgresTripRepository struct {
	db *pgxpool.Pool
}

func NewPostgresTripRepository(db *pgxpool.Pool) *PostgresTripRepository {
	return &PostgresTripRepository{db: db}
}

func (r *PostgresTripRepository) CreateTrip(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (id, owner_id, title, destination, start_date, end_date, budget, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		trip.ID, trip.OwnerID, trip.Title, trip.Destination, trip.StartDate,
		trip.EndDate, trip.Budget, trip.IsDeleted, trip.CreatedAt, trip.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}
	return nil
}

func (r *PostgresTripRepository) FindTripByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `
		SELECT id, owner_id, title, destination, start_date, end_date, budget, is_deleted, created_at, updated_at
		FROM trips WHERE id = $1 AND is_deleted = FALSE
	`
	var t domain.Trip
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.OwnerID, &t.Title, &t.Destination, &t.StartDate,
		&t.EndDate, &t.Budget, &t.IsDeleted, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *PostgresTripRepository) FindTripsByUserID(ctx context.Context, userID string) ([]*domain.Trip, error) {
	query := `
		SELECT t.id, t.owner_id, t.title, t.destination, t.start_date, t.end_date, t.budget, t.is_deleted, t.created_at, t.updated_at
		FROM trips t
		JOIN trip_members tm ON tm.trip_id = t.id
		WHERE tm.user_id = $1 AND tm.is_deleted = FALSE AND t.is_deleted = FALSE
		ORDER BY t.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		var t domain.Trip
		err := rows.Scan(
			&t.ID, &t.OwnerID, &t.Title, &t.Destination, &t.StartDate,
			&t.EndDate, &t.Budget, &t.IsDeleted, &t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		trips = append(trips, &t)
	}
	return trips, rows.Err()
}

func (r *PostgresTripRepository) UpdateTrip(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET title = $2, destination = $3, start_date = $4, end_date = $5, budget = $6, updated_at = $7
		WHERE id = $1 AND is_deleted = FALSE
	`
	tag, err := r.db.Exec(ctx, query,
		trip.ID, trip.Title, trip.Destination, trip.StartDate, trip.EndDate, trip.Budget, trip.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTripNotFound
	}
	return nil
}

func (r *PostgresTripRepository) DeleteTrip(ctx context.Context, id string) error {
	query := `UPDATE trips SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTripNotFound
	}
	return nil
}

func (r *PostgresTripRepository) AddMember(ctx context.Context, member *domain.TripMember) error {
	query := `
		INSERT INTO trip_members (id, trip_id, user_id, role, joined_at, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		member.ID, member.TripID, member.UserID, member.Role, member.JoinedAt, member.IsDeleted,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip member: %w", err)
	}
	return nil
}

func (r *PostgresTripRepository) RemoveMember(ctx context.Context, tripID, userID string) error {
	query := `UPDATE trip_members SET is_deleted = TRUE WHERE trip_id = $1 AND user_id = $2 AND is_deleted = FALSE`
	tag, err := r.db.Exec(ctx, query, tripID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove trip member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *PostgresTripRepository) ListMembers(ctx context.Context, tripID string) ([]*domain.TripMember, error) {
	query := `
		SELECT id, trip_id, user_id, role, joined_at, is_deleted
		FROM trip_members
		WHERE trip_id = $1 AND is_deleted = FALSE
		ORDER BY joined_at ASC
	`
	rows, err := r.db.Query(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trip members: %w", err)
	}
	defer rows.Close()

	var members []*domain.TripMember
	for rows.Next() {
		var m domain.TripMember
		if err := rows.Scan(&m.ID, &m.TripID, &m.UserID, &m.Role, &m.JoinedAt, &m.IsDeleted); err != nil {
			return nil, err
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}

func (r *PostgresTripRepository) FindByTripAndUser(ctx context.Context, tripID, userID string) (*domain.TripMember, error) {
	query := `
		SELECT id, trip_id, user_id, role, joined_at, is_deleted
		FROM trip_members
		WHERE trip_id = $1 AND user_id = $2 AND is_deleted = FALSE
	`
	var m domain.TripMember
	err := r.db.QueryRow(ctx, query, tripID, userID).Scan(&m.ID, &m.TripID, &m.UserID, &m.Role, &m.JoinedAt, &m.IsDeleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PostgresTripRepository) CreateExpense(ctx context.Context, expense *domain.Expense) error {
	query := `
		INSERT INTO expenses (id, trip_id, paid_by, description, amount, category, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		expense.ID, expense.TripID, expense.PaidBy, expense.Description,
		expense.Amount, expense.Category, expense.IsDeleted, expense.CreatedAt, expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

func (r *PostgresTripRepository) FindExpenseByID(ctx context.Context, id string) (*domain.Expense, error) {
	query := `
		SELECT id, trip_id, paid_by, description, amount, category, is_deleted, created_at, updated_at
		FROM expenses WHERE id = $1 AND is_deleted = FALSE
	`
	var e domain.Expense
	err := r.db.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.TripID, &e.PaidBy, &e.Description, &e.Amount,
		&e.Category, &e.IsDeleted, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *PostgresTripRepository) FindExpensesByTripID(ctx context.Context, tripID string) ([]*domain.Expense, error) {
	query := `
		SELECT id, trip_id, paid_by, description, amount, category, is_deleted, created_at, updated_at
		FROM expenses
		WHERE trip_id = $1 AND is_deleted = FALSE
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*domain.Expense
	for rows.Next() {
		var e domain.Expense
		err := rows.Scan(
			&e.ID, &e.TripID, &e.PaidBy, &e.Description, &e.Amount,
			&e.Category, &e.IsDeleted, &e.CreatedAt, &e.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, &e)
	}
	return expenses, rows.Err()
}

func (r *PostgresTripRepository) UpdateExpense(ctx context.Context, expense *domain.Expense) error {
	query := `
		UPDATE expenses
		SET description = $2, amount = $3, category = $4, updated_at = $5
		WHERE id = $1 AND is_deleted = FALSE
	`
	tag, err := r.db.Exec(ctx, query,
		expense.ID, expense.Description, expense.Amount, expense.Category, expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

func (r *PostgresTripRepository) DeleteExpense(ctx context.Context, id string) error {
	query := `UPDATE expenses SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExpenseNotFound
	}
	return nil
}
