/**
 * @description
 * PostgreSQL implementation of the SplitRepository interface. Contains the
 * SQL for split persistence, the soft-delete semantics, and the trip-balance
 * aggregation query that joins active splits to their parent expenses.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: PostgreSQL driver and connection pooling.
 * - internal/domain: Domain models.
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

// PostgresSplitRepository is the production SplitRepository backed by pgx.
type PostgresSplitRepository struct {
	db *pgxpool.Pool
}

// NewPostgresSplitRepository creates a split repository on top of the shared
// connection pool owned by the process lifecycle.
func NewPostgresSplitRepository(db *pgxpool.Pool) *PostgresSplitRepository {
	return &PostgresSplitRepository{db: db}
}

const splitColumns = `id, expense_id, user_id, amount, status, paid_at, notes, is_deleted, created_at, updated_at`

func scanSplit(row pgx.Row) (*domain.ExpenseSplit, error) {
	var s domain.ExpenseSplit
	err := row.Scan(
		&s.ID,
		&s.ExpenseID,
		&s.UserID,
		&s.Amount,
		&s.Status,
		&s.PaidAt,
		&s.Notes,
		&s.IsDeleted,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PostgresSplitRepository) Create(ctx context.Context, split *domain.ExpenseSplit) error {
	query := `
		INSERT INTO expense_splits (id, expense_id, user_id, amount, status, paid_at, notes, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		split.ID, split.ExpenseID, split.UserID, split.Amount, split.Status,
		split.PaidAt, split.Notes, split.IsDeleted, split.CreatedAt, split.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense split: %w", err)
	}
	return nil
}

func (r *PostgresSplitRepository) FindByID(ctx context.Context, id string) (*domain.ExpenseSplit, error) {
	query := `SELECT ` + splitColumns + ` FROM expense_splits WHERE id = $1`
	split, err := scanSplit(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSplitNotFound
		}
		return nil, err
	}
	return split, nil
}

func (r *PostgresSplitRepository) FindByExpenseID(ctx context.Context, expenseID string) ([]*domain.ExpenseSplit, error) {
	query := `
		SELECT ` + splitColumns + `
		FROM expense_splits
		WHERE expense_id = $1 AND is_deleted = FALSE
		ORDER BY created_at ASC
	`
	return r.querySplits(ctx, query, expenseID)
}

func (r *PostgresSplitRepository) FindByUserID(ctx context.Context, userID string) ([]*domain.ExpenseSplit, error) {
	query := `
		SELECT ` + splitColumns + `
		FROM expense_splits
		WHERE user_id = $1 AND is_deleted = FALSE
		ORDER BY created_at DESC
	`
	return r.querySplits(ctx, query, userID)
}

func (r *PostgresSplitRepository) FindByExpenseAndUser(ctx context.Context, expenseID, userID string) (*domain.ExpenseSplit, error) {
	query := `
		SELECT ` + splitColumns + `
		FROM expense_splits
		WHERE expense_id = $1 AND user_id = $2 AND is_deleted = FALSE
	`
	split, err := scanSplit(r.db.QueryRow(ctx, query, expenseID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSplitNotFound
		}
		return nil, err
	}
	return split, nil
}

func (r *PostgresSplitRepository) Update(ctx context.Context, split *domain.ExpenseSplit) error {
	query := `
		UPDATE expense_splits
		SET amount = $2, status = $3, paid_at = $4, notes = $5, is_deleted = $6, updated_at = $7
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		split.ID, split.Amount, split.Status, split.PaidAt, split.Notes, split.IsDeleted, split.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense split: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSplitNotFound
	}
	return nil
}

// UpdateWithStatusGuard performs the conditional write that closes the
// read-modify-write race on status transitions: the row is replaced only
// while it still carries the status the caller observed.
func (r *PostgresSplitRepository) UpdateWithStatusGuard(ctx context.Context, split *domain.ExpenseSplit, expectedStatus domain.SplitStatus) error {
	query := `
		UPDATE expense_splits
		SET amount = $2, status = $3, paid_at = $4, notes = $5, updated_at = $6
		WHERE id = $1 AND status = $7 AND is_deleted = FALSE
	`
	tag, err := r.db.Exec(ctx, query,
		split.ID, split.Amount, split.Status, split.PaidAt, split.Notes, split.UpdatedAt, expectedStatus,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense split: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *PostgresSplitRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE expense_splits SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense split: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSplitNotFound
	}
	return nil
}

func (r *PostgresSplitRepository) DeleteByExpenseID(ctx context.Context, expenseID string) error {
	query := `UPDATE expense_splits SET is_deleted = TRUE, updated_at = NOW() WHERE expense_id = $1 AND is_deleted = FALSE`
	if _, err := r.db.Exec(ctx, query, expenseID); err != nil {
		return fmt.Errorf("failed to delete splits for expense: %w", err)
	}
	return nil
}

// ReplaceForExpense soft-deletes the expense's current splits and inserts the
// replacement batch inside one transaction, so a concurrent reader never
// observes the expense with zero splits.
func (r *PostgresSplitRepository) ReplaceForExpense(ctx context.Context, expenseID string, splits []*domain.ExpenseSplit) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin split replacement: %w", err)
	}
	defer tx.Rollback(ctx)

	deleteQuery := `UPDATE expense_splits SET is_deleted = TRUE, updated_at = NOW() WHERE expense_id = $1 AND is_deleted = FALSE`
	if _, err := tx.Exec(ctx, deleteQuery, expenseID); err != nil {
		return fmt.Errorf("failed to retire previous splits: %w", err)
	}

	insertQuery := `
		INSERT INTO expense_splits (id, expense_id, user_id, amount, status, paid_at, notes, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	for _, split := range splits {
		_, err := tx.Exec(ctx, insertQuery,
			split.ID, split.ExpenseID, split.UserID, split.Amount, split.Status,
			split.PaidAt, split.Notes, split.IsDeleted, split.CreatedAt, split.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert replacement split: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PostgresSplitRepository) GetUserPendingSplits(ctx context.Context, userID string) ([]*domain.ExpenseSplit, error) {
	query := `
		SELECT ` + splitColumns + `
		FROM expense_splits
		WHERE user_id = $1 AND status = 'pending' AND is_deleted = FALSE
		ORDER BY created_at DESC
	`
	return r.querySplits(ctx, query, userID)
}

// GetTripBalances produces one {user_id, amount_owed, amount_paid} row per
// member with active splits in the trip: pending amounts sum into owed, paid
// amounts into paid. Cancelled splits contribute to neither.
func (r *PostgresSplitRepository) GetTripBalances(ctx context.Context, tripID string) ([]domain.UserBalanceRow, error) {
	query := `
		SELECT es.user_id,
		       COALESCE(SUM(es.amount) FILTER (WHERE es.status = 'pending'), 0) AS amount_owed,
		       COALESCE(SUM(es.amount) FILTER (WHERE es.status = 'paid'), 0) AS amount_paid
		FROM expense_splits es
		JOIN expenses e ON e.id = es.expense_id
		WHERE e.trip_id = $1 AND es.is_deleted = FALSE AND e.is_deleted = FALSE
		GROUP BY es.user_id
		ORDER BY es.user_id
	`
	rows, err := r.db.Query(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate trip balances: %w", err)
	}
	defer rows.Close()

	var balances []domain.UserBalanceRow
	for rows.Next() {
		var row domain.UserBalanceRow
		if err := rows.Scan(&row.UserID, &row.AmountOwed, &row.AmountPaid); err != nil {
			return nil, err
		}
		balances = append(balances, row)
	}
	return balances, rows.Err()
}

func (r *PostgresSplitRepository) querySplits(ctx context.Context, query string, args ...interface{}) ([]*domain.ExpenseSplit, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense splits: %w", err)
	}
	defer rows.Close()

	var splits []*domain.ExpenseSplit
	for rows.Next() {
		split, err := scanSplit(rows)
		if err != nil {
			return nil, err
		}
		splits = append(splits, split)
	}
	return splits, rows.Err()
}
