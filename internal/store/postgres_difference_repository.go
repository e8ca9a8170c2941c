/**
 * @description
 * PostgreSQL implementation of the DifferenceRepository interface. Lookups
 * hide soft-deleted rows, and the per-trip listing returns newest first,
 * the ordering the analysis engine preserves for major variances.
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

// PostgresDifferenceRepository is the production DifferenceRepository.
type PostgresDifferenceRepository struct {
	db *pgxpool.Pool
}

func NewPostgresDifferenceRepository(db *pgxpool.Pool) *PostgresDifferenceRepository {
	return &PostgresDifferenceRepository{db: db}
}

const differenceColumns = `id, trip_id, day_id, activity_id, metric, planned_value, actual_value, notes, is_deleted, created_at, updated_at`

func scanDifference(row pgx.Row) (*domain.PlanRealityDifference, error) {
	var d domain.PlanRealityDifference
	err := row.Scan(
		&d.ID,
		&d.TripID,
		&d.DayID,
		&d.ActivityID,
		&d.Metric,
		&d.PlannedValue,
		&d.ActualValue,
		&d.Notes,
		&d.IsDeleted,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PostgresDifferenceRepository) Create(ctx context.Context, diff *domain.PlanRealityDifference) error {
	query := `
		INSERT INTO plan_reality_differences (id, trip_id, day_id, activity_id, metric, planned_value, actual_value, notes, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		diff.ID, diff.TripID, diff.DayID, diff.ActivityID, diff.Metric,
		diff.PlannedValue, diff.ActualValue, diff.Notes, diff.IsDeleted,
		diff.CreatedAt, diff.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert plan-reality difference: %w", err)
	}
	return nil
}

func (r *PostgresDifferenceRepository) FindByID(ctx context.Context, id string) (*domain.PlanRealityDifference, error) {
	query := `SELECT ` + differenceColumns + ` FROM plan_reality_differences WHERE id = $1 AND is_deleted = FALSE`
	diff, err := scanDifference(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDifferenceNotFound
		}
		return nil, err
	}
	return diff, nil
}

func (r *PostgresDifferenceRepository) FindByTripID(ctx context.Context, tripID string) ([]*domain.PlanRealityDifference, error) {
	query := `
		SELECT ` + differenceColumns + `
		FROM plan_reality_differences
		WHERE trip_id = $1 AND is_deleted = FALSE
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to query plan-reality differences: %w", err)
	}
	defer rows.Close()

	var diffs []*domain.PlanRealityDifference
	for rows.Next() {
		diff, err := scanDifference(rows)
		if err != nil {
			return nil, err
		}
		diffs = append(diffs, diff)
	}
	return diffs, rows.Err()
}

func (r *PostgresDifferenceRepository) Update(ctx context.Context, diff *domain.PlanRealityDifference) error {
	query := `
		UPDATE plan_reality_differences
		SET metric = $2, planned_value = $3, actual_value = $4, notes = $5, is_deleted = $6, updated_at = $7
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		diff.ID, diff.Metric, diff.PlannedValue, diff.ActualValue, diff.Notes, diff.IsDeleted, diff.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update plan-reality difference: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDifferenceNotFound
	}
	return nil
}

func (r *PostgresDifferenceRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE plan_reality_differences SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete plan-reality difference: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDifferenceNotFound
	}
	return nil
}
