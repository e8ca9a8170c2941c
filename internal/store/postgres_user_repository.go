/**
 * @description
 * PostgreSQL implementation of the UserRepository interface: account rows and
 * friendship requests. Email lookups are case-insensitive.
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/practpec/api-voyaj-sub001/internal/domain"
)

// PostgresUserRepository is the production UserRepository.
type PostgresUserRepository struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, name, password_hash, avatar_url, is_deleted, created_at, updated_at)
		VALUES ($1, lower(btrim($2)), $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, user.AvatarURL,
		user.IsDeleted, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, email, name, password_hash, avatar_url, is_deleted, created_at, updated_at
		FROM users WHERE id = $1 AND is_deleted = FALSE
	`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *PostgresUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, name, password_hash, avatar_url, is_deleted, created_at, updated_at
		FROM users WHERE email = lower(btrim($1)) AND is_deleted = FALSE
	`
	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *PostgresUserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users SET name = $2, avatar_url = $3, updated_at = $4
		WHERE id = $1 AND is_deleted = FALSE
	`
	tag, err := r.db.Exec(ctx, query, user.ID, user.Name, user.AvatarURL, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresUserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.AvatarURL,
		&u.IsDeleted, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *PostgresUserRepository) CreateFriendship(ctx context.Context, friendship *domain.Friendship) error {
	query := `
		INSERT INTO friendships (id, requester_id, addressee_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		friendship.ID, friendship.RequesterID, friendship.AddresseeID,
		friendship.Status, friendship.CreatedAt, friendship.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert friendship: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) FindFriendshipByID(ctx context.Context, id string) (*domain.Friendship, error) {
	query := `
		SELECT id, requester_id, addressee_id, status, created_at, updated_at
		FROM friendships WHERE id = $1
	`
	return r.scanFriendship(r.db.QueryRow(ctx, query, id))
}

func (r *PostgresUserRepository) FindFriendshipBetween(ctx context.Context, userA, userB string) (*domain.Friendship, error) {
	query := `
		SELECT id, requester_id, addressee_id, status, created_at, updated_at
		FROM friendships
		WHERE (requester_id = $1 AND addressee_id = $2)
		   OR (requester_id = $2 AND addressee_id = $1)
	`
	return r.scanFriendship(r.db.QueryRow(ctx, query, userA, userB))
}

func (r *PostgresUserRepository) UpdateFriendship(ctx context.Context, friendship *domain.Friendship) error {
	query := `UPDATE friendships SET status = $2, updated_at = $3 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, friendship.ID, friendship.Status, friendship.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update friendship: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFriendshipNotFound
	}
	return nil
}

func (r *PostgresUserRepository) ListFriendships(ctx context.Context, userID string) ([]*domain.Friendship, error) {
	query := `
		SELECT id, requester_id, addressee_id, status, created_at, updated_at
		FROM friendships
		WHERE requester_id = $1 OR addressee_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query friendships: %w", err)
	}
	defer rows.Close()

	var friendships []*domain.Friendship
	for rows.Next() {
		var f domain.Friendship
		err := rows.Scan(&f.ID, &f.RequesterID, &f.AddresseeID, &f.Status, &f.CreatedAt, &f.UpdatedAt)
		if err != nil {
			return nil, err
		}
		friendships = append(friendships, &f)
	}
	return friendships, rows.Err()
}

func (r *PostgresUserRepository) scanFriendship(row pgx.Row) (*domain.Friendship, error) {
	var f domain.Friendship
	err := row.Scan(&f.ID, &f.RequesterID, &f.AddresseeID, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFriendshipNotFound
		}
		return nil, err
	}
	return &f, nil
}
