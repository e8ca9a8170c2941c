/**
 * @description
 * This file defines the user account and friendship models. Both are thin
 * CRUD aggregates; password hashes never leave the store/app layers thanks to
 * the `json:"-"` tag.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	IsDeleted    bool      `json:"is_deleted"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser builds an account with a fresh id and timestamps. Credential
// validation is the account service's responsibility.
func NewUser(email, name, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// FriendshipStatus is the lifecycle state of a friendship request.
type FriendshipStatus string

const (
	FriendshipStatusPending  FriendshipStatus = "pending"
	FriendshipStatusAccepted FriendshipStatus = "accepted"
	FriendshipStatusRejected FriendshipStatus = "rejected"
)

// Friendship links a requesting user to an addressee.
type Friendship struct {
	ID          string           `json:"id"`
	RequesterID string           `json:"requester_id"`
	AddresseeID string           `json:"addressee_id"`
	Status      FriendshipStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NewFriendship builds a pending request from requester to addressee.
func NewFriendship(requesterID, addresseeID string) *Friendship {
	now := time.Now().UTC()
	return &Friendship{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      FriendshipStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest is the credentials payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the issued bearer token and its subject.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
