/**
 * @description
 * This file contains the friendship service: sending, answering, and listing
 * friend requests. State changes are published to RabbitMQ so the
 * notification pipeline can fan them out; publishing is best-effort and never
 * fails the request.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/practpec/api-voyaj-sub001/internal/domain"
	"github.com/practpec/api-voyaj-sub001/internal/store"
	"github.com/practpec/api-voyaj-sub001/pkg/rabbitmq"
)

// FriendshipService owns friend requests and their lifecycle.
type FriendshipService struct {
	users  store.UserRepository
	events rabbitmq.Publisher
}

// NewFriendshipService creates the friendship service. events may be a
// fallback publisher when RabbitMQ is unavailable.
func NewFriendshipService(users store.UserRepository, events rabbitmq.Publisher) *FriendshipService {
	return &FriendshipService{users: users, events: events}
}

// SendRequest creates a pending friendship from the caller to addresseeID.
func (s *FriendshipService) SendRequest(ctx context.Context, requesterID, addresseeID string) (*domain.Friendship, error) {
	if requesterID == addresseeID {
		return nil, domain.NewValidationError("you cannot befriend yourself")
	}
	if _, err := s.users.FindUserByID(ctx, addresseeID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domain.NewNotFoundError("user not found")
		}
		return nil, err
	}
	existing, err := s.users.FindFriendshipBetween(ctx, requesterID, addresseeID)
	if err != nil && !errors.Is(err, store.ErrFriendshipNotFound) {
		return nil, fmt.Errorf("failed to look up existing friendship: %w", err)
	}
	if existing != nil {
		if existing.Status == domain.FriendshipStatusRejected {
			// A rejected pair may try again; reopen the old row.
			existing.Status = domain.FriendshipStatusPending
			existing.RequesterID = requesterID
			existing.AddresseeID = addresseeID
			existing.UpdatedAt = time.Now().UTC()
			if err := s.users.UpdateFriendship(ctx, existing); err != nil {
				return nil, fmt.Errorf("failed to reopen friendship: %w", err)
			}
			s.publish(ctx, existing)
			return existing, nil
		}
		return nil, domain.NewBusinessRuleError("a friendship already exists between these users")
	}

	friendship := domain.NewFriendship(requesterID, addresseeID)
	if err := s.users.CreateFriendship(ctx, friendship); err != nil {
		return nil, fmt.Errorf("failed to create friendship: %w", err)
	}
	s.publish(ctx, friendship)
	return friendship, nil
}

// Respond accepts or rejects a pending request. Only the addressee may
// answer.
func (s *FriendshipService) Respond(ctx context.Context, friendshipID, userID string, accept bool) (*domain.Friendship, error) {
	friendship, err := s.users.FindFriendshipByID(ctx, friendshipID)
	if err != nil {
		if errors.Is(err, store.ErrFriendshipNotFound) {
			return nil, domain.NewNotFoundError("friendship not found")
		}
		return nil, err
	}
	if friendship.AddresseeID != userID {
		return nil, domain.NewForbiddenError("only the addressee can answer a friend request")
	}
	if friendship.Status != domain.FriendshipStatusPending {
		return nil, domain.NewBusinessRuleError("this friend request was already answered")
	}

	if accept {
		friendship.Status = domain.FriendshipStatusAccepted
	} else {
		friendship.Status = domain.FriendshipStatusRejected
	}
	friendship.UpdatedAt = time.Now().UTC()

	if err := s.users.UpdateFriendship(ctx, friendship); err != nil {
		return nil, fmt.Errorf("failed to update friendship: %w", err)
	}
	s.publish(ctx, friendship)
	return friendship, nil
}

// ListFriendships lists every friendship involving the user.
func (s *FriendshipService) ListFriendships(ctx context.Context, userID string) ([]*domain.Friendship, error) {
	return s.users.ListFriendships(ctx, userID)
}

func (s *FriendshipService) publish(ctx context.Context, friendship *domain.Friendship) {
	if s.events == nil {
		return
	}
	event := rabbitmq.FriendshipEvent{
		FriendshipID: friendship.ID,
		RequesterID:  friendship.RequesterID,
		AddresseeID:  friendship.AddresseeID,
		Status:       string(friendship.Status),
		Timestamp:    time.Now().UTC(),
	}
	if err := s.events.PublishFriendshipEvent(ctx, event); err != nil {
		log.Printf("level=warn component=friendship_service msg=\"failed to publish friendship event\" friendship_id=%s err=%v", friendship.ID, err)
	}
}
