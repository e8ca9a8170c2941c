package app

import (
	"context"
	"errors"
	"testing"

	"github.com/practpec/api-voyaj-sub001/internal/domain"
	"github.com/practpec/api-voyaj-sub001/pkg/rabbitmq"
)

// stubPublisher records published friendship events.
type stubPublisher struct {
	events []rabbitmq.FriendshipEvent
}

func (p *stubPublisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	return nil
}

func (p *stubPublisher) PublishFriendshipEvent(ctx context.Context, event rabbitmq.FriendshipEvent) error {
	p.events = append(p.events, event)
	return nil
}

func (p *stubPublisher) Close() {}

func newFriendshipFixture(t *testing.T) (*FriendshipService, *stubUserRepository, *stubPublisher) {
	t.Helper()
	repo := newStubUserRepository()
	publisher := &stubPublisher{}
	for _, u := range []struct{ id, email string }{
		{"u1", "u1@example.com"},
		{"u2", "u2@example.com"},
	} {
		user := domain.NewUser(u.email, u.id, "hash")
		user.ID = u.id
		repo.users[u.id] = user
	}
	return NewFriendshipService(repo, publisher), repo, publisher
}

func TestSendFriendRequest(t *testing.T) {
	service, _, publisher := newFriendshipFixture(t)

	friendship, err := service.SendRequest(context.Background(), "u1", "u2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if friendship.Status != domain.FriendshipStatusPending {
		t.Fatalf("expected pending request, got %s", friendship.Status)
	}
	if len(publisher.events) != 1 || publisher.events[0].Status != "pending" {
		t.Fatalf("expected one pending event, got %+v", publisher.events)
	}

	if _, err := service.SendRequest(context.Background(), "u1", "u1"); !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("expected validation error for self-request, got %v", err)
	}
	if _, err := service.SendRequest(context.Background(), "u1", "missing"); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	// A second request between the same pair is rejected in either direction.
	if _, err := service.SendRequest(context.Background(), "u2", "u1"); !domain.IsKind(err, domain.KindBusinessRule) {
		t.Fatalf("expected business-rule error on duplicate, got %v", err)
	}
}

func TestRespondToFriendRequest(t *testing.T) {
	service, _, publisher := newFriendshipFixture(t)

	friendship, err := service.SendRequest(context.Background(), "u1", "u2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Only the addressee may answer.
	if _, err := service.Respond(context.Background(), friendship.ID, "u1", true); !domain.IsKind(err, domain.KindForbidden) {
		t.Fatalf("expected forbidden error for requester answer, got %v", err)
	}

	accepted, err := service.Respond(context.Background(), friendship.ID, "u2", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accepted.Status != domain.FriendshipStatusAccepted {
		t.Fatalf("expected accepted status, got %s", accepted.Status)
	}
	if len(publisher.events) != 2 || publisher.events[1].Status != "accepted" {
		t.Fatalf("expected an accepted event, got %+v", publisher.events)
	}

	// Answering twice violates the pending precondition.
	if _, err := service.Respond(context.Background(), friendship.ID, "u2", false); !domain.IsKind(err, domain.KindBusinessRule) {
		t.Fatalf("expected business-rule error on second answer, got %v", err)
	}
}

// failingFriendshipLookupRepository fails every pair lookup with a storage
// error, as a flaky database would.
type failingFriendshipLookupRepository struct {
	*stubUserRepository
}

func (r *failingFriendshipLookupRepository) FindFriendshipBetween(ctx context.Context, userA, userB string) (*domain.Friendship, error) {
	return nil, context.DeadlineExceeded
}

func TestSendRequestPropagatesLookupFailure(t *testing.T) {
	base := newStubUserRepository()
	for _, u := range []struct{ id, email string }{
		{"u1", "u1@example.com"},
		{"u2", "u2@example.com"},
	} {
		user := domain.NewUser(u.email, u.id, "hash")
		user.ID = u.id
		base.users[u.id] = user
	}
	service := NewFriendshipService(&failingFriendshipLookupRepository{stubUserRepository: base}, &stubPublisher{})

	_, err := service.SendRequest(context.Background(), "u1", "u2")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected the storage error to propagate, got %v", err)
	}
	// A failed duplicate check must not fall through to creating a row.
	if len(base.friendships) != 0 {
		t.Fatalf("expected no friendship rows, got %d", len(base.friendships))
	}
}

func TestRejectedPairMayRetry(t *testing.T) {
	service, _, _ := newFriendshipFixture(t)

	friendship, err := service.SendRequest(context.Background(), "u1", "u2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.Respond(context.Background(), friendship.ID, "u2", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reopened, err := service.SendRequest(context.Background(), "u2", "u1")
	if err != nil {
		t.Fatalf("a rejected pair must be able to retry, got %v", err)
	}
	if reopened.Status != domain.FriendshipStatusPending {
		t.Fatalf("expected pending status, got %s", reopened.Status)
	}
	if reopened.RequesterID != "u2" || reopened.AddresseeID != "u1" {
		t.Fatal("the reopened request must carry the new direction")
	}
}
