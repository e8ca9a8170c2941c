package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/practpec/api-voyaj-sub001/internal/domain"
	"github.com/practpec/api-voyaj-sub001/internal/store"
)

// stubUserRepository is a minimal in-test UserRepository.
type stubUserRepository struct {
	users       map[string]*domain.User
	friendships map[string]*domain.Friendship
}

func newStubUserRepository() *stubUserRepository {
	return &stubUserRepository{
		users:       make(map[string]*domain.User),
		friendships: make(map[string]*domain.Friendship),
	}
}

func (r *stubUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return store.ErrEmailTaken
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepository) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (r *stubUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (r *stubUserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepository) CreateFriendship(ctx context.Context, friendship *domain.Friendship) error {
	r.friendships[friendship.ID] = friendship
	return nil
}

func (r *stubUserRepository) FindFriendshipByID(ctx context.Context, id string) (*domain.Friendship, error) {
	friendship, ok := r.friendships[id]
	if !ok {
		return nil, store.ErrFriendshipNotFound
	}
	return friendship, nil
}

func (r *stubUserRepository) FindFriendshipBetween(ctx context.Context, userA, userB string) (*domain.Friendship, error) {
	for _, f := range r.friendships {
		if (f.RequesterID == userA && f.AddresseeID == userB) || (f.RequesterID == userB && f.AddresseeID == userA) {
			return f, nil
		}
	}
	return nil, store.ErrFriendshipNotFound
}

func (r *stubUserRepository) UpdateFriendship(ctx context.Context, friendship *domain.Friendship) error {
	r.friendships[friendship.ID] = friendship
	return nil
}

func (r *stubUserRepository) ListFriendships(ctx context.Context, userID string) ([]*domain.Friendship, error) {
	var out []*domain.Friendship
	for _, f := range r.friendships {
		if f.RequesterID == userID || f.AddresseeID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

// stubRateLimiter returns a fixed counter value.
type stubRateLimiter struct {
	count int
	err   error
}

func (l *stubRateLimiter) ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (int, int, error) {
	return l.count, 30, l.err
}

func newAuthService(repo store.UserRepository, limiter RateLimiter) *AuthService {
	return NewAuthService(repo, limiter, "test-secret", time.Hour, 10)
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		req  domain.RegisterRequest
	}{
		{name: "missing email", req: domain.RegisterRequest{Name: "Ana", Password: "secret-123"}},
		{name: "malformed email", req: domain.RegisterRequest{Email: "not-an-email", Name: "Ana", Password: "secret-123"}},
		{name: "missing name", req: domain.RegisterRequest{Email: "ana@example.com", Password: "secret-123"}},
		{name: "short password", req: domain.RegisterRequest{Email: "ana@example.com", Name: "Ana", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newAuthService(newStubUserRepository(), nil)
			if _, err := service.Register(context.Background(), tt.req); !domain.IsKind(err, domain.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newStubUserRepository()
	service := newAuthService(repo, nil)

	resp, err := service.Register(context.Background(), domain.RegisterRequest{
		Email: "Ana@Example.com", Name: "Ana", Password: "secret-123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.User.Email != "ana@example.com" {
		t.Fatalf("expected lowercased email, got %q", resp.User.Email)
	}
	if resp.User.PasswordHash == "secret-123" || resp.User.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(resp.User.PasswordHash), []byte("secret-123")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}

	// The issued token is a valid HS256 token with the user id as subject.
	token, err := jwt.Parse(resp.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("issued token does not parse: %v", err)
	}
	sub, _ := token.Claims.GetSubject()
	if sub != resp.User.ID {
		t.Fatalf("expected token subject %s, got %s", resp.User.ID, sub)
	}

	login, err := service.Login(context.Background(), domain.LoginRequest{Email: "ana@example.com", Password: "secret-123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if login.User.ID != resp.User.ID {
		t.Fatal("login must return the registered account")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newStubUserRepository()
	service := newAuthService(repo, nil)

	req := domain.RegisterRequest{Email: "ana@example.com", Name: "Ana", Password: "secret-123"}
	if _, err := service.Register(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.Register(context.Background(), req); !domain.IsKind(err, domain.KindBusinessRule) {
		t.Fatalf("expected business-rule error on duplicate email, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repo := newStubUserRepository()
	service := newAuthService(repo, nil)

	if _, err := service.Register(context.Background(), domain.RegisterRequest{
		Email: "ana@example.com", Name: "Ana", Password: "secret-123",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Unknown email and wrong password fail with the same message.
	_, unknownErr := service.Login(context.Background(), domain.LoginRequest{Email: "nobody@example.com", Password: "secret-123"})
	_, wrongErr := service.Login(context.Background(), domain.LoginRequest{Email: "ana@example.com", Password: "wrong-password"})
	for _, err := range []error{unknownErr, wrongErr} {
		if !domain.IsKind(err, domain.KindValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatal("login failures must not reveal whether the account exists")
	}
}

func TestLoginRateLimited(t *testing.T) {
	repo := newStubUserRepository()
	service := newAuthService(repo, &stubRateLimiter{count: 11})

	_, err := service.Login(context.Background(), domain.LoginRequest{Email: "ana@example.com", Password: "secret-123"})
	if !domain.IsKind(err, domain.KindBusinessRule) {
		t.Fatalf("expected business-rule error when over the limit, got %v", err)
	}
	if !strings.Contains(err.Error(), "too many login attempts") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestLoginSurvivesLimiterOutage(t *testing.T) {
	repo := newStubUserRepository()
	service := newAuthService(repo, &stubRateLimiter{err: context.DeadlineExceeded})

	if _, err := service.Register(context.Background(), domain.RegisterRequest{
		Email: "ana@example.com", Name: "Ana", Password: "secret-123",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.Login(context.Background(), domain.LoginRequest{Email: "ana@example.com", Password: "secret-123"}); err != nil {
		t.Fatalf("a limiter outage must not block logins, got %v", err)
	}
}
