/**
 * @description
 * This file contains the account service: registration, login with a
 * distributed rate limit, token issuance, and profile reads. Passwords are
 * hashed with bcrypt; sessions are stateless HS256 bearer tokens.
 *
 * @notes
 * - Login failures return the same message for unknown email and wrong
 *   password so the endpoint does not leak which accounts exist.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/practpec/api-voyaj-sub001/internal/domain"
	"github.com/practpec/api-voyaj-sub001/internal/store"
)

const minPasswordLength = 8

// RateLimiter is the distributed counter consumed by login throttling.
type RateLimiter interface {
	ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (count int, retryAfterSeconds int, err error)
}

// AuthService owns registration, login, and token issuance.
type AuthService struct {
	users            store.UserRepository
	limiter          RateLimiter
	jwtSecret        []byte
	tokenTTL         time.Duration
	loginLimitPerMin int
}

// NewAuthService creates the account service. limiter may be nil, in which
// case login throttling is disabled.
func NewAuthService(users store.UserRepository, limiter RateLimiter, jwtSecret string, tokenTTL time.Duration, loginLimitPerMin int) *AuthService {
	return &AuthService{
		users:            users,
		limiter:          limiter,
		jwtSecret:        []byte(jwtSecret),
		tokenTTL:         tokenTTL,
		loginLimitPerMin: loginLimitPerMin,
	}
}

// Register creates an account and returns it with a fresh token.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.NewValidationError("a valid email is required")
	}
	if name == "" {
		return nil, domain.NewValidationError("name is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, domain.NewValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.NewUser(email, name, string(hash))
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return nil, domain.NewBusinessRuleError("email is already registered")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &domain.AuthResponse{Token: token, User: user}, nil
}

// Login verifies credentials and issues a token. Attempts are rate limited
// per email.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, domain.NewValidationError("email and password are required")
	}

	if s.limiter != nil && s.loginLimitPerMin > 0 {
		count, retryAfter, err := s.limiter.ConsumeRateLimit(ctx, "login", email, s.loginLimitPerMin, time.Minute)
		if err != nil {
			// The limiter is best-effort: a Redis outage must not block logins.
			log.Printf("level=warn component=auth_service msg=\"rate limiter unavailable\" err=%v", err)
		} else if count > s.loginLimitPerMin {
			return nil, domain.NewBusinessRuleError(fmt.Sprintf("too many login attempts, retry in %d seconds", retryAfter))
		}
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domain.NewValidationError("invalid email or password")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.NewValidationError("invalid email or password")
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &domain.AuthResponse{Token: token, User: user}, nil
}

// UpdateProfileRequest carries the editable profile fields.
type UpdateProfileRequest struct {
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// UpdateProfile overwrites the caller's editable profile fields.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.NewValidationError("name is required")
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Name = name
	user.AvatarURL = req.AvatarURL
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// GetUser fetches one account profile.
func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domain.NewNotFoundError("user not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issueToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
