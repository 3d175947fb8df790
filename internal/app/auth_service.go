package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/cts/internal/core/errs"
	"github.com/example/cts/internal/ports/primary"
	"github.com/example/cts/internal/ports/secondary"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong password.
var ErrInvalidCredentials = errs.Unauthorized("invalid credentials")

// ErrInvalidToken is returned for a token that fails to parse or verify.
var ErrInvalidToken = errs.Unauthorized("invalid token")

// Claims is the JWT payload issued at login.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AuthServiceImpl implements the AuthService interface.
type AuthServiceImpl struct {
	userRepo secondary.UserRepository
	secret   []byte
	ttl      time.Duration

	now   func() time.Time
	newID func() string
}

// NewAuthService creates a new AuthService signing HS256 tokens with secret.
func NewAuthService(userRepo secondary.UserRepository, secret string, ttl time.Duration) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo: userRepo,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Login checks credentials and issues a signed token.
func (s *AuthServiceImpl) Login(ctx context.Context, req primary.LoginRequest) (*primary.LoginResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, errs.Validation("username", "username and password are required")
	}

	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	issued := s.now()
	expires := issued.Add(s.ttl)
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(issued),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &primary.LoginResponse{
		Token:     token,
		ExpiresAt: expires.Format(time.RFC3339),
		User:      recordToUser(user),
	}, nil
}

// CreateUser registers a login account with a bcrypt password hash.
func (s *AuthServiceImpl) CreateUser(ctx context.Context, req primary.CreateUserRequest) (*primary.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, errs.Required("username")
	}
	if req.Password == "" {
		return nil, errs.Required("password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	record := &secondary.UserRecord{
		ID:           s.newID(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if req.Nickname != "" {
		nickname := req.Nickname
		record.Nickname = &nickname
	}
	if err := s.userRepo.Create(ctx, record); err != nil {
		return nil, err
	}
	return recordToUser(record), nil
}

// ValidateToken parses a token and returns the identity it carries.
func (s *AuthServiceImpl) ValidateToken(token string) (*primary.Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return &primary.Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

func recordToUser(r *secondary.UserRecord) *primary.User {
	u := &primary.User{
		ID:        r.ID,
		Username:  r.Username,
		CreatedAt: formatTime(r.CreatedAt),
	}
	if r.Nickname != nil {
		u.Nickname = *r.Nickname
	}
	return u
}

// Ensure AuthServiceImpl implements the interface
var _ primary.AuthService = (*AuthServiceImpl)(nil)
