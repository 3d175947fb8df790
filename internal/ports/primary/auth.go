package primary

import "context"

// AuthService defines the primary port for login and account operations.
type AuthService interface {
	// Login checks credentials and issues a signed token.
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)

	// CreateUser registers a login account.
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)

	// ValidateToken parses a token and returns the identity it carries.
	ValidateToken(token string) (*Identity, error)
}

// LoginRequest contains login credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse contains the issued token.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
	User      *User  `json:"user"`
}

// CreateUserRequest contains parameters for creating a user.
type CreateUserRequest struct {
	Username string
	Password string
	Nickname string
}

// User represents a login account at the port boundary.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Nickname  string `json:"nickname,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// Identity is the authenticated caller carried by a token.
type Identity struct {
	UserID   string
	Username string
}
