package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bhargav676/intern/domain/entities"
	"github.com/bhargav676/intern/domain/repositories"
	"github.com/bhargav676/intern/internal/apperr"
)

// Via records which credential established an Identity
type Via string

const (
	ViaSession  Via = "session"
	ViaAccessID Via = "access_id"
)

// Identity is the authenticated caller of an operation
type Identity struct {
	UserID   string
	Username string
	Email    string
	Role     entities.Role
	Via      Via
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == entities.RoleAdmin
}

// CanAccessOwner reports whether the caller may read data of ownerID
func (i *Identity) CanAccessOwner(ownerID string) bool {
	return i.IsAdmin() || (i != nil && i.UserID == ownerID)
}

// Credentials are whatever the caller presented. At most one is expected.
type Credentials struct {
	BearerToken string
	AccessID    string
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// Resolver turns presented credentials into an Identity
type Resolver interface {
	Resolve(ctx context.Context, creds Credentials) (*Identity, error)
}

// errNotPresented tells Chain that a resolver had nothing to work with
var errNotPresented = errors.New("credential not presented")

// SessionResolver accepts bearer tokens issued by TokenIssuer
type SessionResolver struct {
	tokens *TokenIssuer
}

func NewSessionResolver(tokens *TokenIssuer) *SessionResolver {
	return &SessionResolver{tokens: tokens}
}

func (r *SessionResolver) Resolve(ctx context.Context, creds Credentials) (*Identity, error) {
	if creds.BearerToken == "" {
		return nil, errNotPresented
	}
	claims, err := r.tokens.Validate(creds.BearerToken)
	if err != nil {
		return nil, &apperr.Error{
			Kind:    apperr.KindAuthentication,
			Code:    apperr.CodeInvalidToken,
			Message: "Invalid or expired token",
			Err:     err,
		}
	}
	return &Identity{
		UserID:   claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
		Role:     claims.Role,
		Via:      ViaSession,
	}, nil
}

// AccessIDResolver accepts a user's long-lived access id
type AccessIDResolver struct {
	users repositories.UserRepository
}

func NewAccessIDResolver(users repositories.UserRepository) *AccessIDResolver {
	return &AccessIDResolver{users: users}
}

func (r *AccessIDResolver) Resolve(ctx context.Context, creds Credentials) (*Identity, error) {
	if creds.AccessID == "" {
		return nil, errNotPresented
	}
	user, err := r.users.GetByAccessID(ctx, creds.AccessID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.Unauthenticated(apperr.CodeInvalidAccessID, "Invalid access ID")
	}
	if err != nil {
		return nil, apperr.Internal("failed to look up access id", err)
	}
	return &Identity{
		UserID:   user.ID.Hex(),
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		Via:      ViaAccessID,
	}, nil
}

// Chain tries each resolver in order and returns the first one that accepts a
// presented credential. A presented but invalid credential stops the chain.
type Chain []Resolver

func (c Chain) Resolve(ctx context.Context, creds Credentials) (*Identity, error) {
	for _, r := range c {
		id, err := r.Resolve(ctx, creds)
		if errors.Is(err, errNotPresented) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve credentials: %w", err)
		}
		return id, nil
	}
	return nil, apperr.Unauthenticated(apperr.CodeUnauthorized, "Authentication required")
}
