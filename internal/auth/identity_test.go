package auth

import (
	"context"
	"testing"
	"time"

	"github.com/bhargav676/intern/adapters"
	"github.com/bhargav676/intern/domain/entities"
	"github.com/bhargav676/intern/internal/apperr"
)

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer ":      "",
		"":             "",
	}
	for header, want := range tests {
		if got := BearerToken(header); got != want {
			t.Errorf("BearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestChainResolve(t *testing.T) {
	ctx := context.Background()
	users := adapters.NewMemoryUserRepository()
	user := testUser(entities.RoleUser)
	if err := users.Create(ctx, user); err != nil {
		t.Fatal(err)
	}

	tokens := NewTokenIssuer("secret", "iss", time.Hour)
	token, _, err := tokens.Issue(user)
	if err != nil {
		t.Fatal(err)
	}
	chain := Chain{NewSessionResolver(tokens), NewAccessIDResolver(users)}

	tests := []struct {
		name    string
		creds   Credentials
		wantVia Via
		code    apperr.Code
	}{
		{"session", Credentials{BearerToken: token}, ViaSession, ""},
		{"access id", Credentials{AccessID: user.AccessID}, ViaAccessID, ""},
		{"bad token", Credentials{BearerToken: "garbage"}, "", apperr.CodeInvalidToken},
		{"bad token does not fall through", Credentials{BearerToken: "garbage", AccessID: user.AccessID}, "", apperr.CodeInvalidToken},
		{"unknown access id", Credentials{AccessID: "nope"}, "", apperr.CodeInvalidAccessID},
		{"nothing presented", Credentials{}, "", apperr.CodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := chain.Resolve(ctx, tt.creds)
			if tt.code != "" {
				e := apperr.As(err)
				if e.Kind != apperr.KindAuthentication || e.Code != tt.code {
					t.Fatalf("got %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if id.Via != tt.wantVia || id.UserID != user.ID.Hex() || id.Email != user.Email {
				t.Errorf("unexpected identity %+v", id)
			}
		})
	}
}

func TestIdentityAccess(t *testing.T) {
	admin := &Identity{UserID: "a", Role: entities.RoleAdmin}
	user := &Identity{UserID: "u", Role: entities.RoleUser}
	var anonymous *Identity

	if !admin.CanAccessOwner("u") || !user.CanAccessOwner("u") {
		t.Error("admin and owner should have access")
	}
	if user.CanAccessOwner("a") || anonymous.CanAccessOwner("u") || anonymous.IsAdmin() {
		t.Error("unexpected access granted")
	}
}
