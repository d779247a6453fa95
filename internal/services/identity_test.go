package services

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	redisclient "github.com/esaha/esaha-backend/internal/clients/redis"
	"github.com/esaha/esaha-backend/internal/clients/supabase"
)

func signedLocalToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("testsecret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestResolve_SupabaseIdentity(t *testing.T) {
	sb := &fakeSupabaseClient{user: &supabase.User{ID: "sb-user-1", Email: "user@example.com"}}
	resolver := NewTokenResolver(testLogger(), sb, nil, TokenResolverConfig{})

	identity, err := resolver.Resolve(context.Background(), "some-supabase-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.ID != "sb-user-1" || identity.Email != "user@example.com" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if identity.AuthType != AuthTypeSupabase {
		t.Fatalf("expected supabase auth type, got %q", identity.AuthType)
	}
}

func TestResolve_LocalFallback(t *testing.T) {
	sb := &fakeSupabaseClient{err: supabase.ErrInvalidToken}
	resolver := NewTokenResolver(testLogger(), sb, nil, TokenResolverConfig{AllowUnverifiedLocal: true})

	token := signedLocalToken(t, jwt.MapClaims{
		"type":  "access",
		"sub":   "42",
		"email": "local@example.com",
	})
	identity, err := resolver.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.ID != "42" || identity.Email != "local@example.com" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if identity.AuthType != AuthTypeLocal {
		t.Fatalf("expected local auth type, got %q", identity.AuthType)
	}
}

func TestResolve_LocalFallbackDisabled(t *testing.T) {
	sb := &fakeSupabaseClient{err: supabase.ErrInvalidToken}
	resolver := NewTokenResolver(testLogger(), sb, nil, TokenResolverConfig{})

	token := signedLocalToken(t, jwt.MapClaims{"type": "access", "sub": "42"})
	if _, err := resolver.Resolve(context.Background(), token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestResolve_RejectsNonAccessToken(t *testing.T) {
	resolver := NewTokenResolver(testLogger(), nil, nil, TokenResolverConfig{AllowUnverifiedLocal: true})

	token := signedLocalToken(t, jwt.MapClaims{"type": "refresh", "sub": "42"})
	if _, err := resolver.Resolve(context.Background(), token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for refresh token, got %v", err)
	}
}

func TestResolve_RejectsMissingSubject(t *testing.T) {
	resolver := NewTokenResolver(testLogger(), nil, nil, TokenResolverConfig{AllowUnverifiedLocal: true})

	token := signedLocalToken(t, jwt.MapClaims{"type": "access"})
	if _, err := resolver.Resolve(context.Background(), token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for subject-less token, got %v", err)
	}
}

func TestResolve_EmptyToken(t *testing.T) {
	resolver := NewTokenResolver(testLogger(), nil, nil, TokenResolverConfig{AllowUnverifiedLocal: true})
	if _, err := resolver.Resolve(context.Background(), "   "); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for empty token, got %v", err)
	}
}

func TestResolve_UsesCachedIdentity(t *testing.T) {
	cache := &fakeIdentityCache{entries: map[string]*redisclient.Identity{
		"cached-token": {ID: "cached-user", AuthType: AuthTypeSupabase},
	}}
	sb := &fakeSupabaseClient{err: supabase.ErrInvalidToken}
	resolver := NewTokenResolver(testLogger(), sb, cache, TokenResolverConfig{})

	identity, err := resolver.Resolve(context.Background(), "cached-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.ID != "cached-user" {
		t.Fatalf("expected cached identity, got %+v", identity)
	}
}

type fakeIdentityCache struct {
	entries map[string]*redisclient.Identity
}

func (f *fakeIdentityCache) Get(ctx context.Context, token string) (*redisclient.Identity, error) {
	return f.entries[token], nil
}

func (f *fakeIdentityCache) Set(ctx context.Context, token string, identity *redisclient.Identity) error {
	if f.entries == nil {
		f.entries = map[string]*redisclient.Identity{}
	}
	f.entries[token] = identity
	return nil
}

func (f *fakeIdentityCache) Close() error { return nil }
