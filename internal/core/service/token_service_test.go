package service

import (
	"context"
	"testing"
	"time"

	"github.com/platformlab/identity-service/internal/core/domain"
)

const (
	testSecret = "test-secret"
	testIssuer = "https://identity.test/auth"
)

func seedUser(t *testing.T, store *stubStore, username string, roles ...string) *domain.User {
	t.Helper()
	svc := newTestIdentityService(store)

	user, err := svc.CreateUser(context.Background(), "Test "+username, username, "1234")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	for _, r := range roles {
		if _, err := store.FindRoleByName(context.Background(), r); err != nil {
			if _, err := svc.CreateRole(context.Background(), r); err != nil {
				t.Fatalf("seed role: %v", err)
			}
		}
		if err := svc.AssignRole(context.Background(), username, r); err != nil {
			t.Fatalf("seed assignment: %v", err)
		}
	}

	user, err = svc.GetUser(context.Background(), username)
	if err != nil {
		t.Fatalf("reload seeded user: %v", err)
	}
	return user
}

func TestTokenService_RoundTrip(t *testing.T) {
	store := newStubStore()
	user := seedUser(t, store, "jack", domain.RoleAdmin)
	svc := NewTokenService(store, testSecret, testIssuer, time.Minute, time.Hour)

	token, err := svc.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Subject != "jack" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.Issuer != testIssuer {
		t.Fatalf("unexpected issuer: %s", claims.Issuer)
	}
	if claims.TokenType != domain.TokenTypeAccess {
		t.Fatalf("unexpected token type: %s", claims.TokenType)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != domain.RoleAdmin {
		t.Fatalf("unexpected roles claim: %v", claims.Roles)
	}
	if remaining := time.Until(claims.ExpiresAt); remaining <= 0 || remaining > time.Minute {
		t.Fatalf("expiry outside expected window: %v", claims.ExpiresAt)
	}
}

func TestTokenService_RefreshTokenCarriesNoRoles(t *testing.T) {
	store := newStubStore()
	user := seedUser(t, store, "jack", domain.RoleAdmin)
	svc := NewTokenService(store, testSecret, testIssuer, time.Minute, time.Hour)

	token, err := svc.IssueRefreshToken(user)
	if err != nil {
		t.Fatalf("IssueRefreshToken failed: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.TokenType != domain.TokenTypeRefresh {
		t.Fatalf("unexpected token type: %s", claims.TokenType)
	}
	if len(claims.Roles) != 0 {
		t.Fatalf("refresh token must not carry roles, got %v", claims.Roles)
	}
}

func TestTokenService_Verify_Expired(t *testing.T) {
	store := newStubStore()
	user := seedUser(t, store, "jack")
	svc := NewTokenService(store, testSecret, testIssuer, time.Nanosecond, time.Hour)

	token, err := svc.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := svc.Verify(token); err != domain.ErrTokenExpired {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_Verify_WrongSecret(t *testing.T) {
	store := newStubStore()
	user := seedUser(t, store, "jack")
	issuing := NewTokenService(store, "secret-a", testIssuer, time.Minute, time.Hour)
	verifying := NewTokenService(store, "secret-b", testIssuer, time.Minute, time.Hour)

	token, err := issuing.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}

	if _, err := verifying.Verify(token); err != domain.ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenService_Verify_TamperedPayload(t *testing.T) {
	store := newStubStore()
	user := seedUser(t, store, "jack")
	svc := NewTokenService(store, testSecret, testIssuer, time.Minute, time.Hour)

	token, err := svc.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}

	// Flip one byte inside the payload segment.
	raw := []byte(token)
	mid := len(raw) / 2
	if raw[mid] == 'A' {
		raw[mid] = 'B'
	} else {
		raw[mid] = 'A'
	}

	if _, err := svc.Verify(string(raw)); err != domain.ErrTokenInvalid && err != domain.ErrTokenMalformed {
		t.Fatalf("expected token invalid/malformed, got %v", err)
	}
}

func TestTokenService_Verify_Malformed(t *testing.T) {
	svc := NewTokenService(newStubStore(), testSecret, testIssuer, time.Minute, time.Hour)

	if _, err := svc.Verify("not-a-token"); err != domain.ErrTokenMalformed {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestTokenService_Refresh_ReadsCurrentRoles(t *testing.T) {
	store := newStubStore()
	user := seedUser(t, store, "jack", domain.RoleUser)
	svc := NewTokenService(store, testSecret, testIssuer, time.Minute, time.Hour)

	refresh, err := svc.IssueRefreshToken(user)
	if err != nil {
		t.Fatalf("IssueRefreshToken failed: %v", err)
	}

	// Roles change after the refresh token was issued.
	identity := newTestIdentityService(store)
	if _, err := identity.CreateRole(context.Background(), domain.RoleAdmin); err != nil {
		t.Fatalf("CreateRole failed: %v", err)
	}
	if err := identity.AssignRole(context.Background(), "jack", domain.RoleAdmin); err != nil {
		t.Fatalf("AssignRole failed: %v", err)
	}

	access, err := svc.Refresh(context.Background(), refresh)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	claims, err := svc.Verify(access)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !claims.HasRole(domain.RoleAdmin) {
		t.Fatalf("refreshed token missing post-change role, got %v", claims.Roles)
	}
	if !claims.HasRole(domain.RoleUser) {
		t.Fatalf("refreshed token lost original role, got %v", claims.Roles)
	}
}

func TestTokenService_Refresh_RejectsAccessToken(t *testing.T) {
	store := newStubStore()
	user := seedUser(t, store, "jack", domain.RoleAdmin)
	svc := NewTokenService(store, testSecret, testIssuer, time.Minute, time.Hour)

	access, err := svc.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), access); err != domain.ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid for access token, got %v", err)
	}
}

func TestTokenService_Refresh_SubjectGone(t *testing.T) {
	store := newStubStore()
	user := seedUser(t, store, "jack")
	svc := NewTokenService(store, testSecret, testIssuer, time.Minute, time.Hour)

	refresh, err := svc.IssueRefreshToken(user)
	if err != nil {
		t.Fatalf("IssueRefreshToken failed: %v", err)
	}

	delete(store.users, "jack")

	if _, err := svc.Refresh(context.Background(), refresh); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

// End-to-end scenario: create jack, grant ROLE_ADMIN, issue a token, and
// check the authorization gate answers.
func TestTokenService_AdminScenario(t *testing.T) {
	store := newStubStore()
	identity := newTestIdentityService(store)

	if _, err := identity.CreateUser(context.Background(), "Jack", "jack", "1234"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if _, err := identity.CreateRole(context.Background(), domain.RoleAdmin); err != nil {
		t.Fatalf("CreateRole failed: %v", err)
	}
	if err := identity.AssignRole(context.Background(), "jack", domain.RoleAdmin); err != nil {
		t.Fatalf("AssignRole failed: %v", err)
	}

	user, err := identity.Authenticate(context.Background(), "jack", "1234")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	svc := NewTokenService(store, testSecret, testIssuer, time.Minute, time.Hour)
	token, err := svc.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != domain.RoleAdmin {
		t.Fatalf("unexpected roles claim: %v", claims.Roles)
	}
	if !claims.HasRole(domain.RoleAdmin) {
		t.Fatalf("expected ROLE_ADMIN to be authorized")
	}
	if claims.HasRole(domain.RoleUser) {
		t.Fatalf("ROLE_USER must not be authorized")
	}
}
