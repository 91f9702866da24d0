package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/platformlab/identity-service/internal/core/domain"
	"github.com/platformlab/identity-service/internal/core/ports"
)

const (
	defaultAccessTTL  = 10 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// tokenClaims is the signed payload. Refresh tokens carry no roles claim:
// roles are re-read from the store when the token is exchanged, which bounds
// role staleness to the access-token TTL.
type tokenClaims struct {
	Roles     []string `json:"roles,omitempty"`
	TokenType string   `json:"typ"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256-signed tokens. Issuance and
// verification are stateless and freely parallel; the secret is loaded once
// and never mutated. Refresh is the only operation that touches the store.
type TokenService struct {
	store      ports.CredentialStore
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService wires a TokenService. The secret comes from configuration,
// never a compiled-in literal. Non-positive TTLs fall back to defaults.
func NewTokenService(store ports.CredentialStore, secret, issuer string, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &TokenService{
		store:      store,
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueAccessToken mints a short-lived token for the user. The roles claim
// is a snapshot copied at issuance; the token holds no reference to the live
// user, so later role changes cannot reach into it.
func (s *TokenService) IssueAccessToken(user *domain.User) (string, error) {
	return s.sign(user.Username, domain.TokenTypeAccess, user.RoleNames(), s.accessTTL)
}

// IssueRefreshToken mints the longer-lived renewal credential. It carries
// only the subject — no roles claim to go stale.
func (s *TokenService) IssueRefreshToken(user *domain.User) (string, error) {
	return s.sign(user.Username, domain.TokenTypeRefresh, nil, s.refreshTTL)
}

// IssuePair mints the access/refresh pair handed out at login.
func (s *TokenService) IssuePair(user *domain.User) (*domain.TokenPair, error) {
	access, err := s.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.IssueRefreshToken(user)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) sign(subject, tokenType string, roles []string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := tokenClaims{
		Roles:     roles,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature and expiry and returns the decoded claims.
// Failure causes are kept distinct: domain.ErrTokenMalformed for an
// unparseable string, domain.ErrTokenExpired once the expiry has passed,
// domain.ErrTokenInvalid for a bad signature or signing method.
func (s *TokenService) Verify(tokenString string) (*domain.AccessClaims, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, domain.ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, domain.ErrTokenExpired
		default:
			return nil, domain.ErrTokenInvalid
		}
	}
	if !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	decoded := &domain.AccessClaims{
		Subject:   claims.Subject,
		Issuer:    claims.Issuer,
		Roles:     append([]string(nil), claims.Roles...),
		TokenType: claims.TokenType,
	}
	if claims.ExpiresAt != nil {
		decoded.ExpiresAt = claims.ExpiresAt.Time
	}
	return decoded, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// subject's roles are re-read from the store here rather than copied from
// the old token — this is the one deliberate asymmetry between the two
// token kinds, and it corrects role staleness on every refresh cycle.
func (s *TokenService) Refresh(ctx context.Context, refreshTokenString string) (string, error) {
	claims, err := s.Verify(refreshTokenString)
	if err != nil {
		return "", err
	}
	if claims.TokenType != domain.TokenTypeRefresh {
		return "", domain.ErrTokenInvalid
	}

	user, err := s.store.FindUserByUsername(ctx, claims.Subject)
	if err != nil {
		return "", err
	}

	return s.IssueAccessToken(user)
}
