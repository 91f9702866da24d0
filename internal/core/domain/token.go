package domain

import "time"

// Token kinds carried in the "typ" claim. A refresh token can never be used
// where an access token is expected and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// AccessClaims is the decoded, verified content of a token. It is a value
// copied out of the signed payload at verification time — it holds no
// reference back to a live User, so later role changes cannot alias into it.
type AccessClaims struct {
	Subject   string    `json:"subject"`
	Issuer    string    `json:"issuer"`
	ExpiresAt time.Time `json:"expires_at"`
	Roles     []string  `json:"roles,omitempty"`
	TokenType string    `json:"token_type"`
}

// HasRole is the authorization gate: it reports whether the required role is
// a member of the token's roles claim. Pure function, no I/O.
func (c *AccessClaims) HasRole(required string) bool {
	for _, r := range c.Roles {
		if r == required {
			return true
		}
	}
	return false
}

// TokenPair bundles the two credentials handed out at login: a short-lived
// access token and the longer-lived refresh token used to renew it.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
