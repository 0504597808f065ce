package users

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType discriminates the two halves of a token pair. The gate only
// accepts access tokens; refresh tokens are exchanged, never presented.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// AuthClaims is the read side of a validated token.
type AuthClaims interface {
	Subject() string
	UserID() string
	Type() TokenType
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete claim set we sign. Subject carries the user
// email, UID the user id, and TokenUse the token type.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID      string `json:"uid,omitempty"`
	TokenUse string `json:"use,omitempty"`
}

func (c *JWTClaims) Subject() string { return c.RegisteredClaims.Subject }
func (c *JWTClaims) UserID() string  { return c.UID }

func (c *JWTClaims) Type() TokenType { return TokenType(c.TokenUse) }

func (c *JWTClaims) Expires() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.IssuedAt.Time
}

// ensureTokenID gives every signed token a unique jti so a pair issued in
// the same second still differs between access and refresh.
func ensureTokenID(c *JWTClaims) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
}
