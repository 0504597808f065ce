package users

import "time"

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
	defaultSigningMethod   = "HS256"
	defaultContextKey      = "user"
	defaultAuthScheme      = "Bearer"
	defaultTokenLookup     = "header:Authorization"
)

// SimpleConfig is a plain-struct Config implementation with defaults for
// every knob except the signing key.
type SimpleConfig struct {
	SigningKey      string
	SigningMethod   string
	ContextKey      string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	TokenLookup     string
	AuthScheme      string
	Issuer          string
	Audience        []string
	PasswordPolicy  *PasswordPolicy
}

var _ Config = (*SimpleConfig)(nil)

func (c *SimpleConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c *SimpleConfig) GetSigningMethod() string {
	if c.SigningMethod == "" {
		return defaultSigningMethod
	}
	return c.SigningMethod
}

func (c *SimpleConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return defaultContextKey
	}
	return c.ContextKey
}

func (c *SimpleConfig) GetAccessTokenTTL() time.Duration {
	if c.AccessTokenTTL <= 0 {
		return defaultAccessTokenTTL
	}
	return c.AccessTokenTTL
}

func (c *SimpleConfig) GetRefreshTokenTTL() time.Duration {
	if c.RefreshTokenTTL <= 0 {
		return defaultRefreshTokenTTL
	}
	return c.RefreshTokenTTL
}

func (c *SimpleConfig) GetTokenLookup() string {
	if c.TokenLookup == "" {
		return defaultTokenLookup
	}
	return c.TokenLookup
}

func (c *SimpleConfig) GetAuthScheme() string {
	if c.AuthScheme == "" {
		return defaultAuthScheme
	}
	return c.AuthScheme
}

func (c *SimpleConfig) GetIssuer() string {
	return c.Issuer
}

func (c *SimpleConfig) GetAudience() []string {
	return c.Audience
}

func (c *SimpleConfig) GetPasswordPolicy() PasswordPolicy {
	if c.PasswordPolicy == nil {
		return DefaultPasswordPolicy()
	}
	return *c.PasswordPolicy
}
