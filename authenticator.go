package users

import (
	"context"
	"reflect"
)

// Auther authenticates credentials and exchanges refresh tokens, handing
// back access/refresh pairs.
type Auther struct {
	provider         IdentityProvider
	tokenService     TokenService
	refreshValidator TokenValidator
	logger           Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	ts := NewTokenService(opts)
	return &Auther{
		provider:         provider,
		tokenService:     ts,
		refreshValidator: TypedTokenValidator(ts, TokenTypeRefresh),
		logger:           defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService replaces the token service built from config.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
		s.refreshValidator = TypedTokenValidator(ts, TokenTypeRefresh)
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and issues a token pair.
func (s *Auther) Login(ctx context.Context, identifier, password string) (*TokenPair, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Error("Login verify identity error: %v", err)
		return nil, err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		return nil, ErrInvalidCredentials
	}

	return s.tokenService.IssuePair(identity)
}

// Refresh exchanges a valid refresh token for a fresh pair. The identity is
// re-resolved so deactivated accounts stop refreshing even though their
// tokens still verify.
func (s *Auther) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.refreshValidator.Validate(refreshToken)
	if err != nil {
		s.logger.Error("Refresh token validation failed: %v", err)
		return nil, err
	}

	identity, err := s.provider.FindIdentityByID(ctx, claims.UserID())
	if err != nil {
		s.logger.Error("Refresh identity lookup failed: %v", err)
		return nil, err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		return nil, ErrIdentityNotFound
	}

	return s.tokenService.IssuePair(identity)
}

var _ Authenticator = (*Auther)(nil)
