package users

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-users/middleware/jwtware"
)

// ValidationListener aliases the jwtware listener so consumers can use users helpers directly.
type ValidationListener = jwtware.ValidationListener

// AccessTokenValidator adapts the token service into the gate's validator,
// pinning the expected type so refresh tokens are rejected at the door.
func AccessTokenValidator(ts TokenService) jwtware.TokenValidator {
	return accessTokenValidator{inner: TypedTokenValidator(ts, TokenTypeAccess)}
}

type accessTokenValidator struct {
	inner TokenValidator
}

func (v accessTokenValidator) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := v.inner.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// StoreIdentityResolver loads the full user record behind validated claims.
// Missing or deactivated users reject the request even with a live token.
func StoreIdentityResolver(repo Users) func(ctx context.Context, claims jwtware.AuthClaims) (any, error) {
	return func(ctx context.Context, claims jwtware.AuthClaims) (any, error) {
		user, err := repo.GetByID(ctx, claims.UserID())
		if err != nil {
			if errors.IsNotFound(err) {
				return nil, ErrIdentityNotFound
			}
			return nil, err
		}

		if user == nil {
			return nil, ErrIdentityNotFound
		}

		if !user.IsActive {
			return nil, ErrIdentityInactive
		}

		return user, nil
	}
}

// ContextEnricherAdapter stores the claims and the resolved user record in
// the standard context for downstream handler usage.
func ContextEnricherAdapter(c context.Context, claims jwtware.AuthClaims, identity any) context.Context {
	if authClaims, ok := claims.(AuthClaims); ok {
		c = WithClaimsContext(c, authClaims)
	}

	if user, ok := identity.(*User); ok && user != nil {
		c = WithContext(c, user)
	}

	return c
}

// Protected builds the auth gate middleware from the config, token service,
// and user repository. Requests that pass carry the user and claims in both
// Locals and the standard context.
func Protected(cfg Config, ts TokenService, repo Users, errorHandler router.ErrorHandler) router.MiddlewareFunc {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{
			JWTAlg: cfg.GetSigningMethod(),
			Key:    []byte(cfg.GetSigningKey()),
		},
		ContextKey:       cfg.GetContextKey(),
		TokenLookup:      cfg.GetTokenLookup(),
		AuthScheme:       cfg.GetAuthScheme(),
		TokenValidator:   AccessTokenValidator(ts),
		IdentityResolver: StoreIdentityResolver(repo),
		ContextEnricher:  ContextEnricherAdapter,
		ErrorHandler:     errorHandler,
	})
}

// RegisterValidationListeners appends listeners to a jwtware.Config in a safe, reusable way.
func RegisterValidationListeners(cfg *jwtware.Config, listeners ...ValidationListener) {
	if cfg == nil || len(listeners) == 0 {
		return
	}
	cfg.ValidationListeners = append(cfg.ValidationListeners, listeners...)
}
