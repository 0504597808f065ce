package users

import (
	stderrs "errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenServiceImpl signs and validates HMAC tokens. It keeps no state
// beyond configuration: tokens are valid until they expire, there is no
// revocation list and no clock skew compensation.
type TokenServiceImpl struct {
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
}

// NewTokenService builds a token service from the given config. Missing
// TTLs fall back to the defaults, and the refresh TTL is pushed past the
// access TTL when the config inverts them.
func NewTokenService(cfg Config) *TokenServiceImpl {
	accessTTL := cfg.GetAccessTokenTTL()
	if accessTTL <= 0 {
		accessTTL = defaultAccessTokenTTL
	}

	refreshTTL := cfg.GetRefreshTokenTTL()
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTokenTTL
	}
	if refreshTTL <= accessTTL {
		refreshTTL = accessTTL + defaultRefreshTokenTTL
	}

	var audience jwt.ClaimStrings
	if aud := cfg.GetAudience(); len(aud) > 0 {
		audience = jwt.ClaimStrings(aud)
	}

	return &TokenServiceImpl{
		signingKey: []byte(cfg.GetSigningKey()),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issuer:     cfg.GetIssuer(),
		audience:   audience,
		logger:     defLogger{},
	}
}

// WithLogger replaces the default stderr logger.
func (s *TokenServiceImpl) WithLogger(logger Logger) *TokenServiceImpl {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// IssuePair signs a fresh access/refresh pair for the identity. Both tokens
// share the same issue instant so their lifetimes line up.
func (s *TokenServiceImpl) IssuePair(identity Identity) (*TokenPair, error) {
	now := time.Now()

	access, err := s.SignClaims(s.newClaims(identity, TokenTypeAccess, now, s.accessTTL))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to sign access token")
	}

	refresh, err := s.SignClaims(s.newClaims(identity, TokenTypeRefresh, now, s.refreshTTL))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to sign refresh token")
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *TokenServiceImpl) newClaims(identity Identity, use TokenType, now time.Time, ttl time.Duration) *JWTClaims {
	return &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Email(),
			Issuer:    s.issuer,
			Audience:  s.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UID:      identity.ID(),
		TokenUse: string(use),
	}
}

// SignClaims signs an arbitrary claim set with the service key. Exposed so
// callers can mint tokens with custom lifetimes, e.g. short-lived tokens in
// tests.
func (s *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("cannot sign nil claims", errors.CategoryBadInput)
	}
	ensureTokenID(claims)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.signingKey)
}

// Validate parses and verifies a token string, enforcing the expected token
// type. Expired tokens map to ErrTokenExpired, everything else that fails to
// parse maps to a malformed token error.
func (s *TokenServiceImpl) Validate(tokenString string, expected TokenType) (AuthClaims, error) {
	claims := &JWTClaims{}

	opts := []jwt.ParserOption{}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if len(s.audience) > 0 {
		opts = append(opts, jwt.WithAudience(s.audience[0]))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method", errors.CategoryAuth).
				WithMetadata(map[string]any{"alg": t.Method.Alg()})
		}
		return s.signingKey, nil
	}, opts...)

	if err != nil {
		if stderrs.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(TextCodeTokenMalformed).
			WithCode(errors.CodeUnauthorized)
	}

	if !token.Valid {
		return nil, ErrTokenMalformed
	}

	if claims.Type() != expected {
		return nil, ErrTokenWrongType.Clone().WithMetadata(map[string]any{
			"expected": string(expected),
			"got":      claims.TokenUse,
		})
	}

	return claims, nil
}
