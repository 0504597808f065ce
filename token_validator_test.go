package users_test

import (
	"testing"

	users "github.com/goliatone/go-users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedTokenValidatorPinsType(t *testing.T) {
	ts := users.NewTokenService(testConfig())

	pair, err := ts.IssuePair(testUserIdentity())
	require.NoError(t, err)

	access := users.TypedTokenValidator(ts, users.TokenTypeAccess)
	refresh := users.TypedTokenValidator(ts, users.TokenTypeRefresh)

	claims, err := access.Validate(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, users.TokenTypeAccess, claims.Type())

	_, err = access.Validate(pair.Refresh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected token type")

	claims, err = refresh.Validate(pair.Refresh)
	require.NoError(t, err)
	assert.Equal(t, users.TokenTypeRefresh, claims.Type())
}

func TestTokenValidatorFuncNil(t *testing.T) {
	var fn users.TokenValidatorFunc

	_, err := fn.Validate("whatever")
	require.Error(t, err)
	assert.True(t, users.IsMalformedError(err))
}

func TestMultiTokenValidatorFallsThroughMalformed(t *testing.T) {
	ts := users.NewTokenService(testConfig())

	pair, err := ts.IssuePair(testUserIdentity())
	require.NoError(t, err)

	rejectAll := users.TokenValidatorFunc(func(string) (users.AuthClaims, error) {
		return nil, users.ErrTokenMalformed
	})

	// a malformed verdict from the first validator is "try the next one"
	multi := users.NewMultiTokenValidator(rejectAll, users.TypedTokenValidator(ts, users.TokenTypeAccess))
	claims, err := multi.Validate(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, users.TokenTypeAccess, claims.Type())
}

func TestMultiTokenValidatorStopsOnNonMalformed(t *testing.T) {
	var reached bool

	expired := users.TokenValidatorFunc(func(string) (users.AuthClaims, error) {
		return nil, users.ErrTokenExpired
	})
	sentinel := users.TokenValidatorFunc(func(string) (users.AuthClaims, error) {
		reached = true
		return &users.JWTClaims{}, nil
	})

	multi := users.NewMultiTokenValidator(expired, sentinel)
	_, err := multi.Validate("some-token")
	require.Error(t, err)
	assert.True(t, users.IsTokenExpiredError(err))
	assert.False(t, reached)
}

func TestMultiTokenValidatorAllMalformed(t *testing.T) {
	reject := users.TokenValidatorFunc(func(string) (users.AuthClaims, error) {
		return nil, users.ErrTokenMalformed
	})

	multi := users.NewMultiTokenValidator(reject, reject, nil)
	_, err := multi.Validate("some-token")
	require.Error(t, err)
	assert.True(t, users.IsMalformedError(err))
}

func TestMultiTokenValidatorEmpty(t *testing.T) {
	multi := users.NewMultiTokenValidator()
	_, err := multi.Validate("some-token")
	require.Error(t, err)
	assert.True(t, users.IsMalformedError(err))
}
