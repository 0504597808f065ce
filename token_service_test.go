package users_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	users "github.com/goliatone/go-users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testIdentity struct {
	id    string
	email string
	name  string
	staff bool
}

func (t testIdentity) ID() string    { return t.id }
func (t testIdentity) Email() string { return t.email }
func (t testIdentity) Name() string  { return t.name }
func (t testIdentity) Staff() bool   { return t.staff }

func testConfig() *users.SimpleConfig {
	return &users.SimpleConfig{
		SigningKey:      "test-signing-key",
		Issuer:          "go-users-test",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}
}

func testUserIdentity() testIdentity {
	return testIdentity{
		id:    "b30e1cd4-3b0f-4f9e-8b2e-000000000001",
		email: "user@example.com",
		name:  "Test User",
	}
}

func TestIssuePair(t *testing.T) {
	ts := users.NewTokenService(testConfig())

	pair, err := ts.IssuePair(testUserIdentity())
	require.NoError(t, err)
	require.NotNil(t, pair)

	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)
	assert.NotEqual(t, pair.Access, pair.Refresh)

	access, err := ts.Validate(pair.Access, users.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", access.Subject())
	assert.Equal(t, "b30e1cd4-3b0f-4f9e-8b2e-000000000001", access.UserID())
	assert.Equal(t, users.TokenTypeAccess, access.Type())

	refresh, err := ts.Validate(pair.Refresh, users.TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, users.TokenTypeRefresh, refresh.Type())

	// refresh outlives access
	assert.True(t, refresh.Expires().After(access.Expires()))
}

func TestValidateRejectsWrongTokenType(t *testing.T) {
	ts := users.NewTokenService(testConfig())

	pair, err := ts.IssuePair(testUserIdentity())
	require.NoError(t, err)

	_, err = ts.Validate(pair.Refresh, users.TokenTypeAccess)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected token type")

	_, err = ts.Validate(pair.Access, users.TokenTypeRefresh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected token type")
}

func TestValidateExpiredToken(t *testing.T) {
	ts := users.NewTokenService(testConfig())

	now := time.Now()
	claims := &users.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user@example.com",
			Issuer:    "go-users-test",
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-1 * time.Hour)),
		},
		UID:      "b30e1cd4-3b0f-4f9e-8b2e-000000000001",
		TokenUse: string(users.TokenTypeAccess),
	}

	token, err := ts.SignClaims(claims)
	require.NoError(t, err)

	_, err = ts.Validate(token, users.TokenTypeAccess)
	assert.Error(t, err)
	assert.True(t, users.IsTokenExpiredError(err))
}

func TestValidateTamperedToken(t *testing.T) {
	ts := users.NewTokenService(testConfig())

	pair, err := ts.IssuePair(testUserIdentity())
	require.NoError(t, err)

	tampered := pair.Access[:len(pair.Access)-4] + "XXXX"

	_, err = ts.Validate(tampered, users.TokenTypeAccess)
	assert.Error(t, err)
	assert.True(t, users.IsMalformedError(err))
}

func TestValidateGarbageToken(t *testing.T) {
	ts := users.NewTokenService(testConfig())

	_, err := ts.Validate("not.a.token", users.TokenTypeAccess)
	assert.Error(t, err)
	assert.True(t, users.IsMalformedError(err))
}

func TestValidateWrongSigningKey(t *testing.T) {
	ts := users.NewTokenService(testConfig())

	other := users.NewTokenService(&users.SimpleConfig{
		SigningKey: "a-different-key",
		Issuer:     "go-users-test",
	})

	pair, err := other.IssuePair(testUserIdentity())
	require.NoError(t, err)

	_, err = ts.Validate(pair.Access, users.TokenTypeAccess)
	assert.Error(t, err)
}

func TestInvertedTTLsAreNormalized(t *testing.T) {
	ts := users.NewTokenService(&users.SimpleConfig{
		SigningKey:      "test-signing-key",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: time.Minute,
	})

	pair, err := ts.IssuePair(testUserIdentity())
	require.NoError(t, err)

	access, err := ts.Validate(pair.Access, users.TokenTypeAccess)
	require.NoError(t, err)

	refresh, err := ts.Validate(pair.Refresh, users.TokenTypeRefresh)
	require.NoError(t, err)

	assert.True(t, refresh.Expires().After(access.Expires()))
}
