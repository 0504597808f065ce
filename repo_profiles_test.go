package users_test

import (
	"context"
	"testing"

	users "github.com/goliatone/go-users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestProfilesGetOrCreateByUserID(t *testing.T) {
	db := setupTestDB(t)
	repo := users.NewRepositoryManager(db)
	ctx := context.Background()

	user, err := repo.Users().Register(ctx, newTestUser("lazy@example.com"))
	require.NoError(t, err)

	// first access creates an empty profile
	profile, err := repo.Profiles().GetOrCreateByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, profile)

	assert.Equal(t, user.ID, profile.UserID)
	assert.Empty(t, profile.Bio)

	// second access returns the same row
	again, err := repo.Profiles().GetOrCreateByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID)
}

func TestProfilesPatchPartialUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := users.NewRepositoryManager(db)
	ctx := context.Background()

	user, err := repo.Users().Register(ctx, newTestUser("patch@example.com"))
	require.NoError(t, err)

	profile, err := repo.Profiles().Patch(ctx, user.ID, users.ProfilePatch{
		Bio:      strPtr("hello there"),
		Location: strPtr("Brooklyn"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello there", profile.Bio)
	assert.Equal(t, "Brooklyn", profile.Location)

	// untouched fields survive a later partial patch
	profile, err = repo.Profiles().Patch(ctx, user.ID, users.ProfilePatch{
		PhoneNumber: strPtr("+12125551234"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello there", profile.Bio)
	assert.Equal(t, "Brooklyn", profile.Location)
	assert.Equal(t, "+12125551234", profile.PhoneNumber)
}

func TestProfilesPatchEmptyIsNoop(t *testing.T) {
	db := setupTestDB(t)
	repo := users.NewRepositoryManager(db)
	ctx := context.Background()

	user, err := repo.Users().Register(ctx, newTestUser("noop@example.com"))
	require.NoError(t, err)

	profile, err := repo.Profiles().Patch(ctx, user.ID, users.ProfilePatch{})
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.True(t, users.ProfilePatch{}.IsZero())
}

func TestProfilePatchApply(t *testing.T) {
	profile := &users.Profile{Bio: "old", Location: "old town"}

	users.ProfilePatch{Bio: strPtr("new")}.Apply(profile)

	assert.Equal(t, "new", profile.Bio)
	assert.Equal(t, "old town", profile.Location)
}

func TestRepositoryManagerValidate(t *testing.T) {
	db := setupTestDB(t)
	repo := users.NewRepositoryManager(db)

	assert.NoError(t, repo.Validate())
	assert.NotNil(t, repo.Users())
	assert.NotNil(t, repo.Profiles())
}
