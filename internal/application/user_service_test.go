package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftfolio/craftfolio-api/internal/domain/entity"
	"github.com/craftfolio/craftfolio-api/pkg/apperr"
)

func newUserFixture(t *testing.T) (*UserService, *fakeIdentities, *fakeProfiles) {
	t.Helper()
	identities := newFakeIdentities()
	profiles := newFakeProfiles()
	svc := NewUserService(identities, profiles, nil, nil, testLogger())
	return svc, identities, profiles
}

func TestPublicProfileHidesDeactivated(t *testing.T) {
	svc, _, profiles := newUserFixture(t)
	p := &entity.Profile{CrossRef: "cr-jane", FriendlyID: "jane-x", Username: "jane"}
	require.NoError(t, profiles.Create(context.Background(), p))

	got, err := svc.GetPublicProfile(context.Background(), "jane-x")
	require.NoError(t, err)
	assert.Equal(t, "jane", got.Username)

	require.NoError(t, profiles.SoftDeleteByCrossRef(context.Background(), "cr-jane"))

	_, err = svc.GetPublicProfile(context.Background(), "jane-x")
	require.Error(t, err)
	// Deactivated and missing must produce the same answer.
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	_, err2 := svc.GetPublicProfile(context.Background(), "no-such-user")
	assert.Equal(t, apperr.MessageOf(err), apperr.MessageOf(err2))
}

func TestUpdateProfileRecomputesCompletion(t *testing.T) {
	svc, _, profiles := newUserFixture(t)
	p := &entity.Profile{CrossRef: "cr-jane", FriendlyID: "jane-x", Username: "jane"}
	require.NoError(t, profiles.Create(context.Background(), p))

	bio := "I build things"
	profession := "Web Developer"
	updated, err := svc.UpdateProfile(context.Background(), "cr-jane", UpdateProfileInput{
		Bio:        &bio,
		Profession: &profession,
	})
	require.NoError(t, err)
	assert.False(t, updated.CompletedProfile, "no picture yet")

	picture := "https://example.com/me.png"
	updated, err = svc.UpdateProfile(context.Background(), "cr-jane", UpdateProfileInput{
		ProfilePicture: &picture,
	})
	require.NoError(t, err)
	assert.True(t, updated.CompletedProfile)
}

func TestUpdateProfileRejectsTakenUsername(t *testing.T) {
	svc, _, profiles := newUserFixture(t)
	require.NoError(t, profiles.Create(context.Background(), &entity.Profile{
		CrossRef: "cr-jane", FriendlyID: "jane-x", Username: "jane",
	}))
	require.NoError(t, profiles.Create(context.Background(), &entity.Profile{
		CrossRef: "cr-bob", FriendlyID: "bob-x", Username: "bob",
	}))

	taken := "jane"
	_, err := svc.UpdateProfile(context.Background(), "cr-bob", UpdateProfileInput{Username: &taken})
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

	// Re-submitting your own current username is not a conflict.
	same := "bob"
	_, err = svc.UpdateProfile(context.Background(), "cr-bob", UpdateProfileInput{Username: &same})
	assert.NoError(t, err)
}

func TestDeleteAccountSoftDeletesBothStores(t *testing.T) {
	svc, identities, profiles := newUserFixture(t)
	err := identities.Create(context.Background(), &entity.Identity{
		Email:    "jane@example.com",
		CrossRef: "cr-jane",
		Role:     entity.RoleUser,
	}, func(ctx context.Context) error {
		return profiles.Create(ctx, &entity.Profile{CrossRef: "cr-jane", FriendlyID: "jane-x", Username: "jane"})
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(context.Background(), "cr-jane"))

	ident, err := identities.GetByCrossRef(context.Background(), "cr-jane")
	require.NoError(t, err)
	assert.False(t, ident.Active)

	profile, err := profiles.GetByCrossRef(context.Background(), "cr-jane")
	require.NoError(t, err)
	assert.False(t, profile.Active)

	err = svc.DeleteAccount(context.Background(), "cr-jane")
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err), "double delete")
}
