package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftfolio/craftfolio-api/internal/domain/entity"
	"github.com/craftfolio/craftfolio-api/pkg/apperr"
	"github.com/craftfolio/craftfolio-api/pkg/helpers"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(nilWriter{})
	return l
}

type nilWriter struct{}

func (nilWriter) Write(p []byte) (int, error) { return len(p), nil }

func newAuthFixture() (*AuthService, *fakeIdentities, *fakeProfiles) {
	identities := newFakeIdentities()
	profiles := newFakeProfiles()
	jwt := helpers.NewJWTManager("a-secret", "r-secret", 30*time.Minute, 168*time.Hour)
	svc := NewAuthService(identities, profiles, nil, jwt, nil, testLogger())
	return svc, identities, profiles
}

func signUp(t *testing.T, svc *AuthService, email, username string) *entity.Profile {
	t.Helper()
	p, err := svc.SignUp(context.Background(), SignUpInput{
		Email:    email,
		Password: "hunter2hunter2",
		Username: username,
	})
	require.NoError(t, err)
	return p
}

func TestSignUpCreatesBothRecordsSharingCrossRef(t *testing.T) {
	svc, identities, profiles := newAuthFixture()

	profile := signUp(t, svc, "jane@example.com", "jane")

	require.NotEmpty(t, profile.CrossRef)
	ident, err := identities.GetByCrossRef(context.Background(), profile.CrossRef)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", ident.Email)
	assert.Equal(t, entity.RoleUser, ident.Role)
	assert.True(t, ident.Active)

	stored, err := profiles.GetByCrossRef(context.Background(), profile.CrossRef)
	require.NoError(t, err)
	assert.Equal(t, "jane", stored.Username)
	assert.NotEqual(t, "hunter2hunter2", ident.PasswordHash, "password must be hashed")
}

func TestSignUpDuplicateEmailCreatesNothing(t *testing.T) {
	svc, identities, profiles := newAuthFixture()
	signUp(t, svc, "jane@example.com", "jane")

	_, err := svc.SignUp(context.Background(), SignUpInput{
		Email:    "jane@example.com",
		Password: "hunter2hunter2",
		Username: "jane2",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

	n, _ := identities.CountActive(context.Background())
	assert.EqualValues(t, 1, n)
	total, _ := profiles.Count(context.Background())
	assert.EqualValues(t, 1, total)
}

func TestSignUpProfileFailureRollsBackIdentity(t *testing.T) {
	svc, identities, profiles := newAuthFixture()
	profiles.createErr = errors.New("mongo down")

	_, err := svc.SignUp(context.Background(), SignUpInput{
		Email:    "jane@example.com",
		Password: "hunter2hunter2",
		Username: "jane",
	})
	require.Error(t, err)

	n, _ := identities.CountActive(context.Background())
	assert.EqualValues(t, 0, n, "failed document leg must leave no identity row")
}

func TestSignInRoundTripsCrossRefThroughAccessToken(t *testing.T) {
	svc, _, _ := newAuthFixture()
	created := signUp(t, svc, "jane@example.com", "jane")

	_, pair, err := svc.SignIn(context.Background(), "jane@example.com", "hunter2hunter2")
	require.NoError(t, err)

	claims, err := svc.JWT.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, created.CrossRef, claims.CrossRef)
	assert.Equal(t, created.FriendlyID, claims.FriendlyID)
}

func TestSignInWrongPasswordIsUniform(t *testing.T) {
	svc, _, _ := newAuthFixture()
	signUp(t, svc, "jane@example.com", "jane")

	_, _, err := svc.SignIn(context.Background(), "jane@example.com", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
	assert.Equal(t, "Invalid email or password", apperr.MessageOf(err))

	// Unknown email must be indistinguishable from a bad password.
	_, _, err2 := svc.SignIn(context.Background(), "nobody@example.com", "whatever")
	assert.Equal(t, apperr.MessageOf(err), apperr.MessageOf(err2))
}

func TestSignInDeactivatedAccountForbidden(t *testing.T) {
	svc, identities, _ := newAuthFixture()
	p := signUp(t, svc, "jane@example.com", "jane")
	require.NoError(t, identities.Deactivate(context.Background(), p.CrossRef, nil))

	_, _, err := svc.SignIn(context.Background(), "jane@example.com", "hunter2hunter2")
	require.Error(t, err)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestAdminSignInRejectsRegularUser(t *testing.T) {
	svc, _, _ := newAuthFixture()
	signUp(t, svc, "jane@example.com", "jane")

	_, _, err := svc.AdminSignIn(context.Background(), "jane@example.com", "hunter2hunter2")
	require.Error(t, err)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestAdminSignInAcceptsAdmin(t *testing.T) {
	svc, identities, _ := newAuthFixture()
	p := signUp(t, svc, "ops@example.com", "ops")
	identities.byCrossRef[p.CrossRef].Role = entity.RoleAdmin

	_, pair, err := svc.AdminSignIn(context.Background(), "ops@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestRefreshAccessMintsNewToken(t *testing.T) {
	svc, _, _ := newAuthFixture()
	created := signUp(t, svc, "jane@example.com", "jane")

	_, pair, err := svc.SignIn(context.Background(), "jane@example.com", "hunter2hunter2")
	require.NoError(t, err)

	access, exp, profile, err := svc.RefreshAccess(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))
	assert.Equal(t, created.CrossRef, profile.CrossRef)

	claims, err := svc.JWT.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, created.CrossRef, claims.CrossRef)
}

func TestRefreshAccessRejectsDeactivatedProfile(t *testing.T) {
	svc, _, profiles := newAuthFixture()
	p := signUp(t, svc, "jane@example.com", "jane")

	_, pair, err := svc.SignIn(context.Background(), "jane@example.com", "hunter2hunter2")
	require.NoError(t, err)

	require.NoError(t, profiles.SoftDeleteByCrossRef(context.Background(), p.CrossRef))

	_, _, _, err = svc.RefreshAccess(context.Background(), pair.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestRefreshAccessRejectsAccessToken(t *testing.T) {
	svc, _, _ := newAuthFixture()
	signUp(t, svc, "jane@example.com", "jane")

	_, pair, err := svc.SignIn(context.Background(), "jane@example.com", "hunter2hunter2")
	require.NoError(t, err)

	_, _, _, err = svc.RefreshAccess(context.Background(), pair.AccessToken)
	require.Error(t, err)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestUpdateCredentialsPasswordRequiresCurrent(t *testing.T) {
	svc, _, _ := newAuthFixture()
	p := signUp(t, svc, "jane@example.com", "jane")

	err := svc.UpdateCredentials(context.Background(), p.CrossRef, UpdateCredentialsInput{
		NewPassword:     "brand-new-password",
		CurrentPassword: "not-the-password",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))

	err = svc.UpdateCredentials(context.Background(), p.CrossRef, UpdateCredentialsInput{
		NewPassword:     "brand-new-password",
		CurrentPassword: "hunter2hunter2",
	})
	require.NoError(t, err)

	_, _, err = svc.SignIn(context.Background(), "jane@example.com", "brand-new-password")
	assert.NoError(t, err)
}

func TestUpdateCredentialsEmailConflict(t *testing.T) {
	svc, _, _ := newAuthFixture()
	signUp(t, svc, "taken@example.com", "taken")
	p := signUp(t, svc, "jane@example.com", "jane")

	err := svc.UpdateCredentials(context.Background(), p.CrossRef, UpdateCredentialsInput{
		Email: "taken@example.com",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}
