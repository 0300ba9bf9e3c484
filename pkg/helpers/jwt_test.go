package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWT() *JWTManager {
	return NewJWTManager("access-secret", "refresh-secret", 30*time.Minute, 168*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := testJWT()

	token, exp, err := m.GenerateAccessToken("cr-123", "64f000000000000000000001", "jane-doe-a1b2c3d4")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), exp, 2*time.Second)

	claims, err := m.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "cr-123", claims.CrossRef)
	assert.Equal(t, "64f000000000000000000001", claims.ProfileID)
	assert.Equal(t, "jane-doe-a1b2c3d4", claims.FriendlyID)
}

func TestAccessAndRefreshSecretsAreDistinct(t *testing.T) {
	m := testJWT()

	access, _, err := m.GenerateAccessToken("cr-123", "p", "f")
	require.NoError(t, err)

	_, err = m.ParseRefreshToken(access)
	assert.Error(t, err, "access token must not verify under the refresh secret")
	assert.False(t, IsTokenExpired(err))
}

func TestExpiredTokenDetected(t *testing.T) {
	m := NewJWTManager("a", "r", -time.Minute, time.Hour)

	token, _, err := m.GenerateAccessToken("cr-123", "p", "f")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(token)
	require.Error(t, err)
	assert.True(t, IsTokenExpired(err), "expiry must be distinguishable from other failures")
}

func TestExpiryBoundaryIsExpired(t *testing.T) {
	// exp == now counts as expired; the refresh path handles it, the access
	// path must not accept it.
	m := NewJWTManager("a", "r", 0, time.Hour)

	token, _, err := m.GenerateAccessToken("cr-123", "p", "f")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(token)
	require.Error(t, err)
	assert.True(t, IsTokenExpired(err))
}

func TestTamperedTokenIsNotExpired(t *testing.T) {
	m := testJWT()

	token, _, err := m.GenerateAccessToken("cr-123", "p", "f")
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "xxxx"
	_, err = m.ParseAccessToken(tampered)
	require.Error(t, err)
	assert.False(t, IsTokenExpired(err), "a bad signature must never look like expiry")
}
