package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(accessTTL time.Duration) *TokenCodec {
	return NewTokenCodec("access-secret", "refresh-secret", accessTTL, 14*24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	codec := newTestCodec(15 * time.Minute)

	token, err := codec.SignAccess("64f0c3", "jane@example.com", "user")
	require.NoError(t, err)

	claims, expired, err := codec.VerifyAccess(token)
	require.NoError(t, err)
	assert.False(t, expired)
	assert.Equal(t, "64f0c3", claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
	assert.Empty(t, claims.SessionID)
}

func TestExpiredAccessTokenStillYieldsClaims(t *testing.T) {
	codec := newTestCodec(-time.Minute)

	token, err := codec.SignAccess("64f0c3", "jane@example.com", "user")
	require.NoError(t, err)

	claims, expired, err := codec.VerifyAccess(token)
	require.NoError(t, err)
	assert.True(t, expired)
	require.NotNil(t, claims)
	assert.Equal(t, "64f0c3", claims.UserID)
}

func TestTamperedTokenIsInvalidNotExpired(t *testing.T) {
	codec := newTestCodec(15 * time.Minute)

	token, err := codec.SignAccess("64f0c3", "jane@example.com", "user")
	require.NoError(t, err)

	claims, expired, err := codec.VerifyAccess(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.False(t, expired)
	assert.Nil(t, claims)
}

func TestAccessAndRefreshSecretsAreNotInterchangeable(t *testing.T) {
	codec := newTestCodec(15 * time.Minute)

	access, err := codec.SignAccess("64f0c3", "jane@example.com", "user")
	require.NoError(t, err)

	_, _, err = codec.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	refresh, err := codec.SignRefresh("64f0c3", "user", "sess-1")
	require.NoError(t, err)

	_, _, err = codec.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenCarriesSession(t *testing.T) {
	codec := newTestCodec(15 * time.Minute)

	refresh, err := codec.SignRefresh("64f0c3", "user", "sess-1")
	require.NoError(t, err)

	claims, expired, err := codec.VerifyRefresh(refresh)
	require.NoError(t, err)
	assert.False(t, expired)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, "user", claims.Role)
	assert.Empty(t, claims.Email)
}

func TestSocialTokenUsesCustomTTL(t *testing.T) {
	codec := newTestCodec(15 * time.Minute)

	token, err := codec.SignAccessTTL("64f0c3", "jane@example.com", "g-ind", 30*24*time.Hour)
	require.NoError(t, err)

	claims, expired, err := codec.VerifyAccess(token)
	require.NoError(t, err)
	assert.False(t, expired)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}
