package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWT() *JWTManager {
	return NewJWTManager(JWTSettings{
		Issuer:        "blog-backend",
		Audience:      "blog-frontend",
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
	})
}

func TestJWT_AccessTokenRoundTrip(t *testing.T) {
	m := testJWT()

	token, exp, err := m.GenerateAccessToken("u-1", "sid-1")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := m.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "sid-1", claims.SessionID)
}

func TestJWT_RefreshSecretIsSeparate(t *testing.T) {
	m := testJWT()

	refresh, _, err := m.GenerateRefreshToken("u-1", "sid-1")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(refresh)
	assert.Error(t, err, "refresh token must not validate as access token")

	claims, err := m.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
}

func TestJWT_RejectsWrongIssuer(t *testing.T) {
	other := NewJWTManager(JWTSettings{
		Issuer:       "someone-else",
		Audience:     "blog-frontend",
		AccessSecret: "access-secret",
		AccessTTL:    time.Hour,
	})
	token, _, err := other.GenerateAccessToken("u-1", "sid-1")
	require.NoError(t, err)

	_, err = testJWT().ParseAccessToken(token)
	assert.Error(t, err)
}

func TestJWT_RejectsTampered(t *testing.T) {
	m := testJWT()
	token, _, err := m.GenerateAccessToken("u-1", "sid-1")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(token + "x")
	assert.Error(t, err)
}
