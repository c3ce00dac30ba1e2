package session

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func TestDecodeClaims(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	token := signedToken(t, jwt.MapClaims{"sub": "user-1", "role": "INSTRUCTOR", "exp": exp.Unix()})

	claims, err := DecodeClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "INSTRUCTOR", claims.Role)
	assert.True(t, claims.HasExpiry())
	assert.True(t, exp.Equal(claims.ExpiresAt))
}

func TestDecodeClaimsMalformed(t *testing.T) {
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"exp":"soon"}`))
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))

	for _, token := range []string{"", "not-a-token", "a.b", "a.%%%.c", header + "." + payload + ".sig"} {
		_, err := DecodeClaims(token)
		assert.ErrorIs(t, err, ErrMalformedToken, token)
	}
}

func TestIsTokenExpiringSoon(t *testing.T) {
	now := time.Now()

	soon := signedToken(t, jwt.MapClaims{"exp": now.Add(4 * time.Minute).Unix()})
	later := signedToken(t, jwt.MapClaims{"exp": now.Add(6 * time.Minute).Unix()})
	expired := signedToken(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()})
	noExpiry := signedToken(t, jwt.MapClaims{"sub": "user-1"})

	assert.True(t, IsTokenExpiringSoon(soon, now))
	assert.False(t, IsTokenExpiringSoon(later, now))
	assert.True(t, IsTokenExpiringSoon(expired, now))
	assert.True(t, IsTokenExpiringSoon(noExpiry, now))
	assert.True(t, IsTokenExpiringSoon("garbage", now))
}
