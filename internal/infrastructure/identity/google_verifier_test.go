package identity

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/stockwatch/pkg/errors"
	"github.com/turtacn/stockwatch/pkg/logger"
)

const clientID = "client-123.apps.googleusercontent.com"

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestVerifier(t *testing.T) (*GoogleVerifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	v := newGoogleVerifier(keySet, clientID, func() time.Time { return now }, logger.NewNoopLogger())
	return v, key
}

func signIDToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss":     "https://accounts.google.com",
		"aud":     clientID,
		"sub":     "abc123",
		"email":   "ada@example.com",
		"name":    "Ada Lovelace",
		"picture": "https://example.com/ada.png",
		"iat":     now.Add(-time.Minute).Unix(),
		"exp":     now.Add(time.Hour).Unix(),
	}
}

func TestGoogleVerifier_Valid(t *testing.T) {
	v, key := newTestVerifier(t)

	for _, iss := range []string{"https://accounts.google.com", "accounts.google.com"} {
		claims := baseClaims()
		claims["iss"] = iss

		id, err := v.Verify(context.Background(), signIDToken(t, key, claims))
		require.NoError(t, err, iss)
		assert.Equal(t, "abc123", id.Subject)
		assert.Equal(t, "ada@example.com", id.Email)
		assert.Equal(t, "Ada Lovelace", id.Name)
		assert.Equal(t, "https://example.com/ada.png", id.Picture)
	}
}

func TestGoogleVerifier_Rejects(t *testing.T) {
	v, key := newTestVerifier(t)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(jwt.MapClaims)
		signer *rsa.PrivateKey
		want   error
	}{
		{"wrong audience", func(c jwt.MapClaims) { c["aud"] = "someone-else" }, key, errors.ErrCredentialInvalid},
		{"expired", func(c jwt.MapClaims) { c["exp"] = now.Add(-time.Minute).Unix() }, key, errors.ErrCredentialInvalid},
		{"foreign issuer", func(c jwt.MapClaims) { c["iss"] = "https://evil.example.com" }, key, errors.ErrCredentialInvalid},
		{"bad signature", func(jwt.MapClaims) {}, otherKey, errors.ErrCredentialInvalid},
		{"no email", func(c jwt.MapClaims) { delete(c, "email") }, key, errors.ErrClaimMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := baseClaims()
			tt.mutate(claims)

			_, err := v.Verify(context.Background(), signIDToken(t, tt.signer, claims))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), err.Error())
		})
	}

	_, err = v.Verify(context.Background(), "not-a-jwt")
	assert.True(t, errors.Is(err, errors.ErrCredentialInvalid))
}
