package crypto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("topsecret")

func TestIssueVerify_RoundTrip(t *testing.T) {
	token, err := Issue(Claims{"google_id": "abc123", "role": "user"}, testSecret, WithTTL(time.Hour))
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := Verify(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "abc123", claims["google_id"])
	assert.Equal(t, "user", claims["role"])
	assert.Contains(t, claims, "exp")
}

func TestIssue_WithoutTTLHasNoExp(t *testing.T) {
	token, err := Issue(Claims{"google_id": "abc123"}, testSecret)
	require.NoError(t, err)

	claims, err := Verify(token, testSecret)
	require.NoError(t, err)
	assert.NotContains(t, claims, "exp")
}

func TestIssue_Errors(t *testing.T) {
	t.Run("empty secret", func(t *testing.T) {
		_, err := Issue(Claims{"google_id": "x"}, nil)
		assert.ErrorIs(t, err, ErrEmptySecret)
	})

	t.Run("unserializable claim", func(t *testing.T) {
		_, err := Issue(Claims{"bad": make(chan int)}, testSecret)
		require.Error(t, err)
		var typeErr *json.UnsupportedTypeError
		assert.ErrorAs(t, err, &typeErr)
	})
}

func TestVerify_Tampered(t *testing.T) {
	token, err := Issue(Claims{"google_id": "abc123"}, testSecret, WithTTL(time.Hour))
	require.NoError(t, err)
	parts := strings.Split(token, ".")

	flip := func(s string) string {
		c := byte('A')
		if s[0] == 'A' {
			c = 'B'
		}
		return string(c) + s[1:]
	}

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"signature altered", parts[0] + "." + parts[1] + "." + flip(parts[2]), ErrTokenSignatureInvalid},
		{"payload altered", parts[0] + "." + flip(parts[1]) + "." + parts[2], nil},
		{"wrong secret", token, ErrTokenSignatureInvalid},
		{"not a jwt", "not-a-token", ErrTokenMalformed},
		{"empty", "", ErrTokenMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secret := testSecret
			if tt.name == "wrong secret" {
				secret = []byte("othersecret")
			}
			_, err := Verify(tt.token, secret)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"google_id": "abc123"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = Verify(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"google_id": "abc123"}).
		SignedString(testSecret)
	require.NoError(t, err)

	_, err = Verify(hs512, testSecret)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestVerify_Expiry(t *testing.T) {
	t.Run("zero ttl is expired immediately", func(t *testing.T) {
		token, err := Issue(Claims{"google_id": "abc123"}, testSecret, WithTTL(0))
		require.NoError(t, err)

		_, err = Verify(token, testSecret)
		assert.ErrorIs(t, err, ErrTokenExpired)
		assert.Equal(t, "expired", Reason(err))
	})

	t.Run("clock past exp", func(t *testing.T) {
		issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		token, err := Issue(Claims{"google_id": "abc123"}, testSecret,
			WithTTL(time.Hour), WithIssueClock(func() time.Time { return issued }))
		require.NoError(t, err)

		_, err = Verify(token, testSecret, WithVerifyClock(func() time.Time { return issued.Add(59 * time.Minute) }))
		require.NoError(t, err)

		_, err = Verify(token, testSecret, WithVerifyClock(func() time.Time { return issued.Add(61 * time.Minute) }))
		assert.ErrorIs(t, err, ErrTokenExpired)
	})
}

func TestTokenCodec(t *testing.T) {
	t.Run("empty secret fails fast", func(t *testing.T) {
		_, err := NewTokenCodec(nil, time.Hour)
		assert.ErrorIs(t, err, ErrEmptySecret)
	})

	t.Run("issue for identity", func(t *testing.T) {
		now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		codec, err := NewTokenCodec(testSecret, time.Hour, WithClock(func() time.Time { return now }))
		require.NoError(t, err)

		token, err := codec.IssueFor("abc123")
		require.NoError(t, err)

		claims, err := codec.Verify(token)
		require.NoError(t, err)
		id, ok := claims.String("google_id")
		assert.True(t, ok)
		assert.Equal(t, "abc123", id)
		assert.Equal(t, float64(now.Add(time.Hour).Unix()), claims["exp"])
	})

	t.Run("secret is copied", func(t *testing.T) {
		secret := []byte("mutable")
		codec, err := NewTokenCodec(secret, time.Hour)
		require.NoError(t, err)
		token, err := codec.IssueFor("abc123")
		require.NoError(t, err)

		secret[0] = 'X'
		_, err = codec.Verify(token)
		assert.NoError(t, err)
	})
}

func TestReason(t *testing.T) {
	_, err := Verify("garbage", testSecret)
	assert.Equal(t, "malformed", Reason(err))

	token, _ := Issue(Claims{"google_id": "a"}, []byte("other"))
	_, err = Verify(token, testSecret)
	assert.Equal(t, "signature", Reason(err))
}
