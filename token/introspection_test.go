package token_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-session-client/token"
)

func signed(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestInspect_Claims(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	raw := signed(t, jwtlib.MapClaims{
		"sub":   "42",
		"exp":   now.Add(time.Hour).Unix(),
		"iat":   now.Unix(),
		"roles": []string{"ROLE_STAFF"},
	})

	in, err := token.Inspect(raw)
	require.NoError(t, err)
	require.Equal(t, "42", in.Subject)
	require.Equal(t, now.Add(time.Hour).Unix(), in.ExpiresAt.Unix())
	require.Equal(t, now.Unix(), in.IssuedAt.Unix())
	require.Equal(t, []string{"ROLE_STAFF"}, in.Roles)
}

func TestInspect_ExpiredTokenStillReadable(t *testing.T) {
	raw := signed(t, jwtlib.MapClaims{"sub": "42", "exp": time.Now().Add(-time.Hour).Unix()})

	in, err := token.Inspect(raw)
	require.NoError(t, err)
	require.True(t, in.ExpiresWithin(0))
}

func TestInspect_Opaque(t *testing.T) {
	_, err := token.Inspect("T1")
	require.ErrorIs(t, err, token.ErrOpaqueToken)

	_, err = token.Inspect("a.b.c")
	require.ErrorIs(t, err, token.ErrOpaqueToken)
}

func TestExpiresWithin(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	original := token.NowTimeFunc
	token.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { token.NowTimeFunc = original })

	in := &token.Introspection{ExpiresAt: now.Add(30 * time.Second)}
	require.True(t, in.ExpiresWithin(time.Minute))
	require.False(t, in.ExpiresWithin(10*time.Second))

	require.False(t, (&token.Introspection{}).ExpiresWithin(time.Hour))
}
