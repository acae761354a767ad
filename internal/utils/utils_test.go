package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	sid, err := NewSessionID()
	require.NoError(t, err)
	require.Len(t, sid, 64)

	tok, err := NewSessionToken("secret", SessionClaims{UserID: 7, Role: "ADMIN", SessionID: sid}, time.Hour)
	require.NoError(t, err)
	require.True(t, tok.Exp.After(time.Now()))

	got, err := ParseSessionToken("secret", tok.Token)
	require.NoError(t, err)
	require.Equal(t, uint64(7), got.UserID)
	require.Equal(t, "ADMIN", got.Role)
	require.Equal(t, sid, got.SessionID)
}

func TestParseSessionTokenRejects(t *testing.T) {
	tok, err := NewSessionToken("secret", SessionClaims{UserID: 1, Role: "STAFF", SessionID: "abc"}, time.Hour)
	require.NoError(t, err)

	_, err = ParseSessionToken("other", tok.Token)
	require.ErrorIs(t, err, ErrInvalidSession)

	expired, err := NewSessionToken("secret", SessionClaims{UserID: 1, Role: "STAFF", SessionID: "abc"}, -time.Minute)
	require.NoError(t, err)
	_, err = ParseSessionToken("secret", expired.Token)
	require.ErrorIs(t, err, ErrInvalidSession)

	_, err = ParseSessionToken("secret", "not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestHashSessionIDIsStable(t *testing.T) {
	require.Equal(t, HashSessionID("abc"), HashSessionID("abc"))
	require.NotEqual(t, HashSessionID("abc"), HashSessionID("abd"))
}

func TestPasswordHashing(t *testing.T) {
	h, err := HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)
	require.True(t, VerifyPassword(h, "hunter2"))
	require.False(t, VerifyPassword(h, "hunter3"))

	h, err = HashPassword("x", 99)
	require.NoError(t, err)
	require.True(t, VerifyPassword(h, "x"))
}
