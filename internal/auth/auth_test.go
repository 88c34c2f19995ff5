package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTM() *TokenManager {
	return NewTokenManager("access-secret", "refresh-secret", "librarium", 15*time.Minute, 24*time.Hour)
}

func TestGeneratePairRoundTrip(t *testing.T) {
	tm := newTM()
	pair, err := tm.GeneratePair(42, "reader")
	require.NoError(t, err)

	c, err := tm.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.UserID)
	assert.Equal(t, "reader", c.Username)
	assert.Equal(t, "librarium", c.Issuer)

	c, err = tm.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TypeRefresh, c.Type)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	tm := newTM()
	pair, err := tm.GeneratePair(1, "a")
	require.NoError(t, err)

	_, err = tm.ParseAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = tm.ParseRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewTokenManager("access-secret", "refresh-secret", "someone-else", time.Minute, time.Minute)
	_, err = other.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredTokenRejected(t *testing.T) {
	tm := newTM()
	issued := time.Now().Add(-time.Hour)
	tm.now = func() time.Time { return issued }
	pair, err := tm.GeneratePair(7, "late")
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NoError(t, VerifyPassword("correct horse", hash))

	err = VerifyPassword("battery staple", hash)
	require.Error(t, err)
	assert.True(t, IsMismatch(err))
}
