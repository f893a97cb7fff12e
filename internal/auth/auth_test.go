package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("Admin#01Pass")
	require.NoError(t, err)

	assert.NotEqual(t, "Admin#01Pass", hash)
	assert.True(t, CheckPassword(hash, "Admin#01Pass"))
	assert.False(t, CheckPassword(hash, "admin#01pass"))
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Now()
	tok, exp, err := MakeToken("danielle", "secret", time.Hour, now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(time.Hour), exp, time.Second)

	c, err := ParseToken(tok, "secret")
	require.NoError(t, err)
	assert.Equal(t, "danielle", c.Username)
	assert.Equal(t, RoleAdmin, c.Role)
}

func TestParseToken_Rejects(t *testing.T) {
	tok, _, err := MakeToken("danielle", "secret", time.Hour, time.Now())
	require.NoError(t, err)

	_, err = ParseToken(tok, "other-secret")
	assert.Error(t, err)

	expired, _, err := MakeToken("danielle", "secret", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = ParseToken(expired, "secret")
	assert.Error(t, err)

	_, err = ParseToken("not-a-token", "secret")
	assert.Error(t, err)
}
