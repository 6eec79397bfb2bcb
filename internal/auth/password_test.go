package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	BcryptCost = bcrypt.MinCost
	t.Cleanup(func() { BcryptCost = bcrypt.DefaultCost })

	hash, err := HashPassword("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", hash)

	assert.NoError(t, CheckPassword(hash, "pw1"))
	assert.ErrorIs(t, CheckPassword(hash, "pw2"), ErrInvalidCredentials)
	assert.ErrorIs(t, CheckPassword("not-a-bcrypt-hash", "pw1"), ErrInvalidCredentials)
}
