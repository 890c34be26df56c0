package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	hashed, err := HashPassword("password")
	require.NoError(t, err)
	assert.NotEmpty(t, hashed)
	assert.NotEqual(t, "password", hashed)

	again, err := HashPassword("password")
	require.NoError(t, err)
	assert.NotEqual(t, hashed, again, "bcrypt salts every hash")
}

func TestCheckPassword(t *testing.T) {
	t.Parallel()

	hashed, err := HashPassword("admin")
	require.NoError(t, err)

	t.Run("correct password", func(t *testing.T) {
		t.Parallel()
		assert.True(t, CheckPassword(hashed, "admin"))
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		assert.False(t, CheckPassword(hashed, "Admin"))
	})

	t.Run("malformed hash", func(t *testing.T) {
		t.Parallel()
		assert.False(t, CheckPassword("not-a-hash", "admin"))
	})
}
