package users

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse", hash)
	require.True(t, strings.HasPrefix(hash, "$2a$10$"))

	require.True(t, CheckPassword("correct horse", hash))
	require.False(t, CheckPassword("wrong horse", hash))
	require.False(t, CheckPassword("correct horse", "not-a-bcrypt-hash"))
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("samepassword")
	require.NoError(t, err)
	b, err := HashPassword("samepassword")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestValidatePassword(t *testing.T) {
	require.ErrorIs(t, ValidatePassword("short"), ErrWeakPassword)
	require.ErrorIs(t, ValidatePassword(strings.Repeat("x", 73)), ErrWeakPassword)
	require.NoError(t, ValidatePassword("12345678"))
	require.NoError(t, ValidatePassword(strings.Repeat("x", 72)))
}
