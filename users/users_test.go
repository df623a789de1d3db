package users_test

import (
	"encoding/json"
	"testing"

	"github.com/attendly/go-workforce-server/users"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	t.Run("valid password", func(t *testing.T) {
		require.NoError(t, users.ValidatePasswordStrength("Password123"))
	})

	t.Run("too short", func(t *testing.T) {
		err := users.ValidatePasswordStrength("Pw1")
		require.Error(t, err)
		require.Contains(t, err.Error(), "at least 8 characters")
	})

	t.Run("missing uppercase", func(t *testing.T) {
		err := users.ValidatePasswordStrength("password123")
		require.Error(t, err)
		require.Contains(t, err.Error(), "uppercase")
	})

	t.Run("missing lowercase", func(t *testing.T) {
		err := users.ValidatePasswordStrength("PASSWORD123")
		require.Error(t, err)
		require.Contains(t, err.Error(), "lowercase")
	})

	t.Run("missing number", func(t *testing.T) {
		err := users.ValidatePasswordStrength("PasswordOnly")
		require.Error(t, err)
		require.Contains(t, err.Error(), "number")
	})
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := users.HashPassword("Password123", 4)
	require.NoError(t, err)
	require.NotEqual(t, "Password123", hash)

	require.True(t, users.CheckPasswordHash("Password123", hash))
	require.False(t, users.CheckPasswordHash("Password124", hash))
}

func TestRoleValid(t *testing.T) {
	require.True(t, users.RoleSuperAdmin.Valid())
	require.True(t, users.RoleCompanyAdmin.Valid())
	require.True(t, users.RoleEmployee.Valid())
	require.False(t, users.RoleType("wizard").Valid())
	require.False(t, users.RoleType("").Valid())
}

func TestPasswordHashNeverMarshals(t *testing.T) {
	user := users.User{
		ID:           "user-1",
		Email:        "john.doe@example.com",
		PasswordHash: "$2a$12$secret",
		Role:         users.RoleEmployee,
	}

	raw, err := json.Marshal(user)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "secret")
}

func TestSanitized(t *testing.T) {
	user := &users.User{ID: "user-1", PasswordHash: "hash"}

	clean := user.Sanitized()
	require.Empty(t, clean.PasswordHash)
	require.Equal(t, "hash", user.PasswordHash) // original untouched
}
