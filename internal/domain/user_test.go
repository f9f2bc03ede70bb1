package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser("  Ada  ", "  Ada@Example.COM ", "  s3cretpass ", 36)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "s3cretpass", user.Password)
	assert.Equal(t, 36, user.Age)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
}

func TestNewUserValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		userName  string
		email     string
		password  string
		age       int
		wantField string
		wantErr   error
	}{
		{"missing name", " ", "a@example.com", "s3cretpass", 0, "name", ErrEmptyContent},
		{"missing email", "Ada", "", "s3cretpass", 0, "email", ErrInvalidEmail},
		{"malformed email", "Ada", "not-an-email", "s3cretpass", 0, "email", ErrInvalidEmail},
		{"missing password", "Ada", "a@example.com", "", 0, "password", ErrInvalidPassword},
		{"short password after trim", "Ada", "a@example.com", "  abc123  ", 0, "password", ErrInvalidPassword},
		{"forbidden password", "Ada", "a@example.com", "password", 0, "password", ErrInvalidPassword},
		{"negative age", "Ada", "a@example.com", "s3cretpass", -1, "age", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := NewUser(tt.userName, tt.email, tt.password, tt.age)
			require.Error(t, err)
			assert.Nil(t, user)
			assert.ErrorIs(t, err, ErrValidation)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			fields := FieldErrors(err)
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestUserValidateCollectsAllFields(t *testing.T) {
	t.Parallel()

	u := &User{ID: uuid.New(), Email: "nope", Age: -3}
	err := u.Validate()
	require.Error(t, err)

	fields := FieldErrors(err)
	assert.Len(t, fields, 4)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "age")
}

func TestUserValidateStoredHash(t *testing.T) {
	t.Parallel()

	u := &User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com", HashedPassword: "$2a$10$hash"}
	assert.NoError(t, u.Validate())
}

func ptr[T any](v T) *T { return &v }

func TestUserPatchApply(t *testing.T) {
	t.Parallel()

	base := func() *User {
		return &User{
			ID:             uuid.New(),
			Name:           "Ada",
			Email:          "ada@example.com",
			HashedPassword: "$2a$10$hash",
			Age:            30,
		}
	}

	t.Run("name and age only", func(t *testing.T) {
		u := base()
		patch := UserPatch{Name: ptr(" Grace "), Age: ptr(40)}
		require.NoError(t, patch.Apply(u))
		assert.Equal(t, "Grace", u.Name)
		assert.Equal(t, 40, u.Age)
		assert.Empty(t, u.Password)
		assert.False(t, patch.PasswordChanged())
	})

	t.Run("new password left for hashing", func(t *testing.T) {
		u := base()
		patch := UserPatch{Password: ptr("  another-pass ")}
		require.NoError(t, patch.Apply(u))
		assert.Equal(t, "another-pass", u.Password)
		assert.True(t, patch.PasswordChanged())
	})

	t.Run("emptied password rejected", func(t *testing.T) {
		u := base()
		err := UserPatch{Password: ptr("   ")}.Apply(u)
		assert.ErrorIs(t, err, ErrInvalidPassword)
	})

	t.Run("email normalized and checked", func(t *testing.T) {
		u := base()
		require.NoError(t, UserPatch{Email: ptr(" NEW@Example.com ")}.Apply(u))
		assert.Equal(t, "new@example.com", u.Email)

		err := UserPatch{Email: ptr("broken")}.Apply(base())
		assert.ErrorIs(t, err, ErrInvalidEmail)
	})
}

func TestFieldErrors(t *testing.T) {
	t.Parallel()

	assert.Nil(t, FieldErrors(nil))
	assert.Nil(t, FieldErrors(errors.New("plain")))

	joined := errors.Join(
		NewValidationError("email", "is invalid", ErrInvalidEmail),
		NewValidationError("age", "must be a positive number", nil),
	)
	wrapped := errors.Join(errors.New("context"), joined)

	assert.Equal(t, map[string]string{
		"email": "is invalid",
		"age":   "must be a positive number",
	}, FieldErrors(wrapped))
}
