package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Password rules, applied to the trimmed plaintext before hashing.
const (
	MinPasswordLength = 7
	ForbiddenPassword = "password"
)

var validate = validator.New()

// User represents a registered user of the task manager.
//
// Password, HashedPassword and Avatar never leave the server: they are
// excluded from JSON so every serialized User is the public view.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Age            int       `json:"age"`
	Password       string    `json:"-"` // Plaintext, only set while creating or changing the password
	HashedPassword string    `json:"-"`
	Avatar         []byte    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewUser creates a new User with a fresh time-ordered ID and normalized
// fields. It validates the result; the caller hashes Password before storing.
func NewUser(name, email, password string, age int) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      name,
		Email:     email,
		Age:       age,
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}
	user.Normalize()

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// NormalizeEmail trims and lower-cases an email address. Emails are unique
// case-insensitively, so every lookup goes through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Normalize trims name and password and normalizes the email.
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = NormalizeEmail(u.Email)
	u.Password = strings.TrimSpace(u.Password)
}

// Validate checks every field and returns all failures joined together.
func (u *User) Validate() error {
	var errs []error

	if u.ID == uuid.Nil {
		errs = append(errs, NewValidationError("id", "is required", ErrInvalidID))
	}

	if u.Name == "" {
		errs = append(errs, NewValidationError("name", "is required", ErrEmptyContent))
	}

	if err := ValidateEmail(u.Email); err != nil {
		errs = append(errs, err)
	}

	if u.Password != "" {
		if err := ValidatePassword(u.Password); err != nil {
			errs = append(errs, err)
		}
	} else if u.HashedPassword == "" {
		errs = append(errs, NewValidationError("password", "is required", ErrInvalidPassword))
	}

	if u.Age < 0 {
		errs = append(errs, NewValidationError("age", "must be a positive number", nil))
	}

	return errors.Join(errs...)
}

// ValidateEmail checks a normalized email address.
func ValidateEmail(email string) error {
	if email == "" {
		return NewValidationError("email", "is required", ErrInvalidEmail)
	}
	if err := validate.Var(email, "email"); err != nil {
		return NewValidationError("email", "is invalid", ErrInvalidEmail)
	}
	return nil
}

// ValidatePassword checks a trimmed plaintext password.
func ValidatePassword(password string) error {
	if password == "" {
		return NewValidationError("password", "is required", ErrInvalidPassword)
	}
	if len(password) < MinPasswordLength {
		return NewValidationError("password", "must be at least 7 characters", ErrInvalidPassword)
	}
	if password == ForbiddenPassword {
		return NewValidationError("password", "cannot be password", ErrInvalidPassword)
	}
	return nil
}

// UserPatch holds the fields of a self-update. Nil means "leave unchanged".
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
}

// PasswordChanged reports whether the patch carries a new password.
func (p UserPatch) PasswordChanged() bool {
	return p.Password != nil
}

// Apply copies the set fields onto u and normalizes it. A new password is
// left in u.Password for the caller to hash.
func (p UserPatch) Apply(u *User) error {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Age != nil {
		u.Age = *p.Age
	}
	u.Password = ""
	if p.Password != nil {
		u.Password = *p.Password
	}
	u.Normalize()

	// An explicitly emptied password must not fall back to the stored hash.
	if p.Password != nil {
		if err := ValidatePassword(u.Password); err != nil {
			return err
		}
	}

	return u.Validate()
}
