package user

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/go-playground/validator/v10"

	"github.com/tawaslapp/tawasl/core"
)

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash []byte `json:"-"`
	Verified     bool   `json:"verified"`
	IsAdmin      bool   `json:"isAdmin"`

	// pending email verification; zero values mean no code outstanding
	VerificationCode    string    `json:"-"`
	VerificationExpires time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"` // UTC
	UpdatedAt time.Time `json:"updatedAt"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// HasUsablePassword reports whether a local password is set at all;
// OAuth-created accounts have none and cannot log in locally.
func (u *User) HasUsablePassword() bool {
	return len(u.PasswordHash) > 0
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Username = core.CleanString(nu.Username)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	return validate.Struct(nu)
}

// VerifyEmail is the payload confirming a verification code.
type VerifyEmail struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

func (ve *VerifyEmail) Validate(validate *validator.Validate) error {
	ve.Email = core.CleanString(ve.Email, true /* lower */)
	ve.Code = core.CleanString(ve.Code)
	return validate.Struct(ve)
}

// Credentials is the local login payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Email = core.CleanString(c.Email, true /* lower */)
	return validate.Struct(c)
}

// OAuthProfile is the identity attested by an external provider.
// The provider vouches for email ownership, so no code verification applies.
type OAuthProfile struct {
	Email string
	Name  string
}

type (
	// GetFilter selects a single user; first non-zero field wins.
	GetFilter struct {
		ID              int
		Email           string
		UsernameOrEmail string
	}

	Repository interface {
		// CheckUniqueness fails with ErrUsernameExists or ErrEmailExists when
		// another user (not in excludedUsers) holds the name/email.
		CheckUniqueness(ctx context.Context, username, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		// UpdateUser persists the full record identified by usr.ID.
		UpdateUser(ctx context.Context, usr User) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...int) error
	}
)
