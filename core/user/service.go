package user

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/tawaslapp/tawasl/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("email already registered")
	ErrUsernameExists     = errors.New("a user with this username already exists")
	ErrAlreadyVerified    = errors.New("already verified")
	ErrInvalidCode        = errors.New("invalid code")
	ErrCodeExpired        = errors.New("verification code expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("please verify your email before logging in")
)

type (
	ServiceInterface interface {
		Register(ctx context.Context, nu NewUser) (User, error)
		VerifyEmail(ctx context.Context, email, code string) (User, error)
		Authenticate(ctx context.Context, email, password string) (User, error)
		AuthenticateOAuth(ctx context.Context, profile OAuthProfile) (User, error)
		GetByID(ctx context.Context, id int) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

// Register creates (or refreshes) an unverified account and emails a
// 6-digit verification code. The user is not logged in.
//
// A verified account on the same email is a conflict; an unverified one is
// replaced in place so a user who lost the code can just register again.
func (svc *service) Register(ctx context.Context, nu NewUser) (User, error) {
	now := NowFunc().UTC()

	usr, err := svc.repo.GetUser(ctx, GetFilter{Email: nu.Email})
	switch {
	case err == nil:
		if usr.Verified {
			return User{}, ErrEmailExists
		}
		// pending registration: refresh it
		if err := svc.repo.CheckUniqueness(ctx, nu.Username, nu.Email, usr); err != nil {
			return User{}, err
		}
		usr.Username = nu.Username
		usr.UpdatedAt = now
	case errors.Cause(err) == ErrNotFound:
		if err := svc.repo.CheckUniqueness(ctx, nu.Username, nu.Email); err != nil {
			return User{}, err
		}
		usr = User{
			Username:  nu.Username,
			Email:     nu.Email,
			CreatedAt: now,
			UpdatedAt: now,
		}
	default:
		return User{}, errors.Wrap(err, "finding user by email")
	}

	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}

	code, err := GenerateVerificationCode()
	if err != nil {
		return User{}, err
	}
	usr.Verified = false
	usr.VerificationCode = code
	usr.VerificationExpires = now.Add(svc.conf.VerificationCodeTTL)

	if usr.ID == 0 {
		usr, err = svc.repo.CreateUser(ctx, usr)
	} else {
		usr, err = svc.repo.UpdateUser(ctx, usr)
	}
	if err != nil {
		return User{}, errors.Wrap(err, "saving user")
	}

	// a delivery failure must surface: the caller retries registration
	if err := svc.mailSvc.SendMessage(verificationMail(usr, code)); err != nil {
		return User{}, errors.Wrap(err, "sending verification code")
	}
	return usr, nil
}

// VerifyEmail confirms the code and marks the account verified.
func (svc *service) VerifyEmail(ctx context.Context, email, code string) (User, error) {
	usr, err := svc.repo.GetUser(ctx, GetFilter{Email: email})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrNotFound
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if usr.Verified {
		return User{}, ErrAlreadyVerified
	}
	if usr.VerificationCode == "" || usr.VerificationCode != code {
		return User{}, ErrInvalidCode
	}
	if !usr.VerificationExpires.IsZero() && NowFunc().After(usr.VerificationExpires) {
		return User{}, ErrCodeExpired
	}

	usr.Verified = true
	usr.VerificationCode = ""
	usr.VerificationExpires = time.Time{}
	usr.UpdatedAt = NowFunc().UTC()

	usr, err = svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "saving user")
}

// Authenticate checks local credentials. Unknown email, missing local
// password and hash mismatch all fail alike; unverified accounts get a
// distinct error so the client can prompt for the code.
func (svc *service) Authenticate(ctx context.Context, email, password string) (User, error) {
	usr, err := svc.repo.GetUser(ctx, GetFilter{Email: email})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if !usr.Verified {
		return User{}, ErrNotVerified
	}
	if !usr.HasUsablePassword() {
		return User{}, ErrInvalidCredentials
	}
	if err := usr.CheckPassword(password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

// AuthenticateOAuth signs a provider-attested identity in, creating a
// verified account on first use. The provider already proved email
// ownership, so an existing unverified account is upgraded.
func (svc *service) AuthenticateOAuth(ctx context.Context, profile OAuthProfile) (User, error) {
	email := core.CleanString(profile.Email, true /* lower */)
	if email == "" {
		return User{}, ErrInvalidCredentials
	}
	now := NowFunc().UTC()

	usr, err := svc.repo.GetUser(ctx, GetFilter{Email: email})
	switch {
	case err == nil:
		if usr.Verified {
			return usr, nil
		}
		usr.Verified = true
		usr.VerificationCode = ""
		usr.VerificationExpires = time.Time{}
		usr.UpdatedAt = now
		usr, err = svc.repo.UpdateUser(ctx, usr)
		return usr, errors.Wrap(err, "saving user")
	case errors.Cause(err) == ErrNotFound:
		usr = User{
			Username:  svc.pickUsername(ctx, profile, email),
			Email:     email,
			Verified:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		usr, err = svc.repo.CreateUser(ctx, usr)
		return usr, errors.Wrap(err, "creating user")
	default:
		return User{}, errors.Wrap(err, "finding user by email")
	}
}

// pickUsername derives a free username from the provider profile,
// falling back to the email local part, then to a numeric suffix.
func (svc *service) pickUsername(ctx context.Context, profile OAuthProfile, email string) string {
	name := core.CleanString(profile.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	if err := svc.repo.CheckUniqueness(ctx, name, email); err == nil {
		return name
	}
	local := strings.SplitN(email, "@", 2)[0]
	if local != name {
		if err := svc.repo.CheckUniqueness(ctx, local, email); err == nil {
			return local
		}
	}
	suffix, err := GenerateVerificationCode()
	if err != nil {
		suffix = "0"
	}
	return local + suffix
}

func (svc *service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}
