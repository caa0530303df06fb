package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/tawaslapp/tawasl/core"
	"github.com/tawaslapp/tawasl/core/user"
	emailsvc "github.com/tawaslapp/tawasl/services/email"
	inmemdb "github.com/tawaslapp/tawasl/storage/database/inmem"
)

func setup(t *testing.T) (user.ServiceInterface, user.Repository) {
	t.Helper()
	conf := core.NewConfig()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	repo := inmemdb.NewUserRepository(db)
	emailsvc.ClearSentMessages()
	return user.NewService(repo, emailsvc.NewConsoleServiceMock(conf), conf), repo
}

func seedUser(t *testing.T, repo user.Repository, uname, email, pwd string, verified bool) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{Username: uname, Email: email, Verified: verified, CreatedAt: now, UpdatedAt: now}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("SetPassword() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func Test_service_Register(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	seedUser(t, repo, "done", "done@test.cd", "secret", true)
	seedUser(t, repo, "pending", "pending@test.cd", "secret", false)

	tests := []struct {
		name    string
		nu      user.NewUser
		wantErr error
	}{
		{name: "verified email conflicts", nu: user.NewUser{Username: "fresh", Email: "done@test.cd", Password: "secret"}, wantErr: user.ErrEmailExists},
		{name: "username conflicts", nu: user.NewUser{Username: "done", Email: "fresh@test.cd", Password: "secret"}, wantErr: user.ErrUsernameExists},
		{name: "new registration", nu: user.NewUser{Username: "fresh", Email: "fresh@test.cd", Password: "secret"}},
		{name: "pending registration refreshed", nu: user.NewUser{Username: "pending2", Email: "pending@test.cd", Password: "secret"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := svc.Register(ctx, tt.nu)
			if errors.Cause(err) != tt.wantErr {
				t.Fatalf("Register() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if usr.Verified {
				t.Error("a fresh registration must not be verified")
			}
			if len(usr.VerificationCode) != 6 {
				t.Errorf("VerificationCode = %q; want a 6-digit code", usr.VerificationCode)
			}
			if usr.VerificationExpires.Before(time.Now()) {
				t.Error("verification code should not be expired already")
			}
			if usr.CheckPassword(tt.nu.Password) != nil {
				t.Error("password should be set")
			}
		})
	}

	if want, got := 2, len(emailsvc.SentMessages); got != want {
		t.Errorf("SentMessages = %d; want %d", got, want)
	}

	pending, err := repo.GetUser(ctx, user.GetFilter{Email: "pending@test.cd"})
	if err != nil {
		t.Fatalf("GetUser() failed: %v", err)
	}
	if pending.Username != "pending2" {
		t.Errorf("Username = %q; want the refreshed %q", pending.Username, "pending2")
	}
}

func Test_service_VerifyEmail(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	now := time.Now().UTC()
	seedUser(t, repo, "done", "done@test.cd", "secret", true)
	pending := seedUser(t, repo, "pending", "pending@test.cd", "secret", false)
	pending.VerificationCode = "123456"
	pending.VerificationExpires = now.Add(15 * time.Minute)
	if _, err := repo.UpdateUser(ctx, pending); err != nil {
		t.Fatalf("UpdateUser() failed: %v", err)
	}
	late := seedUser(t, repo, "late", "late@test.cd", "secret", false)
	late.VerificationCode = "654321"
	late.VerificationExpires = now.Add(-time.Minute)
	if _, err := repo.UpdateUser(ctx, late); err != nil {
		t.Fatalf("UpdateUser() failed: %v", err)
	}

	tests := []struct {
		name    string
		email   string
		code    string
		wantErr error
	}{
		{name: "unknown email", email: "lol@test.cd", code: "123456", wantErr: user.ErrNotFound},
		{name: "already verified", email: "done@test.cd", code: "123456", wantErr: user.ErrAlreadyVerified},
		{name: "wrong code", email: "pending@test.cd", code: "000000", wantErr: user.ErrInvalidCode},
		{name: "expired code", email: "late@test.cd", code: "654321", wantErr: user.ErrCodeExpired},
		{name: "verified", email: "pending@test.cd", code: "123456"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := svc.VerifyEmail(ctx, tt.email, tt.code)
			if errors.Cause(err) != tt.wantErr {
				t.Fatalf("VerifyEmail() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if !usr.Verified {
				t.Error("user should be verified")
			}
			if usr.VerificationCode != "" || !usr.VerificationExpires.IsZero() {
				t.Error("verification state should be cleared")
			}
		})
	}
}

func Test_service_Authenticate(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	usr := seedUser(t, repo, "awe", "awe@test.cd", "secret", true)
	seedUser(t, repo, "pending", "pending@test.cd", "secret", false)
	seedUser(t, repo, "goog", "goog@test.cd", "", true) // OAuth-only, no local password

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "unknown email", email: "lol@test.cd", password: "secret", wantErr: user.ErrInvalidCredentials},
		{name: "wrong password", email: "awe@test.cd", password: "lol", wantErr: user.ErrInvalidCredentials},
		{name: "no local password", email: "goog@test.cd", password: "secret", wantErr: user.ErrInvalidCredentials},
		{name: "unverified", email: "pending@test.cd", password: "secret", wantErr: user.ErrNotVerified},
		{name: "authenticated", email: "awe@test.cd", password: "secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Authenticate(ctx, tt.email, tt.password)
			if errors.Cause(err) != tt.wantErr {
				t.Fatalf("Authenticate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && got.ID != usr.ID {
				t.Errorf("Authenticate() = %v; want %v", got.ID, usr.ID)
			}
		})
	}
}

func Test_service_AuthenticateOAuth(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	pending := seedUser(t, repo, "pending", "pending@test.cd", "secret", false)
	seedUser(t, repo, "taken", "other@test.cd", "secret", true)

	t.Run("existing unverified account upgraded", func(t *testing.T) {
		usr, err := svc.AuthenticateOAuth(ctx, user.OAuthProfile{Email: "pending@test.cd", Name: "Pending"})
		if err != nil {
			t.Fatalf("AuthenticateOAuth() error = %v", err)
		}
		if usr.ID != pending.ID || !usr.Verified {
			t.Errorf("got %+v; want user %d upgraded to verified", usr, pending.ID)
		}
	})

	t.Run("first login creates a verified account", func(t *testing.T) {
		usr, err := svc.AuthenticateOAuth(ctx, user.OAuthProfile{Email: "New@test.cd", Name: "Newbie"})
		if err != nil {
			t.Fatalf("AuthenticateOAuth() error = %v", err)
		}
		if !usr.Verified {
			t.Error("OAuth accounts are verified on creation")
		}
		if usr.Email != "new@test.cd" {
			t.Errorf("Email = %q; want lowercased", usr.Email)
		}
		if usr.Username != "Newbie" {
			t.Errorf("Username = %q; want the profile name", usr.Username)
		}
		if usr.HasUsablePassword() {
			t.Error("OAuth accounts have no local password")
		}
	})

	t.Run("username collision falls back to email local part", func(t *testing.T) {
		usr, err := svc.AuthenticateOAuth(ctx, user.OAuthProfile{Email: "fallback@test.cd", Name: "taken"})
		if err != nil {
			t.Fatalf("AuthenticateOAuth() error = %v", err)
		}
		if usr.Username != "fallback" {
			t.Errorf("Username = %q; want %q", usr.Username, "fallback")
		}
	})

	t.Run("full collision gets a suffix", func(t *testing.T) {
		seedUser(t, repo, "clash", "clash@other.cd", "secret", true)
		usr, err := svc.AuthenticateOAuth(ctx, user.OAuthProfile{Email: "clash@test.cd", Name: "clash"})
		if err != nil {
			t.Fatalf("AuthenticateOAuth() error = %v", err)
		}
		if usr.Username == "clash" || len(usr.Username) <= len("clash") {
			t.Errorf("Username = %q; want a suffixed variant of %q", usr.Username, "clash")
		}
	})

	t.Run("second login returns the same account", func(t *testing.T) {
		first, err := svc.AuthenticateOAuth(ctx, user.OAuthProfile{Email: "repeat@test.cd", Name: "Repeat"})
		if err != nil {
			t.Fatalf("AuthenticateOAuth() error = %v", err)
		}
		second, err := svc.AuthenticateOAuth(ctx, user.OAuthProfile{Email: "repeat@test.cd", Name: "Repeat"})
		if err != nil {
			t.Fatalf("AuthenticateOAuth() error = %v", err)
		}
		if first.ID != second.ID {
			t.Errorf("got a new account %d; want %d", second.ID, first.ID)
		}
	})
}
