package main

import (
	"context"
	"time"

	"github.com/tawaslapp/tawasl/core"
	"github.com/tawaslapp/tawasl/core/user"
)

// addUser updates or creates a user.User. Accounts created here are
// verified immediately; this is how the first admin is bootstrapped.
func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	var usr user.User
	var err error
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	now := time.Now().UTC()

	if usr, err = cli.usrRepo.GetUser(ctx, user.GetFilter{Email: email}); err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Username:  uname,
			Email:     email,
			CreatedAt: now,
		}
	}
	usr.Username = uname
	usr.Verified = true
	usr.IsAdmin = isAdmin
	usr.VerificationCode = ""
	usr.VerificationExpires = time.Time{}
	usr.UpdatedAt = now
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	if usr.ID == 0 {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	}
	return err
}
