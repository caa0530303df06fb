package user

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/tawaslapp/tawasl/core"
)

var (
	codeMax = big.NewInt(1000000)

	NowFunc = time.Now // mockable
)

// GenerateVerificationCode produces a uniformly random 6-digit decimal
// string; leading zeros are allowed.
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeMax)
	if err != nil {
		return "", errors.Wrap(err, "generating verification code")
	}
	return fmt.Sprintf("%06d", n), nil
}

func verificationMail(usr User, code string) *core.EmailMessage {
	return &core.EmailMessage{
		To:          []mail.Address{{Name: usr.Username, Address: usr.Email}},
		Subject:     "Your Verification Code",
		TextContent: fmt.Sprintf("Your verification code is: %s", code),
		HTMLContent: fmt.Sprintf("<p>Your verification code is: <b>%s</b></p>", code),
	}
}
