package registration

import (
	"crypto/rand"
	"math/big"

	"github.com/pkg/errors"
)

var (
	pwdLower   = "abcdefghijkmnopqrstuvwxyz"
	pwdUpper   = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	pwdDigits  = "23456789"
	pwdSpecial = "!@#$%&*+-="
	pwdAll     = pwdLower + pwdUpper + pwdDigits + pwdSpecial
)

// GeneratePassword returns a random 12-character credential guaranteed to
// satisfy the password policy, with look-alike characters left out.
func GeneratePassword() (string, error) {
	pick := func(charset string) (byte, error) {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return 0, err
		}
		return charset[n.Int64()], nil
	}

	pwd := make([]byte, 12)
	var err error
	// one of each class, the rest from the full set
	for i, charset := range []string{pwdLower, pwdUpper, pwdDigits, pwdSpecial} {
		if pwd[i], err = pick(charset); err != nil {
			return "", errors.Wrap(err, "generating password")
		}
	}
	for i := 4; i < len(pwd); i++ {
		if pwd[i], err = pick(pwdAll); err != nil {
			return "", errors.Wrap(err, "generating password")
		}
	}

	// shuffle so class positions are not predictable
	for i := len(pwd) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", errors.Wrap(err, "generating password")
		}
		j := n.Int64()
		pwd[i], pwd[j] = pwd[j], pwd[i]
	}
	return string(pwd), nil
}
