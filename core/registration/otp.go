package registration

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

type OTPRepository interface {
	CreateOTP(ctx context.Context, otp OTP) (OTP, error)
	// GetLatestOTP returns the most recently issued unused code for the email.
	GetLatestOTP(ctx context.Context, email, code string) (OTP, error)
	MarkOTPUsed(ctx context.Context, id string) error
	// HasVerifiedOTP reports whether the email owns at least one used
	// (i.e. successfully verified) code.
	HasVerifiedOTP(ctx context.Context, email string) (bool, error)
}

// GenerateOTPCode returns a random 6-digit numeric code.
func GenerateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
