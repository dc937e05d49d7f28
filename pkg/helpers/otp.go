package helpers

import (
	"crypto/rand"
	"fmt"
)

// KeyPasswordResetOTP is the Redis key holding the active password-reset OTP
// for a user. One key per user, so issuing a new code replaces the old one.
func KeyPasswordResetOTP(uid string) string {
	return "pwd:otp:" + uid
}

// GenOTPCode generates a secure random 6-digit OTP code as a zero-padded string
func GenOTPCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	// 6 digits: map random bytes to 000000-999999
	n := int(b[0])<<24 | int(b[1])<<16 | int(b[2])<<8 | int(b[3])
	if n < 0 {
		n = -n
	}
	return fmt.Sprintf("%06d", n%1000000), nil
}
