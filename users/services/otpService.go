package services

import (
	"strings"

	"github.com/pquerna/otp/totp"
)

// ValidateTOTPCode checks a 6 digit authenticator code against the user's
// secret, allowing one period of clock skew.
func ValidateTOTPCode(secret, code string) bool {
	code = strings.TrimSpace(code)
	if secret == "" || code == "" {
		return false
	}
	return totp.Validate(code, secret)
}
