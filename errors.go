package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeMissingCredentials = "MISSING_CREDENTIALS"
	TextCodeAccountSuspended   = "ACCOUNT_SUSPENDED"
	TextCodeAccountBlocked     = "ACCOUNT_BLOCKED"
	TextCodeAccountBanned      = "ACCOUNT_BANNED"
	TextCodeAccountDenied      = "ACCOUNT_DENIED"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
)

// ErrInvalidCredentials covers both an unknown identifier and a wrong
// password. The two causes must stay indistinguishable to callers.
var ErrInvalidCredentials = errors.New("Invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrMissingCredentials is returned when the login payload omits the email
// or the password. The message is part of the HTTP contract.
var ErrMissingCredentials = errors.New("Email and password are required", errors.CategoryValidation).
	WithTextCode(TextCodeMissingCredentials).
	WithCode(errors.CodeBadRequest)

// ErrTokenExpired is returned for tokens with a valid signature past their
// expiry. Distinct from malformed so callers can prompt a re-login.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tampered or undecodable tokens.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToFindSession is the error when our request has no cookie
var ErrUnableToFindSession = errors.New("unable to find session", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToDecodeSession unable to decode JWT from session cookie
var ErrUnableToDecodeSession = errors.New("unable to decode session", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrMismatchedHashAndPassword is the bcrypt mismatch, kept internal to the
// verifier; callers see ErrInvalidCredentials.
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects hashing the empty password
var ErrNoEmptyString = errors.New("password can not be an empty string", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

// IsInvalidCredentialsError checks for the unified 401 class.
func IsInvalidCredentialsError(err error) bool {
	var rich *errors.Error
	if errors.As(err, &rich) {
		return rich.TextCode == TextCodeInvalidCredentials
	}
	return false
}

// IsAccountDeniedError checks for status-policy rejections (403 class).
func IsAccountDeniedError(err error) bool {
	var rich *errors.Error
	if errors.As(err, &rich) {
		switch rich.TextCode {
		case TextCodeAccountSuspended, TextCodeAccountBlocked, TextCodeAccountBanned, TextCodeAccountDenied:
			return true
		}
	}
	return false
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == TextCodeTokenExpired {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == TextCodeTokenMalformed {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
