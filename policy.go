package auth

import (
	"github.com/goliatone/go-errors"
)

// LoginPolicy decides which account statuses may log in and carries the
// exact rejection message per status. Both HTTP surfaces share one policy
// so their messages can't drift apart.
//
// The policy runs before the password check, so a denied account gets its
// status message even when the submitted password is wrong.
type LoginPolicy struct {
	denyUnknown bool
}

// LoginPolicyOption customizes policy behavior.
type LoginPolicyOption func(*LoginPolicy)

// DenyUnknownStatus flips the default for unrecognized status strings from
// allow to deny. The permissive default matches the portal's historical
// behavior; flip it once every status writer is on the known set.
func DenyUnknownStatus() LoginPolicyOption {
	return func(p *LoginPolicy) {
		p.denyUnknown = true
	}
}

// NewLoginPolicy returns the default policy: active (or absent) statuses
// log in, suspended/blocked/banned do not, anything else is treated as
// active.
func NewLoginPolicy(opts ...LoginPolicyOption) *LoginPolicy {
	p := &LoginPolicy{}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// LoginAllowed returns nil when the status permits login, otherwise the
// typed rejection for that status.
func (p *LoginPolicy) LoginAllowed(status UserStatus) error {
	switch NormalizeStatus(status) {
	case "", UserStatusActive:
		return nil
	case UserStatusSuspended:
		return errors.New("This account has been suspended. Please contact support.", errors.CategoryAuth).
			WithTextCode(TextCodeAccountSuspended).
			WithCode(errors.CodeForbidden)
	case UserStatusBlocked:
		return errors.New("This account has been blocked. Please contact support.", errors.CategoryAuth).
			WithTextCode(TextCodeAccountBlocked).
			WithCode(errors.CodeForbidden)
	case UserStatusBanned:
		return errors.New("This account has been banned. Please contact support.", errors.CategoryAuth).
			WithTextCode(TextCodeAccountBanned).
			WithCode(errors.CodeForbidden)
	default:
		if p.denyUnknown {
			return errors.New("This account is not allowed to sign in.", errors.CategoryAuth).
				WithTextCode(TextCodeAccountDenied).
				WithCode(errors.CodeForbidden).
				WithMetadata(map[string]any{"status": string(status)})
		}
		return nil
	}
}
