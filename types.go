package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-router"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Authenticator is the single login service both HTTP surfaces call into.
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (*LoginResult, error)
	SessionFromToken(token string) (*SessionObject, error)
	IdentityFromSession(ctx context.Context, session *SessionObject) (Snapshot, error)
}

// LoginResult carries the signed token along with the verified identity
// snapshot so callers can build their response without a second lookup.
type LoginResult struct {
	Token string   `json:"token"`
	User  Snapshot `json:"user"`
}

type LoginPayload interface {
	GetIdentifier() string
	GetPassword() string
	GetExtendedSession() bool
}

type HTTPAuthenticator interface {
	Middleware
	Login(c router.Context, payload LoginPayload) (*LoginResult, error)
	Logout(c router.Context)
	SetRedirect(c router.Context)
	GetRedirect(c router.Context, def ...string) string
	GetRedirectOrDefault(c router.Context) string
	MakeClientRouteAuthErrorHandler(optionalAuth bool) func(c router.Context, err error) error
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() int
	GetExtendedTokenDuration() int
	GetSessionUpdateAge() int
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
	GetRejectedRouteKey() string
	GetRejectedRouteDefault() string
	GetBaseURL() string
}

// IdentityProvider verifies credentials against the backing store and
// returns the cacheable, hash-stripped view of the account.
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, identifier, password string) (Snapshot, error)
	FindIdentityByIdentifier(ctx context.Context, identifier string) (Snapshot, error)
}

// IdentityCache keeps verified identity snapshots around for a short window
// so repeat logins skip the store round trip.
type IdentityCache interface {
	Lookup(key string) (Snapshot, bool)
	Store(key string, snap Snapshot)
}

// PasswordAuthenticator hashes and verifies stored credentials.
// BcryptHasher is the default; UserProvider takes any implementation.
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// TokenService issues and validates signed session tokens.
type TokenService interface {
	Generate(snap Snapshot) (string, error)
	SignClaims(claims *SessionClaims) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

// Snapshot is the subset of a credential record that is safe to cache and
// hand back to callers. The password hash never appears here.
type Snapshot struct {
	ID        string     `json:"id"`
	Name      string     `json:"name,omitempty"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Username  string     `json:"username,omitempty"`
	Avatar    string     `json:"avatar,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// IsZero reports whether the snapshot carries no identity.
func (s Snapshot) IsZero() bool {
	return s.ID == "" && s.Email == ""
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
