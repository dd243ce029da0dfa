package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionObject is the ephemeral session derived from a validated token,
// optionally enriched with profile fields when built straight from a login.
type SessionObject struct {
	UserID         string     `json:"user_id,omitempty"`
	Email          string     `json:"email,omitempty"`
	Role           string     `json:"role,omitempty"`
	Name           string     `json:"name,omitempty"`
	Username       string     `json:"username,omitempty"`
	Avatar         string     `json:"avatar,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
	Issuer         string     `json:"issuer,omitempty"`
	IssuedAt       *time.Time `json:"issued_at,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

func (s *SessionObject) GetUserID() string {
	return s.UserID
}

func (s *SessionObject) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(s.UserID)
}

func (s *SessionObject) GetIssuer() string {
	return s.Issuer
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

// Expired reports whether the session is past its expiration at now.
func (s *SessionObject) Expired(now time.Time) bool {
	if s.ExpirationDate == nil {
		return false
	}
	return now.After(*s.ExpirationDate)
}

// NeedsRefresh implements the sliding-session rule: a session older than
// updateAge but not yet expired should be reissued with a fresh window on
// its next validated use; a younger one is reused unchanged. There is no
// absolute lifetime cap, each refresh grants a full new window.
func (s *SessionObject) NeedsRefresh(updateAge time.Duration, now time.Time) bool {
	if s.IssuedAt == nil {
		return false
	}
	if s.Expired(now) {
		return false
	}
	return now.Sub(*s.IssuedAt) > updateAge
}

func (s SessionObject) String() string {
	issuedAt := "<nil>"
	if s.IssuedAt != nil {
		issuedAt = s.IssuedAt.Format(time.RFC1123)
	}
	return fmt.Sprintf(
		"user=%s email=%s role=%s iss=%s iat=%s",
		s.UserID,
		s.Email,
		s.Role,
		s.Issuer,
		issuedAt,
	)
}

// sessionFromAuthClaims creates a SessionObject from validated claims.
func sessionFromAuthClaims(claims AuthClaims) (*SessionObject, error) {
	if claims == nil {
		return nil, ErrUnableToDecodeSession
	}

	issuedAt := claims.IssuedAt()
	expiresAt := claims.Expires()

	session := &SessionObject{
		UserID: claims.UserID(),
		Email:  claims.Email(),
		Role:   claims.Role(),
	}

	if sc, ok := claims.(*SessionClaims); ok {
		session.Issuer = sc.RegisteredClaims.Issuer
	}

	if !issuedAt.IsZero() {
		session.IssuedAt = &issuedAt
	}
	if !expiresAt.IsZero() {
		session.ExpirationDate = &expiresAt
	}

	return session, nil
}
