package auth

import (
	"context"

	"github.com/goliatone/go-errors"
)

// Auther orchestrates a login: cache lookup, credential verification, and
// token issuance. It is safe for concurrent use.
type Auther struct {
	provider IdentityProvider
	tokener  TokenService
	cache    IdentityCache
	logger   Logger
}

// NewAuthenticator returns an Auther wired to the given provider and token
// service with the default identity cache.
func NewAuthenticator(provider IdentityProvider, tokener TokenService) *Auther {
	return &Auther{
		provider: provider,
		tokener:  tokener,
		cache:    NewIdentityCache(DefaultCacheSize, DefaultCacheTTL),
		logger:   defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithCache swaps the identity cache. Passing nil disables caching.
func (s *Auther) WithCache(cache IdentityCache) *Auther {
	s.cache = cache
	return s
}

// TokenService exposes the signing service so HTTP wrappers validate
// with the same one that signs at login.
func (s *Auther) TokenService() TokenService {
	return s.tokener
}

// Login resolves the identity for the given credentials and signs a
// session token for it.
//
// A cache hit short-circuits verification entirely: the password is not
// checked again inside the cache window. A miss goes through the provider,
// and only a verified identity is stored back.
func (s *Auther) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	if identifier == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	identity, err := s.resolveIdentity(ctx, identifier, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokener.Generate(identity)
	if err != nil {
		s.logger.Error("failed to sign session token", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to generate session token")
	}

	return &LoginResult{Token: token, User: identity}, nil
}

func (s *Auther) resolveIdentity(ctx context.Context, identifier, password string) (Snapshot, error) {
	if s.cache != nil {
		if identity, ok := s.cache.Lookup(identifier); ok {
			s.logger.Debug("identity cache hit", "identifier", identifier)
			return identity, nil
		}
	}

	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		return Snapshot{}, err
	}

	if s.cache != nil {
		s.cache.Store(identifier, identity)
	}

	return identity, nil
}

// SessionFromToken validates the raw token and decodes it into a session.
func (s *Auther) SessionFromToken(token string) (*SessionObject, error) {
	claims, err := s.tokener.Validate(token)
	if err != nil {
		if IsTokenExpiredError(err) {
			return nil, err
		}
		return nil, errors.Wrap(err, ErrUnableToDecodeSession.Category, ErrUnableToDecodeSession.Message)
	}

	return sessionFromAuthClaims(claims)
}

// IdentityFromSession rehydrates the full identity behind a session,
// re-applying the status policy as it goes.
func (s *Auther) IdentityFromSession(ctx context.Context, session *SessionObject) (Snapshot, error) {
	if session == nil || session.GetUserID() == "" {
		return Snapshot{}, ErrUnableToFindSession
	}

	return s.provider.FindIdentityByIdentifier(ctx, session.GetUserID())
}

var _ Authenticator = (*Auther)(nil)
