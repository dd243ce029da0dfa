package auth

import (
	"context"
	"runtime"
	"time"

	"github.com/goliatone/go-errors"
	"golang.org/x/sync/semaphore"
)

// UserStore is the projection of the credential store the verifier needs:
// a lookup by login identifier and a best-effort last-login write.
type UserStore interface {
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
	TrackSuccessfulLogin(ctx context.Context, user *User) error
}

// trackLoginTimeout bounds the detached last-login write.
const trackLoginTimeout = 5 * time.Second

// UserProvider verifies submitted credentials against a UserStore.
//
// The bcrypt comparison is CPU bound, so concurrent verifications are
// gated by a weighted semaphore sized to the core count instead of being
// allowed to pile onto the scheduler all at once.
type UserProvider struct {
	store    UserStore
	policy   *LoginPolicy
	hasher   PasswordAuthenticator
	hashGate *semaphore.Weighted
	logger   Logger
}

// UserProviderOption customizes the provider.
type UserProviderOption func(*UserProvider)

// WithLoginPolicy replaces the default status policy.
func WithLoginPolicy(policy *LoginPolicy) UserProviderOption {
	return func(u *UserProvider) {
		if policy != nil {
			u.policy = policy
		}
	}
}

// WithPasswordAuthenticator replaces the bcrypt-backed default.
func WithPasswordAuthenticator(hasher PasswordAuthenticator) UserProviderOption {
	return func(u *UserProvider) {
		if hasher != nil {
			u.hasher = hasher
		}
	}
}

// WithHashConcurrency bounds how many password comparisons run at once.
func WithHashConcurrency(n int64) UserProviderOption {
	return func(u *UserProvider) {
		if n > 0 {
			u.hashGate = semaphore.NewWeighted(n)
		}
	}
}

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserStore, opts ...UserProviderOption) *UserProvider {
	u := &UserProvider{
		store:    store,
		policy:   NewLoginPolicy(),
		hasher:   BcryptHasher{},
		hashGate: semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
		logger:   defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(u)
		}
	}

	return u
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

// VerifyIdentity fetches the record, applies the status policy, and checks
// the password. A missing record and a wrong password return the identical
// error so the two stay indistinguishable to callers.
func (u *UserProvider) VerifyIdentity(ctx context.Context, identifier, password string) (Snapshot, error) {
	user, err := u.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return Snapshot{}, ErrInvalidCredentials
		}
		return Snapshot{}, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user == nil {
		return Snapshot{}, ErrInvalidCredentials
	}

	user.EnsureStatus()

	// status gate runs before the password check; see LoginPolicy
	if err := u.policy.LoginAllowed(user.Status); err != nil {
		return Snapshot{}, err
	}

	if err := u.comparePassword(ctx, password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			return Snapshot{}, ErrInvalidCredentials
		}
		return Snapshot{}, err
	}

	u.trackLogin(user)

	return user.Snapshot(), nil
}

// FindIdentityByIdentifier resolves an identity without checking a
// password; used to rehydrate sessions.
func (u *UserProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (Snapshot, error) {
	user, err := u.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		return Snapshot{}, err
	}

	if user == nil {
		return Snapshot{}, ErrInvalidCredentials
	}

	user.EnsureStatus()

	if err := u.policy.LoginAllowed(user.Status); err != nil {
		return Snapshot{}, err
	}

	return user.Snapshot(), nil
}

func (u *UserProvider) comparePassword(ctx context.Context, password, hash string) error {
	if err := u.hashGate.Acquire(ctx, 1); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "verification canceled while waiting for hash slot")
	}
	defer u.hashGate.Release(1)

	return u.hasher.ComparePasswordAndHash(password, hash)
}

// trackLogin schedules the last-login update without blocking the
// response. Failures are logged and swallowed; there is no retry.
func (u *UserProvider) trackLogin(user *User) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), trackLoginTimeout)
		defer cancel()

		if err := u.store.TrackSuccessfulLogin(ctx, user); err != nil {
			u.logger.Error("failed to track successful login", "error", err, "user_id", user.ID.String())
		}
	}()
}

var _ IdentityProvider = (*UserProvider)(nil)
