package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/portalkit/go-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSigningKey = "test-signing-key"

func newTestTokenService() *auth.TokenServiceImpl {
	return auth.NewTokenService([]byte(testSigningKey), 24, "test-issuer", jwt.ClaimStrings{"test:audience"}, nil)
}

func testSnapshot() auth.Snapshot {
	return auth.Snapshot{
		ID:       uuid.New().String(),
		Name:     "Test User",
		Email:    "test@example.com",
		Role:     "admin",
		Username: "testuser",
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful login", func(t *testing.T) {
		mockProvider := new(MockIdentityProvider)
		authenticator := auth.NewAuthenticator(mockProvider, newTestTokenService())

		identity := testSnapshot()

		mockProvider.On("VerifyIdentity", ctx, "test@example.com", "password123").
			Return(identity, nil).Once()

		result, err := authenticator.Login(ctx, "test@example.com", "password123")

		require.NoError(t, err)
		require.NotNil(t, result)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, identity, result.User)

		parsedToken, err := jwt.ParseWithClaims(result.Token, &auth.SessionClaims{}, func(t *jwt.Token) (any, error) {
			return []byte(testSigningKey), nil
		})

		require.NoError(t, err)
		assert.True(t, parsedToken.Valid)

		claims, ok := parsedToken.Claims.(*auth.SessionClaims)
		require.True(t, ok)
		assert.Equal(t, identity.ID, claims.Subject())
		assert.Equal(t, identity.Email, claims.Email())
		assert.Equal(t, "admin", claims.Role())
		assert.Equal(t, "test-issuer", claims.RegisteredClaims.Issuer)
		assert.Equal(t, jwt.ClaimStrings{"test:audience"}, claims.RegisteredClaims.Audience)

		mockProvider.AssertExpectations(t)
	})

	t.Run("Missing credentials", func(t *testing.T) {
		mockProvider := new(MockIdentityProvider)
		authenticator := auth.NewAuthenticator(mockProvider, newTestTokenService())

		result, err := authenticator.Login(ctx, "", "password123")
		require.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "Email and password are required")

		result, err = authenticator.Login(ctx, "test@example.com", "")
		require.Error(t, err)
		assert.Nil(t, result)

		mockProvider.AssertNotCalled(t, "VerifyIdentity")
	})

	t.Run("Failed login returns provider error unchanged", func(t *testing.T) {
		mockProvider := new(MockIdentityProvider)
		authenticator := auth.NewAuthenticator(mockProvider, newTestTokenService())

		mockProvider.On("VerifyIdentity", ctx, "bad@example.com", "wrongpassword").
			Return(auth.Snapshot{}, auth.ErrInvalidCredentials).Once()

		result, err := authenticator.Login(ctx, "bad@example.com", "wrongpassword")

		require.Error(t, err)
		assert.Nil(t, result)
		assert.True(t, auth.IsInvalidCredentialsError(err))

		mockProvider.AssertExpectations(t)
	})

	t.Run("Unknown identifier and wrong password are indistinguishable", func(t *testing.T) {
		mockProvider := new(MockIdentityProvider)
		authenticator := auth.NewAuthenticator(mockProvider, newTestTokenService())

		mockProvider.On("VerifyIdentity", ctx, "ghost@example.com", "whatever").
			Return(auth.Snapshot{}, auth.ErrInvalidCredentials).Once()
		mockProvider.On("VerifyIdentity", ctx, "known@example.com", "wrong").
			Return(auth.Snapshot{}, auth.ErrInvalidCredentials).Once()

		_, errUnknown := authenticator.Login(ctx, "ghost@example.com", "whatever")
		_, errWrongPass := authenticator.Login(ctx, "known@example.com", "wrong")

		require.Error(t, errUnknown)
		require.Error(t, errWrongPass)
		assert.Equal(t, errUnknown.Error(), errWrongPass.Error())

		mockProvider.AssertExpectations(t)
	})

	t.Run("Denied status surfaces regardless of password", func(t *testing.T) {
		mockProvider := new(MockIdentityProvider)
		authenticator := auth.NewAuthenticator(mockProvider, newTestTokenService())

		policy := auth.NewLoginPolicy()
		denial := policy.LoginAllowed(auth.UserStatusSuspended)
		require.Error(t, denial)

		mockProvider.On("VerifyIdentity", ctx, "suspended@example.com", "correct-password").
			Return(auth.Snapshot{}, denial).Once()

		result, err := authenticator.Login(ctx, "suspended@example.com", "correct-password")

		require.Error(t, err)
		assert.Nil(t, result)
		assert.True(t, auth.IsAccountDeniedError(err))
		assert.Contains(t, err.Error(), "This account has been suspended. Please contact support.")

		mockProvider.AssertExpectations(t)
	})
}

func TestLoginIdentityCache(t *testing.T) {
	ctx := context.Background()

	t.Run("Cache hit skips verification", func(t *testing.T) {
		mockProvider := new(MockIdentityProvider)
		authenticator := auth.NewAuthenticator(mockProvider, newTestTokenService())

		identity := testSnapshot()

		mockProvider.On("VerifyIdentity", ctx, identity.Email, "password123").
			Return(identity, nil).Once()

		first, err := authenticator.Login(ctx, identity.Email, "password123")
		require.NoError(t, err)

		// second login inside the cache window never reaches the provider,
		// even with a different password
		second, err := authenticator.Login(ctx, identity.Email, "a-different-password")
		require.NoError(t, err)

		assert.Equal(t, first.User, second.User)
		mockProvider.AssertNumberOfCalls(t, "VerifyIdentity", 1)
	})

	t.Run("Expired entry falls through to the provider", func(t *testing.T) {
		mockProvider := new(MockIdentityProvider)
		authenticator := auth.NewAuthenticator(mockProvider, newTestTokenService()).
			WithCache(auth.NewIdentityCache(8, 20*time.Millisecond))

		identity := testSnapshot()

		mockProvider.On("VerifyIdentity", ctx, identity.Email, "password123").
			Return(identity, nil).Twice()

		_, err := authenticator.Login(ctx, identity.Email, "password123")
		require.NoError(t, err)

		time.Sleep(50 * time.Millisecond)

		_, err = authenticator.Login(ctx, identity.Email, "password123")
		require.NoError(t, err)

		mockProvider.AssertExpectations(t)
	})

	t.Run("Failed verification is not cached", func(t *testing.T) {
		mockProvider := new(MockIdentityProvider)
		authenticator := auth.NewAuthenticator(mockProvider, newTestTokenService())

		identity := testSnapshot()

		mockProvider.On("VerifyIdentity", ctx, identity.Email, "wrong").
			Return(auth.Snapshot{}, auth.ErrInvalidCredentials).Once()
		mockProvider.On("VerifyIdentity", ctx, identity.Email, "password123").
			Return(identity, nil).Once()

		_, err := authenticator.Login(ctx, identity.Email, "wrong")
		require.Error(t, err)

		result, err := authenticator.Login(ctx, identity.Email, "password123")
		require.NoError(t, err)
		assert.Equal(t, identity, result.User)

		mockProvider.AssertExpectations(t)
	})

	t.Run("Disabled cache always verifies", func(t *testing.T) {
		mockProvider := new(MockIdentityProvider)
		authenticator := auth.NewAuthenticator(mockProvider, newTestTokenService()).
			WithCache(nil)

		identity := testSnapshot()

		mockProvider.On("VerifyIdentity", ctx, identity.Email, "password123").
			Return(identity, nil).Twice()

		_, err := authenticator.Login(ctx, identity.Email, "password123")
		require.NoError(t, err)
		_, err = authenticator.Login(ctx, identity.Email, "password123")
		require.NoError(t, err)

		mockProvider.AssertExpectations(t)
	})
}

func TestSessionFromToken(t *testing.T) {
	mockProvider := new(MockIdentityProvider)
	tokener := newTestTokenService()
	authenticator := auth.NewAuthenticator(mockProvider, tokener)

	t.Run("Valid token round trips", func(t *testing.T) {
		identity := testSnapshot()
		token, err := tokener.Generate(identity)
		require.NoError(t, err)

		session, err := authenticator.SessionFromToken(token)
		require.NoError(t, err)
		assert.Equal(t, identity.ID, session.GetUserID())
		assert.Equal(t, identity.Email, session.Email)
		assert.Equal(t, identity.Role, session.Role)
		assert.Equal(t, "test-issuer", session.GetIssuer())
		require.NotNil(t, session.IssuedAt)
		require.NotNil(t, session.ExpirationDate)
	})

	t.Run("Expired token is a typed error", func(t *testing.T) {
		past := time.Now().Add(-48 * time.Hour)
		stale := auth.NewTokenService([]byte(testSigningKey), 24, "test-issuer", jwt.ClaimStrings{"test:audience"}, nil).
			WithClock(func() time.Time { return past })

		token, err := stale.Generate(testSnapshot())
		require.NoError(t, err)

		_, err = authenticator.SessionFromToken(token)
		require.Error(t, err)
		assert.True(t, auth.IsTokenExpiredError(err))
		assert.False(t, auth.IsMalformedError(err))
	})

	t.Run("Garbage token is malformed", func(t *testing.T) {
		_, err := authenticator.SessionFromToken("not.a.token")
		require.Error(t, err)
		assert.False(t, auth.IsTokenExpiredError(err))
	})
}

func TestIdentityFromSession(t *testing.T) {
	ctx := context.Background()
	mockProvider := new(MockIdentityProvider)
	authenticator := auth.NewAuthenticator(mockProvider, newTestTokenService())

	t.Run("Rehydrates through the provider", func(t *testing.T) {
		identity := testSnapshot()
		session := &auth.SessionObject{UserID: identity.ID}

		mockProvider.On("FindIdentityByIdentifier", ctx, identity.ID).
			Return(identity, nil).Once()

		got, err := authenticator.IdentityFromSession(ctx, session)
		require.NoError(t, err)
		assert.Equal(t, identity, got)

		mockProvider.AssertExpectations(t)
	})

	t.Run("Nil or empty session fails", func(t *testing.T) {
		_, err := authenticator.IdentityFromSession(ctx, nil)
		require.Error(t, err)

		_, err = authenticator.IdentityFromSession(ctx, &auth.SessionObject{})
		require.Error(t, err)
	})
}
