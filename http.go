package auth

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/portalkit/go-auth/middleware/jwtware"
)

// SessionCookieName is the cookie that carries the session token.
const SessionCookieName = "session_token"

type RouteAuthenticator struct {
	auth                   Authenticator
	cfg                    Config
	tokener                TokenService
	cookieDuration         time.Duration
	extendedCookieDuration time.Duration
	updateAge              time.Duration
	Logger                 Logger
	AuthErrorHandler       func(c router.Context, err error) error
	ErrorHandler           func(c router.Context, err error) error
}

// tokenServiceProvider is satisfied by Auther. When the wrapped
// authenticator exposes its token service, the middleware validates with
// the service that signed the login token instead of building a second
// one from Config.
type tokenServiceProvider interface {
	TokenService() TokenService
}

func NewHTTPAuthenticator(auther Authenticator, cfg Config) (*RouteAuthenticator, error) {
	var tokener TokenService
	if p, ok := auther.(tokenServiceProvider); ok {
		tokener = p.TokenService()
	}

	if tokener == nil {
		if cfg.GetSigningKey() == "" {
			return nil, errors.New("auth: signing key is required", errors.CategoryValidation)
		}
		tokener = NewTokenService(
			[]byte(cfg.GetSigningKey()),
			cfg.GetTokenExpiration(),
			cfg.GetIssuer(),
			jwt.ClaimStrings(cfg.GetAudience()),
			defLogger{},
		)
	}

	cookieDuration := 24 * time.Hour
	if cfg.GetTokenExpiration() > 0 {
		cookieDuration = time.Duration(cfg.GetTokenExpiration()) * time.Hour
	}

	extendedCookieDuration := cookieDuration
	if cfg.GetExtendedTokenDuration() > 0 {
		extendedCookieDuration = time.Duration(cfg.GetExtendedTokenDuration()) * time.Hour
	}

	updateAge := 24 * time.Hour
	if cfg.GetSessionUpdateAge() > 0 {
		updateAge = time.Duration(cfg.GetSessionUpdateAge()) * time.Hour
	}

	a := &RouteAuthenticator{
		cfg:                    cfg,
		auth:                   auther,
		tokener:                tokener,
		Logger:                 defLogger{},
		cookieDuration:         cookieDuration,
		extendedCookieDuration: extendedCookieDuration,
		updateAge:              updateAge,
	}

	a.ErrorHandler = a.defaultErrHandler
	a.AuthErrorHandler = a.defaultAuthErrHandler

	return a, nil
}

// WithTokenService swaps the token service the middleware validates with.
func (a *RouteAuthenticator) WithTokenService(tokener TokenService) *RouteAuthenticator {
	if tokener != nil {
		a.tokener = tokener
	}
	return a
}

// TokenService returns the service the middleware validates with.
func (a *RouteAuthenticator) TokenService() TokenService {
	return a.tokener
}

// Authenticator returns the wrapped login service.
func (a *RouteAuthenticator) Authenticator() Authenticator {
	return a.auth
}

func (a RouteAuthenticator) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

func (a RouteAuthenticator) GetExtendedCookieDuration() time.Duration {
	return a.extendedCookieDuration
}

func (a *RouteAuthenticator) ProtectedRoute(cfg Config, errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	return jwtware.New(jwtware.Config{
		ErrorHandler:   errorHandler,
		AuthScheme:     cfg.GetAuthScheme(),
		ContextKey:     cfg.GetContextKey(),
		TokenLookup:    cfg.GetTokenLookup(),
		TokenValidator: tokenValidator{a.tokener},
		RefreshHandler: a.refreshAgingSession,
	})
}

// Login verifies the payload credentials, sets the session cookie, and
// returns the result so the caller can shape its own response body.
func (a *RouteAuthenticator) Login(ctx router.Context, payload LoginPayload) (*LoginResult, error) {
	result, err := a.auth.Login(ctx.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("Login error", "error", err)
		return nil, err
	}

	duration := a.cookieDuration
	if payload.GetExtendedSession() {
		duration = a.extendedCookieDuration
	}

	a.setCookieToken(ctx, result.Token, duration)
	return result, nil
}

func (a *RouteAuthenticator) Logout(ctx router.Context) {
	a.cookieDel(ctx, SessionCookieName)
}

func (a *RouteAuthenticator) MakeClientRouteAuthErrorHandler(optional bool) func(router.Context, error) error {
	return func(ctx router.Context, err error) error {
		var richErr *errors.Error

		if IsTokenExpiredError(err) {
			richErr = ErrTokenExpired
		} else if IsMalformedError(err) {
			richErr = ErrTokenMalformed
		} else {
			richErr = errors.Wrap(err, errors.CategoryAuth, "Invalid authentication token").
				WithCode(errors.CodeUnauthorized)
		}

		if optional {
			a.Logger.Info("Optional auth failed, proceeding", "error", richErr.Message)
			return ctx.Next()
		}

		return a.ErrorHandler(ctx, richErr)
	}
}

func (a *RouteAuthenticator) GetRedirect(ctx router.Context, def ...string) string {
	rejectedRoute := a.cfg.GetRejectedRouteKey()
	r := ctx.Cookies(rejectedRoute)
	if r == "" {
		if len(def) > 0 {
			return def[0]
		}
		return a.cfg.GetRejectedRouteDefault()
	}
	a.cookieDel(ctx, rejectedRoute)
	return a.SafeRedirect(r)
}

func (a *RouteAuthenticator) GetRedirectOrDefault(ctx router.Context) string {
	rejectedRoute := a.cfg.GetRejectedRouteKey()
	refererHeader := string(ctx.Referer())

	r := ctx.Cookies(rejectedRoute, refererHeader)
	if r == "" {
		r = a.cfg.GetRejectedRouteDefault()
	}
	a.cookieDel(ctx, rejectedRoute)
	return a.SafeRedirect(r)
}

func (a *RouteAuthenticator) SetRedirect(ctx router.Context) {
	rejectedRoute := a.cfg.GetRejectedRouteKey()

	a.Logger.Info("Setting redirect cookie", "key", rejectedRoute, "path", ctx.OriginalURL())

	ctx.Cookie(&router.Cookie{
		Name:     rejectedRoute,
		Value:    ctx.OriginalURL(),
		Expires:  time.Now().Add(time.Minute * 5),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// SafeRedirect filters a redirect target so logins can never bounce the
// browser to a foreign origin. Relative paths pass as long as they are
// not protocol-relative; absolute URLs pass only when they share the
// configured base URL's scheme and host. Everything else falls back to
// the rejected-route default.
func (a *RouteAuthenticator) SafeRedirect(target string) string {
	fallback := a.cfg.GetRejectedRouteDefault()

	target = strings.TrimSpace(target)
	if target == "" {
		return fallback
	}

	if strings.HasPrefix(target, "/") {
		if strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
			return fallback
		}
		return target
	}

	dest, err := url.Parse(target)
	if err != nil || !dest.IsAbs() {
		return fallback
	}

	base, err := url.Parse(a.cfg.GetBaseURL())
	if err != nil || base.Host == "" {
		return fallback
	}

	if dest.Scheme == base.Scheme && dest.Host == base.Host {
		return target
	}

	return fallback
}

// refreshAgingSession reissues the session token once it is older than
// the update age but still valid, keeping active users signed in. The
// request proceeds with the old token either way.
func (a *RouteAuthenticator) refreshAgingSession(c router.Context, claims jwtware.AuthClaims) {
	session, err := sessionFromAuthClaims(claims)
	if err != nil || !session.NeedsRefresh(a.updateAge, time.Now()) {
		return
	}

	token, err := a.tokener.Generate(Snapshot{
		ID:    session.UserID,
		Email: session.Email,
		Role:  session.Role,
	})
	if err != nil {
		a.Logger.Warn("failed to refresh session token", "error", err, "user_id", session.UserID)
		return
	}

	a.setCookieToken(c, token, a.cookieDuration)
}

func (a *RouteAuthenticator) setCookieToken(c router.Context, val string, duration time.Duration) {
	c.Cookie(&router.Cookie{
		Name:     SessionCookieName,
		Value:    val,
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) defaultAuthErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "An unexpected authentication error").
			WithCode(errors.CodeUnauthorized)
	}

	a.Logger.Info(
		"Authentication error, redirecting to login",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"path", c.OriginalURL(),
	)

	a.SetRedirect(c)

	statusCode := http.StatusSeeOther
	if c.Method() == string(router.GET) {
		statusCode = http.StatusFound
	}
	return c.Redirect("/login", statusCode)
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Info(
		"Middleware error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return a.AuthErrorHandler(c, richErr)
	default:
		return c.JSON(richErr.Code, map[string]string{
			"error": "Something went wrong",
		})
	}
}

// tokenValidator adapts TokenService to the middleware's validator
// interface.
type tokenValidator struct {
	ts TokenService
}

func (v tokenValidator) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := v.ts.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

var _ HTTPAuthenticator = (*RouteAuthenticator)(nil)
