package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
)

type Middleware interface {
	ProtectedRoute(cfg Config, errorHandler func(router.Context, error) error) router.MiddlewareFunc
}

// GetRouterSession pulls the validated session out of the request locals
// where the middleware left it.
func GetRouterSession(c router.Context, key string) (*SessionObject, error) {
	value := c.Locals(key)
	if value == nil {
		return nil, ErrUnableToFindSession
	}

	claims, ok := value.(AuthClaims)
	if !ok {
		return nil, ErrUnableToDecodeSession
	}

	return sessionFromAuthClaims(claims)
}

// RegisterAuthRoutes mounts the login, token, and logout endpoints.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {

	controller := NewAuthController(opts...)

	app.
		Post(
			controller.Routes.Login,
			controller.LoginPost,
		).
		SetName("sign-in.post")

	app.
		Post(
			controller.Routes.LoginAPI,
			controller.LoginAPI,
		).
		SetName("sign-in.api.post")

	app.Get(controller.Routes.Logout, controller.LogOut).SetName("sign-out.get")
}

type AuthControllerRoutes struct {
	Login    string
	LoginAPI string
	Logout   string
}

type AuthController struct {
	Debug        bool
	Logger       Logger
	Routes       *AuthControllerRoutes
	Auther       HTTPAuthenticator
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		ErrorHandler: defaultControllerErrHandler,
		Routes: &AuthControllerRoutes{
			Login:    "/login",
			LoginAPI: "/auth/login",
			Logout:   "/logout",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing HTTPAuthenticator in auth controller...")
	}

	return c
}

func WithControllerAuther(auther HTTPAuthenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerRoutes(routes *AuthControllerRoutes) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if routes != nil {
			c.Routes = routes
		}
		return c
	}
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"email"`
	Password   string `form:"password" json:"password"`
	RememberMe bool   `form:"remember_me" json:"remember_me"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Identifier
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// GetExtendedSession reports whether the remember me box was checked
func (r LoginRequest) GetExtendedSession() bool {
	return r.RememberMe
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// loginUserResponse is the user shape the token endpoint returns. The
// password hash never appears, and a missing role reads as "user".
type loginUserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// LoginAPI is the bearer-token login endpoint. Response bodies here are
// a published contract; clients match on them.
func (a *AuthController) LoginAPI(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": "Something went wrong",
		})
	}

	if payload.Identifier == "" || payload.Password == "" {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": ErrMissingCredentials.Message,
		})
	}

	if a.Debug {
		a.Logger.Debug("login attempt", "payload", print.MaybePrettyJSON(payload))
	}

	result, err := a.tokenLogin(ctx, payload)
	if err != nil {
		return a.renderLoginError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   result.Token,
		"user": loginUserResponse{
			ID:    result.User.ID,
			Email: result.User.Email,
			Name:  result.User.Name,
			Role:  result.User.Role,
		},
	})
}

// tokenLogin goes through the bare authenticator when the wrapper exposes
// it, so the token endpoint never touches the session cookie. Cookie
// issuance stays with LoginPost.
func (a *AuthController) tokenLogin(ctx router.Context, payload LoginPayload) (*LoginResult, error) {
	if svc, ok := a.Auther.(interface{ Authenticator() Authenticator }); ok {
		return svc.Authenticator().Login(ctx.Context(), payload.GetIdentifier(), payload.GetPassword())
	}
	return a.Auther.Login(ctx, payload)
}

// LoginPost is the browser form flow. It sets the session cookie and
// bounces back to wherever the user was headed.
func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("login validate payload", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Redirect(a.Routes.Login, router.StatusSeeOther)
	}

	if _, err := a.Auther.Login(ctx, payload); err != nil {
		a.Logger.Error("login failed", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message": loginErrorMessage(err),
		}).Redirect(a.Routes.Login, router.StatusSeeOther)
	}

	redirect := a.Auther.GetRedirect(ctx, "/")

	return ctx.Redirect(redirect, router.StatusSeeOther)
}

func (a *AuthController) LogOut(ctx router.Context) error {
	a.Auther.Logout(ctx)
	return ctx.Redirect("/", router.StatusTemporaryRedirect)
}

func (a *AuthController) renderLoginError(ctx router.Context, err error) error {
	switch {
	case IsInvalidCredentialsError(err):
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": ErrInvalidCredentials.Message,
		})
	case IsAccountDeniedError(err):
		return ctx.JSON(router.StatusForbidden, map[string]string{
			"error": loginErrorMessage(err),
		})
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeMissingCredentials {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": richErr.Message,
		})
	}

	a.Logger.Error("login error", "error", err)
	return ctx.JSON(router.StatusInternalServerError, map[string]string{
		"error": "Something went wrong",
	})
}

func loginErrorMessage(err error) string {
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.Message != "" {
		return richErr.Message
	}
	return ErrInvalidCredentials.Message
}

func defaultControllerErrHandler(c router.Context, err error) error {
	return c.JSON(router.StatusInternalServerError, map[string]string{
		"error": "Something went wrong",
	})
}
