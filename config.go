package auth

// Defaults used by StaticConfig when a field is left at its zero value.
const (
	DefaultContextKey           = "user"
	DefaultTokenLookup          = "cookie:" + SessionCookieName + ",header:Authorization"
	DefaultAuthScheme           = "Bearer"
	DefaultRejectedRouteKey     = "redirect"
	DefaultRejectedRouteDefault = "/login"

	// DefaultSessionUpdateAge is how old a session has to be, in hours,
	// before a validated request gets a fresh token.
	DefaultSessionUpdateAge = 24

	// DefaultExtendedTokenDuration is the remember-me expiration, in hours.
	DefaultExtendedTokenDuration = 24 * 30
)

// StaticConfig is a plain value implementation of Config. Zero fields fall
// back to the package defaults, so the minimal useful value is
// StaticConfig{SigningKey: "..."}.
type StaticConfig struct {
	SigningKey            string
	SigningMethod         string
	ContextKey            string
	TokenExpiration       int
	ExtendedTokenDuration int
	SessionUpdateAge      int
	TokenLookup           string
	AuthScheme            string
	Issuer                string
	Audience              []string
	RejectedRouteKey      string
	RejectedRouteDefault  string
	BaseURL               string
}

func (c StaticConfig) GetSigningKey() string { return c.SigningKey }

func (c StaticConfig) GetSigningMethod() string {
	if c.SigningMethod == "" {
		return "HS256"
	}
	return c.SigningMethod
}

func (c StaticConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return DefaultContextKey
	}
	return c.ContextKey
}

func (c StaticConfig) GetTokenExpiration() int {
	if c.TokenExpiration <= 0 {
		return DefaultTokenExpiration
	}
	return c.TokenExpiration
}

func (c StaticConfig) GetExtendedTokenDuration() int {
	if c.ExtendedTokenDuration <= 0 {
		return DefaultExtendedTokenDuration
	}
	return c.ExtendedTokenDuration
}

func (c StaticConfig) GetSessionUpdateAge() int {
	if c.SessionUpdateAge <= 0 {
		return DefaultSessionUpdateAge
	}
	return c.SessionUpdateAge
}

func (c StaticConfig) GetTokenLookup() string {
	if c.TokenLookup == "" {
		return DefaultTokenLookup
	}
	return c.TokenLookup
}

func (c StaticConfig) GetAuthScheme() string {
	if c.AuthScheme == "" {
		return DefaultAuthScheme
	}
	return c.AuthScheme
}

func (c StaticConfig) GetIssuer() string { return c.Issuer }

func (c StaticConfig) GetAudience() []string { return c.Audience }

func (c StaticConfig) GetRejectedRouteKey() string {
	if c.RejectedRouteKey == "" {
		return DefaultRejectedRouteKey
	}
	return c.RejectedRouteKey
}

func (c StaticConfig) GetRejectedRouteDefault() string {
	if c.RejectedRouteDefault == "" {
		return DefaultRejectedRouteDefault
	}
	return c.RejectedRouteDefault
}

func (c StaticConfig) GetBaseURL() string { return c.BaseURL }

var _ Config = StaticConfig{}
