// Package middleware authenticates requests under the bearer and cookie
// schemes and enforces authorization policies per route.
package middleware

import (
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/cagmc/jwtauth/internal/identity"
	"github.com/cagmc/jwtauth/pkg/logging"
)

const (
	bearerKey    = "principal.bearer"
	cookieKey    = "principal.cookie"
	principalKey = "principal"
)

type TokenParser interface {
	ParseAccessToken(token string) (*identity.Principal, error)
	ParseSessionToken(token string) (*identity.Principal, error)
}

// BearerAuth authenticates "Authorization: Bearer <token>". A missing or
// invalid token leaves the request anonymous under this scheme.
func BearerAuth(tokens TokenParser) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  bearerKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(_ echo.Context, auth string) (any, error) {
			return tokens.ParseAccessToken(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if strings.HasPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ") {
				logging.FromContext(c.Request().Context()).Debug("bearer_rejected", "error", err)
			}
			return nil
		},
		ContinueOnIgnoredError: true,
	})
}

// CookieAuth authenticates the signed session cookie called name.
func CookieAuth(tokens TokenParser, name string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  cookieKey,
		TokenLookup: "cookie:" + name,
		ParseTokenFunc: func(_ echo.Context, auth string) (any, error) {
			return tokens.ParseSessionToken(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if _, cerr := c.Cookie(name); cerr == nil {
				logging.FromContext(c.Request().Context()).Debug("session_cookie_rejected", "error", err)
			}
			return nil
		},
		ContinueOnIgnoredError: true,
	})
}

// Principals returns what each scheme authenticated for this request.
func Principals(c echo.Context) map[identity.Scheme]*identity.Principal {
	out := make(map[identity.Scheme]*identity.Principal, 2)
	if p, ok := c.Get(bearerKey).(*identity.Principal); ok && p != nil {
		out[identity.SchemeBearer] = p
	}
	if p, ok := c.Get(cookieKey).(*identity.Principal); ok && p != nil {
		out[identity.SchemeCookie] = p
	}
	return out
}

// PrincipalFrom returns the principal admitted by Require, or nil.
func PrincipalFrom(c echo.Context) *identity.Principal {
	p, _ := c.Get(principalKey).(*identity.Principal)
	return p
}
