package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type CSRFOptions struct {
	CookieName    string
	HeaderName    string
	SessionCookie string
	Domain        string
	Secure        bool
}

// CSRF applies double-submit protection to requests that carry the session
// cookie. Bearer-only and anonymous requests are skipped since they hold no
// ambient credential.
func CSRF(o CSRFOptions) echo.MiddlewareFunc {
	return echomw.CSRFWithConfig(echomw.CSRFConfig{
		Skipper: func(c echo.Context) bool {
			_, err := c.Cookie(o.SessionCookie)
			return err != nil
		},
		TokenLookup:    "header:" + o.HeaderName,
		CookieName:     o.CookieName,
		CookiePath:     "/",
		CookieDomain:   o.Domain,
		CookieSecure:   o.Secure,
		CookieSameSite: http.SameSiteLaxMode,
	})
}
