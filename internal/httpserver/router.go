package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cagmc/jwtauth/internal/authz"
	"github.com/cagmc/jwtauth/internal/metrics"
	"github.com/cagmc/jwtauth/internal/middleware"
)

type Deps struct {
	AccountHandler *AccountHTTP
	MagicalHandler *MagicalObjectHTTP
	Tokens         middleware.TokenParser
	Authorizer     *middleware.Authorizer
	Metrics        *metrics.Metrics
	// CSRF, when set, protects cookie-authenticated mutations.
	CSRF *middleware.CSRFOptions
	// Ready reports whether the store is reachable.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready").SetInternal(err)
			}
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))

	api := e.Group("/api",
		middleware.BearerAuth(d.Tokens),
		middleware.CookieAuth(d.Tokens, d.AccountHandler.Cookie.Name),
	)
	if d.CSRF != nil {
		api.Use(middleware.CSRF(*d.CSRF))
	}
	require := d.Authorizer.Require

	accounts := api.Group("/accounts")
	accounts.POST("/login", d.AccountHandler.Login)
	accounts.POST("/logout", d.AccountHandler.Logout)
	accounts.POST("/refresh-token", d.AccountHandler.RefreshToken)
	accounts.POST("/refresh-token-cookie", d.AccountHandler.RefreshTokenCookie, require(authz.PolicyCookie))
	accounts.GET("/me", d.AccountHandler.Me, require(authz.PolicyMultiAuth))

	values := api.Group("/values")
	values.GET("/anonymous", greet("Hello Anonymous!"))
	values.GET("/authenticated", greet("Hello Authenticated!"), require(authz.PolicyMultiAuth))
	values.GET("/admin", greet("Hello Admin!"), require(authz.PolicyAdmin, authz.PolicyMultiAuth))
	values.GET("/read", greet("Hello Reader!"), require(authz.PolicyReadOnly, authz.PolicyMultiAuth))
	values.GET("/edit", greet("Hello Editor!"), require(authz.PolicyEditor, authz.PolicyMultiAuth))
	values.GET("/cookie", greet("Hello Cookie!"), require(authz.PolicyCookie))
	values.GET("/token", greet("Hello Token!"), require(authz.PolicyJWT))

	objects := api.Group("/magical-objects", require(authz.PolicyMultiAuth))
	objects.GET("", d.MagicalHandler.List)
	objects.GET("/:id", d.MagicalHandler.Get)
	objects.POST("", d.MagicalHandler.Create, require(authz.PolicyEditor))
	objects.PUT("/:id", d.MagicalHandler.Update, require(authz.PolicyEditor))
	objects.DELETE("/:id", d.MagicalHandler.Delete, require(authz.PolicyAdmin))
}
