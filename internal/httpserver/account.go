package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cagmc/jwtauth/internal/identity"
	"github.com/cagmc/jwtauth/internal/middleware"
	"github.com/cagmc/jwtauth/internal/service"
	"github.com/cagmc/jwtauth/internal/transport"
	"github.com/cagmc/jwtauth/pkg/logging"
)

type AccountHTTP struct {
	Svc    *service.AccountService
	Cookie CookieOptions
}

func (h *AccountHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	mode, err := service.ParseAuthMode(req.Mode)
	if err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.Svc.Login(ctx, service.LoginInput{
		Username:     req.Username,
		Password:     req.Password,
		IsPersistent: req.Persistent(),
		Mode:         mode,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "login failed").SetInternal(err)
		}
	}

	if res.Session != nil {
		c.SetCookie(h.Cookie.Create(res.Session.Value, res.Session.Expires, res.Session.Persistent))
	}

	switch res.Mode {
	case service.ModeJwt:
		return c.JSON(http.StatusOK, transport.LoginResponse{
			Token:          res.Token,
			Expires:        res.Expires,
			RefreshToken:   &res.RefreshToken,
			RefreshExpires: &res.RefreshExpires,
		})
	case service.ModeJwtWithCookie:
		return c.JSON(http.StatusOK, transport.LoginResponse{Token: res.Token, Expires: res.Expires})
	default:
		return c.NoContent(http.StatusOK)
	}
}

// Logout is open to anonymous callers; without a session it only clears the cookie.
func (h *AccountHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	principals := middleware.Principals(c)
	p := principals[identity.SchemeCookie]
	if p == nil {
		p = principals[identity.SchemeBearer]
	}
	if err := h.Svc.Logout(ctx, p); err != nil {
		logging.FromContext(ctx).Error("logout_failed", "handler", "account_logout", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "logout failed")
	}
	c.SetCookie(h.Cookie.Delete())
	return c.NoContent(http.StatusOK)
}

func (h *AccountHTTP) RefreshToken(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "account_refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("refresh_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	return h.refresh(c, req.RefreshToken)
}

// RefreshTokenCookie refreshes with the token carried inside the session
// cookie of a JwtWithCookie login.
func (h *AccountHTTP) RefreshTokenCookie(c echo.Context) error {
	token := middleware.PrincipalFrom(c).RefreshToken()
	if token == "" {
		logging.FromContext(c.Request().Context()).Warn("refresh_error",
			"handler", "account_refresh_cookie", "status", 401, "reason", "session carries no refresh token")
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return h.refresh(c, token)
}

func (h *AccountHTTP) refresh(c echo.Context, token string) error {
	res, err := h.Svc.Refresh(c.Request().Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRefreshToken):
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid token.")
		case errors.Is(err, service.ErrExpiredRefreshToken):
			return echo.NewHTTPError(http.StatusBadRequest, "Token expired.")
		case errors.Is(err, service.ErrUnauthorizedPrincipal):
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "refresh failed").SetInternal(err)
		}
	}
	return c.JSON(http.StatusOK, transport.RefreshResponse{Token: res.Token, Expires: res.Expires})
}

func (h *AccountHTTP) Me(c echo.Context) error {
	me := h.Svc.Me(middleware.PrincipalFrom(c))
	return c.JSON(http.StatusOK, transport.MeResponse{Username: me.Username, Role: me.Role})
}
