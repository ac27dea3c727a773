package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cagmc/jwtauth/internal/authz"
	"github.com/cagmc/jwtauth/internal/metrics"
	"github.com/cagmc/jwtauth/pkg/logging"
)

type Authorizer struct {
	Evaluator *authz.Evaluator
	Metrics   *metrics.Metrics
}

// Require admits the request only when it satisfies every named policy.
// Unauthenticated requests get 401, authenticated ones failing a
// requirement get 403. It panics on an unknown policy name.
func (a *Authorizer) Require(names ...string) echo.MiddlewareFunc {
	policy, err := a.Evaluator.Combine(names...)
	if err != nil {
		panic(err)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			l := logging.FromContext(c.Request().Context()).With("policy", policy.Name)

			p, err := policy.Evaluate(Principals(c))
			switch {
			case errors.Is(err, authz.ErrUnauthenticated):
				a.Metrics.Decision(policy.Name, metrics.DecisionUnauthenticated)
				l.Warn("authorization_failed", "status", http.StatusUnauthorized, "reason", "unauthenticated")
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			case errors.Is(err, authz.ErrPolicyDenied):
				a.Metrics.Decision(policy.Name, metrics.DecisionDeny)
				l.Warn("authorization_failed", "status", http.StatusForbidden, "username", p.Name(), "error", err)
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			case err != nil:
				l.Error("authorization_failed", "status", http.StatusInternalServerError, "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
			}

			a.Metrics.Decision(policy.Name, metrics.DecisionAllow)
			c.Set(principalKey, p)
			return next(c)
		}
	}
}
