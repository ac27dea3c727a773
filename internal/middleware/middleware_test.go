package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cagmc/jwtauth/internal/authz"
	"github.com/cagmc/jwtauth/internal/identity"
	"github.com/cagmc/jwtauth/internal/metrics"
	"github.com/cagmc/jwtauth/internal/token"
)

const cookieName = "jwtauth.session"

func newIssuer(t *testing.T) *token.Issuer {
	t.Helper()
	iss, err := token.NewIssuer(token.Options{
		Secret:           []byte("middleware-test-secret"),
		Issuer:           "cagmc.jwtauth",
		Audience:         "cagmc.jwtauth.clients",
		RefreshTokenSize: 32,
	})
	require.NoError(t, err)
	return iss
}

func newServer(t *testing.T, iss *token.Issuer) *echo.Echo {
	t.Helper()

	e := echo.New()
	e.Use(BearerAuth(iss), CookieAuth(iss, cookieName))

	a := &Authorizer{Evaluator: authz.NewEvaluator(), Metrics: metrics.New("test")}
	who := func(c echo.Context) error { return c.String(http.StatusOK, PrincipalFrom(c).Name()) }

	e.GET("/any", who, a.Require(authz.PolicyMultiAuth))
	e.GET("/cookie", who, a.Require(authz.PolicyCookie))
	e.GET("/token", who, a.Require(authz.PolicyJWT))
	e.GET("/edit", who, a.Require(authz.PolicyEditor, authz.PolicyMultiAuth))
	return e
}

func claims(name string, extra ...identity.Claim) []identity.Claim {
	return append([]identity.Claim{{Type: identity.ClaimName, Value: name}}, extra...)
}

func TestRequire(t *testing.T) {
	t.Parallel()

	iss := newIssuer(t)
	e := newServer(t, iss)
	exp := time.Now().Add(time.Hour)

	editor := claims("editor@cagmc.com", identity.Claim{Type: "read", Value: "true"}, identity.Claim{Type: "write", Value: "true"})
	reader := claims("reader@cagmc.com", identity.Claim{Type: "read", Value: "true"})

	editorBearer, err := iss.IssueAccessToken(exp, editor)
	require.NoError(t, err)
	readerBearer, err := iss.IssueAccessToken(exp, reader)
	require.NoError(t, err)
	readerSession, err := iss.IssueSessionToken(exp, reader)
	require.NoError(t, err)
	expiredBearer, err := iss.IssueAccessToken(time.Now().Add(-time.Minute), editor)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		bearer string
		cookie string
		want   int
		body   string
	}{
		{name: "anonymous", path: "/any", want: http.StatusUnauthorized},
		{name: "bearer", path: "/any", bearer: readerBearer, want: http.StatusOK, body: "reader@cagmc.com"},
		{name: "cookie", path: "/any", cookie: readerSession, want: http.StatusOK, body: "reader@cagmc.com"},
		{name: "garbage bearer", path: "/any", bearer: "not-a-jwt", want: http.StatusUnauthorized},
		{name: "expired bearer", path: "/any", bearer: expiredBearer, want: http.StatusUnauthorized},
		{name: "session value as bearer", path: "/any", bearer: readerSession, want: http.StatusUnauthorized},
		{name: "bearer value as cookie", path: "/cookie", cookie: readerBearer, want: http.StatusUnauthorized},
		{name: "bearer on cookie route", path: "/cookie", bearer: readerBearer, want: http.StatusUnauthorized},
		{name: "cookie on token route", path: "/token", cookie: readerSession, want: http.StatusUnauthorized},
		{name: "bearer on token route", path: "/token", bearer: readerBearer, want: http.StatusOK},
		{name: "editor edits", path: "/edit", bearer: editorBearer, want: http.StatusOK, body: "editor@cagmc.com"},
		{name: "reader cannot edit", path: "/edit", bearer: readerBearer, want: http.StatusForbidden},
		{name: "reader cookie cannot edit", path: "/edit", cookie: readerSession, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.bearer != "" {
				req.Header.Set(echo.HeaderAuthorization, "Bearer "+tt.bearer)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: cookieName, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestRequire_UnknownPolicyPanics(t *testing.T) {
	t.Parallel()

	a := &Authorizer{Evaluator: authz.NewEvaluator()}
	assert.Panics(t, func() { a.Require("no-such-policy") })
}

func TestPrincipals(t *testing.T) {
	t.Parallel()

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Empty(t, Principals(c))
	assert.Nil(t, PrincipalFrom(c))

	p := &identity.Principal{Scheme: identity.SchemeCookie}
	c.Set(cookieKey, p)
	assert.Equal(t, map[identity.Scheme]*identity.Principal{identity.SchemeCookie: p}, Principals(c))
}
