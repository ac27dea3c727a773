package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cagmc/jwtauth/internal/events"
	"github.com/cagmc/jwtauth/internal/identity"
	"github.com/cagmc/jwtauth/internal/metrics"
	"github.com/cagmc/jwtauth/internal/models"
	"github.com/cagmc/jwtauth/internal/repo"
	"github.com/cagmc/jwtauth/pkg/logging"
)

type AuthMode string

const (
	ModeJwt           AuthMode = "Jwt"
	ModeCookie        AuthMode = "Cookie"
	ModeJwtWithCookie AuthMode = "JwtWithCookie"
)

// ParseAuthMode accepts the mode names case-insensitively; empty means Jwt.
func ParseAuthMode(s string) (AuthMode, error) {
	if s == "" {
		return ModeJwt, nil
	}
	for _, m := range []AuthMode{ModeJwt, ModeCookie, ModeJwtWithCookie} {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown authentication mode %q", ErrValidation, s)
}

func (m AuthMode) issuesTokens() bool { return m == ModeJwt || m == ModeJwtWithCookie }
func (m AuthMode) setsCookie() bool   { return m == ModeCookie || m == ModeJwtWithCookie }

type CredentialStore interface {
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	ReplaceRefreshToken(ctx context.Context, data *models.RefreshTokenData) error
	RevokeRefreshTokens(ctx context.Context, username string) error
	ResolveRefreshToken(ctx context.Context, token string, now time.Time) (*models.RefreshTokenData, error)
}

type TokenIssuer interface {
	IssueAccessToken(expires time.Time, claims []identity.Claim) (string, error)
	IssueSessionToken(expires time.Time, claims []identity.Claim) (string, error)
	IssueRefreshToken() (string, error)
}

type AccountService struct {
	Store   CredentialStore
	Tokens  TokenIssuer
	Events  events.Publisher
	Metrics *metrics.Metrics

	AccessTTL  time.Duration
	RefreshTTL time.Duration
	CookieTTL  time.Duration

	Now func() time.Time
}

type LoginInput struct {
	Username     string
	Password     string
	IsPersistent bool
	Mode         AuthMode
}

// Session is the signed value of the authentication cookie.
type Session struct {
	Value      string
	Expires    time.Time
	Persistent bool
}

type LoginResult struct {
	Mode           AuthMode
	Token          string
	Expires        time.Time
	RefreshToken   string
	RefreshExpires time.Time
	Session        *Session
}

type RefreshResult struct {
	Token   string
	Expires time.Time
}

type MeResult struct {
	Username string
	Role     string
}

func (s *AccountService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ClaimsForUser derives the principal claim set from the user's declared
// roles and claims: the name first, then one role claim per role, then
// every claim as stored.
func ClaimsForUser(u *models.User) []identity.Claim {
	claims := make([]identity.Claim, 0, 1+len(u.Roles)+len(u.Claims))
	claims = append(claims, identity.Claim{Type: identity.ClaimName, Value: u.Username})
	for _, r := range u.Roles {
		claims = append(claims, identity.Claim{Type: identity.ClaimRole, Value: r.Name})
	}
	for _, c := range u.Claims {
		claims = append(claims, identity.Claim{Type: c.Type, Value: c.Value})
	}
	return claims
}

func (s *AccountService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "account.login", "username", in.Username, "mode", string(in.Mode))

	if in.Mode == "" {
		in.Mode = ModeJwt
	}
	if in.Username == "" || in.Password == "" {
		l.Warn("login_failed", "status", 400, "reason", "missing username or password")
		s.Metrics.Login(string(in.Mode), metrics.OutcomeFailure)
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := s.Store.FindUserByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
			s.Metrics.Login(string(in.Mode), metrics.OutcomeFailure)
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, fmt.Errorf("find user: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(in.Password)) != 1 {
		l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
		s.Metrics.Login(string(in.Mode), metrics.OutcomeFailure)
		return nil, ErrInvalidCredentials
	}

	claims := ClaimsForUser(user)
	now := s.now()
	res := &LoginResult{Mode: in.Mode}

	if in.Mode.issuesTokens() {
		res.Expires = now.Add(s.AccessTTL)
		res.Token, err = s.Tokens.IssueAccessToken(res.Expires, claims)
		if err != nil {
			l.Error("login_failed", "status", 500, "reason", "cannot issue access token", "error", err)
			return nil, fmt.Errorf("issue access token: %w", err)
		}

		res.RefreshExpires = now.Add(s.RefreshTTL)
		res.RefreshToken, err = s.Tokens.IssueRefreshToken()
		if err != nil {
			l.Error("login_failed", "status", 500, "reason", "cannot issue refresh token", "error", err)
			return nil, fmt.Errorf("issue refresh token: %w", err)
		}

		err = s.Store.ReplaceRefreshToken(ctx, &models.RefreshTokenData{
			Username:     user.Username,
			RefreshToken: res.RefreshToken,
			Expires:      res.RefreshExpires,
		})
		if err != nil {
			l.Error("login_failed", "status", 500, "reason", "cannot store refresh token", "error", err)
			return nil, fmt.Errorf("store refresh token: %w", err)
		}
	} else if err := s.Store.RevokeRefreshTokens(ctx, user.Username); err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot revoke refresh token", "error", err)
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}

	if in.Mode.setsCookie() {
		sessionClaims := claims
		if in.Mode == ModeJwtWithCookie {
			sessionClaims = append(sessionClaims, identity.Claim{Type: identity.ClaimRefreshToken, Value: res.RefreshToken})
		}
		expires := now.Add(s.CookieTTL)
		value, err := s.Tokens.IssueSessionToken(expires, sessionClaims)
		if err != nil {
			l.Error("login_failed", "status", 500, "reason", "cannot issue session", "error", err)
			return nil, fmt.Errorf("issue session token: %w", err)
		}
		res.Session = &Session{Value: value, Expires: expires, Persistent: in.IsPersistent}
	}

	s.publish(ctx, events.Event{Type: events.TypeLoggedIn, Username: user.Username, Mode: string(in.Mode), At: now})
	s.Metrics.Login(string(in.Mode), metrics.OutcomeSuccess)
	l.Info("login_successful")
	return res, nil
}

// Refresh exchanges a stored refresh token for a new access token. The
// refresh token itself is left untouched until it expires.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	l := logging.FromContext(ctx).With("svc", "account.refresh")

	if refreshToken == "" {
		l.Warn("refresh_failed", "status", 400, "reason", "empty refresh token")
		s.Metrics.Refresh(metrics.OutcomeInvalid)
		return nil, ErrInvalidRefreshToken
	}

	now := s.now()
	data, err := s.Store.ResolveRefreshToken(ctx, refreshToken, now)
	switch {
	case errors.Is(err, repo.ErrRefreshNotFound):
		l.Warn("refresh_failed", "status", 400, "reason", "unknown refresh token")
		s.Metrics.Refresh(metrics.OutcomeInvalid)
		return nil, ErrInvalidRefreshToken
	case errors.Is(err, repo.ErrRefreshExpired):
		l.Warn("refresh_expired", "status", 400)
		s.Metrics.Refresh(metrics.OutcomeExpired)
		return nil, ErrExpiredRefreshToken
	case err != nil:
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, fmt.Errorf("resolve refresh token: %w", err)
	}

	l = l.With("username", data.Username)
	user, err := s.Store.FindUserByUsername(ctx, data.Username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Error("refresh_failed", "status", 401, "reason", "refresh token owner is gone")
			s.Metrics.Refresh(metrics.OutcomeFailure)
			return nil, ErrUnauthorizedPrincipal
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, fmt.Errorf("find user: %w", err)
	}

	expires := now.Add(s.AccessTTL)
	tok, err := s.Tokens.IssueAccessToken(expires, ClaimsForUser(user))
	if err != nil {
		l.Error("refresh_failed", "status", 500, "reason", "cannot issue access token", "error", err)
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	s.publish(ctx, events.Event{Type: events.TypeTokenRefreshed, Username: user.Username, At: now})
	s.Metrics.Refresh(metrics.OutcomeSuccess)
	l.Info("refresh_successful")
	return &RefreshResult{Token: tok, Expires: expires}, nil
}

// Logout ends the principal's cookie session. The cookie itself is cleared
// by the caller; logging out without a session is not an error.
func (s *AccountService) Logout(ctx context.Context, p *identity.Principal) error {
	l := logging.FromContext(ctx).With("svc", "account.logout")
	if name := p.Name(); name != "" {
		s.publish(ctx, events.Event{Type: events.TypeLoggedOut, Username: name, At: s.now()})
		l = l.With("username", name)
	}
	s.Metrics.Logout()
	l.Info("logout_successful")
	return nil
}

func (s *AccountService) Me(p *identity.Principal) MeResult {
	return MeResult{Username: p.Name(), Role: p.Role()}
}

func (s *AccountService) publish(ctx context.Context, ev events.Event) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, ev); err != nil {
		logging.FromContext(ctx).Error("event_publish_failed", "type", ev.Type, "error", err)
	}
}
