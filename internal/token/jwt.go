package token

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cagmc/jwtauth/internal/identity"
)

const (
	typeAccess  = "access"
	typeSession = "session"
)

var (
	ErrMissingSecret = errors.New("token signing secret is not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

// Claims is the JWT payload. The Name claim doubles as the subject; roles
// and the remaining claims are carried in their own fields so that
// a principal can be rebuilt without loss.
type Claims struct {
	TokenType string              `json:"typ"`
	Name      string              `json:"name,omitempty"`
	Roles     []string            `json:"roles,omitempty"`
	Extra     map[string][]string `json:"claims,omitempty"`
	jwt.RegisteredClaims
}

type Options struct {
	Secret           []byte
	Issuer           string
	Audience         string
	RefreshTokenSize int

	// Now stamps iat and nbf and is the reference time for validation.
	// Defaults to time.Now.
	Now func() time.Time
}

// Issuer signs and verifies HS256 tokens and creates opaque refresh tokens.
// It holds no mutable state and is safe for concurrent use.
type Issuer struct {
	secret      []byte
	issuer      string
	audience    string
	refreshSize int
	now         func() time.Time
}

func NewIssuer(opts Options) (*Issuer, error) {
	if len(opts.Secret) == 0 {
		return nil, ErrMissingSecret
	}
	if opts.RefreshTokenSize <= 0 {
		return nil, fmt.Errorf("refresh token size must be positive, got %d", opts.RefreshTokenSize)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Issuer{
		secret:      slices.Clone(opts.Secret),
		issuer:      opts.Issuer,
		audience:    opts.Audience,
		refreshSize: opts.RefreshTokenSize,
		now:         now,
	}, nil
}

// IssueAccessToken signs a bearer token carrying a fresh jti and claims.
func (i *Issuer) IssueAccessToken(expires time.Time, claims []identity.Claim) (string, error) {
	return i.sign(typeAccess, expires, claims)
}

// IssueSessionToken signs the value stored in the authentication cookie.
func (i *Issuer) IssueSessionToken(expires time.Time, claims []identity.Claim) (string, error) {
	return i.sign(typeSession, expires, claims)
}

// ValidateAccessToken reports whether the token has a valid signature,
// issuer, audience and expiry. Malformed input yields false.
func (i *Issuer) ValidateAccessToken(tokenStr string) bool {
	_, err := i.ParseAccessToken(tokenStr)
	return err == nil
}

func (i *Issuer) ParseAccessToken(tokenStr string) (*identity.Principal, error) {
	return i.parse(tokenStr, typeAccess, identity.SchemeBearer)
}

func (i *Issuer) ParseSessionToken(tokenStr string) (*identity.Principal, error) {
	return i.parse(tokenStr, typeSession, identity.SchemeCookie)
}

func (i *Issuer) sign(typ string, expires time.Time, claims []identity.Claim) (string, error) {
	if i == nil || len(i.secret) == 0 {
		return "", ErrMissingSecret
	}

	now := i.now()
	c := encodeClaims(claims)
	c.TokenType = typ
	c.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    i.issuer,
		Subject:   c.Name,
		Audience:  jwt.ClaimStrings{i.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

func (i *Issuer) parse(tokenStr, typ string, scheme identity.Scheme) (*identity.Principal, error) {
	if i == nil || len(i.secret) == 0 {
		return nil, ErrMissingSecret
	}
	if tokenStr == "" {
		return nil, ErrInvalidToken
	}

	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return i.secret, nil
	},
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !tkn.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.TokenType != typ {
		return nil, fmt.Errorf("%w: token type mismatch %q", ErrInvalidToken, claims.TokenType)
	}

	return &identity.Principal{Scheme: scheme, Claims: decodeClaims(&claims)}, nil
}

func encodeClaims(claims []identity.Claim) Claims {
	var c Claims
	for _, cl := range claims {
		switch cl.Type {
		case identity.ClaimName:
			c.Name = cl.Value
		case identity.ClaimRole:
			c.Roles = append(c.Roles, cl.Value)
		default:
			if c.Extra == nil {
				c.Extra = make(map[string][]string)
			}
			c.Extra[cl.Type] = append(c.Extra[cl.Type], cl.Value)
		}
	}
	return c
}

func decodeClaims(c *Claims) []identity.Claim {
	out := make([]identity.Claim, 0, 1+len(c.Roles)+len(c.Extra))
	if c.Name != "" {
		out = append(out, identity.Claim{Type: identity.ClaimName, Value: c.Name})
	}
	for _, r := range c.Roles {
		out = append(out, identity.Claim{Type: identity.ClaimRole, Value: r})
	}
	types := make([]string, 0, len(c.Extra))
	for typ := range c.Extra {
		types = append(types, typ)
	}
	slices.Sort(types)
	for _, typ := range types {
		for _, v := range c.Extra[typ] {
			out = append(out, identity.Claim{Type: typ, Value: v})
		}
	}
	return out
}
