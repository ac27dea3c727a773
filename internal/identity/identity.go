// Package identity holds the claim vocabulary shared by token issuance,
// sessions and authorization.
package identity

import "slices"

const (
	ClaimName         = "name"
	ClaimRole         = "role"
	ClaimRead         = "read"
	ClaimWrite        = "write"
	ClaimRefreshToken = "refresh_token"

	RoleAdmin = "Admin"
)

// Scheme names the authentication mechanism a principal came through.
type Scheme string

const (
	SchemeBearer Scheme = "Bearer"
	SchemeCookie Scheme = "Cookies"
)

type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Principal is an authenticated identity as seen by one scheme.
type Principal struct {
	Scheme Scheme
	Claims []Claim
}

func (p *Principal) find(typ string) (string, bool) {
	if p == nil {
		return "", false
	}
	for _, c := range p.Claims {
		if c.Type == typ {
			return c.Value, true
		}
	}
	return "", false
}

func (p *Principal) Name() string {
	v, _ := p.find(ClaimName)
	return v
}

// Role returns the first role claim, or "" when the principal has none.
func (p *Principal) Role() string {
	v, _ := p.find(ClaimRole)
	return v
}

func (p *Principal) RefreshToken() string {
	v, _ := p.find(ClaimRefreshToken)
	return v
}

func (p *Principal) HasRole(role string) bool {
	return p.HasClaim(ClaimRole, role)
}

func (p *Principal) HasClaim(typ, value string) bool {
	if p == nil {
		return false
	}
	return slices.Contains(p.Claims, Claim{Type: typ, Value: value})
}
