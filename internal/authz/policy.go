// Package authz evaluates named authorization policies against the
// principals produced by the authentication schemes of a request.
//
// A set of policies is combined before evaluation: the accepted schemes are
// the union of the schemes every policy names (all schemes when none names
// any), and the requirements are the conjunction of every policy's
// requirements. A request is authenticated when at least one accepted scheme
// produced a principal; the claims of all accepted principals are merged
// before requirements are checked.
package authz

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/cagmc/jwtauth/internal/identity"
)

const (
	PolicyAdmin     = "admin-policy"
	PolicyReadOnly  = "read-only-policy"
	PolicyEditor    = "editor-policy"
	PolicyCookie    = "cookie-policy"
	PolicyJWT       = "jwt-policy"
	PolicyMultiAuth = "multi-auth-policy"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrPolicyDenied    = errors.New("policy denied")
	ErrUnknownPolicy   = errors.New("unknown policy")
)

// DefaultSchemes are accepted by policies that do not name any scheme.
var DefaultSchemes = []identity.Scheme{identity.SchemeBearer, identity.SchemeCookie}

type Requirement interface {
	Satisfied(p *identity.Principal) bool
	String() string
}

type RoleRequirement struct {
	Role string
}

func (r RoleRequirement) Satisfied(p *identity.Principal) bool { return p.HasRole(r.Role) }
func (r RoleRequirement) String() string                        { return "role " + r.Role }

type ClaimRequirement struct {
	Type  string
	Value string
}

func (r ClaimRequirement) Satisfied(p *identity.Principal) bool { return p.HasClaim(r.Type, r.Value) }
func (r ClaimRequirement) String() string                        { return "claim " + r.Type + "=" + r.Value }

type Policy struct {
	Name         string
	Schemes      []identity.Scheme
	Requirements []Requirement
}

func DefaultPolicies() []Policy {
	return []Policy{
		{Name: PolicyAdmin, Requirements: []Requirement{RoleRequirement{Role: identity.RoleAdmin}}},
		{Name: PolicyReadOnly, Requirements: []Requirement{ClaimRequirement{Type: identity.ClaimRead, Value: "true"}}},
		{Name: PolicyEditor, Requirements: []Requirement{
			ClaimRequirement{Type: identity.ClaimWrite, Value: "true"},
			ClaimRequirement{Type: identity.ClaimRead, Value: "true"},
		}},
		{Name: PolicyCookie, Schemes: []identity.Scheme{identity.SchemeCookie}},
		{Name: PolicyJWT, Schemes: []identity.Scheme{identity.SchemeBearer}},
		{Name: PolicyMultiAuth, Schemes: []identity.Scheme{identity.SchemeBearer, identity.SchemeCookie}},
	}
}

type Evaluator struct {
	policies map[string]Policy
}

func NewEvaluator(policies ...Policy) *Evaluator {
	if len(policies) == 0 {
		policies = DefaultPolicies()
	}
	m := make(map[string]Policy, len(policies))
	for _, p := range policies {
		m[p.Name] = p
	}
	return &Evaluator{policies: m}
}

// Combine merges the named policies into one.
func (e *Evaluator) Combine(names ...string) (Policy, error) {
	combined := Policy{Name: strings.Join(names, ",")}
	for _, name := range names {
		p, ok := e.policies[name]
		if !ok {
			return Policy{}, fmt.Errorf("%w: %s", ErrUnknownPolicy, name)
		}
		for _, s := range p.Schemes {
			if !slices.Contains(combined.Schemes, s) {
				combined.Schemes = append(combined.Schemes, s)
			}
		}
		combined.Requirements = append(combined.Requirements, p.Requirements...)
	}
	if len(combined.Schemes) == 0 {
		combined.Schemes = slices.Clone(DefaultSchemes)
	}
	return combined, nil
}

// Authorize returns the merged principal when the request satisfies every
// named policy. principals maps each scheme to what it authenticated, if anything.
func (e *Evaluator) Authorize(principals map[identity.Scheme]*identity.Principal, names ...string) (*identity.Principal, error) {
	policy, err := e.Combine(names...)
	if err != nil {
		return nil, err
	}
	return policy.Evaluate(principals)
}

func (p Policy) Evaluate(principals map[identity.Scheme]*identity.Principal) (*identity.Principal, error) {
	var merged *identity.Principal
	for _, scheme := range p.Schemes {
		sp := principals[scheme]
		if sp == nil {
			continue
		}
		if merged == nil {
			merged = &identity.Principal{Scheme: sp.Scheme}
		}
		for _, c := range sp.Claims {
			if !slices.Contains(merged.Claims, c) {
				merged.Claims = append(merged.Claims, c)
			}
		}
	}
	if merged == nil {
		return nil, ErrUnauthenticated
	}

	for _, req := range p.Requirements {
		if !req.Satisfied(merged) {
			return merged, fmt.Errorf("%w: %s requires %s", ErrPolicyDenied, p.Name, req)
		}
	}
	return merged, nil
}
