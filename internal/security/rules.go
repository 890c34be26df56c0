package security

import "strings"

type Access struct {
	public bool
	roles  []string
}

func PermitAll() Access { return Access{public: true} }

func Authenticated() Access { return Access{} }

func HasAnyRole(roles ...string) Access { return Access{roles: roles} }

func (a Access) Public() bool { return a.public }

// Allows reports whether an authenticated principal satisfies the rule.
func (a Access) Allows(p Principal) bool {
	if a.public || len(a.roles) == 0 {
		return true
	}
	return p.HasAnyRole(a.roles...)
}

type Rule struct {
	Pattern string
	Access  Access
}

func DefaultRules() []Rule {
	return []Rule{
		{"/h2-console/**", PermitAll()},
		{"/", PermitAll()},
		{"/login", PermitAll()},
		{"/logout", PermitAll()},
		{"/info", PermitAll()},
		{"/actuator/health", PermitAll()},
		{"/products/**", HasAnyRole(RoleUser, RoleAdmin)},
		{"/**", Authenticated()},
	}
}

// Match supports exact paths and a trailing "/**", which matches the prefix
// itself and everything beneath it.
func Match(pattern, path string) bool {
	prefix, ok := strings.CutSuffix(pattern, "/**")
	if !ok {
		return pattern == path
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// Resolve returns the access of the first matching rule. Paths no rule covers
// require authentication.
func Resolve(rules []Rule, path string) Access {
	for _, r := range rules {
		if Match(r.Pattern, path) {
			return r.Access
		}
	}
	return Authenticated()
}
