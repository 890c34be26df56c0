package security

import (
	"slices"

	"github.com/labstack/echo/v4"
)

const PrincipalKey = "principal"

type Principal struct {
	Username string
	Roles    []string
}

func (p Principal) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if slices.Contains(p.Roles, r) {
			return true
		}
	}
	return false
}

// PrincipalFrom returns the caller the gate authenticated, if any.
func PrincipalFrom(c echo.Context) (Principal, bool) {
	p, ok := c.Get(PrincipalKey).(Principal)
	return p, ok
}
